// internal/services/business_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrimart/agrimart-backend/internal/models"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

type BusinessService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type RegisterBusinessRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=2,max=255"`
	TaxID       string `json:"tax_id" validate:"required,min=5,max=50"`
	ContactName string `json:"contact_name" validate:"required,min=2,max=255"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,phone"`
	Address     string `json:"address" validate:"required"`
	City        string `json:"city,omitempty" validate:"max=100"`
	Country     string `json:"country,omitempty" validate:"max=100"`
	Password    string `json:"password" validate:"required,min=6"`
}

type ApproveBusinessRequest struct {
	CreditLimit  decimal.Decimal `json:"credit_limit" validate:"required,gte=0"`
	PaymentTerms string          `json:"payment_terms" validate:"required,oneof=immediate net_15 net_30 net_60"`
	DiscountTier string          `json:"discount_tier,omitempty" validate:"max=50"`
	Notes        string          `json:"notes,omitempty" validate:"max=500"`
}

type RejectBusinessRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type SetBusinessPricingRequest struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"required,gt=0"`
	MinQuantity int             `json:"min_quantity" validate:"gte=1"`
	ValidFrom   *time.Time      `json:"valid_from,omitempty"`
	ValidUntil  *time.Time      `json:"valid_until,omitempty"`
}

type BusinessSearchParams struct {
	utils.PaginationParams
	Status *models.BusinessStatus `json:"status,omitempty"`
}

func NewBusinessService(db *gorm.DB, notificationService *NotificationService) *BusinessService {
	return &BusinessService{
		db:                  db,
		notificationService: notificationService,
	}
}

// RegisterBusiness creates the business, its contact user, and the user's
// wallet in one transaction. The business starts pending and cannot place
// invoice orders until an admin approves it.
func (s *BusinessService) RegisterBusiness(req *RegisterBusinessRequest) (*models.Business, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existingUser models.User
	if err := s.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existingBusiness models.Business
	if err := s.db.Where("tax_id = ?", req.TaxID).First(&existingBusiness).Error; err == nil {
		return nil, ErrTaxIDTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	business := &models.Business{
		CompanyName:  req.CompanyName,
		TaxID:        req.TaxID,
		ContactName:  req.ContactName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		Country:      req.Country,
		Status:       models.BusinessStatusPending,
		PaymentTerms: "net_30",
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(business).Error; err != nil {
			return fmt.Errorf("failed to create business: %w", err)
		}

		user := &models.User{
			Name:       req.ContactName,
			Email:      req.Email,
			Phone:      req.Phone,
			BusinessID: &business.ID,
		}
		if err := user.SetPassword(req.Password); err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		wallet := &models.Wallet{
			UserID:         user.ID,
			CashBalance:    decimal.Zero,
			RewardsBalance: decimal.Zero,
		}
		if err := tx.Create(wallet).Error; err != nil {
			return fmt.Errorf("failed to create wallet: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return business, nil
}

func (s *BusinessService) GetBusiness(businessID uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := s.db.Preload("Pricing").First(&business, businessID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &business, nil
}

func (s *BusinessService) ListBusinesses(params BusinessSearchParams) ([]models.Business, int64, error) {
	query := s.db.Model(&models.Business{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count businesses: %w", err)
	}

	allowedSortFields := []string{"created_at", "company_name", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var businesses []models.Business
	if err := query.Find(&businesses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch businesses: %w", err)
	}

	return businesses, total, nil
}

func (s *BusinessService) ApproveBusiness(businessID uuid.UUID, req *ApproveBusinessRequest) (*models.Business, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var business models.Business
	if err := s.db.First(&business, businessID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	business.Status = models.BusinessStatusApproved
	business.CreditLimit = &req.CreditLimit
	business.PaymentTerms = req.PaymentTerms
	business.DiscountTier = req.DiscountTier
	business.Notes = req.Notes

	if err := s.db.Save(&business).Error; err != nil {
		return nil, fmt.Errorf("failed to approve business: %w", err)
	}

	if s.notificationService != nil {
		go s.notificationService.SendBusinessApproved(&business)
	}

	return &business, nil
}

func (s *BusinessService) RejectBusiness(businessID uuid.UUID, req *RejectBusinessRequest) (*models.Business, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var business models.Business
	if err := s.db.First(&business, businessID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	business.Status = models.BusinessStatusRejected
	business.Notes = req.Reason

	if err := s.db.Save(&business).Error; err != nil {
		return nil, fmt.Errorf("failed to reject business: %w", err)
	}

	if s.notificationService != nil {
		go s.notificationService.SendBusinessRejected(&business, req.Reason)
	}

	return &business, nil
}

// SetBusinessPricing upserts the per-product contract price for a
// business. One row per business-product pair.
func (s *BusinessService) SetBusinessPricing(businessID uuid.UUID, req *SetBusinessPricingRequest) (*models.BusinessProductPricing, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var business models.Business
	if err := s.db.First(&business, businessID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	minQuantity := req.MinQuantity
	if minQuantity < 1 {
		minQuantity = 1
	}

	var pricing models.BusinessProductPricing
	err := s.db.Where("business_id = ? AND product_id = ?", businessID, req.ProductID).
		First(&pricing).Error
	switch {
	case err == nil:
		pricing.Price = req.Price
		pricing.MinQuantity = minQuantity
		pricing.ValidFrom = req.ValidFrom
		pricing.ValidUntil = req.ValidUntil
		if err := s.db.Save(&pricing).Error; err != nil {
			return nil, fmt.Errorf("failed to update pricing: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		pricing = models.BusinessProductPricing{
			BusinessID:  businessID,
			ProductID:   req.ProductID,
			Price:       req.Price,
			MinQuantity: minQuantity,
			ValidFrom:   req.ValidFrom,
			ValidUntil:  req.ValidUntil,
		}
		if err := s.db.Create(&pricing).Error; err != nil {
			return nil, fmt.Errorf("failed to create pricing: %w", err)
		}
	default:
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &pricing, nil
}

func (s *BusinessService) RemoveBusinessPricing(businessID, productID uuid.UUID) error {
	result := s.db.Where("business_id = ? AND product_id = ?", businessID, productID).
		Delete(&models.BusinessProductPricing{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove pricing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
