// internal/services/preharvest_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrimart/agrimart-backend/internal/models"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

// PreHarvestService covers farmer listings and the deposit-backed booking
// workflow on top of them.
type PreHarvestService struct {
	db                  *gorm.DB
	wallets             *WalletService
	notificationService *NotificationService
	depositPercent      decimal.Decimal
}

type CreateListingRequest struct {
	Title            string          `json:"title" validate:"required,min=3,max=255"`
	CropType         string          `json:"crop_type" validate:"required"`
	Variety          string          `json:"variety,omitempty" validate:"max=255"`
	Location         string          `json:"location" validate:"required,max=255"`
	EstimatedYield   decimal.Decimal `json:"estimated_yield" validate:"required,gt=0"`
	PricePerKg       decimal.Decimal `json:"price_per_kg" validate:"required,gt=0"`
	HarvestDate      time.Time       `json:"harvest_date" validate:"required"`
	QualityGrade     string          `json:"quality_grade" validate:"required,oneof=premium grade-a grade-b standard"`
	MinimumOrder     int             `json:"minimum_order" validate:"gte=1"`
	OrganicCertified bool            `json:"organic_certified"`
	Description      string          `json:"description,omitempty"`
	TermsConditions  string          `json:"terms_conditions,omitempty"`
	Images           []string        `json:"images,omitempty"`
}

type UpdateListingRequest struct {
	Title           *string          `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	PricePerKg      *decimal.Decimal `json:"price_per_kg,omitempty"`
	HarvestDate     *time.Time       `json:"harvest_date,omitempty"`
	MinimumOrder    *int             `json:"minimum_order,omitempty" validate:"omitempty,gte=1"`
	Description     *string          `json:"description,omitempty"`
	TermsConditions *string          `json:"terms_conditions,omitempty"`
	Images          []string         `json:"images,omitempty"`
}

type ListingSearchParams struct {
	utils.PaginationParams
	CropType      string           `json:"crop_type,omitempty"`
	QualityGrade  string           `json:"quality_grade,omitempty"`
	Location      string           `json:"location,omitempty"`
	OrganicOnly   bool             `json:"organic_only,omitempty"`
	MaxPricePerKg *decimal.Decimal `json:"max_price_per_kg,omitempty"`
	HarvestFrom   *time.Time       `json:"harvest_from,omitempty"`
	HarvestUntil  *time.Time       `json:"harvest_until,omitempty"`
}

type CreateBookingRequest struct {
	Quantity        decimal.Decimal      `json:"quantity" validate:"required,gt=0"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" validate:"required,oneof=wallet bank_transfer"`
	SpecialRequests string               `json:"special_requests,omitempty" validate:"max=500"`
}

type ListingAnalytics struct {
	TotalListings     int64           `json:"total_listings"`
	ActiveListings    int64           `json:"active_listings"`
	TotalBookings     int64           `json:"total_bookings"`
	ConfirmedBookings int64           `json:"confirmed_bookings"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	DepositsCollected decimal.Decimal `json:"deposits_collected"`
}

func NewPreHarvestService(db *gorm.DB, wallets *WalletService, notificationService *NotificationService, depositPercent float64) *PreHarvestService {
	return &PreHarvestService{
		db:                  db,
		wallets:             wallets,
		notificationService: notificationService,
		depositPercent:      decimal.NewFromFloat(depositPercent),
	}
}

func (s *PreHarvestService) CreateListing(userID uuid.UUID, req *CreateListingRequest) (*models.PreHarvestListing, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !req.HarvestDate.After(time.Now()) {
		return nil, ErrListingUnavailable
	}

	minimumOrder := req.MinimumOrder
	if minimumOrder < 1 {
		minimumOrder = 1
	}

	listing := &models.PreHarvestListing{
		UserID:           userID,
		Title:            req.Title,
		CropType:         req.CropType,
		Variety:          req.Variety,
		Location:         req.Location,
		EstimatedYield:   req.EstimatedYield,
		PricePerKg:       req.PricePerKg,
		HarvestDate:      req.HarvestDate,
		QualityGrade:     models.QualityGrade(req.QualityGrade),
		MinimumOrder:     minimumOrder,
		OrganicCertified: req.OrganicCertified,
		Description:      req.Description,
		TermsConditions:  req.TermsConditions,
		Status:           models.ListingStatusAvailable,
		ReservedQuantity: decimal.Zero,
		Images:           pq.StringArray(req.Images),
	}

	if err := s.db.Create(listing).Error; err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	return listing, nil
}

func (s *PreHarvestService) UpdateListing(listingID, userID uuid.UUID, req *UpdateListingRequest) (*models.PreHarvestListing, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	listing, err := s.ownedListing(listingID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.PricePerKg != nil {
		listing.PricePerKg = *req.PricePerKg
	}
	if req.HarvestDate != nil {
		listing.HarvestDate = *req.HarvestDate
	}
	if req.MinimumOrder != nil {
		listing.MinimumOrder = *req.MinimumOrder
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.TermsConditions != nil {
		listing.TermsConditions = *req.TermsConditions
	}
	if req.Images != nil {
		listing.Images = pq.StringArray(req.Images)
	}

	if err := s.db.Save(listing).Error; err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	return listing, nil
}

func (s *PreHarvestService) GetListing(listingID uuid.UUID) (*models.PreHarvestListing, error) {
	var listing models.PreHarvestListing
	if err := s.db.Preload("User").First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &listing, nil
}

func (s *PreHarvestService) SearchListings(params ListingSearchParams) ([]models.PreHarvestListing, int64, error) {
	query := s.db.Model(&models.PreHarvestListing{}).
		Where("status = ? AND harvest_date > ?", models.ListingStatusAvailable, time.Now())

	if params.CropType != "" {
		query = query.Where("crop_type = ?", params.CropType)
	}
	if params.QualityGrade != "" {
		query = query.Where("quality_grade = ?", params.QualityGrade)
	}
	if params.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+params.Location+"%")
	}
	if params.OrganicOnly {
		query = query.Where("organic_certified = ?", true)
	}
	if params.MaxPricePerKg != nil {
		query = query.Where("price_per_kg <= ?", params.MaxPricePerKg)
	}
	if params.HarvestFrom != nil {
		query = query.Where("harvest_date >= ?", params.HarvestFrom)
	}
	if params.HarvestUntil != nil {
		query = query.Where("harvest_date <= ?", params.HarvestUntil)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	allowedSortFields := []string{"created_at", "harvest_date", "price_per_kg"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var listings []models.PreHarvestListing
	if err := query.Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch listings: %w", err)
	}

	return listings, total, nil
}

func (s *PreHarvestService) MyListings(userID uuid.UUID, params utils.PaginationParams) ([]models.PreHarvestListing, int64, error) {
	query := s.db.Model(&models.PreHarvestListing{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	allowedSortFields := []string{"created_at", "harvest_date", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var listings []models.PreHarvestListing
	if err := query.Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch listings: %w", err)
	}

	return listings, total, nil
}

// CancelListing takes a listing off the market. Listings with pending or
// confirmed bookings cannot be cancelled; those bookings have to be
// settled first through the booking lifecycle.
func (s *PreHarvestService) CancelListing(listingID, userID uuid.UUID) (*models.PreHarvestListing, error) {
	listing, err := s.ownedListing(listingID, userID)
	if err != nil {
		return nil, err
	}

	if listing.Status != models.ListingStatusAvailable {
		return nil, ErrListingUnavailable
	}

	var activeBookings int64
	if err := s.db.Model(&models.PreHarvestBooking{}).
		Where("listing_id = ? AND status IN ?", listing.ID,
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Count(&activeBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if activeBookings > 0 {
		return nil, ErrListingHasBookings
	}

	if err := s.db.Model(listing).UpdateColumn("status", models.ListingStatusCancelled).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel listing: %w", err)
	}
	listing.Status = models.ListingStatusCancelled

	return listing, nil
}

// CreateBooking reserves part of a listing's yield and prices the deposit.
// The availability check and the reservation increment are one guarded
// statement, so concurrent bookings cannot over-commit the yield.
func (s *PreHarvestService) CreateBooking(ctx context.Context, buyer *models.User, listingID uuid.UUID, req *CreateBookingRequest) (*models.PreHarvestBooking, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var booking *models.PreHarvestBooking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing models.PreHarvestListing
		if err := tx.First(&listing, listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !listing.IsOpen(time.Now()) {
			return ErrListingUnavailable
		}
		if listing.UserID == buyer.ID {
			return ErrOwnListingBooking
		}
		if req.Quantity.LessThan(decimal.NewFromInt(int64(listing.MinimumOrder))) {
			return ErrBelowMinimumOrder
		}

		// The column must sit alone on one side of the guard: SQLite only
		// applies column affinity to bare columns, so an expression compared
		// against a text-bound decimal parameter would never match.
		result := tx.Model(&models.PreHarvestListing{}).
			Where("id = ? AND status = ? AND reserved_quantity <= estimated_yield - CAST(? AS NUMERIC)",
				listing.ID, models.ListingStatusAvailable, req.Quantity).
			UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity + ?", req.Quantity))
		if result.Error != nil {
			return fmt.Errorf("failed to reserve quantity: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return ErrInsufficientQuantity
		}

		totalPrice := listing.PricePerKg.Mul(req.Quantity).Round(2)
		depositAmount := totalPrice.Mul(s.depositPercent).Div(decimal.NewFromInt(100)).Round(2)

		// The deposit is not collected yet; it moves buyer to seller when
		// the seller confirms.
		booking = &models.PreHarvestBooking{
			ListingID:       listing.ID,
			BuyerID:         buyer.ID,
			BuyerName:       buyer.Name,
			BuyerEmail:      buyer.Email,
			BuyerPhone:      buyer.Phone,
			Quantity:        req.Quantity,
			TotalPrice:      totalPrice,
			DepositAmount:   depositAmount,
			PaymentMethod:   req.PaymentMethod,
			Status:          models.BookingStatusPending,
			SpecialRequests: req.SpecialRequests,
		}

		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		go s.notificationService.SendBookingReceived(booking)
	}

	return booking, nil
}

// ConfirmBooking is a seller operation: pending becomes confirmed and the
// deposit moves from the buyer's wallet to the seller's. An insufficient
// buyer balance fails the confirmation and leaves the booking pending.
func (s *PreHarvestService) ConfirmBooking(ctx context.Context, bookingID, sellerID uuid.UUID) (*models.PreHarvestBooking, error) {
	var booking models.PreHarvestBooking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Listing").First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if booking.Listing.UserID != sellerID {
			return ErrUnauthorized
		}
		if booking.Status != models.BookingStatusPending {
			return ErrBookingNotPending
		}

		now := time.Now()
		booking.Status = models.BookingStatusConfirmed
		booking.ConfirmedAt = &now

		updates := map[string]interface{}{"status": booking.Status, "confirmed_at": now}

		// Bank-transfer deposits settle off-platform; only wallet bookings
		// move funds here.
		if booking.PaymentMethod == models.PaymentMethodWallet {
			ref := utils.GenerateTransactionRef()
			description := fmt.Sprintf("Deposit for pre-harvest booking: %s", booking.Listing.Title)
			if err := s.wallets.Debit(tx, booking.BuyerID, booking.DepositAmount, description, ref); err != nil {
				return err
			}
			if err := s.wallets.Credit(tx, sellerID, booking.DepositAmount, description, ref); err != nil {
				return err
			}
			booking.DepositPaid = true
			booking.TransactionRef = ref
			updates["deposit_paid"] = true
			updates["transaction_ref"] = ref
		}

		if err := tx.Model(&booking).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to confirm booking: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		go s.notificationService.SendBookingConfirmed(&booking)
	}

	return &booking, nil
}

// CancelBooking returns the reserved quantity to the listing and, when the
// deposit already moved on confirmation, transfers it back from the seller
// to the buyer. Completed or already cancelled bookings are rejected, so
// the give-back can never run twice.
func (s *PreHarvestService) CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*models.PreHarvestBooking, error) {
	var booking models.PreHarvestBooking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Listing").First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if booking.BuyerID != actorID && booking.Listing.UserID != actorID {
			return ErrUnauthorized
		}
		if !booking.CanCancel() {
			return ErrBookingNotCancellable
		}

		result := tx.Model(&models.PreHarvestBooking{}).
			Where("id = ? AND status IN ?", booking.ID,
				[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
			UpdateColumn("status", models.BookingStatusCancelled)
		if result.Error != nil {
			return fmt.Errorf("failed to cancel booking: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return ErrBookingNotCancellable
		}
		booking.Status = models.BookingStatusCancelled

		if err := tx.Model(&models.PreHarvestListing{}).
			Where("id = ?", booking.ListingID).
			UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity - ?", booking.Quantity)).Error; err != nil {
			return fmt.Errorf("failed to release reserved quantity: %w", err)
		}

		// DepositPaid is only ever set by a wallet confirmation, so this is
		// exactly the set of bookings whose deposit sits with the seller.
		if booking.DepositPaid {
			ref := utils.GenerateTransactionRef()
			description := fmt.Sprintf("Deposit refund for cancelled booking %s", booking.ID)
			if err := s.wallets.Debit(tx, booking.Listing.UserID, booking.DepositAmount, description, ref); err != nil {
				return err
			}
			if err := s.wallets.Credit(tx, booking.BuyerID, booking.DepositAmount, description, ref); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		go s.notificationService.SendBookingCancelled(&booking)
	}

	return &booking, nil
}

// CompleteBooking marks a confirmed booking as fulfilled after harvest.
// The remaining balance is settled between the parties off-platform.
func (s *PreHarvestService) CompleteBooking(bookingID, sellerID uuid.UUID) (*models.PreHarvestBooking, error) {
	var booking models.PreHarvestBooking
	if err := s.db.Preload("Listing").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if booking.Listing.UserID != sellerID {
		return nil, ErrUnauthorized
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, ErrBookingNotConfirmed
	}

	if err := s.db.Model(&booking).UpdateColumn("status", models.BookingStatusCompleted).Error; err != nil {
		return nil, fmt.Errorf("failed to complete booking: %w", err)
	}
	booking.Status = models.BookingStatusCompleted

	return &booking, nil
}

func (s *PreHarvestService) GetBooking(bookingID, actorID uuid.UUID) (*models.PreHarvestBooking, error) {
	var booking models.PreHarvestBooking
	if err := s.db.Preload("Listing").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if booking.BuyerID != actorID && booking.Listing.UserID != actorID {
		return nil, ErrUnauthorized
	}

	return &booking, nil
}

func (s *PreHarvestService) MyBookings(buyerID uuid.UUID, params utils.PaginationParams) ([]models.PreHarvestBooking, int64, error) {
	query := s.db.Model(&models.PreHarvestBooking{}).
		Where("buyer_id = ?", buyerID).Preload("Listing")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	allowedSortFields := []string{"created_at", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var bookings []models.PreHarvestBooking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	return bookings, total, nil
}

func (s *PreHarvestService) ListingBookings(listingID, sellerID uuid.UUID, params utils.PaginationParams) ([]models.PreHarvestBooking, int64, error) {
	if _, err := s.ownedListing(listingID, sellerID); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.PreHarvestBooking{}).Where("listing_id = ?", listingID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	allowedSortFields := []string{"created_at", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var bookings []models.PreHarvestBooking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	return bookings, total, nil
}

func (s *PreHarvestService) SellerAnalytics(sellerID uuid.UUID) (*ListingAnalytics, error) {
	analytics := &ListingAnalytics{
		ReservedQuantity:  decimal.Zero,
		DepositsCollected: decimal.Zero,
	}

	s.db.Model(&models.PreHarvestListing{}).
		Where("user_id = ?", sellerID).Count(&analytics.TotalListings)

	s.db.Model(&models.PreHarvestListing{}).
		Where("user_id = ? AND status = ?", sellerID, models.ListingStatusAvailable).
		Count(&analytics.ActiveListings)

	s.db.Model(&models.PreHarvestBooking{}).
		Joins("JOIN pre_harvest_listings ON pre_harvest_listings.id = pre_harvest_bookings.listing_id").
		Where("pre_harvest_listings.user_id = ?", sellerID).
		Count(&analytics.TotalBookings)

	s.db.Model(&models.PreHarvestBooking{}).
		Joins("JOIN pre_harvest_listings ON pre_harvest_listings.id = pre_harvest_bookings.listing_id").
		Where("pre_harvest_listings.user_id = ? AND pre_harvest_bookings.status = ?",
			sellerID, models.BookingStatusConfirmed).
		Count(&analytics.ConfirmedBookings)

	row := s.db.Model(&models.PreHarvestListing{}).
		Where("user_id = ?", sellerID).
		Select("COALESCE(SUM(reserved_quantity), 0)").Row()
	if err := row.Scan(&analytics.ReservedQuantity); err != nil {
		return nil, fmt.Errorf("failed to sum reserved quantity: %w", err)
	}

	row = s.db.Model(&models.PreHarvestBooking{}).
		Joins("JOIN pre_harvest_listings ON pre_harvest_listings.id = pre_harvest_bookings.listing_id").
		Where("pre_harvest_listings.user_id = ? AND pre_harvest_bookings.deposit_paid = ? AND pre_harvest_bookings.status IN ?",
			sellerID, true,
			[]models.BookingStatus{models.BookingStatusConfirmed, models.BookingStatusCompleted}).
		Select("COALESCE(SUM(pre_harvest_bookings.deposit_amount), 0)").Row()
	if err := row.Scan(&analytics.DepositsCollected); err != nil {
		return nil, fmt.Errorf("failed to sum deposits: %w", err)
	}

	return analytics, nil
}

// VerifyListingOwner checks that the listing exists and belongs to the
// given user.
func (s *PreHarvestService) VerifyListingOwner(listingID, userID uuid.UUID) error {
	_, err := s.ownedListing(listingID, userID)
	return err
}

func (s *PreHarvestService) ownedListing(listingID, userID uuid.UUID) (*models.PreHarvestListing, error) {
	var listing models.PreHarvestListing
	if err := s.db.First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if listing.UserID != userID {
		return nil, ErrUnauthorized
	}

	return &listing, nil
}
