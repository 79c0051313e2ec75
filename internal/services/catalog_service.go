// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrimart/agrimart-backend/internal/models"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

type CatalogService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	SKU               string           `json:"sku" validate:"required,sku"`
	Name              string           `json:"name" validate:"required,min=2,max=255"`
	Description       string           `json:"description,omitempty"`
	Category          string           `json:"category" validate:"required"`
	Price             decimal.Decimal  `json:"price" validate:"required,gt=0"`
	B2BPrice          *decimal.Decimal `json:"b2b_price,omitempty"`
	Stock             int              `json:"stock" validate:"gte=0"`
	LowStockThreshold int              `json:"low_stock_threshold,omitempty" validate:"gte=0"`
	IsB2BAvailable    bool             `json:"is_b2b_available"`
	B2BMinQuantity    int              `json:"b2b_min_quantity,omitempty" validate:"gte=0"`
	Images            []string         `json:"images,omitempty"`
}

type UpdateProductRequest struct {
	Name              *string          `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description       *string          `json:"description,omitempty"`
	Category          *string          `json:"category,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	B2BPrice          *decimal.Decimal `json:"b2b_price,omitempty"`
	Stock             *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty" validate:"omitempty,gte=0"`
	IsB2BAvailable    *bool            `json:"is_b2b_available,omitempty"`
	B2BMinQuantity    *int             `json:"b2b_min_quantity,omitempty" validate:"omitempty,gte=0"`
	IsActive          *bool            `json:"is_active,omitempty"`
	Images            []string         `json:"images,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	Query       string           `json:"q,omitempty"`
	Category    string           `json:"category,omitempty"`
	MinPrice    *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice    *decimal.Decimal `json:"max_price,omitempty"`
	InStockOnly bool             `json:"in_stock_only,omitempty"`
}

// B2BCatalogEntry is a product annotated with the price the calling
// business would actually pay.
type B2BCatalogEntry struct {
	Product     models.Product  `json:"product"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	MinQuantity int             `json:"min_quantity"`
	HasContract bool            `json:"has_contract_price"`
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product := &models.Product{
		SKU:               strings.ToUpper(req.SKU),
		Name:              req.Name,
		Slug:              slugify(req.Name),
		Description:       req.Description,
		Category:          req.Category,
		Price:             req.Price,
		B2BPrice:          req.B2BPrice,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		IsB2BAvailable:    req.IsB2BAvailable,
		B2BMinQuantity:    req.B2BMinQuantity,
		IsActive:          true,
		Images:            pq.StringArray(req.Images),
	}
	product.StockStatus = product.DeriveStockStatus(product.Stock)

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *CatalogService) UpdateProduct(productID uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Name != nil {
		product.Name = *req.Name
		product.Slug = slugify(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.B2BPrice != nil {
		product.B2BPrice = req.B2BPrice
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
		product.StockStatus = product.DeriveStockStatus(*req.Stock)
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.IsB2BAvailable != nil {
		product.IsB2BAvailable = *req.IsB2BAvailable
	}
	if req.B2BMinQuantity != nil {
		product.B2BMinQuantity = *req.B2BMinQuantity
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.Images != nil {
		product.Images = pq.StringArray(req.Images)
	}

	if err := s.db.Save(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &product, nil
}

// DeleteProduct soft-deletes so order items keep a resolvable product
// reference.
func (s *CatalogService) DeleteProduct(productID uuid.UUID) error {
	result := s.db.Delete(&models.Product{}, productID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *CatalogService) GetProduct(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *CatalogService) GetProductBySlug(slug string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Where("slug = ? AND is_active = ?", slug, true).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *CatalogService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Where("is_active = ?", true)

	if params.Query != "" {
		like := "%" + strings.ToLower(params.Query) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.MinPrice != nil {
		query = query.Where("price >= ?", params.MinPrice)
	}

	if params.MaxPrice != nil {
		query = query.Where("price <= ?", params.MaxPrice)
	}

	if params.InStockOnly {
		query = query.Where("stock_status = ?", models.StockStatusInStock)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "price", "name", "stock"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// B2BCatalog lists B2B-available products annotated with the effective
// unit price for the given business at the time of the call.
func (s *CatalogService) B2BCatalog(businessID uuid.UUID, params ProductSearchParams) ([]B2BCatalogEntry, int64, error) {
	query := s.db.Model(&models.Product{}).
		Where("is_active = ? AND is_b2b_available = ?", true, true)

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "price", "name"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	now := time.Now()
	entries := make([]B2BCatalogEntry, 0, len(products))
	for _, product := range products {
		entry := B2BCatalogEntry{Product: product, MinQuantity: product.B2BMinQuantity}

		pricing, err := s.contractPricing(s.db, businessID, product.ID, now)
		if err != nil {
			return nil, 0, err
		}

		switch {
		case pricing != nil:
			entry.UnitPrice = pricing.Price
			entry.MinQuantity = pricing.MinQuantity
			entry.HasContract = true
		case product.B2BPrice != nil:
			entry.UnitPrice = *product.B2BPrice
		default:
			entry.UnitPrice = product.Price
		}

		entries = append(entries, entry)
	}

	return entries, total, nil
}

// ResolveUnitPrice returns the price a single unit costs for the given
// buyer. Resolution order for business buyers: contract pricing, then the
// product's wholesale price, then the retail price. Minimum quantities on
// the matched tier are enforced, not skipped over.
func (s *CatalogService) ResolveUnitPrice(tx *gorm.DB, buyer models.BuyerContext, product *models.Product, quantity int, at time.Time) (decimal.Decimal, error) {
	b2b, isB2B := buyer.(models.B2BBuyer)
	if !isB2B {
		return product.Price, nil
	}

	pricing, err := s.contractPricing(tx, b2b.Business.ID, product.ID, at)
	if err != nil {
		return decimal.Zero, err
	}

	if pricing != nil {
		if quantity < pricing.MinQuantity {
			return decimal.Zero, ErrBelowMinimumQuantity
		}
		return pricing.Price, nil
	}

	if product.IsB2BAvailable && product.B2BPrice != nil {
		if quantity < product.B2BMinQuantity {
			return decimal.Zero, ErrBelowMinimumQuantity
		}
		return *product.B2BPrice, nil
	}

	return product.Price, nil
}

func (s *CatalogService) contractPricing(tx *gorm.DB, businessID, productID uuid.UUID, at time.Time) (*models.BusinessProductPricing, error) {
	var pricing models.BusinessProductPricing
	err := tx.Where("business_id = ? AND product_id = ?", businessID, productID).
		First(&pricing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !pricing.EffectiveAt(at) {
		return nil, nil
	}

	return &pricing, nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
