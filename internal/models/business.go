// internal/models/business.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Business struct {
	BaseModel
	CompanyName  string           `json:"company_name" gorm:"size:255;not null"`
	TaxID        string           `json:"tax_id" gorm:"uniqueIndex;size:100;not null"`
	Address      string           `json:"address" gorm:"type:text"`
	City         string           `json:"city" gorm:"size:100"`
	Country      string           `json:"country" gorm:"size:100"`
	Phone        string           `json:"phone" gorm:"size:20"`
	Email        string           `json:"email" gorm:"uniqueIndex;size:255;not null"`
	ContactName  string           `json:"contact_name" gorm:"size:255"`
	Status       BusinessStatus   `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	CreditLimit  *decimal.Decimal `json:"credit_limit" gorm:"type:decimal(12,2)"`
	PaymentTerms string           `json:"payment_terms" gorm:"size:50;default:'net_30'"`
	DiscountTier string           `json:"discount_tier" gorm:"size:50"`
	Notes        string           `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	Users   []User                   `json:"users,omitempty" gorm:"foreignKey:BusinessID"`
	Orders  []Order                  `json:"orders,omitempty" gorm:"foreignKey:BusinessID"`
	Pricing []BusinessProductPricing `json:"pricing,omitempty" gorm:"foreignKey:BusinessID"`
}

// IsApproved reports whether the business may transact.
func (b *Business) IsApproved() bool {
	return b.Status == BusinessStatusApproved
}

// BusinessProductPricing holds a business-specific price override for one
// product. At most one row exists per (business, product); it applies only
// inside its validity window when one is set.
type BusinessProductPricing struct {
	BaseModel
	BusinessID  uuid.UUID       `json:"business_id" gorm:"type:uuid;not null;uniqueIndex:idx_business_product"`
	ProductID   uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_business_product"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	MinQuantity int             `json:"min_quantity" gorm:"default:1"`
	ValidFrom   *time.Time      `json:"valid_from"`
	ValidUntil  *time.Time      `json:"valid_until"`

	// Relationships
	Business Business `json:"business,omitempty" gorm:"foreignKey:BusinessID"`
	Product  Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// EffectiveAt reports whether the override applies at the given instant.
func (p *BusinessProductPricing) EffectiveAt(t time.Time) bool {
	if p.ValidFrom != nil && t.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && t.After(*p.ValidUntil) {
		return false
	}
	return true
}
