// internal/models/preharvest.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type PreHarvestListing struct {
	BaseModel
	UserID           uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index:idx_listing_owner_status"`
	Title            string          `json:"title" gorm:"size:255;not null"`
	CropType         string          `json:"crop_type" gorm:"size:100;index"`
	Variety          string          `json:"variety" gorm:"size:255"`
	Location         string          `json:"location" gorm:"size:255"`
	EstimatedYield   decimal.Decimal `json:"estimated_yield" gorm:"type:decimal(10,2);not null"`
	PricePerKg       decimal.Decimal `json:"price_per_kg" gorm:"type:decimal(8,2);not null"`
	HarvestDate      time.Time       `json:"harvest_date" gorm:"not null;index"`
	QualityGrade     QualityGrade    `json:"quality_grade" gorm:"type:varchar(20)"`
	MinimumOrder     int             `json:"minimum_order" gorm:"default:1"`
	OrganicCertified bool            `json:"organic_certified" gorm:"default:false"`
	Description      string          `json:"description" gorm:"type:text"`
	TermsConditions  string          `json:"terms_conditions,omitempty" gorm:"type:text"`
	Status           ListingStatus   `json:"status" gorm:"type:varchar(20);default:'available';index:idx_listing_owner_status"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity" gorm:"type:decimal(10,2);default:0"`
	Images           pq.StringArray  `json:"images" gorm:"type:text[]"`

	// Relationships
	User     User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Bookings []PreHarvestBooking `json:"bookings,omitempty" gorm:"foreignKey:ListingID"`
}

// AvailableQuantity is the portion of the estimated yield not yet committed
// to pending or confirmed bookings. Never negative by construction.
func (l *PreHarvestListing) AvailableQuantity() decimal.Decimal {
	return l.EstimatedYield.Sub(l.ReservedQuantity)
}

// IsOpen reports whether the listing accepts new bookings at t.
func (l *PreHarvestListing) IsOpen(t time.Time) bool {
	return l.Status == ListingStatusAvailable && l.HarvestDate.After(t)
}

type PreHarvestBooking struct {
	BaseModel
	ListingID       uuid.UUID       `json:"listing_id" gorm:"type:uuid;not null;index"`
	BuyerID         uuid.UUID       `json:"buyer_id" gorm:"type:uuid;not null;index:idx_booking_buyer_status"`
	BuyerName       string          `json:"buyer_name" gorm:"size:255;not null"`
	BuyerEmail      string          `json:"buyer_email" gorm:"size:255;not null"`
	BuyerPhone      string          `json:"buyer_phone" gorm:"size:20;not null"`
	Quantity        decimal.Decimal `json:"quantity" gorm:"type:decimal(10,2);not null"`
	TotalPrice      decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2);not null"`
	DepositAmount   decimal.Decimal `json:"deposit_amount" gorm:"type:decimal(10,2)"`
	DepositPaid     bool            `json:"deposit_paid" gorm:"default:false"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);default:'wallet'"`
	TransactionRef  string          `json:"transaction_ref,omitempty" gorm:"size:100"`
	Status          BookingStatus   `json:"status" gorm:"type:varchar(20);default:'pending';index:idx_booking_buyer_status"`
	SpecialRequests string          `json:"special_requests,omitempty" gorm:"type:text"`
	ConfirmedAt     *time.Time      `json:"confirmed_at"`

	// Relationships
	Listing PreHarvestListing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	Buyer   User              `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
}

// CanCancel guards the reserved-quantity give-back: only pending or
// confirmed bookings still hold a reservation, so only those may cancel.
func (b *PreHarvestBooking) CanCancel() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
