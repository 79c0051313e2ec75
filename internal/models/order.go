// internal/models/order.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is owned in exactly one of three modes: by a business member
// (BusinessID+UserID), by a guest (Guest* fields), or by a plain user
// (UserID alone).
type Order struct {
	BaseModel
	OrderNumber         string          `json:"order_number" gorm:"uniqueIndex;size:50;not null"`
	BusinessID          *uuid.UUID      `json:"business_id" gorm:"type:uuid;index"`
	UserID              *uuid.UUID      `json:"user_id" gorm:"type:uuid;index"`
	IsGuestOrder        bool            `json:"is_guest_order" gorm:"default:false"`
	GuestName           string          `json:"guest_name,omitempty" gorm:"size:255"`
	GuestEmail          string          `json:"guest_email,omitempty" gorm:"size:255"`
	GuestPhone          string          `json:"guest_phone,omitempty" gorm:"size:20"`
	Total               decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Status              OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	ShippingAddress     string          `json:"shipping_address" gorm:"type:text"`
	BillingAddress      string          `json:"billing_address" gorm:"type:text"`
	PaymentMethod       PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	ShippingMethod      string          `json:"shipping_method" gorm:"size:100"`
	PurchaseOrderNumber string          `json:"purchase_order_number,omitempty" gorm:"size:100"`
	PaymentTerms        string          `json:"payment_terms" gorm:"size:50"`
	PaymentReference    string          `json:"payment_reference,omitempty" gorm:"size:100"`
	TrackingNumber      string          `json:"tracking_number,omitempty" gorm:"size:100"`
	Notes               string          `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	Business      *Business            `json:"business,omitempty" gorm:"foreignKey:BusinessID"`
	User          *User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items         []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem rows are immutable once created.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`

	// Relationships
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// OrderStatusHistory is an append-only log; exactly one row is written at
// order creation with comment "Order created".
type OrderStatusHistory struct {
	BaseModel
	OrderID       uuid.UUID   `json:"order_id" gorm:"type:uuid;not null;index"`
	Status        OrderStatus `json:"status" gorm:"type:varchar(20);not null"`
	Comment       string      `json:"comment" gorm:"type:text"`
	UserID        *uuid.UUID  `json:"user_id" gorm:"type:uuid"`
	CreatedByType ActorType   `json:"created_by_type" gorm:"type:varchar(10);default:'user'"`
}
