// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the UUID in-process so the models also work on
// databases without gen_random_uuid() (SQLite in tests).
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type BusinessStatus string

const (
	BusinessStatusPending  BusinessStatus = "pending"
	BusinessStatusApproved BusinessStatus = "approved"
	BusinessStatusRejected BusinessStatus = "rejected"
)

type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
	StockStatusBackorder  StockStatus = "backorder"
)

type OrderStatus string

const (
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodCredit       PaymentMethod = "credit"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodInvoice      PaymentMethod = "invoice"
	PaymentMethodWallet       PaymentMethod = "wallet"
)

type ActorType string

const (
	ActorTypeUser  ActorType = "user"
	ActorTypeGuest ActorType = "guest"
)

type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusReserved  ListingStatus = "reserved"
	ListingStatusHarvested ListingStatus = "harvested"
	ListingStatusCancelled ListingStatus = "cancelled"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

type QualityGrade string

const (
	QualityGradePremium  QualityGrade = "premium"
	QualityGradeA        QualityGrade = "grade-a"
	QualityGradeB        QualityGrade = "grade-b"
	QualityGradeStandard QualityGrade = "standard"
)

type WalletEntryType string

const (
	WalletEntryCredit WalletEntryType = "credit"
	WalletEntryDebit  WalletEntryType = "debit"
)
