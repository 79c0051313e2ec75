// internal/models/wallet.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Wallet struct {
	BaseModel
	UserID         uuid.UUID       `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	CashBalance    decimal.Decimal `json:"cash_balance" gorm:"type:decimal(12,2);default:0"`
	RewardsBalance decimal.Decimal `json:"rewards_balance" gorm:"type:decimal(12,2);default:0"`

	// Relationships
	User         User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Transactions []WalletTransaction `json:"transactions,omitempty" gorm:"foreignKey:WalletID"`
}

func (w *Wallet) AvailableBalance() decimal.Decimal {
	return w.CashBalance.Add(w.RewardsBalance)
}

// WalletTransaction is the append-only ledger; one row per balance mutation.
type WalletTransaction struct {
	BaseModel
	WalletID    uuid.UUID       `json:"wallet_id" gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Type        WalletEntryType `json:"type" gorm:"type:varchar(10);not null"`
	Description string          `json:"description" gorm:"size:255"`
	Reference   string          `json:"reference,omitempty" gorm:"size:100;index"`
}
