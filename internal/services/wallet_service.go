// internal/services/wallet_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrimart/agrimart-backend/internal/models"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

type WalletService struct {
	db *gorm.DB
}

type AddFundsRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required,gt=0"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=card bank_transfer"`
}

type WithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Destination string          `json:"destination" validate:"required"`
}

type TransferRequest struct {
	RecipientEmail string          `json:"recipient_email" validate:"required,email"`
	Amount         decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Description    string          `json:"description,omitempty" validate:"max=255"`
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// GetOrCreateWallet returns the user's wallet, creating a zero-balance
// one on first access.
func (s *WalletService) GetOrCreateWallet(userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	wallet = models.Wallet{
		UserID:         userID,
		CashBalance:    decimal.Zero,
		RewardsBalance: decimal.Zero,
	}
	if err := s.db.Create(&wallet).Error; err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	return &wallet, nil
}

func (s *WalletService) AddFunds(userID uuid.UUID, req *AddFundsRequest) (*models.Wallet, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.GetOrCreateWallet(userID); err != nil {
		return nil, err
	}

	ref := utils.GenerateTransactionRef()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.Credit(tx, userID, req.Amount, "Wallet top-up via "+req.PaymentMethod, ref)
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrCreateWallet(userID)
}

func (s *WalletService) Withdraw(userID uuid.UUID, req *WithdrawRequest) (*models.Wallet, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	ref := utils.GenerateTransactionRef()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.Debit(tx, userID, req.Amount, "Withdrawal to "+req.Destination, ref)
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrCreateWallet(userID)
}

// Transfer moves funds between two user wallets atomically. The debit and
// credit legs share one transaction reference.
func (s *WalletService) Transfer(senderID uuid.UUID, req *TransferRequest) (*models.Wallet, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var recipient models.User
	if err := s.db.Where("email = ?", req.RecipientEmail).First(&recipient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if recipient.ID == senderID {
		return nil, ErrSelfTransfer
	}

	if _, err := s.GetOrCreateWallet(recipient.ID); err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = "Wallet transfer"
	}

	ref := utils.GenerateTransactionRef()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.Debit(tx, senderID, req.Amount, description, ref); err != nil {
			return err
		}
		return s.Credit(tx, recipient.ID, req.Amount, description, ref)
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrCreateWallet(senderID)
}

func (s *WalletService) GetTransactions(userID uuid.UUID, params utils.PaginationParams) ([]models.WalletTransaction, int64, error) {
	wallet, err := s.GetOrCreateWallet(userID)
	if err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.WalletTransaction{}).Where("wallet_id = ?", wallet.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var transactions []models.WalletTransaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	return transactions, total, nil
}

// Credit adds to the cash balance and writes a ledger row. It runs inside
// the caller's transaction.
func (s *WalletService) Credit(tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, description, reference string) error {
	var wallet models.Wallet
	if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWalletNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := tx.Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		UpdateColumn("cash_balance", gorm.Expr("cash_balance + ?", amount)).Error; err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}

	entry := &models.WalletTransaction{
		WalletID:    wallet.ID,
		Amount:      amount,
		Type:        models.WalletEntryCredit,
		Description: description,
		Reference:   reference,
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record wallet transaction: %w", err)
	}

	return nil
}

// Debit subtracts from the cash balance and writes a ledger row. The
// balance check and the subtraction are one guarded statement, so two
// concurrent debits cannot both pass on the same funds.
func (s *WalletService) Debit(tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, description, reference string) error {
	var wallet models.Wallet
	if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWalletNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	result := tx.Model(&models.Wallet{}).
		Where("id = ? AND cash_balance >= ?", wallet.ID, amount).
		UpdateColumn("cash_balance", gorm.Expr("cash_balance - ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to debit wallet: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return ErrInsufficientWalletBalance
	}

	entry := &models.WalletTransaction{
		WalletID:    wallet.ID,
		Amount:      amount,
		Type:        models.WalletEntryDebit,
		Description: description,
		Reference:   reference,
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record wallet transaction: %w", err)
	}

	return nil
}
