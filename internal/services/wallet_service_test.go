// internal/services/wallet_service_test.go
package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrimart/agrimart-backend/internal/models"
)

func TestWalletTransfer(t *testing.T) {
	db := newTestDB(t)
	wallets := NewWalletService(db)

	sender := createTestUser(t, db, "Sender Sam", "sam@example.com")
	createTestWallet(t, db, sender.ID, decimal.NewFromInt(200))
	recipient := createTestUser(t, db, "Recipient Rae", "rae@example.com")
	createTestWallet(t, db, recipient.ID, decimal.Zero)

	wallet, err := wallets.Transfer(sender.ID, &TransferRequest{
		RecipientEmail: "rae@example.com",
		Amount:         decimal.NewFromFloat(75.50),
	})
	require.NoError(t, err)
	assert.True(t, wallet.CashBalance.Equal(decimal.NewFromFloat(124.50)))

	recipientWallet, err := wallets.GetOrCreateWallet(recipient.ID)
	require.NoError(t, err)
	assert.True(t, recipientWallet.CashBalance.Equal(decimal.NewFromFloat(75.50)))

	// Both ledger legs share one reference.
	var entries []models.WalletTransaction
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].Reference, entries[1].Reference)
}

func TestWalletTransferToSelf(t *testing.T) {
	db := newTestDB(t)
	wallets := NewWalletService(db)

	sender := createTestUser(t, db, "Sender Sam", "sam@example.com")
	createTestWallet(t, db, sender.ID, decimal.NewFromInt(200))

	_, err := wallets.Transfer(sender.ID, &TransferRequest{
		RecipientEmail: "sam@example.com",
		Amount:         decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, ErrSelfTransfer)
}

func TestWalletTransferInsufficientFunds(t *testing.T) {
	db := newTestDB(t)
	wallets := NewWalletService(db)

	sender := createTestUser(t, db, "Sender Sam", "sam@example.com")
	createTestWallet(t, db, sender.ID, decimal.NewFromInt(5))
	recipient := createTestUser(t, db, "Recipient Rae", "rae@example.com")
	createTestWallet(t, db, recipient.ID, decimal.Zero)

	_, err := wallets.Transfer(sender.ID, &TransferRequest{
		RecipientEmail: "rae@example.com",
		Amount:         decimal.NewFromInt(50),
	})
	assert.ErrorIs(t, err, ErrInsufficientWalletBalance)

	// Neither leg may survive a failed transfer.
	recipientWallet, err := wallets.GetOrCreateWallet(recipient.ID)
	require.NoError(t, err)
	assert.True(t, recipientWallet.CashBalance.IsZero())

	var count int64
	db.Model(&models.WalletTransaction{}).Count(&count)
	assert.Zero(t, count)
}

func TestWalletWithdrawAndTopUp(t *testing.T) {
	db := newTestDB(t)
	wallets := NewWalletService(db)

	user := createTestUser(t, db, "User Uma", "uma@example.com")

	wallet, err := wallets.AddFunds(user.ID, &AddFundsRequest{
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.True(t, wallet.CashBalance.Equal(decimal.NewFromInt(100)))

	wallet, err = wallets.Withdraw(user.ID, &WithdrawRequest{
		Amount:      decimal.NewFromInt(40),
		Destination: "ES91 2100 0418 4502 0005 1332",
	})
	require.NoError(t, err)
	assert.True(t, wallet.CashBalance.Equal(decimal.NewFromInt(60)))
}
