// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrimart/agrimart-backend/internal/models"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

func TestRegisterCreatesUserAndWallet(t *testing.T) {
	db := newTestDB(t)
	utils.SetJWTConfig("test-secret", 24)
	service := NewAuthService(db, nil)

	resp, err := service.Register(&RegisterRequest{
		Name:     "Farmer Fran",
		Email:    "fran@example.com",
		Password: "orchard42",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", resp.User.ID).First(&wallet).Error)
	assert.True(t, wallet.CashBalance.IsZero())

	_, err = service.Register(&RegisterRequest{
		Name:     "Fran Again",
		Email:    "fran@example.com",
		Password: "orchard42",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginChecksPassword(t *testing.T) {
	db := newTestDB(t)
	utils.SetJWTConfig("test-secret", 24)
	service := NewAuthService(db, nil)

	_, err := service.Register(&RegisterRequest{
		Name:     "Farmer Fran",
		Email:    "fran@example.com",
		Password: "orchard42",
	})
	require.NoError(t, err)

	resp, err := service.Login(&LoginRequest{Email: "fran@example.com", Password: "orchard42"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotNil(t, resp.User.LastLoginAt)

	_, err = service.Login(&LoginRequest{Email: "fran@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(&LoginRequest{Email: "nobody@example.com", Password: "orchard42"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
