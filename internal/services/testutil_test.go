// internal/services/testutil_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agrimart/agrimart-backend/internal/database"
	"github.com/agrimart/agrimart-backend/internal/models"
)

// newTestDB opens a private in-memory SQLite database and migrates the
// full schema into it. The unique DSN keeps parallel tests isolated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	user := &models.User{
		Name:  name,
		Email: email,
		Phone: "+1 555 0100",
	}
	if err := user.SetPassword("TestPass123!"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

func createTestWallet(t *testing.T, db *gorm.DB, userID uuid.UUID, balance decimal.Decimal) *models.Wallet {
	t.Helper()

	wallet := &models.Wallet{
		UserID:         userID,
		CashBalance:    balance,
		RewardsBalance: decimal.Zero,
	}
	if err := db.Create(wallet).Error; err != nil {
		t.Fatalf("failed to create wallet: %v", err)
	}

	return wallet
}

func createTestBusiness(t *testing.T, db *gorm.DB, name string, status models.BusinessStatus, creditLimit *decimal.Decimal) *models.Business {
	t.Helper()

	business := &models.Business{
		CompanyName:  name,
		TaxID:        fmt.Sprintf("TAX-%s", uuid.NewString()[:8]),
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Status:       status,
		CreditLimit:  creditLimit,
		PaymentTerms: "net_30",
	}
	if err := db.Create(business).Error; err != nil {
		t.Fatalf("failed to create business: %v", err)
	}

	return business
}

func createTestProduct(t *testing.T, db *gorm.DB, sku string, price decimal.Decimal, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		SKU:               sku,
		Name:              "Product " + sku,
		Slug:              "product-" + sku,
		Category:          "seeds",
		Price:             price,
		Stock:             stock,
		StockStatus:       models.StockStatusInStock,
		LowStockThreshold: 5,
		IsActive:          true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	return product
}

func createTestListing(t *testing.T, db *gorm.DB, sellerID uuid.UUID, yield, pricePerKg decimal.Decimal, minimumOrder int) *models.PreHarvestListing {
	t.Helper()

	listing := &models.PreHarvestListing{
		UserID:           sellerID,
		Title:            "Valencia Oranges",
		CropType:         "orange",
		Location:         "Valencia",
		EstimatedYield:   yield,
		PricePerKg:       pricePerKg,
		HarvestDate:      time.Now().AddDate(0, 2, 0),
		QualityGrade:     models.QualityGradeA,
		MinimumOrder:     minimumOrder,
		Status:           models.ListingStatusAvailable,
		ReservedQuantity: decimal.Zero,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("failed to create listing: %v", err)
	}

	return listing
}

// fakePaymentProcessor records payment intents instead of calling Stripe.
type fakePaymentProcessor struct {
	intents []decimal.Decimal
	err     error
}

func (f *fakePaymentProcessor) CreatePaymentIntent(amount decimal.Decimal, metadata map[string]string) (*PaymentIntentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.intents = append(f.intents, amount)
	return &PaymentIntentResponse{
		ClientSecret: "cs_test_secret",
		PaymentID:    fmt.Sprintf("pi_test_%d", len(f.intents)),
		Status:       "requires_payment_method",
	}, nil
}

func (f *fakePaymentProcessor) RefundPayment(paymentID string, amount decimal.Decimal) error {
	return nil
}
