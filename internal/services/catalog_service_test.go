// internal/services/catalog_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrimart/agrimart-backend/internal/models"
)

func TestResolveUnitPriceRetailBuyer(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogService(db)

	user := createTestUser(t, db, "Retail Rita", "rita@example.com")
	product := createTestProduct(t, db, "SEED-001", decimal.NewFromFloat(12.50), 100)
	b2bPrice := decimal.NewFromFloat(9.00)
	product.B2BPrice = &b2bPrice
	product.IsB2BAvailable = true
	require.NoError(t, db.Save(product).Error)

	price, err := catalog.ResolveUnitPrice(db, models.RetailBuyer{User: user}, product, 1, time.Now())
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(12.50)), "retail buyers pay the retail price, got %s", price)
}

func TestResolveUnitPriceWholesaleTier(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogService(db)

	user := createTestUser(t, db, "Buyer Bob", "bob@example.com")
	limit := decimal.NewFromInt(10000)
	business := createTestBusiness(t, db, "Fresh Foods Ltd", models.BusinessStatusApproved, &limit)
	buyer := models.B2BBuyer{User: user, Business: business}

	product := createTestProduct(t, db, "SEED-002", decimal.NewFromFloat(12.50), 100)
	b2bPrice := decimal.NewFromFloat(9.75)
	product.B2BPrice = &b2bPrice
	product.IsB2BAvailable = true
	product.B2BMinQuantity = 10
	require.NoError(t, db.Save(product).Error)

	price, err := catalog.ResolveUnitPrice(db, buyer, product, 10, time.Now())
	require.NoError(t, err)
	assert.True(t, price.Equal(b2bPrice), "expected wholesale price, got %s", price)

	_, err = catalog.ResolveUnitPrice(db, buyer, product, 9, time.Now())
	assert.ErrorIs(t, err, ErrBelowMinimumQuantity)
}

func TestResolveUnitPriceContractOverridesWholesale(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogService(db)

	user := createTestUser(t, db, "Buyer Bea", "bea@example.com")
	limit := decimal.NewFromInt(10000)
	business := createTestBusiness(t, db, "Grocer Group", models.BusinessStatusApproved, &limit)
	buyer := models.B2BBuyer{User: user, Business: business}

	product := createTestProduct(t, db, "SEED-003", decimal.NewFromFloat(12.50), 100)
	b2bPrice := decimal.NewFromFloat(9.75)
	product.B2BPrice = &b2bPrice
	product.IsB2BAvailable = true
	product.B2BMinQuantity = 10
	require.NoError(t, db.Save(product).Error)

	contract := &models.BusinessProductPricing{
		BusinessID:  business.ID,
		ProductID:   product.ID,
		Price:       decimal.NewFromFloat(8.20),
		MinQuantity: 25,
	}
	require.NoError(t, db.Create(contract).Error)

	price, err := catalog.ResolveUnitPrice(db, buyer, product, 25, time.Now())
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(8.20)), "expected contract price, got %s", price)

	// The contract's minimum applies to the contract tier; the order does
	// not silently fall through to the wholesale tier.
	_, err = catalog.ResolveUnitPrice(db, buyer, product, 10, time.Now())
	assert.ErrorIs(t, err, ErrBelowMinimumQuantity)
}

func TestResolveUnitPriceExpiredContract(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogService(db)

	user := createTestUser(t, db, "Buyer Ben", "ben@example.com")
	limit := decimal.NewFromInt(10000)
	business := createTestBusiness(t, db, "Harvest Co", models.BusinessStatusApproved, &limit)
	buyer := models.B2BBuyer{User: user, Business: business}

	product := createTestProduct(t, db, "SEED-004", decimal.NewFromFloat(12.50), 100)
	b2bPrice := decimal.NewFromFloat(9.75)
	product.B2BPrice = &b2bPrice
	product.IsB2BAvailable = true
	product.B2BMinQuantity = 1
	require.NoError(t, db.Save(product).Error)

	validFrom := time.Now().AddDate(-1, 0, 0)
	validUntil := time.Now().AddDate(0, -1, 0)
	contract := &models.BusinessProductPricing{
		BusinessID:  business.ID,
		ProductID:   product.ID,
		Price:       decimal.NewFromFloat(8.20),
		MinQuantity: 1,
		ValidFrom:   &validFrom,
		ValidUntil:  &validUntil,
	}
	require.NoError(t, db.Create(contract).Error)

	price, err := catalog.ResolveUnitPrice(db, buyer, product, 5, time.Now())
	require.NoError(t, err)
	assert.True(t, price.Equal(b2bPrice), "expired contract should fall back to wholesale, got %s", price)
}

func TestResolveUnitPriceBusinessWithoutWholesaleTier(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogService(db)

	user := createTestUser(t, db, "Buyer Bo", "bo@example.com")
	limit := decimal.NewFromInt(10000)
	business := createTestBusiness(t, db, "Corner Shop", models.BusinessStatusApproved, &limit)
	buyer := models.B2BBuyer{User: user, Business: business}

	// No contract and no wholesale price: businesses pay retail.
	product := createTestProduct(t, db, "SEED-005", decimal.NewFromFloat(4.99), 100)

	price, err := catalog.ResolveUnitPrice(db, buyer, product, 1, time.Now())
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(4.99)))
}

func TestB2BCatalogAnnotation(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogService(db)

	limit := decimal.NewFromInt(10000)
	business := createTestBusiness(t, db, "Catalog Buyers", models.BusinessStatusApproved, &limit)

	contracted := createTestProduct(t, db, "SEED-010", decimal.NewFromFloat(20.00), 50)
	contracted.IsB2BAvailable = true
	require.NoError(t, db.Save(contracted).Error)

	wholesale := createTestProduct(t, db, "SEED-011", decimal.NewFromFloat(15.00), 50)
	b2bPrice := decimal.NewFromFloat(11.00)
	wholesale.B2BPrice = &b2bPrice
	wholesale.IsB2BAvailable = true
	wholesale.B2BMinQuantity = 12
	require.NoError(t, db.Save(wholesale).Error)

	// Retail-only products never appear in the B2B catalog.
	createTestProduct(t, db, "SEED-012", decimal.NewFromFloat(3.00), 50)

	contract := &models.BusinessProductPricing{
		BusinessID:  business.ID,
		ProductID:   contracted.ID,
		Price:       decimal.NewFromFloat(17.50),
		MinQuantity: 5,
	}
	require.NoError(t, db.Create(contract).Error)

	entries, total, err := catalog.B2BCatalog(business.ID, ProductSearchParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)

	byID := map[string]B2BCatalogEntry{}
	for _, entry := range entries {
		byID[entry.Product.SKU] = entry
	}

	assert.True(t, byID["SEED-010"].HasContract)
	assert.True(t, byID["SEED-010"].UnitPrice.Equal(decimal.NewFromFloat(17.50)))
	assert.Equal(t, 5, byID["SEED-010"].MinQuantity)

	assert.False(t, byID["SEED-011"].HasContract)
	assert.True(t, byID["SEED-011"].UnitPrice.Equal(decimal.NewFromFloat(11.00)))
	assert.Equal(t, 12, byID["SEED-011"].MinQuantity)
}

func TestDeleteProductSoftDeletes(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogService(db)

	product := createTestProduct(t, db, "SEED-009", decimal.NewFromFloat(4.20), 10)
	require.NoError(t, catalog.DeleteProduct(product.ID))

	_, err := catalog.GetProduct(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	// The row survives for order history; only the scoped queries hide it.
	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Product{}).Where("id = ?", product.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	assert.ErrorIs(t, catalog.DeleteProduct(product.ID), ErrProductNotFound)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "organic-tomato-seeds", slugify("Organic Tomato Seeds"))
	assert.Equal(t, "caf-premium", slugify("Café  Premium"))
	assert.Equal(t, "npk-20-20-20", slugify("NPK 20-20-20"))
}
