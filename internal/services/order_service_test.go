// internal/services/order_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/agrimart/agrimart-backend/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	catalog  *CatalogService
	payments *fakePaymentProcessor
	orders   *OrderService

	retailUser *models.User
	b2bUser    *models.User
	business   *models.Business
	product    *models.Product
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.catalog = NewCatalogService(suite.db)
	suite.payments = &fakePaymentProcessor{}
	suite.orders = NewOrderService(suite.db, suite.catalog, suite.payments, nil)

	suite.retailUser = createTestUser(suite.T(), suite.db, "Retail Rita", "rita@example.com")

	limit := decimal.NewFromInt(1000)
	suite.business = createTestBusiness(suite.T(), suite.db, "Fresh Foods Ltd", models.BusinessStatusApproved, &limit)
	suite.b2bUser = createTestUser(suite.T(), suite.db, "Buyer Bob", "bob@example.com")
	suite.b2bUser.BusinessID = &suite.business.ID
	suite.Require().NoError(suite.db.Save(suite.b2bUser).Error)

	suite.product = createTestProduct(suite.T(), suite.db, "SEED-100", decimal.NewFromFloat(12.50), 100)
	b2bPrice := decimal.NewFromFloat(9.75)
	suite.product.B2BPrice = &b2bPrice
	suite.product.IsB2BAvailable = true
	suite.product.B2BMinQuantity = 10
	suite.Require().NoError(suite.db.Save(suite.product).Error)
}

func (suite *OrderServiceTestSuite) retailBuyer() models.BuyerContext {
	return models.RetailBuyer{User: suite.retailUser}
}

func (suite *OrderServiceTestSuite) b2bBuyer() models.BuyerContext {
	return models.B2BBuyer{User: suite.b2bUser, Business: suite.business}
}

func (suite *OrderServiceTestSuite) placeOrderRequest(quantity int, method models.PaymentMethod) *PlaceOrderRequest {
	return &PlaceOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: suite.product.ID, Quantity: quantity},
		},
		ShippingAddress: "12 Orchard Lane, Valencia",
		PaymentMethod:   method,
	}
}

// b2bOrderRequest carries the purchase order number that business orders
// must reference.
func (suite *OrderServiceTestSuite) b2bOrderRequest(quantity int, method models.PaymentMethod) *PlaceOrderRequest {
	req := suite.placeOrderRequest(quantity, method)
	req.PurchaseOrderNumber = "PO-2026-0042"
	return req
}

func (suite *OrderServiceTestSuite) TestRetailOrderTotalsAndStock() {
	order, err := suite.orders.PlaceOrder(context.Background(), suite.retailBuyer(), suite.placeOrderRequest(3, models.PaymentMethodBankTransfer))
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.OrderStatusProcessing, order.Status)
	assert.True(suite.T(), order.Total.Equal(decimal.NewFromFloat(37.50)), "expected 3 x 12.50, got %s", order.Total)
	assert.NotEmpty(suite.T(), order.OrderNumber)
	assert.Equal(suite.T(), "immediate", order.PaymentTerms)
	assert.Equal(suite.T(), order.ShippingAddress, order.BillingAddress)

	suite.Require().Len(order.Items, 1)
	assert.True(suite.T(), order.Items[0].UnitPrice.Equal(decimal.NewFromFloat(12.50)))

	var product models.Product
	suite.Require().NoError(suite.db.First(&product, suite.product.ID).Error)
	assert.Equal(suite.T(), 97, product.Stock)

	var history []models.OrderStatusHistory
	suite.Require().NoError(suite.db.Where("order_id = ?", order.ID).Find(&history).Error)
	suite.Require().Len(history, 1)
	assert.Equal(suite.T(), "Order created", history[0].Comment)
	assert.Equal(suite.T(), models.ActorTypeUser, history[0].CreatedByType)
}

func (suite *OrderServiceTestSuite) TestB2BOrderUsesWholesalePrice() {
	order, err := suite.orders.PlaceOrder(context.Background(), suite.b2bBuyer(), suite.b2bOrderRequest(10, models.PaymentMethodBankTransfer))
	suite.Require().NoError(err)

	assert.True(suite.T(), order.Total.Equal(decimal.NewFromFloat(97.50)), "expected 10 x 9.75, got %s", order.Total)
	assert.Equal(suite.T(), models.OrderStatusProcessing, order.Status)
	assert.Equal(suite.T(), "PO-2026-0042", order.PurchaseOrderNumber)
	suite.Require().NotNil(order.BusinessID)
	assert.Equal(suite.T(), suite.business.ID, *order.BusinessID)
}

func (suite *OrderServiceTestSuite) TestB2BOrderRequiresPurchaseOrderNumber() {
	_, err := suite.orders.PlaceOrder(context.Background(), suite.b2bBuyer(), suite.placeOrderRequest(10, models.PaymentMethodBankTransfer))
	assert.ErrorIs(suite.T(), err, ErrPurchaseOrderRequired)

	// Retail checkouts have no purchase order.
	_, err = suite.orders.PlaceOrder(context.Background(), suite.retailBuyer(), suite.placeOrderRequest(1, models.PaymentMethodBankTransfer))
	assert.NoError(suite.T(), err)
}

func (suite *OrderServiceTestSuite) TestB2BOrderContractPriceWins() {
	contract := &models.BusinessProductPricing{
		BusinessID:  suite.business.ID,
		ProductID:   suite.product.ID,
		Price:       decimal.NewFromFloat(8.00),
		MinQuantity: 20,
	}
	suite.Require().NoError(suite.db.Create(contract).Error)

	order, err := suite.orders.PlaceOrder(context.Background(), suite.b2bBuyer(), suite.b2bOrderRequest(20, models.PaymentMethodBankTransfer))
	suite.Require().NoError(err)
	assert.True(suite.T(), order.Total.Equal(decimal.NewFromFloat(160.00)))

	_, err = suite.orders.PlaceOrder(context.Background(), suite.b2bBuyer(), suite.b2bOrderRequest(15, models.PaymentMethodBankTransfer))
	assert.ErrorIs(suite.T(), err, ErrBelowMinimumQuantity)
}

func (suite *OrderServiceTestSuite) TestInvoiceOrderAwaitsPayment() {
	order, err := suite.orders.PlaceOrder(context.Background(), suite.b2bBuyer(), suite.b2bOrderRequest(10, models.PaymentMethodInvoice))
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.OrderStatusAwaitingPayment, order.Status)
	assert.Equal(suite.T(), "net_30", order.PaymentTerms)
}

func (suite *OrderServiceTestSuite) TestCreditLimitBoundary() {
	// Outstanding invoice exposure: 900 of the 1000 limit.
	outstanding := &models.Order{
		OrderNumber:     "ORD-TEST-OUTSTANDING",
		UserID:          &suite.b2bUser.ID,
		BusinessID:      &suite.business.ID,
		Total:           decimal.NewFromInt(900),
		Status:          models.OrderStatusAwaitingPayment,
		ShippingAddress: "12 Orchard Lane",
		BillingAddress:  "12 Orchard Lane",
		PaymentMethod:   models.PaymentMethodInvoice,
		PaymentTerms:    "net_30",
	}
	suite.Require().NoError(suite.db.Create(outstanding).Error)

	// 10 x 9.75 = 97.50 keeps the exposure at 997.50, inside the limit.
	_, err := suite.orders.PlaceOrder(context.Background(), suite.b2bBuyer(), suite.b2bOrderRequest(10, models.PaymentMethodInvoice))
	suite.Require().NoError(err)

	// The next invoice order would push past 1000.
	_, err = suite.orders.PlaceOrder(context.Background(), suite.b2bBuyer(), suite.b2bOrderRequest(10, models.PaymentMethodInvoice))
	assert.ErrorIs(suite.T(), err, ErrCreditLimitExceeded)
}

func (suite *OrderServiceTestSuite) TestInvoiceRequiresApprovedBusiness() {
	guest := models.GuestBuyer{Name: "Gus", Email: "gus@example.com"}
	req := suite.placeOrderRequest(1, models.PaymentMethodInvoice)

	_, err := suite.orders.PlaceOrder(context.Background(), guest, req)
	assert.ErrorIs(suite.T(), err, ErrInvalidPaymentMethod)

	_, err = suite.orders.PlaceOrder(context.Background(), suite.retailBuyer(), req)
	assert.ErrorIs(suite.T(), err, ErrInvalidPaymentMethod)

	pending := createTestBusiness(suite.T(), suite.db, "Pending Co", models.BusinessStatusPending, nil)
	_, err = suite.orders.PlaceOrder(context.Background(), models.B2BBuyer{User: suite.b2bUser, Business: pending}, req)
	assert.ErrorIs(suite.T(), err, ErrBusinessNotApproved)
}

func (suite *OrderServiceTestSuite) TestNilCreditLimitMeansUnlimited() {
	noLimit := createTestBusiness(suite.T(), suite.db, "Trusted Co", models.BusinessStatusApproved, nil)

	order, err := suite.orders.PlaceOrder(context.Background(),
		models.B2BBuyer{User: suite.b2bUser, Business: noLimit},
		suite.b2bOrderRequest(10, models.PaymentMethodInvoice))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.OrderStatusAwaitingPayment, order.Status)
}

func (suite *OrderServiceTestSuite) TestInsufficientStockRollsBackEverything() {
	scarce := createTestProduct(suite.T(), suite.db, "SEED-101", decimal.NewFromFloat(5.00), 3)

	req := &PlaceOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: suite.product.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 5},
		},
		ShippingAddress: "12 Orchard Lane, Valencia",
		PaymentMethod:   models.PaymentMethodBankTransfer,
	}

	_, err := suite.orders.PlaceOrder(context.Background(), suite.retailBuyer(), req)
	suite.Require().ErrorIs(err, ErrInsufficientStock)

	var orderCount, itemCount, historyCount int64
	suite.db.Model(&models.Order{}).Count(&orderCount)
	suite.db.Model(&models.OrderItem{}).Count(&itemCount)
	suite.db.Model(&models.OrderStatusHistory{}).Count(&historyCount)
	assert.Zero(suite.T(), orderCount)
	assert.Zero(suite.T(), itemCount)
	assert.Zero(suite.T(), historyCount)

	// The first item's decrement must have been rolled back too.
	var product models.Product
	suite.Require().NoError(suite.db.First(&product, suite.product.ID).Error)
	assert.Equal(suite.T(), 100, product.Stock)
}

func (suite *OrderServiceTestSuite) TestDepletionFlipsStockStatus() {
	scarce := createTestProduct(suite.T(), suite.db, "SEED-103", decimal.NewFromFloat(5.00), 3)

	req := &PlaceOrderRequest{
		Items:           []OrderItemRequest{{ProductID: scarce.ID, Quantity: 3}},
		ShippingAddress: "12 Orchard Lane, Valencia",
		PaymentMethod:   models.PaymentMethodBankTransfer,
	}
	_, err := suite.orders.PlaceOrder(context.Background(), suite.retailBuyer(), req)
	suite.Require().NoError(err)

	var product models.Product
	suite.Require().NoError(suite.db.First(&product, scarce.ID).Error)
	assert.Equal(suite.T(), 0, product.Stock)
	assert.Equal(suite.T(), models.StockStatusOutOfStock, product.StockStatus)
}

func (suite *OrderServiceTestSuite) TestInactiveProductRejected() {
	suite.Require().NoError(suite.db.Model(suite.product).UpdateColumn("is_active", false).Error)

	_, err := suite.orders.PlaceOrder(context.Background(), suite.retailBuyer(), suite.placeOrderRequest(1, models.PaymentMethodBankTransfer))
	assert.ErrorIs(suite.T(), err, ErrProductUnavailable)
}

func (suite *OrderServiceTestSuite) TestB2BCannotOrderRetailOnlyProduct() {
	retailOnly := createTestProduct(suite.T(), suite.db, "SEED-102", decimal.NewFromFloat(5.00), 50)

	req := &PlaceOrderRequest{
		Items:               []OrderItemRequest{{ProductID: retailOnly.ID, Quantity: 1}},
		ShippingAddress:     "12 Orchard Lane, Valencia",
		PaymentMethod:       models.PaymentMethodBankTransfer,
		PurchaseOrderNumber: "PO-2026-0042",
	}

	_, err := suite.orders.PlaceOrder(context.Background(), suite.b2bBuyer(), req)
	assert.ErrorIs(suite.T(), err, ErrProductUnavailable)
}

func (suite *OrderServiceTestSuite) TestCardOrderRecordsPaymentIntent() {
	order, err := suite.orders.PlaceOrder(context.Background(), suite.retailBuyer(), suite.placeOrderRequest(2, models.PaymentMethodCredit))
	suite.Require().NoError(err)

	suite.Require().Len(suite.payments.intents, 1)
	assert.True(suite.T(), suite.payments.intents[0].Equal(order.Total))
	assert.Equal(suite.T(), "pi_test_1", order.PaymentReference)

	var stored models.Order
	suite.Require().NoError(suite.db.First(&stored, order.ID).Error)
	assert.Equal(suite.T(), "pi_test_1", stored.PaymentReference)
}

func (suite *OrderServiceTestSuite) TestPaymentFailureRollsBackOrder() {
	gatewayDown := errors.New("gateway unreachable")
	suite.payments.err = gatewayDown

	_, err := suite.orders.PlaceOrder(context.Background(), suite.retailBuyer(), suite.placeOrderRequest(2, models.PaymentMethodCredit))
	suite.Require().ErrorIs(err, gatewayDown)

	var orderCount, itemCount, historyCount int64
	suite.db.Model(&models.Order{}).Count(&orderCount)
	suite.db.Model(&models.OrderItem{}).Count(&itemCount)
	suite.db.Model(&models.OrderStatusHistory{}).Count(&historyCount)
	assert.Zero(suite.T(), orderCount)
	assert.Zero(suite.T(), itemCount)
	assert.Zero(suite.T(), historyCount)

	var product models.Product
	suite.Require().NoError(suite.db.First(&product, suite.product.ID).Error)
	assert.Equal(suite.T(), 100, product.Stock)
}

func (suite *OrderServiceTestSuite) TestGuestOrderTracking() {
	guest := models.GuestBuyer{Name: "Gus", Email: "gus@example.com", Phone: "+1 555 0101"}

	order, err := suite.orders.PlaceOrder(context.Background(), guest, suite.placeOrderRequest(1, models.PaymentMethodBankTransfer))
	suite.Require().NoError(err)
	assert.True(suite.T(), order.IsGuestOrder)

	found, err := suite.orders.GetOrderByNumber(order.OrderNumber, "gus@example.com")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), order.ID, found.ID)

	_, err = suite.orders.GetOrderByNumber(order.OrderNumber, "someone-else@example.com")
	assert.ErrorIs(suite.T(), err, ErrOrderNotFound)
}

func (suite *OrderServiceTestSuite) TestCancellingOrderRestocks() {
	order, err := suite.orders.PlaceOrder(context.Background(), suite.retailBuyer(), suite.placeOrderRequest(4, models.PaymentMethodBankTransfer))
	suite.Require().NoError(err)

	admin := createTestUser(suite.T(), suite.db, "Admin Ada", "ada@example.com")
	updated, err := suite.orders.UpdateOrderStatus(order.ID, admin.ID, &UpdateOrderStatusRequest{
		Status:  models.OrderStatusCancelled,
		Comment: "Customer request",
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.OrderStatusCancelled, updated.Status)

	var product models.Product
	suite.Require().NoError(suite.db.First(&product, suite.product.ID).Error)
	assert.Equal(suite.T(), 100, product.Stock)

	assert.Len(suite.T(), updated.StatusHistory, 2)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
