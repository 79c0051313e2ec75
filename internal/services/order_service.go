// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrimart/agrimart-backend/internal/models"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

type OrderService struct {
	db                  *gorm.DB
	catalog             *CatalogService
	payments            PaymentProcessor
	notificationService *NotificationService
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type PlaceOrderRequest struct {
	Items               []OrderItemRequest   `json:"items" validate:"required,min=1,dive"`
	ShippingAddress     string               `json:"shipping_address" validate:"required"`
	BillingAddress      string               `json:"billing_address,omitempty"`
	PaymentMethod       models.PaymentMethod `json:"payment_method" validate:"required,oneof=credit bank_transfer invoice"`
	ShippingMethod      string               `json:"shipping_method,omitempty"`
	PurchaseOrderNumber string               `json:"purchase_order_number,omitempty" validate:"max=100"`
	Notes               string               `json:"notes,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status  models.OrderStatus `json:"status" validate:"required,oneof=processing awaiting_payment completed cancelled"`
	Comment string             `json:"comment,omitempty" validate:"max=500"`
}

type OrderSearchParams struct {
	utils.PaginationParams
	Status *models.OrderStatus `json:"status,omitempty"`
}

func NewOrderService(db *gorm.DB, catalog *CatalogService, payments PaymentProcessor, notificationService *NotificationService) *OrderService {
	return &OrderService{
		db:                  db,
		catalog:             catalog,
		payments:            payments,
		notificationService: notificationService,
	}
}

// PlaceOrder runs the whole checkout in one database transaction: price
// resolution, order assembly, the credit guard for invoice orders, and
// stock-decrementing persistence. Any failure rolls the whole order back.
func (s *OrderService) PlaceOrder(ctx context.Context, buyer models.BuyerContext, req *PlaceOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.checkPaymentMethod(buyer, req.PaymentMethod); err != nil {
		return nil, err
	}

	// Business buyers order against a purchase order; retail and guest
	// checkouts have none.
	if _, ok := buyer.(models.B2BBuyer); ok && req.PurchaseOrderNumber == "" {
		return nil, ErrPurchaseOrderRequired
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(req.Items))

		for _, itemReq := range req.Items {
			product, err := s.loadProductForOrder(tx, buyer, itemReq.ProductID)
			if err != nil {
				return err
			}

			unitPrice, err := s.catalog.ResolveUnitPrice(tx, buyer, product, itemReq.Quantity, now)
			if err != nil {
				return err
			}

			lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(itemReq.Quantity)))
			total = total.Add(lineTotal)

			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  itemReq.Quantity,
				UnitPrice: unitPrice,
				Total:     lineTotal,
			})
		}

		if req.PaymentMethod == models.PaymentMethodInvoice {
			if err := s.checkCreditLimit(tx, buyer, total); err != nil {
				return err
			}
		}

		order = s.buildOrder(buyer, req, total)
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		order.Items = items

		for _, item := range items {
			if err := s.decrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		history := &models.OrderStatusHistory{
			OrderID:       order.ID,
			Status:        order.Status,
			Comment:       "Order created",
			UserID:        orderActorID(buyer),
			CreatedByType: orderActorType(buyer),
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}
		order.StatusHistory = []models.OrderStatusHistory{*history}

		// Card payments run inside the transaction on purpose: a gateway
		// failure rolls back the order, its items and the stock decrement.
		if req.PaymentMethod == models.PaymentMethodCredit && s.payments != nil {
			intent, err := s.payments.CreatePaymentIntent(order.Total, map[string]string{
				"order_id":     order.ID.String(),
				"order_number": order.OrderNumber,
			})
			if err != nil {
				return fmt.Errorf("payment processing failed: %w", err)
			}
			if err := tx.Model(order).UpdateColumn("payment_reference", intent.PaymentID).Error; err != nil {
				return fmt.Errorf("failed to store payment reference: %w", err)
			}
			order.PaymentReference = intent.PaymentID
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		go s.notificationService.SendOrderConfirmation(order, buyerEmail(buyer))
	}

	return order, nil
}

func (s *OrderService) checkPaymentMethod(buyer models.BuyerContext, method models.PaymentMethod) error {
	if method != models.PaymentMethodInvoice {
		return nil
	}

	b2b, ok := buyer.(models.B2BBuyer)
	if !ok {
		return ErrInvalidPaymentMethod
	}
	if !b2b.Business.IsApproved() {
		return ErrBusinessNotApproved
	}
	return nil
}

func (s *OrderService) loadProductForOrder(tx *gorm.DB, buyer models.BuyerContext, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := tx.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !product.IsActive {
		return nil, ErrProductUnavailable
	}

	if _, isB2B := buyer.(models.B2BBuyer); isB2B && !product.IsB2BAvailable {
		return nil, ErrProductUnavailable
	}

	return &product, nil
}

// checkCreditLimit rejects the order when the business's unpaid invoice
// exposure plus this order would exceed its credit limit. A nil limit
// means unlimited credit.
func (s *OrderService) checkCreditLimit(tx *gorm.DB, buyer models.BuyerContext, total decimal.Decimal) error {
	b2b, ok := buyer.(models.B2BBuyer)
	if !ok {
		return ErrInvalidPaymentMethod
	}

	if b2b.Business.CreditLimit == nil {
		return nil
	}

	var outstanding decimal.Decimal
	row := tx.Model(&models.Order{}).
		Where("business_id = ? AND status = ?", b2b.Business.ID, models.OrderStatusAwaitingPayment).
		Select("COALESCE(SUM(total), 0)").Row()
	if err := row.Scan(&outstanding); err != nil {
		return fmt.Errorf("failed to sum outstanding invoices: %w", err)
	}

	if outstanding.Add(total).GreaterThan(*b2b.Business.CreditLimit) {
		return ErrCreditLimitExceeded
	}

	return nil
}

// decrementStock subtracts atomically; the WHERE clause makes overselling
// under concurrency impossible without a row lock.
func (s *OrderService) decrementStock(tx *gorm.DB, productID uuid.UUID, quantity int) error {
	result := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return ErrInsufficientStock
	}

	var product models.Product
	if err := tx.First(&product, productID).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	newStatus := product.DeriveStockStatus(product.Stock)
	if newStatus != product.StockStatus {
		if err := tx.Model(&product).UpdateColumn("stock_status", newStatus).Error; err != nil {
			return fmt.Errorf("failed to update stock status: %w", err)
		}
	}

	return nil
}

func (s *OrderService) buildOrder(buyer models.BuyerContext, req *PlaceOrderRequest, total decimal.Decimal) *models.Order {
	order := &models.Order{
		OrderNumber:         utils.GenerateOrderNumber(),
		Total:               total,
		Status:              models.OrderStatusProcessing,
		ShippingAddress:     req.ShippingAddress,
		BillingAddress:      req.BillingAddress,
		PaymentMethod:       req.PaymentMethod,
		ShippingMethod:      req.ShippingMethod,
		PurchaseOrderNumber: req.PurchaseOrderNumber,
		PaymentTerms:        "immediate",
		Notes:               req.Notes,
	}

	if order.BillingAddress == "" {
		order.BillingAddress = order.ShippingAddress
	}

	switch b := buyer.(type) {
	case models.GuestBuyer:
		order.IsGuestOrder = true
		order.GuestName = b.Name
		order.GuestEmail = b.Email
		order.GuestPhone = b.Phone
	case models.RetailBuyer:
		order.UserID = &b.User.ID
	case models.B2BBuyer:
		order.UserID = &b.User.ID
		order.BusinessID = &b.Business.ID
		if req.PaymentMethod == models.PaymentMethodInvoice {
			order.Status = models.OrderStatusAwaitingPayment
			order.PaymentTerms = b.Business.PaymentTerms
		}
	}

	return order
}

func (s *OrderService) GetOrder(orderID uuid.UUID, userID *uuid.UUID, isAdmin bool) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Preload("Items.Product").Preload("StatusHistory").
		Preload("Business").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !isAdmin {
		if userID == nil || order.UserID == nil || *order.UserID != *userID {
			return nil, ErrUnauthorized
		}
	}

	return &order, nil
}

// GetOrderByNumber looks an order up by its public reference. Guest
// lookups must also present the e-mail the order was placed with.
func (s *OrderService) GetOrderByNumber(orderNumber, guestEmail string) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Preload("Items.Product").Preload("StatusHistory").
		Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.IsGuestOrder && order.GuestEmail != guestEmail {
		return nil, ErrOrderNotFound
	}

	return &order, nil
}

// GetBusinessOrder fetches one of a business's orders with items and status
// history. Any member of the business may read it, not just the user who
// placed it.
func (s *OrderService) GetBusinessOrder(orderID, businessID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Preload("Items.Product").Preload("StatusHistory").
		Where("id = ? AND business_id = ?", orderID, businessID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &order, nil
}

func (s *OrderService) ListUserOrders(userID uuid.UUID, params OrderSearchParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("user_id = ?", userID).Preload("Items")
	return s.listOrders(query, params)
}

func (s *OrderService) ListBusinessOrders(businessID uuid.UUID, params OrderSearchParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("business_id = ?", businessID).Preload("Items")
	return s.listOrders(query, params)
}

func (s *OrderService) ListAllOrders(params OrderSearchParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Preload("Items")
	return s.listOrders(query, params)
}

func (s *OrderService) listOrders(query *gorm.DB, params OrderSearchParams) ([]models.Order, int64, error) {
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "total", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// UpdateOrderStatus is an admin operation. Every change appends a history
// row; the log is never rewritten.
func (s *OrderService) UpdateOrderStatus(orderID, adminID uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if order.Status == req.Status {
			return nil
		}

		// Cancelling an order returns its stock.
		if req.Status == models.OrderStatusCancelled {
			var items []models.OrderItem
			if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
				return fmt.Errorf("failed to fetch order items: %w", err)
			}
			for _, item := range items {
				if err := tx.Model(&models.Product{}).
					Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
					return fmt.Errorf("failed to restock product: %w", err)
				}
			}
		}

		order.Status = req.Status
		if err := tx.Model(&order).UpdateColumn("status", req.Status).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		history := &models.OrderStatusHistory{
			OrderID:       order.ID,
			Status:        req.Status,
			Comment:       req.Comment,
			UserID:        &adminID,
			CreatedByType: models.ActorTypeUser,
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Items").Preload("StatusHistory").First(&order, order.ID)
	return &order, nil
}

func orderActorID(buyer models.BuyerContext) *uuid.UUID {
	switch b := buyer.(type) {
	case models.RetailBuyer:
		return &b.User.ID
	case models.B2BBuyer:
		return &b.User.ID
	default:
		return nil
	}
}

func orderActorType(buyer models.BuyerContext) models.ActorType {
	if _, ok := buyer.(models.GuestBuyer); ok {
		return models.ActorTypeGuest
	}
	return models.ActorTypeUser
}

func buyerEmail(buyer models.BuyerContext) string {
	switch b := buyer.(type) {
	case models.GuestBuyer:
		return b.Email
	case models.RetailBuyer:
		return b.User.Email
	case models.B2BBuyer:
		return b.User.Email
	default:
		return ""
	}
}
