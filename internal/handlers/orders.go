// internal/handlers/orders.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrimart/agrimart-backend/internal/i18n"
	"github.com/agrimart/agrimart-backend/internal/models"
	"github.com/agrimart/agrimart-backend/internal/services"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
	authService  *services.AuthService
}

type GuestCheckoutRequest struct {
	services.PlaceOrderRequest
	GuestName  string `json:"guest_name" validate:"required,min=2,max=255"`
	GuestEmail string `json:"guest_email" validate:"required,email"`
	GuestPhone string `json:"guest_phone,omitempty" validate:"omitempty,phone"`
}

func NewOrderHandler(orderService *services.OrderService, authService *services.AuthService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		authService:  authService,
	}
}

// POST /orders
// Retail checkout for signed-in users, guest checkout otherwise.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	if userID, ok := currentUserID(c); ok {
		user, err := h.authService.GetProfile(userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		var req services.PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}

		order, err := h.orderService.PlaceOrder(c.Request.Context(), models.RetailBuyer{User: user}, &req)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		utils.CreatedResponse(c, gin.H{
			"order":   order,
			"message": i18n.T(lang, i18n.KeyOrderPlaced),
		})
		return
	}

	var req GuestCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	buyer := models.GuestBuyer{
		Name:  req.GuestName,
		Email: req.GuestEmail,
		Phone: req.GuestPhone,
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), buyer, &req.PlaceOrderRequest)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"order":   order,
		"message": i18n.T(lang, i18n.KeyOrderPlaced),
	})
}

// GET /orders
func (h *OrderHandler) MyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	searchParams := services.OrderSearchParams{PaginationParams: params}
	if status := c.Query("status"); status != "" {
		orderStatus := models.OrderStatus(status)
		searchParams.Status = &orderStatus
	}

	orders, total, err := h.orderService.ListUserOrders(userID, searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	var userID *uuid.UUID
	if id, ok := currentUserID(c); ok {
		userID = &id
	}

	order, err := h.orderService.GetOrder(orderID, userID, utils.IsAdminFromContext(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// GET /orders/track/:number
// Public order tracking; guest orders require the purchase e-mail.
func (h *OrderHandler) TrackOrder(c *gin.Context) {
	order, err := h.orderService.GetOrderByNumber(c.Param("number"), c.Query("email"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}
