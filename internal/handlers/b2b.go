// internal/handlers/b2b.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrimart/agrimart-backend/internal/i18n"
	"github.com/agrimart/agrimart-backend/internal/models"
	"github.com/agrimart/agrimart-backend/internal/services"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

type B2BHandler struct {
	businessService *services.BusinessService
	catalogService  *services.CatalogService
	orderService    *services.OrderService
	authService     *services.AuthService
}

func NewB2BHandler(businessService *services.BusinessService, catalogService *services.CatalogService, orderService *services.OrderService, authService *services.AuthService) *B2BHandler {
	return &B2BHandler{
		businessService: businessService,
		catalogService:  catalogService,
		orderService:    orderService,
		authService:     authService,
	}
}

// POST /b2b/register
func (h *B2BHandler) Register(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RegisterBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	business, err := h.businessService.RegisterBusiness(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"business": business,
		"message":  i18n.T(lang, i18n.KeyBusinessRegistered),
	})
}

// GET /b2b/catalog
func (h *B2BHandler) Catalog(c *gin.Context) {
	businessID, ok := currentBusinessID(c)
	if !ok {
		utils.ForbiddenResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	searchParams := services.ProductSearchParams{
		PaginationParams: params,
		Category:         c.Query("category"),
	}

	entries, total, err := h.catalogService.B2BCatalog(businessID, searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	result := utils.CreatePaginationResult(entries, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /b2b/orders
func (h *B2BHandler) PlaceOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	buyer, ok := h.b2bBuyer(c)
	if !ok {
		return
	}

	var req services.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), buyer, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"order":   order,
		"message": i18n.T(lang, i18n.KeyOrderPlaced),
	})
}

// GET /b2b/orders
func (h *B2BHandler) Orders(c *gin.Context) {
	businessID, ok := currentBusinessID(c)
	if !ok {
		utils.ForbiddenResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	searchParams := services.OrderSearchParams{PaginationParams: params}
	if status := c.Query("status"); status != "" {
		orderStatus := models.OrderStatus(status)
		searchParams.Status = &orderStatus
	}

	orders, total, err := h.orderService.ListBusinessOrders(businessID, searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /b2b/orders/:id
func (h *B2BHandler) Order(c *gin.Context) {
	businessID, ok := currentBusinessID(c)
	if !ok {
		utils.ForbiddenResponse(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	order, err := h.orderService.GetBusinessOrder(orderID, businessID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// GET /b2b/profile
func (h *B2BHandler) Profile(c *gin.Context) {
	businessID, ok := currentBusinessID(c)
	if !ok {
		utils.ForbiddenResponse(c, "")
		return
	}

	business, err := h.businessService.GetBusiness(businessID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, business)
}

func (h *B2BHandler) b2bBuyer(c *gin.Context) (models.B2BBuyer, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return models.B2BBuyer{}, false
	}

	user, err := h.authService.GetProfile(userID)
	if err != nil {
		respondServiceError(c, err)
		return models.B2BBuyer{}, false
	}

	if user.Business == nil || !user.Business.IsApproved() {
		utils.ForbiddenResponse(c, "")
		return models.B2BBuyer{}, false
	}

	return models.B2BBuyer{User: user, Business: user.Business}, true
}

func currentBusinessID(c *gin.Context) (uuid.UUID, bool) {
	businessIDStr, exists := utils.GetBusinessIDFromContext(c)
	if !exists {
		return uuid.Nil, false
	}

	businessID, err := uuid.Parse(businessIDStr)
	if err != nil {
		return uuid.Nil, false
	}

	return businessID, true
}
