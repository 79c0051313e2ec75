// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrimart/agrimart-backend/internal/i18n"
	"github.com/agrimart/agrimart-backend/internal/models"
	"github.com/agrimart/agrimart-backend/internal/services"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

type AdminHandler struct {
	businessService *services.BusinessService
	orderService    *services.OrderService
}

func NewAdminHandler(businessService *services.BusinessService, orderService *services.OrderService) *AdminHandler {
	return &AdminHandler{
		businessService: businessService,
		orderService:    orderService,
	}
}

// GET /admin/businesses
func (h *AdminHandler) ListBusinesses(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	searchParams := services.BusinessSearchParams{PaginationParams: params}

	if status := c.Query("status"); status != "" {
		businessStatus := models.BusinessStatus(status)
		searchParams.Status = &businessStatus
	}

	businesses, total, err := h.businessService.ListBusinesses(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	result := utils.CreatePaginationResult(businesses, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /admin/businesses/:id/approve
func (h *AdminHandler) ApproveBusiness(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid business ID", nil)
		return
	}

	var req services.ApproveBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	business, err := h.businessService.ApproveBusiness(businessID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"business": business,
		"message":  i18n.T(lang, i18n.KeyBusinessApproved),
	})
}

// POST /admin/businesses/:id/reject
func (h *AdminHandler) RejectBusiness(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid business ID", nil)
		return
	}

	var req services.RejectBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	business, err := h.businessService.RejectBusiness(businessID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"business": business,
		"message":  i18n.T(lang, i18n.KeyBusinessRejected),
	})
}

// PUT /admin/businesses/:id/pricing
func (h *AdminHandler) SetBusinessPricing(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid business ID", nil)
		return
	}

	var req services.SetBusinessPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	pricing, err := h.businessService.SetBusinessPricing(businessID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, pricing)
}

// DELETE /admin/businesses/:id/pricing/:productId
func (h *AdminHandler) RemoveBusinessPricing(c *gin.Context) {
	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid business ID", nil)
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	if err := h.businessService.RemoveBusinessPricing(businessID, productID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// GET /admin/orders
func (h *AdminHandler) ListOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	searchParams := services.OrderSearchParams{PaginationParams: params}

	if status := c.Query("status"); status != "" {
		orderStatus := models.OrderStatus(status)
		searchParams.Status = &orderStatus
	}

	orders, total, err := h.orderService.ListAllOrders(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}

// PUT /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	adminID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	order, err := h.orderService.UpdateOrderStatus(orderID, adminID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"order":   order,
		"message": i18n.T(lang, i18n.KeyOrderStatusUpdated),
	})
}
