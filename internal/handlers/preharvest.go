// internal/handlers/preharvest.go
package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrimart/agrimart-backend/internal/i18n"
	"github.com/agrimart/agrimart-backend/internal/services"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

type PreHarvestHandler struct {
	preHarvestService *services.PreHarvestService
	authService       *services.AuthService
	storageService    *services.StorageService
}

func NewPreHarvestHandler(preHarvestService *services.PreHarvestService, authService *services.AuthService, storageService *services.StorageService) *PreHarvestHandler {
	return &PreHarvestHandler{
		preHarvestService: preHarvestService,
		authService:       authService,
		storageService:    storageService,
	}
}

// GET /pre-harvest/listings
func (h *PreHarvestHandler) GetListings(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.ListingSearchParams{
		PaginationParams: params,
		CropType:         c.Query("crop_type"),
		QualityGrade:     c.Query("quality_grade"),
		Location:         c.Query("location"),
	}

	if organicStr := c.Query("organic"); organicStr != "" {
		if organic, err := strconv.ParseBool(organicStr); err == nil {
			searchParams.OrganicOnly = organic
		}
	}

	if maxPriceStr := c.Query("max_price_per_kg"); maxPriceStr != "" {
		if maxPrice, err := decimal.NewFromString(maxPriceStr); err == nil {
			searchParams.MaxPricePerKg = &maxPrice
		}
	}

	if fromStr := c.Query("harvest_from"); fromStr != "" {
		if from, err := time.Parse("2006-01-02", fromStr); err == nil {
			searchParams.HarvestFrom = &from
		}
	}

	if untilStr := c.Query("harvest_until"); untilStr != "" {
		if until, err := time.Parse("2006-01-02", untilStr); err == nil {
			searchParams.HarvestUntil = &until
		}
	}

	listings, total, err := h.preHarvestService.SearchListings(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	result := utils.CreatePaginationResult(listings, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /pre-harvest/listings/:id
func (h *PreHarvestHandler) GetListing(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid listing ID", nil)
		return
	}

	listing, err := h.preHarvestService.GetListing(listingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// POST /pre-harvest/listings
func (h *PreHarvestHandler) CreateListing(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	listing, err := h.preHarvestService.CreateListing(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"listing": listing,
		"message": i18n.T(lang, i18n.KeyListingCreated),
	})
}

// PUT /pre-harvest/listings/:id
func (h *PreHarvestHandler) UpdateListing(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid listing ID", nil)
		return
	}

	var req services.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	listing, err := h.preHarvestService.UpdateListing(listingID, userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"listing": listing,
		"message": i18n.T(lang, i18n.KeyListingUpdated),
	})
}

// DELETE /pre-harvest/listings/:id
func (h *PreHarvestHandler) CancelListing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid listing ID", nil)
		return
	}

	listing, err := h.preHarvestService.CancelListing(listingID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// GET /pre-harvest/my-listings
func (h *PreHarvestHandler) MyListings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	listings, total, err := h.preHarvestService.MyListings(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	result := utils.CreatePaginationResult(listings, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /pre-harvest/listings/:id/bookings
func (h *PreHarvestHandler) CreateBooking(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid listing ID", nil)
		return
	}

	var req services.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	buyer, err := h.authService.GetProfile(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	booking, err := h.preHarvestService.CreateBooking(c.Request.Context(), buyer, listingID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"booking": booking,
		"message": i18n.T(lang, i18n.KeyBookingCreated),
	})
}

// POST /pre-harvest/bookings/:id/confirm
func (h *PreHarvestHandler) ConfirmBooking(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID", nil)
		return
	}

	booking, err := h.preHarvestService.ConfirmBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"booking": booking,
		"message": i18n.T(lang, i18n.KeyBookingConfirmed),
	})
}

// POST /pre-harvest/bookings/:id/cancel
func (h *PreHarvestHandler) CancelBooking(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID", nil)
		return
	}

	booking, err := h.preHarvestService.CancelBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"booking": booking,
		"message": i18n.T(lang, i18n.KeyBookingCancelled),
	})
}

// POST /pre-harvest/bookings/:id/complete
func (h *PreHarvestHandler) CompleteBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID", nil)
		return
	}

	booking, err := h.preHarvestService.CompleteBooking(bookingID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, booking)
}

// GET /pre-harvest/bookings/:id
func (h *PreHarvestHandler) GetBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID", nil)
		return
	}

	booking, err := h.preHarvestService.GetBooking(bookingID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, booking)
}

// GET /pre-harvest/my-bookings
func (h *PreHarvestHandler) MyBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	bookings, total, err := h.preHarvestService.MyBookings(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	result := utils.CreatePaginationResult(bookings, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /pre-harvest/listings/:id/bookings
func (h *PreHarvestHandler) ListingBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid listing ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)
	bookings, total, err := h.preHarvestService.ListingBookings(listingID, userID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(bookings, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /pre-harvest/analytics
func (h *PreHarvestHandler) Analytics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	analytics, err := h.preHarvestService.SellerAnalytics(userID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, analytics)
}

// POST /pre-harvest/listings/:id/images
func (h *PreHarvestHandler) UploadListingImage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid listing ID", nil)
		return
	}

	// Only the owner may attach images.
	if err := h.preHarvestService.VerifyListingOwner(listingID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}
	defer file.Close()

	if err := h.storageService.ValidateImage(file); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}

	options := h.storageService.GetDefaultUploadOptions("listings")
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed))
		return
	}

	utils.CreatedResponse(c, result)
}
