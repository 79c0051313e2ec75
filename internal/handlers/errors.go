// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrimart/agrimart-backend/internal/i18n"
	"github.com/agrimart/agrimart-backend/internal/services"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

type errorMapping struct {
	status int
	code   string
	key    string
}

var serviceErrorMap = []struct {
	err     error
	mapping errorMapping
}{
	{services.ErrInvalidCredentials, errorMapping{http.StatusUnauthorized, "INVALID_CREDENTIALS", i18n.KeyAuthInvalidCredentials}},
	{services.ErrEmailTaken, errorMapping{http.StatusConflict, "EMAIL_TAKEN", i18n.KeyAuthUserExists}},
	{services.ErrTaxIDTaken, errorMapping{http.StatusConflict, "TAX_ID_TAKEN", i18n.KeyAuthUserExists}},
	{services.ErrUserNotFound, errorMapping{http.StatusNotFound, "NOT_FOUND", i18n.KeyError}},
	{services.ErrBusinessNotFound, errorMapping{http.StatusNotFound, "NOT_FOUND", i18n.KeyBusinessNotFound}},
	{services.ErrBusinessNotApproved, errorMapping{http.StatusForbidden, "BUSINESS_NOT_APPROVED", i18n.KeyBusinessNotApproved}},
	{services.ErrProductNotFound, errorMapping{http.StatusNotFound, "NOT_FOUND", i18n.KeyProductNotFound}},
	{services.ErrProductUnavailable, errorMapping{http.StatusUnprocessableEntity, "PRODUCT_UNAVAILABLE", i18n.KeyProductNotFound}},
	{services.ErrBelowMinimumQuantity, errorMapping{http.StatusUnprocessableEntity, "BELOW_MINIMUM_QUANTITY", i18n.KeyBookingBelowMinimum}},
	{services.ErrOrderNotFound, errorMapping{http.StatusNotFound, "NOT_FOUND", i18n.KeyOrderNotFound}},
	{services.ErrInsufficientStock, errorMapping{http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", i18n.KeyProductOutOfStock}},
	{services.ErrCreditLimitExceeded, errorMapping{http.StatusUnprocessableEntity, "CREDIT_LIMIT_EXCEEDED", i18n.KeyOrderCreditExceeded}},
	{services.ErrInvalidPaymentMethod, errorMapping{http.StatusUnprocessableEntity, "INVALID_PAYMENT_METHOD", i18n.KeyPaymentFailed}},
	{services.ErrEmptyOrder, errorMapping{http.StatusBadRequest, "EMPTY_ORDER", i18n.KeyOrderPlacementFailed}},
	{services.ErrPurchaseOrderRequired, errorMapping{http.StatusUnprocessableEntity, "PURCHASE_ORDER_REQUIRED", i18n.KeyOrderPurchaseOrderRequired}},
	{services.ErrListingNotFound, errorMapping{http.StatusNotFound, "NOT_FOUND", i18n.KeyListingNotFound}},
	{services.ErrListingUnavailable, errorMapping{http.StatusUnprocessableEntity, "LISTING_UNAVAILABLE", i18n.KeyListingUnavailable}},
	{services.ErrListingHasBookings, errorMapping{http.StatusConflict, "LISTING_HAS_BOOKINGS", i18n.KeyListingHasBookings}},
	{services.ErrInsufficientQuantity, errorMapping{http.StatusUnprocessableEntity, "INSUFFICIENT_QUANTITY", i18n.KeyBookingQuantityTooHigh}},
	{services.ErrBelowMinimumOrder, errorMapping{http.StatusUnprocessableEntity, "BELOW_MINIMUM_ORDER", i18n.KeyBookingBelowMinimum}},
	{services.ErrOwnListingBooking, errorMapping{http.StatusUnprocessableEntity, "OWN_LISTING", i18n.KeyListingUnavailable}},
	{services.ErrBookingNotFound, errorMapping{http.StatusNotFound, "NOT_FOUND", i18n.KeyBookingNotFound}},
	{services.ErrBookingNotPending, errorMapping{http.StatusConflict, "BOOKING_NOT_PENDING", i18n.KeyBookingNotCancellable}},
	{services.ErrBookingNotConfirmed, errorMapping{http.StatusConflict, "BOOKING_NOT_CONFIRMED", i18n.KeyBookingNotCancellable}},
	{services.ErrBookingNotCancellable, errorMapping{http.StatusConflict, "BOOKING_NOT_CANCELLABLE", i18n.KeyBookingNotCancellable}},
	{services.ErrProjectNotFound, errorMapping{http.StatusNotFound, "NOT_FOUND", i18n.KeyProjectNotFound}},
	{services.ErrProjectClosed, errorMapping{http.StatusUnprocessableEntity, "PROJECT_CLOSED", i18n.KeyProjectClosed}},
	{services.ErrWalletNotFound, errorMapping{http.StatusNotFound, "NOT_FOUND", i18n.KeyWalletNotFound}},
	{services.ErrInsufficientWalletBalance, errorMapping{http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", i18n.KeyWalletInsufficientBalance}},
	{services.ErrSelfTransfer, errorMapping{http.StatusUnprocessableEntity, "SELF_TRANSFER", i18n.KeyValidationInvalid}},
	{services.ErrUnauthorized, errorMapping{http.StatusForbidden, "FORBIDDEN", i18n.KeyAdminAccessDenied}},
}

// respondServiceError translates service-layer sentinel errors into the
// HTTP envelope. Unknown errors become 500s without leaking internals.
func respondServiceError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	for _, entry := range serviceErrorMap {
		if errors.Is(err, entry.err) {
			utils.ErrorResponse(c, entry.mapping.status, entry.mapping.code, i18n.T(lang, entry.mapping.key), nil)
			return
		}
	}

	if validationErrors := utils.GetValidationErrors(errors.Unwrap(err)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	utils.InternalErrorResponse(c, "")
}
