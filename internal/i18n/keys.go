// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Business accounts
	KeyBusinessRegistered  = "business.registered"
	KeyBusinessNotApproved = "business.not_approved"
	KeyBusinessApproved    = "business.approved"
	KeyBusinessRejected    = "business.rejected"
	KeyBusinessNotFound    = "business.not_found"

	// Products
	KeyProductCreated    = "product.created"
	KeyProductUpdated    = "product.updated"
	KeyProductDeleted    = "product.deleted"
	KeyProductNotFound   = "product.not_found"
	KeyProductOutOfStock = "product.out_of_stock"

	// Orders
	KeyOrderPlaced                = "order.placed"
	KeyOrderNotFound              = "order.not_found"
	KeyOrderPlacementFailed       = "order.placement_failed"
	KeyOrderStatusUpdated         = "order.status_updated"
	KeyOrderCreditExceeded        = "order.credit_limit_exceeded"
	KeyOrderPurchaseOrderRequired = "order.purchase_order_required"

	// Pre-harvest
	KeyListingCreated         = "listing.created"
	KeyListingUpdated         = "listing.updated"
	KeyListingDeleted         = "listing.deleted"
	KeyListingNotFound        = "listing.not_found"
	KeyListingUnavailable     = "listing.unavailable"
	KeyListingHasBookings     = "listing.has_bookings"
	KeyBookingCreated         = "booking.created"
	KeyBookingConfirmed       = "booking.confirmed"
	KeyBookingCancelled       = "booking.cancelled"
	KeyBookingNotFound        = "booking.not_found"
	KeyBookingNotCancellable  = "booking.not_cancellable"
	KeyBookingBelowMinimum    = "booking.below_minimum_order"
	KeyBookingQuantityTooHigh = "booking.insufficient_quantity"

	// Farms and investments
	KeyFarmCreated       = "farm.created"
	KeyProjectNotFound   = "project.not_found"
	KeyProjectClosed     = "project.closed"
	KeyInvestmentCreated = "investment.created"

	// Wallet
	KeyWalletNotFound            = "wallet.not_found"
	KeyWalletFundsAdded          = "wallet.funds_added"
	KeyWalletFundsWithdrawn      = "wallet.funds_withdrawn"
	KeyWalletInsufficientBalance = "wallet.insufficient_balance"

	// Payments
	KeyPaymentSuccess = "payment.success"
	KeyPaymentFailed  = "payment.failed"

	// Admin
	KeyAdminActionSuccess = "admin.action_success"
	KeyAdminAccessDenied  = "admin.access_denied"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
)
