// internal/services/errors.go
package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP status codes and localized messages.
var (
	// Auth / account
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")

	// Business
	ErrBusinessNotFound    = errors.New("business not found")
	ErrBusinessNotApproved = errors.New("business is not approved")
	ErrTaxIDTaken          = errors.New("tax id already registered")

	// Catalog
	ErrProductNotFound      = errors.New("product not found")
	ErrProductUnavailable   = errors.New("product is not available")
	ErrBelowMinimumQuantity = errors.New("quantity is below the minimum order quantity")

	// Orders
	ErrOrderNotFound         = errors.New("order not found")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrCreditLimitExceeded   = errors.New("credit limit exceeded")
	ErrInvalidPaymentMethod  = errors.New("payment method not allowed for this buyer")
	ErrEmptyOrder            = errors.New("order has no items")
	ErrPurchaseOrderRequired = errors.New("purchase order number is required for business orders")

	// Pre-harvest listings and bookings
	ErrListingNotFound       = errors.New("listing not found")
	ErrListingUnavailable    = errors.New("listing is not available for booking")
	ErrListingHasBookings    = errors.New("listing has active bookings")
	ErrInsufficientQuantity  = errors.New("insufficient quantity available")
	ErrBelowMinimumOrder     = errors.New("quantity is below the listing minimum order")
	ErrOwnListingBooking     = errors.New("cannot book your own listing")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrBookingNotPending     = errors.New("booking is not pending")
	ErrBookingNotConfirmed   = errors.New("booking is not confirmed")
	ErrBookingNotCancellable = errors.New("booking can no longer be cancelled")

	// Farms and investments
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectClosed   = errors.New("project is closed to new investments")

	// Wallet
	ErrWalletNotFound            = errors.New("wallet not found")
	ErrInsufficientWalletBalance = errors.New("insufficient wallet balance")
	ErrSelfTransfer              = errors.New("cannot transfer to your own wallet")

	// Cross-cutting
	ErrUnauthorized = errors.New("not authorized for this resource")
)
