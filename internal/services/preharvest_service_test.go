// internal/services/preharvest_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/agrimart/agrimart-backend/internal/models"
)

type PreHarvestServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	wallets *WalletService
	service *PreHarvestService

	seller  *models.User
	buyer   *models.User
	listing *models.PreHarvestListing
}

func (suite *PreHarvestServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.wallets = NewWalletService(suite.db)
	suite.service = NewPreHarvestService(suite.db, suite.wallets, nil, 30.0)

	suite.seller = createTestUser(suite.T(), suite.db, "Farmer Flora", "flora@example.com")
	createTestWallet(suite.T(), suite.db, suite.seller.ID, decimal.Zero)

	suite.buyer = createTestUser(suite.T(), suite.db, "Buyer Bram", "bram@example.com")
	createTestWallet(suite.T(), suite.db, suite.buyer.ID, decimal.NewFromInt(1000))

	// 500 kg at 2.40/kg, minimum order 50 kg.
	suite.listing = createTestListing(suite.T(), suite.db,
		suite.seller.ID, decimal.NewFromInt(500), decimal.NewFromFloat(2.40), 50)
}

func (suite *PreHarvestServiceTestSuite) bookingRequest(quantity decimal.Decimal) *CreateBookingRequest {
	return &CreateBookingRequest{
		Quantity:      quantity,
		PaymentMethod: models.PaymentMethodWallet,
	}
}

func (suite *PreHarvestServiceTestSuite) buyerBalance() decimal.Decimal {
	wallet, err := suite.wallets.GetOrCreateWallet(suite.buyer.ID)
	suite.Require().NoError(err)
	return wallet.CashBalance
}

func (suite *PreHarvestServiceTestSuite) sellerBalance() decimal.Decimal {
	wallet, err := suite.wallets.GetOrCreateWallet(suite.seller.ID)
	suite.Require().NoError(err)
	return wallet.CashBalance
}

func (suite *PreHarvestServiceTestSuite) reservedQuantity() decimal.Decimal {
	var listing models.PreHarvestListing
	suite.Require().NoError(suite.db.First(&listing, suite.listing.ID).Error)
	return listing.ReservedQuantity
}

func (suite *PreHarvestServiceTestSuite) TestBookingComputesDepositAndReserves() {
	booking, err := suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	suite.Require().NoError(err)

	// 100 kg x 2.40 = 240.00; 30% deposit = 72.00.
	assert.True(suite.T(), booking.TotalPrice.Equal(decimal.NewFromFloat(240.00)), "total %s", booking.TotalPrice)
	assert.True(suite.T(), booking.DepositAmount.Equal(decimal.NewFromFloat(72.00)), "deposit %s", booking.DepositAmount)
	assert.Equal(suite.T(), models.BookingStatusPending, booking.Status)
	assert.True(suite.T(), suite.reservedQuantity().Equal(decimal.NewFromInt(100)))

	// No money moves until the seller confirms.
	assert.False(suite.T(), booking.DepositPaid)
	assert.Empty(suite.T(), booking.TransactionRef)
	assert.True(suite.T(), suite.buyerBalance().Equal(decimal.NewFromInt(1000)))
}

func (suite *PreHarvestServiceTestSuite) TestBookingBelowMinimumOrder() {
	_, err := suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(40)))
	assert.ErrorIs(suite.T(), err, ErrBelowMinimumOrder)
	assert.True(suite.T(), suite.reservedQuantity().IsZero())
}

func (suite *PreHarvestServiceTestSuite) TestBookingBeyondAvailableYield() {
	_, err := suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(450)))
	suite.Require().NoError(err)

	_, err = suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	assert.ErrorIs(suite.T(), err, ErrInsufficientQuantity)
	assert.True(suite.T(), suite.reservedQuantity().Equal(decimal.NewFromInt(450)))
}

func (suite *PreHarvestServiceTestSuite) TestSellerCannotBookOwnListing() {
	_, err := suite.service.CreateBooking(context.Background(), suite.seller, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	assert.ErrorIs(suite.T(), err, ErrOwnListingBooking)
}

func (suite *PreHarvestServiceTestSuite) TestConfirmTransfersDeposit() {
	booking, err := suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	suite.Require().NoError(err)

	confirmed, err := suite.service.ConfirmBooking(context.Background(), booking.ID, suite.seller.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.BookingStatusConfirmed, confirmed.Status)
	assert.NotNil(suite.T(), confirmed.ConfirmedAt)
	assert.True(suite.T(), confirmed.DepositPaid)
	assert.NotEmpty(suite.T(), confirmed.TransactionRef)

	assert.True(suite.T(), suite.buyerBalance().Equal(decimal.NewFromFloat(928.00)))
	assert.True(suite.T(), suite.sellerBalance().Equal(decimal.NewFromFloat(72.00)))

	// One debit and one credit leg, sharing the booking's reference.
	var ledger []models.WalletTransaction
	suite.Require().NoError(suite.db.Where("reference = ?", confirmed.TransactionRef).Find(&ledger).Error)
	assert.Len(suite.T(), ledger, 2)
}

func (suite *PreHarvestServiceTestSuite) TestConfirmFailsOnInsufficientBuyerBalance() {
	broke := createTestUser(suite.T(), suite.db, "Buyer Bea", "bea@example.com")
	createTestWallet(suite.T(), suite.db, broke.ID, decimal.NewFromInt(10))

	booking, err := suite.service.CreateBooking(context.Background(), broke, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	suite.Require().NoError(err)

	_, err = suite.service.ConfirmBooking(context.Background(), booking.ID, suite.seller.ID)
	suite.Require().ErrorIs(err, ErrInsufficientWalletBalance)

	// The failed confirmation leaves the booking pending and both wallets
	// untouched.
	var stored models.PreHarvestBooking
	suite.Require().NoError(suite.db.First(&stored, booking.ID).Error)
	assert.Equal(suite.T(), models.BookingStatusPending, stored.Status)
	assert.False(suite.T(), stored.DepositPaid)
	assert.True(suite.T(), suite.sellerBalance().IsZero())
}

func (suite *PreHarvestServiceTestSuite) TestOnlySellerConfirms() {
	booking, err := suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	suite.Require().NoError(err)

	_, err = suite.service.ConfirmBooking(context.Background(), booking.ID, suite.buyer.ID)
	assert.ErrorIs(suite.T(), err, ErrUnauthorized)
}

func (suite *PreHarvestServiceTestSuite) TestCancelPendingReleasesReservation() {
	booking, err := suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	suite.Require().NoError(err)

	cancelled, err := suite.service.CancelBooking(context.Background(), booking.ID, suite.buyer.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.BookingStatusCancelled, cancelled.Status)
	assert.True(suite.T(), suite.reservedQuantity().IsZero())

	// No deposit was ever collected, so no wallet moves on a pending cancel.
	assert.True(suite.T(), suite.buyerBalance().Equal(decimal.NewFromInt(1000)))
	assert.True(suite.T(), suite.sellerBalance().IsZero())
}

func (suite *PreHarvestServiceTestSuite) TestCancelConfirmedClawsBackSeller() {
	booking, err := suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	suite.Require().NoError(err)

	_, err = suite.service.ConfirmBooking(context.Background(), booking.ID, suite.seller.ID)
	suite.Require().NoError(err)
	suite.Require().True(suite.sellerBalance().Equal(decimal.NewFromFloat(72.00)))

	_, err = suite.service.CancelBooking(context.Background(), booking.ID, suite.seller.ID)
	suite.Require().NoError(err)

	assert.True(suite.T(), suite.buyerBalance().Equal(decimal.NewFromInt(1000)))
	assert.True(suite.T(), suite.sellerBalance().IsZero())
	assert.True(suite.T(), suite.reservedQuantity().IsZero())
}

func (suite *PreHarvestServiceTestSuite) TestDoubleCancelRejected() {
	booking, err := suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	suite.Require().NoError(err)

	_, err = suite.service.CancelBooking(context.Background(), booking.ID, suite.buyer.ID)
	suite.Require().NoError(err)

	_, err = suite.service.CancelBooking(context.Background(), booking.ID, suite.buyer.ID)
	assert.ErrorIs(suite.T(), err, ErrBookingNotCancellable)

	// Quantity released exactly once, refund paid exactly once.
	assert.True(suite.T(), suite.reservedQuantity().IsZero())
	assert.True(suite.T(), suite.buyerBalance().Equal(decimal.NewFromInt(1000)))
}

func (suite *PreHarvestServiceTestSuite) TestCompleteRequiresConfirmed() {
	booking, err := suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	suite.Require().NoError(err)

	_, err = suite.service.CompleteBooking(booking.ID, suite.seller.ID)
	assert.ErrorIs(suite.T(), err, ErrBookingNotConfirmed)

	_, err = suite.service.ConfirmBooking(context.Background(), booking.ID, suite.seller.ID)
	suite.Require().NoError(err)

	completed, err := suite.service.CompleteBooking(booking.ID, suite.seller.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.BookingStatusCompleted, completed.Status)

	// Completed bookings keep their reservation; the yield was delivered.
	assert.True(suite.T(), suite.reservedQuantity().Equal(decimal.NewFromInt(100)))

	_, err = suite.service.CancelBooking(context.Background(), booking.ID, suite.buyer.ID)
	assert.ErrorIs(suite.T(), err, ErrBookingNotCancellable)
}

func (suite *PreHarvestServiceTestSuite) TestReservationConservation() {
	// Three bookings, one cancelled: reserved quantity tracks the two that
	// remain active.
	first, err := suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	suite.Require().NoError(err)

	_, err = suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(150)))
	suite.Require().NoError(err)

	_, err = suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(50)))
	suite.Require().NoError(err)

	suite.Require().True(suite.reservedQuantity().Equal(decimal.NewFromInt(300)))

	_, err = suite.service.CancelBooking(context.Background(), first.ID, suite.buyer.ID)
	suite.Require().NoError(err)

	assert.True(suite.T(), suite.reservedQuantity().Equal(decimal.NewFromInt(200)))
}

func (suite *PreHarvestServiceTestSuite) TestBankTransferBookingSkipsWallet() {
	booking, err := suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, &CreateBookingRequest{
		Quantity:      decimal.NewFromInt(100),
		PaymentMethod: models.PaymentMethodBankTransfer,
	})
	suite.Require().NoError(err)

	// The deposit settles off-platform; confirmation moves no wallet funds.
	confirmed, err := suite.service.ConfirmBooking(context.Background(), booking.ID, suite.seller.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.BookingStatusConfirmed, confirmed.Status)
	assert.False(suite.T(), confirmed.DepositPaid)
	assert.Empty(suite.T(), confirmed.TransactionRef)
	assert.True(suite.T(), suite.buyerBalance().Equal(decimal.NewFromInt(1000)))
	assert.True(suite.T(), suite.sellerBalance().IsZero())
}

func (suite *PreHarvestServiceTestSuite) TestListingClosedToNewBookings() {
	_, err := suite.service.CancelListing(suite.listing.ID, suite.seller.ID)
	suite.Require().NoError(err)

	_, err = suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	assert.ErrorIs(suite.T(), err, ErrListingUnavailable)
}

func (suite *PreHarvestServiceTestSuite) TestListingWithActiveBookingsCannotBeCancelled() {
	booking, err := suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	suite.Require().NoError(err)

	_, err = suite.service.CancelListing(suite.listing.ID, suite.seller.ID)
	assert.ErrorIs(suite.T(), err, ErrListingHasBookings)

	// Once the only booking is cancelled the listing can come down.
	_, err = suite.service.CancelBooking(context.Background(), booking.ID, suite.buyer.ID)
	suite.Require().NoError(err)

	cancelled, err := suite.service.CancelListing(suite.listing.ID, suite.seller.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ListingStatusCancelled, cancelled.Status)
}

func (suite *PreHarvestServiceTestSuite) TestPastHarvestDateRejected() {
	_, err := suite.service.CreateListing(suite.seller.ID, &CreateListingRequest{
		Title:          "Late Lemons",
		CropType:       "lemon",
		Location:       "Murcia",
		EstimatedYield: decimal.NewFromInt(100),
		PricePerKg:     decimal.NewFromFloat(1.80),
		HarvestDate:    time.Now().AddDate(0, 0, -1),
		QualityGrade:   "standard",
		MinimumOrder:   10,
	})
	assert.ErrorIs(suite.T(), err, ErrListingUnavailable)
}

func (suite *PreHarvestServiceTestSuite) TestSellerAnalytics() {
	booking, err := suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(100)))
	suite.Require().NoError(err)
	_, err = suite.service.ConfirmBooking(context.Background(), booking.ID, suite.seller.ID)
	suite.Require().NoError(err)

	_, err = suite.service.CreateBooking(context.Background(), suite.buyer, suite.listing.ID, suite.bookingRequest(decimal.NewFromInt(50)))
	suite.Require().NoError(err)

	analytics, err := suite.service.SellerAnalytics(suite.seller.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), int64(1), analytics.TotalListings)
	assert.Equal(suite.T(), int64(1), analytics.ActiveListings)
	assert.Equal(suite.T(), int64(2), analytics.TotalBookings)
	assert.Equal(suite.T(), int64(1), analytics.ConfirmedBookings)
	assert.True(suite.T(), analytics.ReservedQuantity.Equal(decimal.NewFromInt(150)))
	assert.True(suite.T(), analytics.DepositsCollected.Equal(decimal.NewFromFloat(72.00)))
}

func TestPreHarvestServiceSuite(t *testing.T) {
	suite.Run(t, new(PreHarvestServiceTestSuite))
}
