// internal/services/payment_service.go
package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"

	"github.com/agrimart/agrimart-backend/internal/config"
)

// PaymentProcessor abstracts the card payment gateway so checkout can be
// tested without hitting Stripe.
type PaymentProcessor interface {
	CreatePaymentIntent(amount decimal.Decimal, metadata map[string]string) (*PaymentIntentResponse, error)
	RefundPayment(paymentID string, amount decimal.Decimal) error
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

type StripePaymentService struct {
	currency string
}

func NewStripePaymentService(cfg *config.Config) *StripePaymentService {
	stripe.Key = cfg.Payment.StripeSecretKey

	currency := cfg.Payment.Currency
	if currency == "" {
		currency = "usd"
	}

	return &StripePaymentService{currency: currency}
}

func (s *StripePaymentService) CreatePaymentIntent(amount decimal.Decimal, metadata map[string]string) (*PaymentIntentResponse, error) {
	// Stripe works in the currency's smallest unit.
	amountInCents := amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(s.currency),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

func (s *StripePaymentService) RefundPayment(paymentID string, amount decimal.Decimal) error {
	amountInCents := amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentID),
		Amount:        stripe.Int64(amountInCents),
		Reason:        stripe.String("requested_by_customer"),
	}

	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("failed to process refund: %w", err)
	}

	return nil
}
