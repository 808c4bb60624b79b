package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/refund"

	"github.com/UmarSidiki/taxibooking/internal/reservations"
)

// StripeClient talks to the Stripe API.
type StripeClient struct{}

// NewStripeClient creates a new Stripe client
func NewStripeClient(apiKey string) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{}
}

// CreateIntent opens a payment intent for the given amount in cents.
func (s *StripeClient) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (reservations.PaymentIntentRef, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return reservations.PaymentIntentRef{}, fmt.Errorf("create payment intent: %w", err)
	}
	return reservations.PaymentIntentRef{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// UpdateIntentAmount changes the amount of an open payment intent.
func (s *StripeClient) UpdateIntentAmount(ctx context.Context, intentID string, amountCents int64) error {
	params := &stripe.PaymentIntentParams{
		Amount: stripe.Int64(amountCents),
	}
	params.Context = ctx

	if _, err := paymentintent.Update(intentID, params); err != nil {
		return fmt.Errorf("update payment intent %s: %w", intentID, err)
	}
	return nil
}

// GetIntentDetails retrieves the received and refunded amounts for an
// intent. The latest charge is expanded so refunds show up without a
// second round trip.
func (s *StripeClient) GetIntentDetails(ctx context.Context, intentID string) (IntentDetails, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		return IntentDetails{}, fmt.Errorf("get payment intent %s: %w", intentID, err)
	}

	details := IntentDetails{
		ID:                  pi.ID,
		AmountReceivedCents: pi.AmountReceived,
		Currency:            string(pi.Currency),
	}
	if pi.LatestCharge != nil {
		details.AmountRefundedCents = pi.LatestCharge.AmountRefunded
	}
	return details, nil
}

// Refund refunds part of a payment intent, in cents. The idempotency key is
// derived from the intent and amount, so re-issuing the same refund after a
// lost response is deduplicated by Stripe instead of refunding twice.
func (s *StripeClient) Refund(ctx context.Context, intentID string, amountCents int64) (RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(amountCents),
	}
	params.Context = ctx
	params.SetIdempotencyKey(fmt.Sprintf("refund-%s-%d", intentID, amountCents))

	ref, err := refund.New(params)
	if err != nil {
		return RefundResult{}, fmt.Errorf("refund intent %s: %w", intentID, err)
	}
	return RefundResult{ID: ref.ID, Status: string(ref.Status), AmountCents: ref.Amount}, nil
}
