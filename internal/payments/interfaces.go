package payments

import (
	"context"

	"github.com/UmarSidiki/taxibooking/internal/reservations"
)

// IntentDetails is the provider-side money state of a payment intent.
// Amounts are in the smallest currency unit.
type IntentDetails struct {
	ID                  string
	AmountReceivedCents int64
	AmountRefundedCents int64
	Currency            string
}

// RefundResult describes a refund accepted by the provider.
type RefundResult struct {
	ID          string
	Status      string
	AmountCents int64
}

// GatewayClient is the payment gateway surface the platform depends on.
// It extends the checkout-side intent operations with the details and
// refund calls the reconciliation and cancellation flows need.
type GatewayClient interface {
	reservations.PaymentIntentClient

	GetIntentDetails(ctx context.Context, intentID string) (IntentDetails, error)
	Refund(ctx context.Context, intentID string, amountCents int64) (RefundResult, error)
}
