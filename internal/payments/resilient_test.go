package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stripe/stripe-go/v83"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UmarSidiki/taxibooking/internal/reservations"
)

// countingGateway records how many times each operation is invoked and
// returns canned results.
type countingGateway struct {
	refundCalls int
	refundErr   error
	refundRes   RefundResult
}

func (c *countingGateway) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (reservations.PaymentIntentRef, error) {
	return reservations.PaymentIntentRef{ID: "pi_test"}, nil
}

func (c *countingGateway) UpdateIntentAmount(ctx context.Context, intentID string, amountCents int64) error {
	return nil
}

func (c *countingGateway) GetIntentDetails(ctx context.Context, intentID string) (IntentDetails, error) {
	return IntentDetails{ID: intentID}, nil
}

func (c *countingGateway) Refund(ctx context.Context, intentID string, amountCents int64) (RefundResult, error) {
	c.refundCalls++
	if c.refundErr != nil {
		return RefundResult{}, c.refundErr
	}
	return c.refundRes, nil
}

func TestRefund_SingleAttemptOnFailure(t *testing.T) {
	inner := &countingGateway{refundErr: errors.New("read tcp: connection reset by peer")}
	gw := NewResilientGateway(inner)

	_, err := gw.Refund(context.Background(), "pi_123", 5000)

	require.Error(t, err)
	assert.Equal(t, 1, inner.refundCalls)
}

func TestRefund_SuccessPassesThrough(t *testing.T) {
	inner := &countingGateway{refundRes: RefundResult{ID: "re_1", Status: "succeeded", AmountCents: 5000}}
	gw := NewResilientGateway(inner)

	res, err := gw.Refund(context.Background(), "pi_123", 5000)

	require.NoError(t, err)
	assert.Equal(t, "re_1", res.ID)
	assert.Equal(t, int64(5000), res.AmountCents)
	assert.Equal(t, 1, inner.refundCalls)
}

func TestIsStripeRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server error", &stripe.Error{HTTPStatusCode: 500}, true},
		{"rate limited", &stripe.Error{HTTPStatusCode: 429}, true},
		{"card declined", &stripe.Error{HTTPStatusCode: 402}, false},
		{"invalid request", &stripe.Error{HTTPStatusCode: 400}, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"network error", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isStripeRetryable(tt.err))
		})
	}
}
