package payments

import (
	"context"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v83"
	"go.uber.org/zap"

	"github.com/UmarSidiki/taxibooking/internal/reservations"
	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/logger"
	"github.com/UmarSidiki/taxibooking/pkg/resilience"
)

// ResilientGateway wraps a GatewayClient with a circuit breaker and retry
// logic. Refunds are the exception: they make a single attempt and surface
// any failure to the caller, who decides whether to re-issue.
type ResilientGateway struct {
	client  GatewayClient
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
}

// NewResilientGateway wraps the given gateway client.
func NewResilientGateway(client GatewayClient) *ResilientGateway {
	breaker := resilience.NewCircuitBreaker(resilience.Settings{
		Name:             "stripe-api",
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
	}, func(ctx context.Context, err error) (interface{}, error) {
		logger.Get().Error("stripe circuit breaker open", zap.Error(err))
		return nil, common.NewAppError(503, "payments are temporarily unavailable, please try again", err)
	})

	retry := resilience.DefaultRetryConfig()
	retry.InitialBackoff = 1 * time.Second
	retry.MaxBackoff = 10 * time.Second
	retry.RetryableChecker = isStripeRetryable

	return &ResilientGateway{client: client, breaker: breaker, retry: retry}
}

func (r *ResilientGateway) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (reservations.PaymentIntentRef, error) {
	result, err := resilience.RetryWithBreaker(ctx, r.retry, r.breaker, func(ctx context.Context) (interface{}, error) {
		return r.client.CreateIntent(ctx, amountCents, currency, metadata)
	})
	if err != nil {
		return reservations.PaymentIntentRef{}, err
	}
	return result.(reservations.PaymentIntentRef), nil
}

func (r *ResilientGateway) UpdateIntentAmount(ctx context.Context, intentID string, amountCents int64) error {
	_, err := resilience.RetryWithBreaker(ctx, r.retry, r.breaker, func(ctx context.Context) (interface{}, error) {
		return nil, r.client.UpdateIntentAmount(ctx, intentID, amountCents)
	})
	return err
}

func (r *ResilientGateway) GetIntentDetails(ctx context.Context, intentID string) (IntentDetails, error) {
	result, err := resilience.RetryWithBreaker(ctx, r.retry, r.breaker, func(ctx context.Context) (interface{}, error) {
		return r.client.GetIntentDetails(ctx, intentID)
	})
	if err != nil {
		return IntentDetails{}, err
	}
	return result.(IntentDetails), nil
}

// Refund makes exactly one attempt. A refund whose response was lost may
// already have been applied provider-side, so the call is never retried
// here; the caller sees the error and re-issues deliberately, protected by
// the client's idempotency key.
func (r *ResilientGateway) Refund(ctx context.Context, intentID string, amountCents int64) (RefundResult, error) {
	result, err := r.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return r.client.Refund(ctx, intentID, amountCents)
	})
	if err != nil {
		return RefundResult{}, err
	}
	return result.(RefundResult), nil
}

// isStripeRetryable retries network-level and server-side failures,
// never card declines or invalid requests.
func isStripeRetryable(err error) bool {
	if err == nil {
		return false
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return resilience.IsRetryableHTTPStatus(stripeErr.HTTPStatusCode)
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
