package payments

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
)

// ErrUnhandledEvent marks provider event types the platform deliberately
// ignores. The webhook endpoint acknowledges them so the provider stops
// redelivering.
var ErrUnhandledEvent = errors.New("unhandled provider event type")

// ParseWebhook verifies the Stripe signature and maps the raw event into
// the ProviderEvent union. Everything outside the union returns
// ErrUnhandledEvent.
func ParseWebhook(payload []byte, signatureHeader, secret string) (ProviderEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, secret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}
	return mapEvent(event)
}

func mapEvent(event stripe.Event) (ProviderEvent, error) {
	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		orderID, err := uuid.Parse(pi.Metadata["order_id"])
		if err != nil {
			return nil, fmt.Errorf("payment intent %s has no usable order_id: %w", pi.ID, err)
		}
		return PaymentSucceeded{
			TxnRef:         pi.ID,
			OrderID:        orderID,
			AmountReceived: float64(pi.AmountReceived) / 100,
			Currency:       string(pi.Currency),
		}, nil

	case "payment_intent.payment_failed", "payment_intent.canceled":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		orderID, err := uuid.Parse(pi.Metadata["order_id"])
		if err != nil {
			return nil, fmt.Errorf("payment intent %s has no usable order_id: %w", pi.ID, err)
		}
		return PaymentFailed{OrderID: orderID}, nil

	case "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("decode charge: %w", err)
		}
		if ch.PaymentIntent == nil {
			return nil, fmt.Errorf("charge %s has no payment intent", ch.ID)
		}
		return ChargeRefunded{
			TxnRef:         ch.PaymentIntent.ID,
			AmountRefunded: float64(ch.AmountRefunded) / 100,
			FullyRefunded:  ch.Refunded,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnhandledEvent, event.Type)
	}
}
