package payments

import "github.com/google/uuid"

// ProviderEvent is the closed set of payment provider notifications the
// reconciler understands. The unexported marker keeps the union sealed:
// every member is handled explicitly in the reconciler's type switch.
type ProviderEvent interface {
	isProviderEvent()
}

// PaymentSucceeded reports a confirmed charge for a pending reservation.
type PaymentSucceeded struct {
	TxnRef         string
	OrderID        uuid.UUID
	AmountReceived float64
	Currency       string
}

// PaymentFailed reports a failed or abandoned charge.
type PaymentFailed struct {
	OrderID uuid.UUID
}

// ChargeRefunded reports a refund issued on the provider side, including
// refunds initiated from the provider dashboard.
type ChargeRefunded struct {
	TxnRef         string
	AmountRefunded float64
	FullyRefunded  bool
}

func (PaymentSucceeded) isProviderEvent() {}
func (PaymentFailed) isProviderEvent()    {}
func (ChargeRefunded) isProviderEvent()   {}
