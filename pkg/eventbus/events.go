package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// BookingConfirmedData is emitted once a booking is durably committed.
// Dispatch uses it to fan offers out; notifications uses it for the
// confirmation e-mail.
type BookingConfirmedData struct {
	BookingID       uuid.UUID `json:"booking_id"`
	TripID          string    `json:"trip_id"`
	CustomerName    string    `json:"customer_name"`
	CustomerEmail   string    `json:"customer_email"`
	CustomerPhone   string    `json:"customer_phone"`
	BookingType     string    `json:"booking_type"`
	Pickup          string    `json:"pickup"`
	Dropoff         string    `json:"dropoff,omitempty"`
	PickupTime      time.Time `json:"pickup_time"`
	VehicleName     string    `json:"vehicle_name"`
	VehicleCategory string    `json:"vehicle_category"`
	PaymentMethod   string    `json:"payment_method"`
	TotalAmount     float64   `json:"total_amount"`
	Currency        string    `json:"currency"`
	AmountMismatch  bool      `json:"amount_mismatch"`
	NeedsDispatch   bool      `json:"needs_dispatch"`
	ConfirmedAt     time.Time `json:"confirmed_at"`
}

// BookingCancelledData is emitted when a booking is canceled.
type BookingCancelledData struct {
	BookingID         uuid.UUID  `json:"booking_id"`
	TripID            string     `json:"trip_id"`
	CustomerName      string     `json:"customer_name"`
	CustomerEmail     string     `json:"customer_email"`
	RefundAmount      float64    `json:"refund_amount"`
	RefundPct         float64    `json:"refund_pct"`
	PaymentMethod     string     `json:"payment_method"`
	AssignedPartnerID *uuid.UUID `json:"assigned_partner_id,omitempty"`
	CancelledAt       time.Time  `json:"cancelled_at"`
}

// BookingCompletedData is emitted when a ride finishes.
type BookingCompletedData struct {
	BookingID   uuid.UUID `json:"booking_id"`
	TripID      string    `json:"trip_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// BookingFlaggedData is emitted when reconciliation records an amount
// mismatch; operators review these bookings by hand.
type BookingFlaggedData struct {
	BookingID      uuid.UUID `json:"booking_id"`
	TripID         string    `json:"trip_id"`
	ExpectedAmount float64   `json:"expected_amount"`
	PaidAmount     float64   `json:"paid_amount"`
	FlaggedAt      time.Time `json:"flagged_at"`
}

// PaymentFailedData is emitted when the provider reports a failed payment.
type PaymentFailedData struct {
	OrderID  uuid.UUID `json:"order_id"`
	FailedAt time.Time `json:"failed_at"`
}

// PaymentRefundedData is emitted after a refund is recorded.
type PaymentRefundedData struct {
	BookingID      uuid.UUID `json:"booking_id"`
	TripID         string    `json:"trip_id"`
	RefundAmount   float64   `json:"refund_amount"`
	RefundPct      float64   `json:"refund_pct"`
	FullyRefunded  bool      `json:"fully_refunded"`
	ProviderDriven bool      `json:"provider_driven"`
	RefundedAt     time.Time `json:"refunded_at"`
}

// DispatchOfferedData is emitted when a booking is offered to eligible
// partners. First partner to accept wins.
type DispatchOfferedData struct {
	BookingID       uuid.UUID   `json:"booking_id"`
	TripID          string      `json:"trip_id"`
	VehicleCategory string      `json:"vehicle_category"`
	Pickup          string      `json:"pickup"`
	PickupTime      time.Time   `json:"pickup_time"`
	PartnerIDs      []uuid.UUID `json:"partner_ids"`
	OfferedAt       time.Time   `json:"offered_at"`
}

// DispatchAcceptedData is emitted when a partner wins a ride.
type DispatchAcceptedData struct {
	BookingID    uuid.UUID `json:"booking_id"`
	TripID       string    `json:"trip_id"`
	PartnerID    uuid.UUID `json:"partner_id"`
	PayoutAmount float64   `json:"payout_amount"`
	AcceptedAt   time.Time `json:"accepted_at"`
}

// DispatchReassignedData notifies a previously assigned partner that a
// booking was canceled or taken away.
type DispatchReassignedData struct {
	BookingID  uuid.UUID `json:"booking_id"`
	TripID     string    `json:"trip_id"`
	PartnerID  uuid.UUID `json:"partner_id"`
	Reason     string    `json:"reason"`
	NotifiedAt time.Time `json:"notified_at"`
}
