package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is how the customer pays for a booking.
type PaymentMethod string

const (
	PaymentMethodStripe       PaymentMethod = "stripe"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// PaymentStatus tracks the money side of a booking.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// BookingStatus tracks the ride side of a booking. Completed and canceled
// are terminal.
type BookingStatus string

const (
	BookingStatusUpcoming  BookingStatus = "upcoming"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCanceled  BookingStatus = "canceled"
)

// IsTerminal reports whether no further status transition is permitted.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCanceled
}

// PartnerReviewStatus tracks whether a booking still needs a fleet partner.
type PartnerReviewStatus string

const (
	PartnerReviewNotRequired PartnerReviewStatus = "not_required"
	PartnerReviewPending     PartnerReviewStatus = "pending"
	PartnerReviewApproved    PartnerReviewStatus = "approved"
)

// Contact is the customer contact attached to a reservation.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// PendingReservation is a provisional booking awaiting payment
// confirmation. It is keyed by the platform-generated order ID, which also
// travels in the payment intent metadata.
type PendingReservation struct {
	OrderID       uuid.UUID     `json:"order_id"`
	TripID        string        `json:"trip_id"`
	Trip          TripRequest   `json:"trip"`
	VehicleID     uuid.UUID     `json:"vehicle_id"`
	Contact       Contact       `json:"contact"`
	Fare          FareBreakdown `json:"fare"`
	PaymentIntent string        `json:"payment_intent,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Booking is the durable, committed reservation record and the system of
// record. The vehicle fields are a snapshot taken at commit time and are
// never re-derived from the vehicles table afterwards.
type Booking struct {
	ID     uuid.UUID `json:"id"`
	TripID string    `json:"trip_id"`

	Trip    TripRequest `json:"trip"`
	Contact Contact     `json:"contact"`

	VehicleID       uuid.UUID       `json:"vehicle_id"`
	VehicleName     string          `json:"vehicle_name"`
	VehicleCategory VehicleCategory `json:"vehicle_category"`
	VehicleSeats    int             `json:"vehicle_seats"`

	Subtotal       float64 `json:"subtotal"`
	TaxPct         float64 `json:"tax_pct"`
	TaxIncluded    bool    `json:"tax_included"`
	TaxAmount      float64 `json:"tax_amount"`
	TotalAmount    float64 `json:"total_amount"`
	Currency       string  `json:"currency"`
	RefundAmount   float64 `json:"refund_amount"`
	RefundPct      float64 `json:"refund_pct"`
	AmountMismatch bool    `json:"amount_mismatch"`

	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TxnRef        *string       `json:"txn_ref,omitempty"`

	Status BookingStatus `json:"status"`

	PartnerReviewStatus PartnerReviewStatus `json:"partner_review_status"`
	AssignedPartnerID   *uuid.UUID          `json:"assigned_partner_id,omitempty"`
	MarginPct           float64             `json:"margin_pct"`
	MarginAmount        float64             `json:"margin_amount"`
	PayoutAmount        float64             `json:"payout_amount"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	CanceledAt *time.Time `json:"canceled_at,omitempty"`
}
