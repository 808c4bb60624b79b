package reservations

import (
	"github.com/google/uuid"

	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// CreatePendingRequest starts a card checkout. The reservation stays
// provisional until the payment provider confirms the charge.
type CreatePendingRequest struct {
	VehicleID uuid.UUID          `json:"vehicle_id" binding:"required"`
	Trip      models.TripRequest `json:"trip" binding:"required"`
	Contact   models.Contact     `json:"contact" binding:"required"`
}

// UpdatePendingRequest reprices an existing provisional reservation, for
// example after the customer edits the trip during checkout.
type UpdatePendingRequest struct {
	Trip models.TripRequest `json:"trip" binding:"required"`
}

// PendingResponse is returned from create/update of a provisional
// reservation. ClientSecret lets the frontend confirm the payment intent.
type PendingResponse struct {
	OrderID      uuid.UUID            `json:"order_id"`
	TripID       string               `json:"trip_id"`
	Fare         models.FareBreakdown `json:"fare"`
	ClientSecret string               `json:"client_secret,omitempty"`
}

// CreateDirectRequest books immediately with an offline payment method
// (cash or bank transfer). There is no provisional phase.
type CreateDirectRequest struct {
	VehicleID     uuid.UUID            `json:"vehicle_id" binding:"required"`
	Trip          models.TripRequest   `json:"trip" binding:"required"`
	Contact       models.Contact       `json:"contact" binding:"required"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
}

// TransitionAction names a booking state machine transition.
type TransitionAction string

const (
	ActionCancel   TransitionAction = "cancel"
	ActionComplete TransitionAction = "complete"
)

// TransitionParams carries the optional money-side updates applied
// together with a transition. Nil fields are left untouched.
type TransitionParams struct {
	RefundPct     *float64
	RefundAmount  *float64
	PaymentStatus *models.PaymentStatus
}
