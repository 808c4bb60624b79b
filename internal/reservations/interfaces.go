package reservations

import (
	"context"

	"github.com/google/uuid"

	"github.com/UmarSidiki/taxibooking/pkg/eventbus"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// RepositoryInterface owns all PendingReservation and Booking mutation.
type RepositoryInterface interface {
	CreatePending(ctx context.Context, pending *models.PendingReservation) error
	UpdatePending(ctx context.Context, orderID uuid.UUID, trip *models.TripRequest, fare models.FareBreakdown) error
	GetPending(ctx context.Context, orderID uuid.UUID) (*models.PendingReservation, error)
	DeletePending(ctx context.Context, orderID uuid.UUID) error

	// CommitPending atomically turns a pending reservation into a Booking.
	// A duplicate commit for the same payment or trip returns
	// common.ErrAlreadyCommitted without touching the store.
	CommitPending(ctx context.Context, p CommitParams) (*models.Booking, error)

	CreateDirect(ctx context.Context, booking *models.Booking) error

	// Transition moves an upcoming booking to a terminal state. A booking
	// already in a terminal state returns a terminal-state conflict and is
	// never mutated.
	Transition(ctx context.Context, bookingID uuid.UUID, action TransitionAction, params TransitionParams) (*models.Booking, error)

	// UpdateProviderRefund records a provider-initiated refund against the
	// booking holding the given payment reference.
	UpdateProviderRefund(ctx context.Context, txnRef string, refundAmount, refundPct float64, fullyRefunded bool) (*models.Booking, error)

	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindByTripID(ctx context.Context, tripID string) (*models.Booking, error)
	FindByTxnRef(ctx context.Context, txnRef string) (*models.Booking, error)
	ListBookings(ctx context.Context, status *models.BookingStatus, limit, offset int) ([]models.Booking, error)
}

// VehicleFinder resolves the vehicle snapshot taken at commit time.
type VehicleFinder interface {
	GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
}

// PaymentIntentClient is the slice of the payment gateway the checkout
// flow needs.
type PaymentIntentClient interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (PaymentIntentRef, error)
	UpdateIntentAmount(ctx context.Context, intentID string, amountCents int64) error
}

// PaymentIntentRef identifies a created payment intent.
type PaymentIntentRef struct {
	ID           string
	ClientSecret string
}

// Publisher emits domain events onto the bus.
type Publisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}
