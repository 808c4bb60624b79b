package dispatch

import (
	"context"

	"github.com/google/uuid"

	"github.com/UmarSidiki/taxibooking/pkg/eventbus"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// RepositoryInterface owns fleet partner persistence and the booking
// assignment write.
type RepositoryInterface interface {
	CreatePartner(ctx context.Context, partner *models.FleetPartner) error
	GetPartner(ctx context.Context, id uuid.UUID) (*models.FleetPartner, error)
	ListPartners(ctx context.Context) ([]models.FleetPartner, error)
	ApprovePartner(ctx context.Context, id uuid.UUID) (*models.FleetPartner, error)

	// EligiblePartners returns approved partners whose current fleet
	// matches the booking's vehicle category.
	EligiblePartners(ctx context.Context, category models.VehicleCategory) ([]models.FleetPartner, error)

	FindBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)

	// Accept assigns the booking to the partner if and only if nobody
	// else holds it. Losing the race returns common.ErrAlreadyTaken.
	Accept(ctx context.Context, bookingID, partnerID uuid.UUID, marginPct, marginAmount, payoutAmount float64) (*models.Booking, error)

	// ApproveReview releases a booking held for operator review so it
	// can be offered to partners.
	ApproveReview(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)

	// UnassignedByCategory lists dispatchable bookings for the given
	// fleet category. Used as the fallback when the ride cache is cold.
	UnassignedByCategory(ctx context.Context, category models.VehicleCategory) ([]models.Booking, error)
}

// RideCache holds each partner's currently offered rides.
type RideCache interface {
	Add(ctx context.Context, partnerID uuid.UUID, ride AvailableRide) error
	Remove(ctx context.Context, partnerID, bookingID uuid.UUID) error
	List(ctx context.Context, partnerID uuid.UUID) ([]AvailableRide, error)
}

// Publisher emits domain events onto the bus.
type Publisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}
