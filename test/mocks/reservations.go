package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/UmarSidiki/taxibooking/internal/reservations"
	"github.com/UmarSidiki/taxibooking/pkg/eventbus"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// MockReservationsRepository is a mock implementation of the reservations
// repository
type MockReservationsRepository struct {
	mock.Mock
}

func (m *MockReservationsRepository) CreatePending(ctx context.Context, p *models.PendingReservation) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockReservationsRepository) UpdatePending(ctx context.Context, orderID uuid.UUID, trip *models.TripRequest, fare models.FareBreakdown) error {
	args := m.Called(ctx, orderID, trip, fare)
	return args.Error(0)
}

func (m *MockReservationsRepository) GetPending(ctx context.Context, orderID uuid.UUID) (*models.PendingReservation, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingReservation), args.Error(1)
}

func (m *MockReservationsRepository) DeletePending(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockReservationsRepository) CommitPending(ctx context.Context, p reservations.CommitParams) (*models.Booking, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockReservationsRepository) CreateDirect(ctx context.Context, b *models.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockReservationsRepository) Transition(ctx context.Context, bookingID uuid.UUID, action reservations.TransitionAction, params reservations.TransitionParams) (*models.Booking, error) {
	args := m.Called(ctx, bookingID, action, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockReservationsRepository) UpdateProviderRefund(ctx context.Context, txnRef string, refundAmount, refundPct float64, fullyRefunded bool) (*models.Booking, error) {
	args := m.Called(ctx, txnRef, refundAmount, refundPct, fullyRefunded)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockReservationsRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockReservationsRepository) FindByTripID(ctx context.Context, tripID string) (*models.Booking, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockReservationsRepository) FindByTxnRef(ctx context.Context, txnRef string) (*models.Booking, error) {
	args := m.Called(ctx, txnRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockReservationsRepository) ListBookings(ctx context.Context, status *models.BookingStatus, limit, offset int) ([]models.Booking, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

// MockPublisher is a mock event bus publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, event *eventbus.Event) error {
	args := m.Called(ctx, subject, event)
	return args.Error(0)
}
