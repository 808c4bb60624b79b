package reservations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/config"
	"github.com/UmarSidiki/taxibooking/pkg/eventbus"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// MockRepository implements RepositoryInterface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreatePending(ctx context.Context, p *models.PendingReservation) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) UpdatePending(ctx context.Context, orderID uuid.UUID, trip *models.TripRequest, fare models.FareBreakdown) error {
	args := m.Called(ctx, orderID, trip, fare)
	return args.Error(0)
}

func (m *MockRepository) GetPending(ctx context.Context, orderID uuid.UUID) (*models.PendingReservation, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingReservation), args.Error(1)
}

func (m *MockRepository) DeletePending(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockRepository) CommitPending(ctx context.Context, p CommitParams) (*models.Booking, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockRepository) CreateDirect(ctx context.Context, b *models.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockRepository) Transition(ctx context.Context, bookingID uuid.UUID, action TransitionAction, params TransitionParams) (*models.Booking, error) {
	args := m.Called(ctx, bookingID, action, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockRepository) UpdateProviderRefund(ctx context.Context, txnRef string, refundAmount, refundPct float64, fullyRefunded bool) (*models.Booking, error) {
	args := m.Called(ctx, txnRef, refundAmount, refundPct, fullyRefunded)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockRepository) FindByTripID(ctx context.Context, tripID string) (*models.Booking, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockRepository) FindByTxnRef(ctx context.Context, txnRef string) (*models.Booking, error) {
	args := m.Called(ctx, txnRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockRepository) ListBookings(ctx context.Context, status *models.BookingStatus, limit, offset int) ([]models.Booking, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

// MockVehicleFinder implements VehicleFinder for testing
type MockVehicleFinder struct {
	mock.Mock
}

func (m *MockVehicleFinder) GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

// MockPricer implements FarePricer for testing
type MockPricer struct {
	mock.Mock
}

func (m *MockPricer) PriceTrip(ctx context.Context, trip *models.TripRequest, vehicle *models.Vehicle) (models.FareBreakdown, *float64, error) {
	args := m.Called(ctx, trip, vehicle)
	var km *float64
	if args.Get(1) != nil {
		km = args.Get(1).(*float64)
	}
	return args.Get(0).(models.FareBreakdown), km, args.Error(2)
}

// MockIntentClient implements PaymentIntentClient for testing
type MockIntentClient struct {
	mock.Mock
}

func (m *MockIntentClient) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (PaymentIntentRef, error) {
	args := m.Called(ctx, amountCents, currency, metadata)
	return args.Get(0).(PaymentIntentRef), args.Error(1)
}

func (m *MockIntentClient) UpdateIntentAmount(ctx context.Context, intentID string, amountCents int64) error {
	args := m.Called(ctx, intentID, amountCents)
	return args.Error(0)
}

// MockPublisher implements Publisher for testing
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, event *eventbus.Event) error {
	args := m.Called(ctx, subject, event)
	return args.Error(0)
}

func testFare() models.FareBreakdown {
	return models.FareBreakdown{
		Subtotal: 150,
		Total:    150,
		Currency: "eur",
	}
}

func activeVehicle() *models.Vehicle {
	return &models.Vehicle{
		ID:       uuid.New(),
		Name:     "Mercedes V-Class",
		Category: models.CategoryVan,
		Seats:    7,
		Active:   true,
	}
}

func destinationTrip() models.TripRequest {
	return models.TripRequest{
		BookingType: models.BookingTypeDestination,
		Pickup:      "Zurich",
		Dropoff:     "Geneva",
		Passengers:  2,
	}
}

func testContact() models.Contact {
	return models.Contact{Name: "Anna Keller", Email: "anna@example.com", Phone: "+41761234567"}
}

func newTestService(repo *MockRepository, vehicles *MockVehicleFinder, pricer *MockPricer, intents *MockIntentClient, bus *MockPublisher) *Service {
	return NewService(repo, vehicles, pricer, intents, bus,
		config.PartnerConfig{Enabled: true, MarginPct: 10}, "booking-service")
}

func TestCreatePendingOpensIntentInCents(t *testing.T) {
	repo := new(MockRepository)
	vehicles := new(MockVehicleFinder)
	pricer := new(MockPricer)
	intents := new(MockIntentClient)
	bus := new(MockPublisher)

	vehicle := activeVehicle()
	vehicles.On("GetVehicle", mock.Anything, vehicle.ID).Return(vehicle, nil)
	pricer.On("PriceTrip", mock.Anything, mock.Anything, vehicle).Return(testFare(), nil, nil)
	intents.On("CreateIntent", mock.Anything, int64(15000), "eur", mock.Anything).
		Return(PaymentIntentRef{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil)
	repo.On("CreatePending", mock.Anything, mock.MatchedBy(func(p *models.PendingReservation) bool {
		return p.PaymentIntent == "pi_123" && p.TripID != "" && p.Fare.Total == 150
	})).Return(nil)

	svc := newTestService(repo, vehicles, pricer, intents, bus)
	resp, err := svc.CreatePending(context.Background(), CreatePendingRequest{
		VehicleID: vehicle.ID,
		Trip:      destinationTrip(),
		Contact:   testContact(),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, resp.OrderID)
	assert.Regexp(t, `^TB-`, resp.TripID)
	assert.Equal(t, "pi_123_secret", resp.ClientSecret)
	repo.AssertExpectations(t)
	intents.AssertExpectations(t)
}

func TestCreatePendingInvalidTrip(t *testing.T) {
	svc := newTestService(new(MockRepository), new(MockVehicleFinder), new(MockPricer), new(MockIntentClient), new(MockPublisher))

	_, err := svc.CreatePending(context.Background(), CreatePendingRequest{
		VehicleID: uuid.New(),
		Trip:      models.TripRequest{BookingType: models.BookingTypeDestination, Pickup: "Zurich", Passengers: 1},
		Contact:   testContact(),
	})

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestUpdatePendingRepricesAndSyncsIntent(t *testing.T) {
	repo := new(MockRepository)
	vehicles := new(MockVehicleFinder)
	pricer := new(MockPricer)
	intents := new(MockIntentClient)

	vehicle := activeVehicle()
	orderID := uuid.New()
	pending := &models.PendingReservation{
		OrderID:       orderID,
		TripID:        "TB-ABCD2345",
		VehicleID:     vehicle.ID,
		PaymentIntent: "pi_123",
		Fare:          testFare(),
	}
	newFare := models.FareBreakdown{Subtotal: 210, Total: 210, Currency: "eur"}

	repo.On("GetPending", mock.Anything, orderID).Return(pending, nil)
	vehicles.On("GetVehicle", mock.Anything, vehicle.ID).Return(vehicle, nil)
	pricer.On("PriceTrip", mock.Anything, mock.Anything, vehicle).Return(newFare, nil, nil)
	repo.On("UpdatePending", mock.Anything, orderID, mock.Anything, newFare).Return(nil)
	intents.On("UpdateIntentAmount", mock.Anything, "pi_123", int64(21000)).Return(nil)

	svc := newTestService(repo, vehicles, pricer, intents, new(MockPublisher))
	resp, err := svc.UpdatePending(context.Background(), orderID, UpdatePendingRequest{Trip: destinationTrip()})
	require.NoError(t, err)

	assert.Equal(t, 210.0, resp.Fare.Total)
	assert.Equal(t, "TB-ABCD2345", resp.TripID)
	intents.AssertExpectations(t)
}

func TestCreateDirectCashSkipsPartnerReview(t *testing.T) {
	repo := new(MockRepository)
	vehicles := new(MockVehicleFinder)
	pricer := new(MockPricer)
	bus := new(MockPublisher)

	vehicle := activeVehicle()
	vehicles.On("GetVehicle", mock.Anything, vehicle.ID).Return(vehicle, nil)
	pricer.On("PriceTrip", mock.Anything, mock.Anything, vehicle).Return(testFare(), nil, nil)
	repo.On("CreateDirect", mock.Anything, mock.Anything).Return(nil)
	bus.On("Publish", mock.Anything, eventbus.SubjectBookingConfirmed, mock.Anything).Return(nil)

	svc := newTestService(repo, vehicles, pricer, new(MockIntentClient), bus)
	booking, err := svc.CreateDirect(context.Background(), CreateDirectRequest{
		VehicleID:     vehicle.ID,
		Trip:          destinationTrip(),
		Contact:       testContact(),
		PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PartnerReviewNotRequired, booking.PartnerReviewStatus)
	assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
	assert.Equal(t, 15.0, booking.MarginAmount)
	assert.Equal(t, 135.0, booking.PayoutAmount)
	bus.AssertExpectations(t)
}

func TestCreateDirectBankTransferNeedsReview(t *testing.T) {
	repo := new(MockRepository)
	vehicles := new(MockVehicleFinder)
	pricer := new(MockPricer)
	bus := new(MockPublisher)

	vehicle := activeVehicle()
	vehicles.On("GetVehicle", mock.Anything, vehicle.ID).Return(vehicle, nil)
	pricer.On("PriceTrip", mock.Anything, mock.Anything, vehicle).Return(testFare(), nil, nil)
	repo.On("CreateDirect", mock.Anything, mock.Anything).Return(nil)
	bus.On("Publish", mock.Anything, eventbus.SubjectBookingConfirmed, mock.Anything).Return(nil)

	svc := newTestService(repo, vehicles, pricer, new(MockIntentClient), bus)
	booking, err := svc.CreateDirect(context.Background(), CreateDirectRequest{
		VehicleID:     vehicle.ID,
		Trip:          destinationTrip(),
		Contact:       testContact(),
		PaymentMethod: models.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PartnerReviewPending, booking.PartnerReviewStatus)
}

func TestCreateDirectRejectsStripe(t *testing.T) {
	svc := newTestService(new(MockRepository), new(MockVehicleFinder), new(MockPricer), new(MockIntentClient), new(MockPublisher))

	_, err := svc.CreateDirect(context.Background(), CreateDirectRequest{
		VehicleID:     uuid.New(),
		Trip:          destinationTrip(),
		Contact:       testContact(),
		PaymentMethod: models.PaymentMethodStripe,
	})

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestCompleteSettlesCashPayment(t *testing.T) {
	repo := new(MockRepository)
	bus := new(MockPublisher)

	id := uuid.New()
	upcoming := &models.Booking{
		ID:            id,
		TripID:        "TB-CASH2345",
		PaymentMethod: models.PaymentMethodCash,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.BookingStatusUpcoming,
	}
	completed := models.PaymentStatusCompleted
	done := &models.Booking{ID: id, TripID: "TB-CASH2345", Status: models.BookingStatusCompleted, PaymentStatus: completed}

	repo.On("FindByID", mock.Anything, id).Return(upcoming, nil)
	repo.On("Transition", mock.Anything, id, ActionComplete, TransitionParams{PaymentStatus: &completed}).Return(done, nil)
	bus.On("Publish", mock.Anything, eventbus.SubjectBookingCompleted, mock.Anything).Return(nil)

	svc := newTestService(repo, new(MockVehicleFinder), new(MockPricer), new(MockIntentClient), bus)
	booking, err := svc.Complete(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusCompleted, booking.Status)
	repo.AssertExpectations(t)
}

func TestCompleteTerminalBookingConflicts(t *testing.T) {
	repo := new(MockRepository)

	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(&models.Booking{
		ID:            id,
		PaymentMethod: models.PaymentMethodStripe,
		PaymentStatus: models.PaymentStatusCompleted,
		Status:        models.BookingStatusCanceled,
	}, nil)
	repo.On("Transition", mock.Anything, id, ActionComplete, TransitionParams{}).
		Return(nil, common.NewTerminalStateError("canceled"))

	svc := newTestService(repo, new(MockVehicleFinder), new(MockPricer), new(MockIntentClient), new(MockPublisher))
	_, err := svc.Complete(context.Background(), id)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Code)
}
