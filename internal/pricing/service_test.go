package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/UmarSidiki/taxibooking/internal/maps"
	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/config"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// MockRepository implements RepositoryInterface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockRepository) ListActiveVehicles(ctx context.Context) ([]models.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

type fixedDistance struct {
	km  float64
	err error
}

func (f fixedDistance) DistanceKm(ctx context.Context, origin, destination string, stops []string) (float64, error) {
	return f.km, f.err
}

// recordingDistance captures the route it was asked to resolve.
type recordingDistance struct {
	km    float64
	stops []string
}

func (r *recordingDistance) DistanceKm(ctx context.Context, origin, destination string, stops []string) (float64, error) {
	r.stops = stops
	return r.km, nil
}

func testVehicle() *models.Vehicle {
	return &models.Vehicle{
		ID:         uuid.New(),
		Name:       "Mercedes E-Class",
		Category:   models.CategorySedan,
		Seats:      4,
		Active:     true,
		BasePrice:  20,
		PricePerKm: 1.2,
	}
}

func TestQuoteDestinationTrip(t *testing.T) {
	repo := new(MockRepository)
	vehicle := testVehicle()
	repo.On("GetVehicle", mock.Anything, vehicle.ID).Return(vehicle, nil)

	svc := NewService(repo, fixedDistance{km: 150}, config.TaxConfig{}, "eur")

	quote, err := svc.Quote(context.Background(), QuoteRequest{
		VehicleID: vehicle.ID,
		Trip: models.TripRequest{
			BookingType: models.BookingTypeDestination,
			Pickup:      "Zurich",
			Dropoff:     "Geneva",
			Passengers:  2,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, vehicle.ID, quote.VehicleID)
	require.NotNil(t, quote.DistanceKm)
	assert.Equal(t, 150.0, *quote.DistanceKm)
	assert.Equal(t, 200.0, quote.Fare.Total)
	repo.AssertExpectations(t)
}

func TestQuoteRoutesDistanceThroughStops(t *testing.T) {
	repo := new(MockRepository)
	vehicle := testVehicle()
	repo.On("GetVehicle", mock.Anything, vehicle.ID).Return(vehicle, nil)

	distance := &recordingDistance{km: 180}
	svc := NewService(repo, distance, config.TaxConfig{}, "eur")

	quote, err := svc.Quote(context.Background(), QuoteRequest{
		VehicleID: vehicle.ID,
		Trip: models.TripRequest{
			BookingType: models.BookingTypeDestination,
			Pickup:      "Zurich",
			Dropoff:     "Geneva",
			Stops: []models.Stop{
				{Address: "Bern", WaitMinutes: 30},
				{Address: "Lausanne", WaitMinutes: 15},
			},
			Passengers: 2,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Bern", "Lausanne"}, distance.stops)
	require.NotNil(t, quote.DistanceKm)
	assert.Equal(t, 180.0, *quote.DistanceKm)
	repo.AssertExpectations(t)
}

func TestQuoteDistanceFailureFallsBack(t *testing.T) {
	repo := new(MockRepository)
	vehicle := testVehicle()
	repo.On("GetVehicle", mock.Anything, vehicle.ID).Return(vehicle, nil)

	svc := NewService(repo, fixedDistance{err: maps.ErrUnavailable}, config.TaxConfig{}, "eur")

	quote, err := svc.Quote(context.Background(), QuoteRequest{
		VehicleID: vehicle.ID,
		Trip: models.TripRequest{
			BookingType: models.BookingTypeDestination,
			Pickup:      "Zurich",
			Dropoff:     "Geneva",
			Passengers:  1,
		},
	})
	require.NoError(t, err)

	// Provider failure prices at base price, it never fails the quote.
	assert.Nil(t, quote.DistanceKm)
	assert.Equal(t, 20.0, quote.Fare.Total)
}

func TestQuoteHourlySkipsDistanceLookup(t *testing.T) {
	repo := new(MockRepository)
	vehicle := testVehicle()
	vehicle.PricePerHour = 30
	vehicle.MinimumHours = 2
	repo.On("GetVehicle", mock.Anything, vehicle.ID).Return(vehicle, nil)

	svc := NewService(repo, fixedDistance{err: errors.New("must not be called")}, config.TaxConfig{}, "eur")

	quote, err := svc.Quote(context.Background(), QuoteRequest{
		VehicleID: vehicle.ID,
		Trip: models.TripRequest{
			BookingType: models.BookingTypeHourly,
			Pickup:      "Zurich",
			Hours:       3,
			Passengers:  1,
		},
	})
	require.NoError(t, err)

	assert.Nil(t, quote.DistanceKm)
	assert.Equal(t, 90.0, quote.Fare.Total)
}

func TestQuoteInactiveVehicleRejected(t *testing.T) {
	repo := new(MockRepository)
	vehicle := testVehicle()
	vehicle.Active = false
	repo.On("GetVehicle", mock.Anything, vehicle.ID).Return(vehicle, nil)

	svc := NewService(repo, fixedDistance{km: 10}, config.TaxConfig{}, "eur")

	_, err := svc.Quote(context.Background(), QuoteRequest{
		VehicleID: vehicle.ID,
		Trip: models.TripRequest{
			BookingType: models.BookingTypeDestination,
			Pickup:      "Zurich",
			Dropoff:     "Geneva",
			Passengers:  1,
		},
	})

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestQuoteVehicleNotFound(t *testing.T) {
	repo := new(MockRepository)
	id := uuid.New()
	repo.On("GetVehicle", mock.Anything, id).Return(nil, common.ErrNotFound)

	svc := NewService(repo, fixedDistance{km: 10}, config.TaxConfig{}, "eur")

	_, err := svc.Quote(context.Background(), QuoteRequest{
		VehicleID: id,
		Trip: models.TripRequest{
			BookingType: models.BookingTypeDestination,
			Pickup:      "Zurich",
			Dropoff:     "Geneva",
			Passengers:  1,
		},
	})

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)
}

func TestQuoteInvalidTrip(t *testing.T) {
	svc := NewService(new(MockRepository), fixedDistance{}, config.TaxConfig{}, "eur")

	_, err := svc.Quote(context.Background(), QuoteRequest{
		VehicleID: uuid.New(),
		Trip: models.TripRequest{
			BookingType: models.BookingTypeDestination,
			Pickup:      "Zurich",
			Passengers:  1,
		},
	})

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}
