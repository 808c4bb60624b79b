package pricing

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/UmarSidiki/taxibooking/internal/maps"
	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/config"
	"github.com/UmarSidiki/taxibooking/pkg/logger"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// Service handles fare quoting
type Service struct {
	repo     RepositoryInterface
	distance maps.DistanceProvider
	tax      config.TaxConfig
	currency string
}

// NewService creates a new pricing service
func NewService(repo RepositoryInterface, distance maps.DistanceProvider, tax config.TaxConfig, currency string) *Service {
	return &Service{
		repo:     repo,
		distance: distance,
		tax:      tax,
		currency: currency,
	}
}

// Quote computes the fare for the given trip and vehicle.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	if err := req.Trip.Validate(); err != nil {
		return nil, common.NewValidationError(err.Error())
	}

	vehicle, err := s.repo.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("vehicle not found", err)
		}
		return nil, common.NewInternalError("failed to load vehicle", err)
	}

	profile, err := vehicle.NormalizeProfile()
	if err != nil {
		return nil, common.NewValidationError(err.Error())
	}

	distanceKm := s.resolveDistance(ctx, &req.Trip)

	fare, err := ComputeFare(&req.Trip, profile, s.tax, distanceKm, s.currency)
	if err != nil {
		return nil, common.NewValidationError(err.Error())
	}

	return &QuoteResponse{
		VehicleID:   vehicle.ID,
		VehicleName: vehicle.Name,
		Trip:        req.Trip,
		DistanceKm:  distanceKm,
		Fare:        fare,
	}, nil
}

// PriceTrip computes the fare for a trip against a vehicle that the caller
// already resolved. Used by the reservation flow, which snapshots the
// vehicle anyway.
func (s *Service) PriceTrip(ctx context.Context, trip *models.TripRequest, vehicle *models.Vehicle) (models.FareBreakdown, *float64, error) {
	profile, err := vehicle.NormalizeProfile()
	if err != nil {
		return models.FareBreakdown{}, nil, common.NewValidationError(err.Error())
	}

	distanceKm := s.resolveDistance(ctx, trip)

	fare, err := ComputeFare(trip, profile, s.tax, distanceKm, s.currency)
	if err != nil {
		return models.FareBreakdown{}, nil, common.NewValidationError(err.Error())
	}
	return fare, distanceKm, nil
}

// ListVehicles returns all active vehicles.
func (s *Service) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	vehicles, err := s.repo.ListActiveVehicles(ctx)
	if err != nil {
		return nil, common.NewInternalError("failed to list vehicles", err)
	}
	return vehicles, nil
}

// resolveDistance returns the driving distance for destination trips, or
// nil when the trip is hourly or the provider cannot resolve a route. A
// provider failure falls back to base-price pricing instead of failing the
// quote.
func (s *Service) resolveDistance(ctx context.Context, trip *models.TripRequest) *float64 {
	if trip.BookingType != models.BookingTypeDestination {
		return nil
	}
	if trip.DistanceKm != nil {
		return trip.DistanceKm
	}

	stops := make([]string, 0, len(trip.Stops))
	for _, stop := range trip.Stops {
		stops = append(stops, stop.Address)
	}

	km, err := s.distance.DistanceKm(ctx, trip.Pickup, trip.Dropoff, stops)
	if err != nil {
		logger.WithContext(ctx).Warn("distance lookup failed, pricing without distance",
			zap.String("pickup", trip.Pickup),
			zap.String("dropoff", trip.Dropoff),
			zap.Error(err))
		return nil
	}
	return &km
}
