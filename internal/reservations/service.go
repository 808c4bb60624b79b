package reservations

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/config"
	"github.com/UmarSidiki/taxibooking/pkg/eventbus"
	"github.com/UmarSidiki/taxibooking/pkg/logger"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// FarePricer computes the fare for a trip against a resolved vehicle.
type FarePricer interface {
	PriceTrip(ctx context.Context, trip *models.TripRequest, vehicle *models.Vehicle) (models.FareBreakdown, *float64, error)
}

// Service handles the reservation lifecycle
type Service struct {
	repo     RepositoryInterface
	vehicles VehicleFinder
	pricer   FarePricer
	intents  PaymentIntentClient
	bus      Publisher
	partner  config.PartnerConfig
	source   string
}

// NewService creates a new reservations service
func NewService(repo RepositoryInterface, vehicles VehicleFinder, pricer FarePricer, intents PaymentIntentClient, bus Publisher, partner config.PartnerConfig, source string) *Service {
	return &Service{
		repo:     repo,
		vehicles: vehicles,
		pricer:   pricer,
		intents:  intents,
		bus:      bus,
		partner:  partner,
		source:   source,
	}
}

// CreatePending prices the trip, opens a payment intent and stores a
// provisional reservation keyed by a fresh order ID.
func (s *Service) CreatePending(ctx context.Context, req CreatePendingRequest) (*PendingResponse, error) {
	if err := req.Trip.Validate(); err != nil {
		return nil, common.NewValidationError(err.Error())
	}

	vehicle, err := s.vehicles.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("vehicle not found", err)
		}
		return nil, common.NewInternalError("failed to load vehicle", err)
	}

	fare, _, err := s.pricer.PriceTrip(ctx, &req.Trip, vehicle)
	if err != nil {
		return nil, err
	}

	orderID := uuid.New()
	tripID, err := GenerateTripID()
	if err != nil {
		return nil, common.NewInternalError("failed to generate trip reference", err)
	}

	intent, err := s.intents.CreateIntent(ctx, toCents(fare.Total), fare.Currency, map[string]string{
		"order_id": orderID.String(),
		"trip_id":  tripID,
	})
	if err != nil {
		return nil, common.NewInternalError("failed to create payment intent", err)
	}

	pending := &models.PendingReservation{
		OrderID:       orderID,
		TripID:        tripID,
		Trip:          req.Trip,
		VehicleID:     vehicle.ID,
		Contact:       req.Contact,
		Fare:          fare,
		PaymentIntent: intent.ID,
	}
	if err := s.repo.CreatePending(ctx, pending); err != nil {
		return nil, common.NewInternalError("failed to store reservation", err)
	}

	logger.InfoContext(ctx, "pending reservation created",
		zap.String("order_id", orderID.String()),
		zap.String("trip_id", tripID),
		zap.Float64("total", fare.Total))

	return &PendingResponse{
		OrderID:      orderID,
		TripID:       tripID,
		Fare:         fare,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// UpdatePending reprices a provisional reservation after the customer
// edited the trip, and keeps the payment intent amount in sync.
func (s *Service) UpdatePending(ctx context.Context, orderID uuid.UUID, req UpdatePendingRequest) (*PendingResponse, error) {
	if err := req.Trip.Validate(); err != nil {
		return nil, common.NewValidationError(err.Error())
	}

	pending, err := s.repo.GetPending(ctx, orderID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("reservation not found", err)
		}
		return nil, common.NewInternalError("failed to load reservation", err)
	}

	vehicle, err := s.vehicles.GetVehicle(ctx, pending.VehicleID)
	if err != nil {
		return nil, common.NewInternalError("failed to load vehicle", err)
	}

	fare, _, err := s.pricer.PriceTrip(ctx, &req.Trip, vehicle)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePending(ctx, orderID, &req.Trip, fare); err != nil {
		return nil, common.NewInternalError("failed to update reservation", err)
	}

	if err := s.intents.UpdateIntentAmount(ctx, pending.PaymentIntent, toCents(fare.Total)); err != nil {
		return nil, common.NewInternalError("failed to update payment intent", err)
	}

	return &PendingResponse{
		OrderID: orderID,
		TripID:  pending.TripID,
		Fare:    fare,
	}, nil
}

// CreateDirect books immediately with an offline payment method. Cash
// bookings skip partner review and go straight to dispatch.
func (s *Service) CreateDirect(ctx context.Context, req CreateDirectRequest) (*models.Booking, error) {
	if req.PaymentMethod != models.PaymentMethodCash && req.PaymentMethod != models.PaymentMethodBankTransfer {
		return nil, common.NewValidationError("payment method must be cash or bank_transfer")
	}
	if err := req.Trip.Validate(); err != nil {
		return nil, common.NewValidationError(err.Error())
	}

	vehicle, err := s.vehicles.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("vehicle not found", err)
		}
		return nil, common.NewInternalError("failed to load vehicle", err)
	}

	fare, _, err := s.pricer.PriceTrip(ctx, &req.Trip, vehicle)
	if err != nil {
		return nil, err
	}

	tripID, err := GenerateTripID()
	if err != nil {
		return nil, common.NewInternalError("failed to generate trip reference", err)
	}

	marginAmount := round2(fare.Total * s.partner.MarginPct / 100)
	booking := &models.Booking{
		ID:                  uuid.New(),
		TripID:              tripID,
		Trip:                req.Trip,
		Contact:             req.Contact,
		VehicleID:           vehicle.ID,
		VehicleName:         vehicle.Name,
		VehicleCategory:     vehicle.Category,
		VehicleSeats:        vehicle.Seats,
		Subtotal:            fare.Subtotal,
		TaxPct:              fare.TaxPct,
		TaxIncluded:         fare.TaxIncluded,
		TaxAmount:           fare.TaxAmount,
		TotalAmount:         fare.Total,
		Currency:            fare.Currency,
		PaymentMethod:       req.PaymentMethod,
		PaymentStatus:       models.PaymentStatusPending,
		Status:              models.BookingStatusUpcoming,
		PartnerReviewStatus: s.ReviewStatusFor(req.PaymentMethod),
		MarginPct:           s.partner.MarginPct,
		MarginAmount:        marginAmount,
		PayoutAmount:        round2(fare.Total - marginAmount),
	}

	if err := s.repo.CreateDirect(ctx, booking); err != nil {
		return nil, common.NewInternalError("failed to store booking", err)
	}

	s.PublishConfirmed(ctx, booking)
	return booking, nil
}

// Complete marks an upcoming booking as completed. Cash fares are settled
// with the driver, so completion also settles the payment side.
func (s *Service) Complete(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	params := TransitionParams{}
	if existing, err := s.repo.FindByID(ctx, bookingID); err == nil &&
		existing.PaymentMethod == models.PaymentMethodCash &&
		existing.PaymentStatus == models.PaymentStatusPending {
		completed := models.PaymentStatusCompleted
		params.PaymentStatus = &completed
	}

	booking, err := s.repo.Transition(ctx, bookingID, ActionComplete, params)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("booking not found", err)
		}
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, common.NewInternalError("failed to complete booking", err)
	}

	if event, err := eventbus.NewEvent(eventbus.SubjectBookingCompleted, s.source, eventbus.BookingCompletedData{
		BookingID:   booking.ID,
		TripID:      booking.TripID,
		CompletedAt: time.Now().UTC(),
	}); err == nil {
		if err := s.bus.Publish(ctx, eventbus.SubjectBookingCompleted, event); err != nil {
			logger.WarnContext(ctx, "failed to publish booking completed", zap.Error(err))
		}
	}

	return booking, nil
}

// GetBooking retrieves a booking by ID.
func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("booking not found", err)
		}
		return nil, common.NewInternalError("failed to load booking", err)
	}
	return booking, nil
}

// GetBookingByTripID retrieves a booking by its trip reference.
func (s *Service) GetBookingByTripID(ctx context.Context, tripID string) (*models.Booking, error) {
	booking, err := s.repo.FindByTripID(ctx, tripID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("booking not found", err)
		}
		return nil, common.NewInternalError("failed to load booking", err)
	}
	return booking, nil
}

// ListBookings returns bookings, newest first.
func (s *Service) ListBookings(ctx context.Context, status *models.BookingStatus, limit, offset int) ([]models.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	bookings, err := s.repo.ListBookings(ctx, status, limit, offset)
	if err != nil {
		return nil, common.NewInternalError("failed to list bookings", err)
	}
	return bookings, nil
}

// ReviewStatusFor decides whether a booking needs operator review before
// partner dispatch. Cash bookings never do.
func (s *Service) ReviewStatusFor(method models.PaymentMethod) models.PartnerReviewStatus {
	if !s.partner.Enabled || method == models.PaymentMethodCash {
		return models.PartnerReviewNotRequired
	}
	return models.PartnerReviewPending
}

// PublishConfirmed emits booking.confirmed for a committed booking.
func (s *Service) PublishConfirmed(ctx context.Context, booking *models.Booking) {
	data := eventbus.BookingConfirmedData{
		BookingID:       booking.ID,
		TripID:          booking.TripID,
		CustomerName:    booking.Contact.Name,
		CustomerEmail:   booking.Contact.Email,
		CustomerPhone:   booking.Contact.Phone,
		BookingType:     string(booking.Trip.BookingType),
		Pickup:          booking.Trip.Pickup,
		Dropoff:         booking.Trip.Dropoff,
		PickupTime:      booking.Trip.PickupTime,
		VehicleName:     booking.VehicleName,
		VehicleCategory: string(booking.VehicleCategory),
		PaymentMethod:   string(booking.PaymentMethod),
		TotalAmount:     booking.TotalAmount,
		Currency:        booking.Currency,
		AmountMismatch:  booking.AmountMismatch,
		NeedsDispatch:   booking.PartnerReviewStatus == models.PartnerReviewNotRequired,
		ConfirmedAt:     time.Now().UTC(),
	}

	event, err := eventbus.NewEvent(eventbus.SubjectBookingConfirmed, s.source, data)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build booking confirmed event", zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, eventbus.SubjectBookingConfirmed, event); err != nil {
		logger.WarnContext(ctx, "failed to publish booking confirmed",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err))
	}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
