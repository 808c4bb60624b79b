package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/eventbus"
	"github.com/UmarSidiki/taxibooking/pkg/logger"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// Service runs the first-come-first-served partner dispatch flow
type Service struct {
	repo   RepositoryInterface
	cache  RideCache
	payout PayoutPolicy
	bus    Publisher
	source string
}

// NewService creates a new dispatch service
func NewService(repo RepositoryInterface, cache RideCache, payout PayoutPolicy, bus Publisher, source string) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		payout: payout,
		bus:    bus,
		source: source,
	}
}

// Offer fans a booking out to every eligible partner. There is no
// ordering between partners; whoever accepts first wins.
func (s *Service) Offer(ctx context.Context, booking *models.Booking) error {
	if booking.Status != models.BookingStatusUpcoming || booking.AssignedPartnerID != nil {
		return nil
	}

	partners, err := s.repo.EligiblePartners(ctx, booking.VehicleCategory)
	if err != nil {
		return err
	}
	if len(partners) == 0 {
		logger.InfoContext(ctx, "no eligible partners for booking",
			zap.String("trip_id", booking.TripID),
			zap.String("category", string(booking.VehicleCategory)))
		return nil
	}

	_, payoutAmount := s.payout.Split(booking.TotalAmount)
	ride := rideFromBooking(booking, payoutAmount)

	partnerIDs := make([]uuid.UUID, 0, len(partners))
	for _, partner := range partners {
		if err := s.cache.Add(ctx, partner.ID, ride); err != nil {
			// The partner still sees the ride via the DB fallback.
			logger.WarnContext(ctx, "failed to cache ride offer",
				zap.String("partner_id", partner.ID.String()),
				zap.String("trip_id", booking.TripID), zap.Error(err))
		}
		partnerIDs = append(partnerIDs, partner.ID)
	}

	s.publish(ctx, eventbus.SubjectDispatchOffered, eventbus.DispatchOfferedData{
		BookingID:       booking.ID,
		TripID:          booking.TripID,
		VehicleCategory: string(booking.VehicleCategory),
		Pickup:          booking.Trip.Pickup,
		PickupTime:      booking.Trip.PickupTime,
		PartnerIDs:      partnerIDs,
		OfferedAt:       time.Now().UTC(),
	})

	logger.InfoContext(ctx, "booking offered to partners",
		zap.String("trip_id", booking.TripID),
		zap.Int("partner_count", len(partnerIDs)))
	return nil
}

// Accept assigns the booking to the partner if it is still free. Exactly
// one of any number of concurrent callers succeeds; the rest get an
// already-taken conflict.
func (s *Service) Accept(ctx context.Context, bookingID, partnerID uuid.UUID) (*models.Booking, error) {
	partner, err := s.repo.GetPartner(ctx, partnerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("fleet partner not found", err)
		}
		return nil, common.NewInternalError("failed to load partner", err)
	}
	if !partner.Approved {
		return nil, common.NewForbiddenError("partner is not approved to accept rides")
	}

	booking, err := s.repo.FindBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("booking not found", err)
		}
		return nil, common.NewInternalError("failed to load booking", err)
	}
	if booking.VehicleCategory != partner.CurrentFleetCategory {
		return nil, common.NewForbiddenError("booking is outside the partner's fleet category")
	}

	marginAmount, payoutAmount := s.payout.Split(booking.TotalAmount)
	accepted, err := s.repo.Accept(ctx, bookingID, partnerID, s.payout.MarginPct(), marginAmount, payoutAmount)
	if err != nil {
		return nil, err
	}

	s.withdrawOffer(ctx, accepted)

	s.publish(ctx, eventbus.SubjectDispatchAccepted, eventbus.DispatchAcceptedData{
		BookingID:    accepted.ID,
		TripID:       accepted.TripID,
		PartnerID:    partnerID,
		PayoutAmount: accepted.PayoutAmount,
		AcceptedAt:   time.Now().UTC(),
	})

	logger.InfoContext(ctx, "ride accepted",
		zap.String("trip_id", accepted.TripID),
		zap.String("partner_id", partnerID.String()),
		zap.Float64("payout_amount", accepted.PayoutAmount))
	return accepted, nil
}

// withdrawOffer removes an accepted ride from every eligible partner's
// cached view, the winner's included.
func (s *Service) withdrawOffer(ctx context.Context, booking *models.Booking) {
	partners, err := s.repo.EligiblePartners(ctx, booking.VehicleCategory)
	if err != nil {
		logger.WarnContext(ctx, "failed to list partners for offer withdrawal",
			zap.String("trip_id", booking.TripID), zap.Error(err))
		return
	}
	for _, partner := range partners {
		if err := s.cache.Remove(ctx, partner.ID, booking.ID); err != nil {
			logger.WarnContext(ctx, "failed to withdraw cached offer",
				zap.String("partner_id", partner.ID.String()),
				zap.String("trip_id", booking.TripID), zap.Error(err))
		}
	}
}

// AvailableRides lists the rides currently offered to a partner, falling
// back to the database when the cache is cold or unavailable.
func (s *Service) AvailableRides(ctx context.Context, partnerID uuid.UUID) ([]AvailableRide, error) {
	rides, err := s.cache.List(ctx, partnerID)
	if err == nil && len(rides) > 0 {
		return rides, nil
	}
	if err != nil {
		logger.WarnContext(ctx, "ride cache unavailable, falling back to database",
			zap.String("partner_id", partnerID.String()), zap.Error(err))
	}

	partner, err := s.repo.GetPartner(ctx, partnerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("fleet partner not found", err)
		}
		return nil, common.NewInternalError("failed to load partner", err)
	}

	bookings, err := s.repo.UnassignedByCategory(ctx, partner.CurrentFleetCategory)
	if err != nil {
		return nil, common.NewInternalError("failed to list available rides", err)
	}

	rides = make([]AvailableRide, 0, len(bookings))
	for i := range bookings {
		_, payoutAmount := s.payout.Split(bookings[i].TotalAmount)
		rides = append(rides, rideFromBooking(&bookings[i], payoutAmount))
	}
	return rides, nil
}

// ApproveReview releases a reviewed booking and immediately offers it to
// partners.
func (s *Service) ApproveReview(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.ApproveReview(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.Offer(ctx, booking); err != nil {
		// The booking is released either way; partners still find it
		// through the DB fallback.
		logger.WarnContext(ctx, "failed to offer reviewed booking",
			zap.String("trip_id", booking.TripID), zap.Error(err))
	}
	return booking, nil
}

// CreatePartner registers a fleet partner.
func (s *Service) CreatePartner(ctx context.Context, req CreatePartnerRequest) (*models.FleetPartner, error) {
	if !req.CurrentFleetCategory.Valid() {
		return nil, common.NewValidationError("unknown fleet category")
	}

	partner := &models.FleetPartner{
		CompanyName:          req.CompanyName,
		ContactName:          req.ContactName,
		Email:                req.Email,
		Phone:                req.Phone,
		CurrentFleetCategory: req.CurrentFleetCategory,
	}
	if err := s.repo.CreatePartner(ctx, partner); err != nil {
		return nil, common.NewInternalError("failed to create partner", err)
	}
	return partner, nil
}

// ListPartners returns all fleet partners.
func (s *Service) ListPartners(ctx context.Context) ([]models.FleetPartner, error) {
	partners, err := s.repo.ListPartners(ctx)
	if err != nil {
		return nil, common.NewInternalError("failed to list partners", err)
	}
	return partners, nil
}

// ApprovePartner marks a partner as approved.
func (s *Service) ApprovePartner(ctx context.Context, id uuid.UUID) (*models.FleetPartner, error) {
	return s.repo.ApprovePartner(ctx, id)
}

// HandleBookingConfirmed consumes booking confirmations from the bus and
// offers dispatchable bookings to partners.
func (s *Service) HandleBookingConfirmed(ctx context.Context, event *eventbus.Event) error {
	var data eventbus.BookingConfirmedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		logger.ErrorContext(ctx, "malformed booking confirmed event", zap.Error(err))
		// Redelivery cannot fix a malformed payload.
		return nil
	}
	if !data.NeedsDispatch {
		return nil
	}

	booking, err := s.repo.FindBooking(ctx, data.BookingID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			logger.WarnContext(ctx, "confirmed booking not found for dispatch",
				zap.String("booking_id", data.BookingID.String()))
			return nil
		}
		return err
	}
	return s.Offer(ctx, booking)
}

func (s *Service) publish(ctx context.Context, subject string, data interface{}) {
	event, err := eventbus.NewEvent(subject, s.source, data)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.WarnContext(ctx, "failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
