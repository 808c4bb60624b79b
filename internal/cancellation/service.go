package cancellation

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/UmarSidiki/taxibooking/internal/payments"
	"github.com/UmarSidiki/taxibooking/internal/reservations"
	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/eventbus"
	"github.com/UmarSidiki/taxibooking/pkg/logger"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// ErrNothingToRefund is returned when the payment has no refundable
// remainder left at the provider.
var ErrNothingToRefund = errors.New("nothing left to refund")

// Service cancels bookings and issues the matching refunds. Refunds are
// never retried automatically; an operator re-runs Cancel after a provider
// failure, and re-running against an already-canceled booking with no
// outstanding refund is a safe no-op.
type Service struct {
	repo    reservations.RepositoryInterface
	gateway payments.GatewayClient
	bus     reservations.Publisher
	source  string
}

// NewService creates a new cancellation service
func NewService(repo reservations.RepositoryInterface, gateway payments.GatewayClient, bus reservations.Publisher, source string) *Service {
	return &Service{
		repo:    repo,
		gateway: gateway,
		bus:     bus,
		source:  source,
	}
}

// Cancel cancels an upcoming booking, refunding refundPct percent of the
// total (default 100) when the payment was captured. The refund is clamped
// to what the provider still holds, so a refund the provider already
// processed on its own is never paid out twice.
func (s *Service) Cancel(ctx context.Context, bookingID uuid.UUID, refundPct *float64) (*models.Booking, error) {
	pct := 100.0
	if refundPct != nil {
		pct = *refundPct
	}
	if pct < 0 || pct > 100 {
		return nil, common.NewValidationError("refund percentage must be between 0 and 100")
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("booking not found", err)
		}
		return nil, common.NewInternalError("failed to load booking", err)
	}

	if booking.Status == models.BookingStatusCanceled {
		logger.InfoContext(ctx, "booking already canceled, nothing to do",
			zap.String("trip_id", booking.TripID))
		return booking, nil
	}
	if booking.Status != models.BookingStatusUpcoming {
		return nil, common.NewTerminalStateError(string(booking.Status))
	}

	params := reservations.TransitionParams{}
	switch {
	case booking.PaymentMethod == models.PaymentMethodStripe &&
		booking.PaymentStatus == models.PaymentStatusCompleted &&
		booking.TxnRef != nil:
		if err := s.refundViaProvider(ctx, booking, pct, &params); err != nil {
			return nil, err
		}
	case booking.PaymentMethod == models.PaymentMethodBankTransfer &&
		booking.PaymentStatus == models.PaymentStatusCompleted:
		// No provider holds the money; the transfer back is made by hand
		// and the booking just records the agreed amount.
		s.recordRefund(booking, round2(booking.TotalAmount*pct/100), pct, &params)
	default:
		// Cash or a never-captured payment: nothing was taken, so there
		// is nothing to give back.
	}

	canceled, err := s.repo.Transition(ctx, bookingID, reservations.ActionCancel, params)
	if err != nil {
		return nil, err
	}

	s.publishCancelled(ctx, canceled)
	return canceled, nil
}

// refundViaProvider asks the gateway for the refundable remainder, clamps
// the requested amount to it and issues the refund. Provider errors
// propagate to the caller unchanged so the operator can retry.
func (s *Service) refundViaProvider(ctx context.Context, booking *models.Booking, pct float64, params *reservations.TransitionParams) error {
	details, err := s.gateway.GetIntentDetails(ctx, *booking.TxnRef)
	if err != nil {
		return err
	}

	refundable := details.AmountReceivedCents - details.AmountRefundedCents
	if refundable <= 0 {
		return common.NewConflictError("nothing left to refund", ErrNothingToRefund)
	}

	requested := toCents(booking.TotalAmount * pct / 100)
	if requested > refundable {
		logger.InfoContext(ctx, "refund clamped to provider remainder",
			zap.String("trip_id", booking.TripID),
			zap.Int64("requested_cents", requested),
			zap.Int64("refundable_cents", refundable))
		requested = refundable
	}
	if requested <= 0 {
		// A 0% cancellation keeps the money; the transition still runs.
		return nil
	}

	result, err := s.gateway.Refund(ctx, *booking.TxnRef, requested)
	if err != nil {
		return err
	}

	amount := float64(requested) / 100
	s.recordRefund(booking, amount, round2(amount/booking.TotalAmount*100), params)

	// Stripe reports succeeded or pending for an accepted refund; either
	// way the money is committed and gets recorded.
	if details.AmountRefundedCents+requested >= details.AmountReceivedCents {
		status := models.PaymentStatusRefunded
		params.PaymentStatus = &status
	}

	logger.InfoContext(ctx, "refund issued",
		zap.String("trip_id", booking.TripID),
		zap.String("refund_id", result.ID),
		zap.String("refund_status", result.Status),
		zap.Int64("amount_cents", requested))
	return nil
}

func (s *Service) recordRefund(booking *models.Booking, amount, pct float64, params *reservations.TransitionParams) {
	refundAmount := round2(booking.RefundAmount + amount)
	refundPct := round2(booking.RefundPct + pct)
	params.RefundAmount = &refundAmount
	params.RefundPct = &refundPct
	if booking.PaymentMethod == models.PaymentMethodBankTransfer && pct >= 100 {
		status := models.PaymentStatusRefunded
		params.PaymentStatus = &status
	}
}

func (s *Service) publishCancelled(ctx context.Context, booking *models.Booking) {
	now := time.Now().UTC()
	data := eventbus.BookingCancelledData{
		BookingID:         booking.ID,
		TripID:            booking.TripID,
		CustomerName:      booking.Contact.Name,
		CustomerEmail:     booking.Contact.Email,
		RefundAmount:      booking.RefundAmount,
		RefundPct:         booking.RefundPct,
		PaymentMethod:     string(booking.PaymentMethod),
		AssignedPartnerID: booking.AssignedPartnerID,
		CancelledAt:       now,
	}
	s.publish(ctx, eventbus.SubjectBookingCancelled, data)

	if booking.AssignedPartnerID == nil {
		return
	}
	s.publish(ctx, eventbus.SubjectDispatchReassigned, eventbus.DispatchReassignedData{
		BookingID:  booking.ID,
		TripID:     booking.TripID,
		PartnerID:  *booking.AssignedPartnerID,
		Reason:     "booking canceled",
		NotifiedAt: now,
	})
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

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
