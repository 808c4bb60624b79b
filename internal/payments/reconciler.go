package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/UmarSidiki/taxibooking/internal/reservations"
	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/config"
	"github.com/UmarSidiki/taxibooking/pkg/eventbus"
	"github.com/UmarSidiki/taxibooking/pkg/logger"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// BookingAnnouncer is the slice of the reservations service the reconciler
// uses after a successful commit.
type BookingAnnouncer interface {
	PublishConfirmed(ctx context.Context, booking *models.Booking)
	ReviewStatusFor(method models.PaymentMethod) models.PartnerReviewStatus
}

// Reconciler turns verified provider events into booking state. Every
// handler is idempotent: the provider redelivers webhooks at will, and two
// deliveries of the same event must end in the same state as one.
type Reconciler struct {
	repo      reservations.RepositoryInterface
	announcer BookingAnnouncer
	bus       reservations.Publisher
	partner   config.PartnerConfig
	source    string
}

// NewReconciler creates a new payment reconciler
func NewReconciler(repo reservations.RepositoryInterface, announcer BookingAnnouncer, bus reservations.Publisher, partner config.PartnerConfig, source string) *Reconciler {
	return &Reconciler{
		repo:      repo,
		announcer: announcer,
		bus:       bus,
		partner:   partner,
		source:    source,
	}
}

// Handle dispatches a provider event. The union is closed, so the switch
// is exhaustive.
func (r *Reconciler) Handle(ctx context.Context, ev ProviderEvent) error {
	switch e := ev.(type) {
	case PaymentSucceeded:
		return r.handleSucceeded(ctx, e)
	case PaymentFailed:
		return r.handleFailed(ctx, e)
	case ChargeRefunded:
		return r.handleRefunded(ctx, e)
	default:
		return fmt.Errorf("unexpected provider event %T", ev)
	}
}

func (r *Reconciler) handleSucceeded(ctx context.Context, e PaymentSucceeded) error {
	if _, err := r.repo.FindByTxnRef(ctx, e.TxnRef); err == nil {
		logger.InfoContext(ctx, "duplicate payment notification ignored",
			zap.String("txn_ref", e.TxnRef))
		return nil
	}

	pending, err := r.repo.GetPending(ctx, e.OrderID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// The pending reservation is gone and no booking holds the
			// payment: most likely a stale redelivery after cleanup.
			logger.WarnContext(ctx, "payment succeeded for unknown order",
				zap.String("order_id", e.OrderID.String()),
				zap.String("txn_ref", e.TxnRef))
			return nil
		}
		return err
	}

	booking, err := r.repo.CommitPending(ctx, reservations.CommitParams{
		OrderID:      e.OrderID,
		TxnRef:       e.TxnRef,
		PaidAmount:   e.AmountReceived,
		MarginPct:    r.partner.MarginPct,
		ReviewStatus: r.announcer.ReviewStatusFor(models.PaymentMethodStripe),
	})
	switch {
	case errors.Is(err, common.ErrAlreadyCommitted):
		logger.InfoContext(ctx, "booking already committed for payment",
			zap.String("txn_ref", e.TxnRef))
		return nil
	case errors.Is(err, reservations.ErrVehicleVanished):
		// The customer paid but the booking cannot be created. This needs
		// a human immediately.
		logger.ErrorContext(ctx, "paid reservation references missing vehicle",
			zap.String("order_id", e.OrderID.String()),
			zap.String("txn_ref", e.TxnRef),
			zap.Float64("amount", e.AmountReceived))
		sentry.CaptureException(fmt.Errorf("paid order %s: %w", e.OrderID, err))
		return err
	case err != nil:
		return err
	}

	if err := r.repo.DeletePending(ctx, e.OrderID); err != nil {
		logger.WarnContext(ctx, "failed to clean up pending reservation",
			zap.String("order_id", e.OrderID.String()),
			zap.Error(err))
	}

	if booking.AmountMismatch {
		logger.WarnContext(ctx, "payment amount outside tolerance, booking flagged",
			zap.String("trip_id", booking.TripID),
			zap.Float64("expected", pending.Fare.Total),
			zap.Float64("paid", e.AmountReceived))
		r.publish(ctx, eventbus.SubjectBookingFlagged, eventbus.BookingFlaggedData{
			BookingID:      booking.ID,
			TripID:         booking.TripID,
			ExpectedAmount: pending.Fare.Total,
			PaidAmount:     e.AmountReceived,
			FlaggedAt:      time.Now().UTC(),
		})
	}

	r.announcer.PublishConfirmed(ctx, booking)

	logger.InfoContext(ctx, "payment reconciled",
		zap.String("trip_id", booking.TripID),
		zap.String("txn_ref", e.TxnRef),
		zap.Float64("amount", e.AmountReceived))
	return nil
}

func (r *Reconciler) handleFailed(ctx context.Context, e PaymentFailed) error {
	// Deleting an absent pending is a no-op, which makes the failed and
	// succeeded paths safe under reordering: once a booking is committed
	// the pending row is gone and a late failure changes nothing.
	if err := r.repo.DeletePending(ctx, e.OrderID); err != nil {
		return err
	}

	r.publish(ctx, eventbus.SubjectPaymentFailed, eventbus.PaymentFailedData{
		OrderID:  e.OrderID,
		FailedAt: time.Now().UTC(),
	})

	logger.InfoContext(ctx, "payment failed, pending reservation released",
		zap.String("order_id", e.OrderID.String()))
	return nil
}

func (r *Reconciler) handleRefunded(ctx context.Context, e ChargeRefunded) error {
	booking, err := r.repo.FindByTxnRef(ctx, e.TxnRef)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			logger.WarnContext(ctx, "refund for unknown payment ignored",
				zap.String("txn_ref", e.TxnRef))
			return nil
		}
		return err
	}

	refundPct := 0.0
	if booking.TotalAmount > 0 {
		refundPct = math.Round(e.AmountRefunded/booking.TotalAmount*100*100) / 100
	}

	updated, err := r.repo.UpdateProviderRefund(ctx, e.TxnRef, e.AmountRefunded, refundPct, e.FullyRefunded)
	if err != nil {
		return err
	}

	r.publish(ctx, eventbus.SubjectPaymentRefunded, eventbus.PaymentRefundedData{
		BookingID:      updated.ID,
		TripID:         updated.TripID,
		RefundAmount:   e.AmountRefunded,
		RefundPct:      refundPct,
		FullyRefunded:  e.FullyRefunded,
		ProviderDriven: true,
		RefundedAt:     time.Now().UTC(),
	})

	logger.InfoContext(ctx, "provider refund recorded",
		zap.String("trip_id", updated.TripID),
		zap.Float64("refund_amount", e.AmountRefunded),
		zap.Float64("refund_pct", refundPct))
	return nil
}

func (r *Reconciler) publish(ctx context.Context, subject string, data interface{}) {
	event, err := eventbus.NewEvent(subject, r.source, data)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := r.bus.Publish(ctx, subject, event); err != nil {
		logger.WarnContext(ctx, "failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
