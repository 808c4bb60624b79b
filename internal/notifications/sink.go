package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/UmarSidiki/taxibooking/pkg/eventbus"
	"github.com/UmarSidiki/taxibooking/pkg/logger"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// PartnerDirectory resolves fleet partner contact details.
type PartnerDirectory interface {
	GetPartner(ctx context.Context, id uuid.UUID) (*models.FleetPartner, error)
}

// Subscriber is the event bus surface the sink consumes from.
type Subscriber interface {
	Subscribe(ctx context.Context, subject, consumerName string, handler eventbus.HandlerFunc) error
}

// Sink consumes platform events and turns them into customer, admin and
// partner notifications. Every handler is best-effort: a failed send is
// logged and acked, never redelivered.
type Sink struct {
	email      EmailClientInterface
	sms        SMSClientInterface
	partners   PartnerDirectory
	adminEmail string
	smsEnabled bool
}

// NewSink creates a new notification sink
func NewSink(email EmailClientInterface, sms SMSClientInterface, partners PartnerDirectory, adminEmail string, smsEnabled bool) *Sink {
	return &Sink{
		email:      email,
		sms:        sms,
		partners:   partners,
		adminEmail: adminEmail,
		smsEnabled: smsEnabled,
	}
}

// Register creates the durable subscriptions for all handled subjects.
func (s *Sink) Register(ctx context.Context, bus Subscriber) error {
	subs := []struct {
		subject  string
		consumer string
		handler  eventbus.HandlerFunc
	}{
		{eventbus.SubjectBookingConfirmed, "notifications-bookings-confirmed", s.HandleBookingConfirmed},
		{eventbus.SubjectBookingCancelled, "notifications-bookings-cancelled", s.HandleBookingCancelled},
		{eventbus.SubjectBookingFlagged, "notifications-bookings-flagged", s.HandleBookingFlagged},
		{eventbus.SubjectDispatchOffered, "notifications-dispatch-offered", s.HandleDispatchOffered},
		{eventbus.SubjectDispatchAccepted, "notifications-dispatch-accepted", s.HandleDispatchAccepted},
		{eventbus.SubjectDispatchReassigned, "notifications-dispatch-reassigned", s.HandleDispatchReassigned},
	}

	for _, sub := range subs {
		if err := bus.Subscribe(ctx, sub.subject, sub.consumer, sub.handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", sub.subject, err)
		}
	}
	return nil
}

// HandleBookingConfirmed sends the customer confirmation email
func (s *Sink) HandleBookingConfirmed(ctx context.Context, event *eventbus.Event) error {
	var data eventbus.BookingConfirmedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		logger.WarnContext(ctx, "malformed booking confirmed event", zap.Error(err))
		return nil
	}

	details := map[string]interface{}{
		"Trip Reference": data.TripID,
		"Pickup":         data.Pickup,
		"Pickup Time":    data.PickupTime.Format("02 Jan 2006 15:04"),
		"Vehicle":        data.VehicleName,
		"Payment":        data.PaymentMethod,
		"Total":          fmt.Sprintf("%.2f %s", data.TotalAmount, data.Currency),
	}
	if data.Dropoff != "" {
		details["Dropoff"] = data.Dropoff
	}

	if err := s.email.SendBookingConfirmation(data.CustomerEmail, data.CustomerName, details); err != nil {
		logger.WarnContext(ctx, "confirmation email failed",
			zap.String("trip_id", data.TripID), zap.Error(err))
	}
	return nil
}

// HandleBookingCancelled sends the customer cancellation email
func (s *Sink) HandleBookingCancelled(ctx context.Context, event *eventbus.Event) error {
	var data eventbus.BookingCancelledData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		logger.WarnContext(ctx, "malformed booking cancelled event", zap.Error(err))
		return nil
	}

	details := map[string]interface{}{
		"Trip Reference": data.TripID,
	}
	if data.RefundAmount > 0 {
		details["Refund"] = fmt.Sprintf("%.2f (%.0f%%)", data.RefundAmount, data.RefundPct)
	}

	if err := s.email.SendCancellationNotice(data.CustomerEmail, data.CustomerName, details); err != nil {
		logger.WarnContext(ctx, "cancellation email failed",
			zap.String("trip_id", data.TripID), zap.Error(err))
	}
	return nil
}

// HandleBookingFlagged alerts the operations inbox about an amount
// mismatch
func (s *Sink) HandleBookingFlagged(ctx context.Context, event *eventbus.Event) error {
	var data eventbus.BookingFlaggedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		logger.WarnContext(ctx, "malformed booking flagged event", zap.Error(err))
		return nil
	}
	if s.adminEmail == "" {
		return nil
	}

	body := fmt.Sprintf(
		"Booking %s was committed with an amount mismatch.\n\nExpected: %.2f\nPaid: %.2f\n\nPlease review the payment before the trip.",
		data.TripID, data.ExpectedAmount, data.PaidAmount)

	if err := s.email.SendEmail(s.adminEmail, "Amount mismatch on "+data.TripID, body); err != nil {
		logger.WarnContext(ctx, "flag alert email failed",
			zap.String("trip_id", data.TripID), zap.Error(err))
	}
	return nil
}

// HandleDispatchOffered notifies each offered partner by SMS
func (s *Sink) HandleDispatchOffered(ctx context.Context, event *eventbus.Event) error {
	var data eventbus.DispatchOfferedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		logger.WarnContext(ctx, "malformed dispatch offered event", zap.Error(err))
		return nil
	}

	message := fmt.Sprintf("New ride %s: %s pickup on %s. First to accept wins.",
		data.TripID, data.Pickup, data.PickupTime.Format("02 Jan 15:04"))

	for _, partnerID := range data.PartnerIDs {
		s.notifyPartner(ctx, partnerID, "New ride available", message)
	}
	return nil
}

// HandleDispatchAccepted confirms the assignment to the winning partner
func (s *Sink) HandleDispatchAccepted(ctx context.Context, event *eventbus.Event) error {
	var data eventbus.DispatchAcceptedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		logger.WarnContext(ctx, "malformed dispatch accepted event", zap.Error(err))
		return nil
	}

	message := fmt.Sprintf("Ride %s is yours. Payout: %.2f. Trip details are in your portal.",
		data.TripID, data.PayoutAmount)
	s.notifyPartner(ctx, data.PartnerID, "Ride assigned", message)
	return nil
}

// HandleDispatchReassigned tells a partner the ride is no longer theirs
func (s *Sink) HandleDispatchReassigned(ctx context.Context, event *eventbus.Event) error {
	var data eventbus.DispatchReassignedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		logger.WarnContext(ctx, "malformed dispatch reassigned event", zap.Error(err))
		return nil
	}

	message := fmt.Sprintf("Ride %s was withdrawn: %s.", data.TripID, data.Reason)
	s.notifyPartner(ctx, data.PartnerID, "Ride withdrawn", message)
	return nil
}

// notifyPartner sends an SMS when enabled, falling back to email.
func (s *Sink) notifyPartner(ctx context.Context, partnerID uuid.UUID, subject, message string) {
	partner, err := s.partners.GetPartner(ctx, partnerID)
	if err != nil {
		logger.WarnContext(ctx, "partner lookup failed for notification",
			zap.String("partner_id", partnerID.String()), zap.Error(err))
		return
	}

	if s.smsEnabled && partner.Phone != "" {
		if _, err := s.sms.SendSMS(partner.Phone, message); err == nil {
			return
		}
		// Fall through to email on SMS failure.
	}

	if err := s.email.SendEmail(partner.Email, subject, message); err != nil {
		logger.WarnContext(ctx, "partner notification failed",
			zap.String("partner_id", partnerID.String()), zap.Error(err))
	}
}
