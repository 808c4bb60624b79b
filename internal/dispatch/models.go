package dispatch

import (
	"time"

	"github.com/google/uuid"

	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// AvailableRide is the compact ride summary shown to fleet partners. It
// deliberately omits customer contact details; partners see those only
// after accepting.
type AvailableRide struct {
	BookingID       uuid.UUID `json:"booking_id"`
	TripID          string    `json:"trip_id"`
	BookingType     string    `json:"booking_type"`
	Pickup          string    `json:"pickup"`
	Dropoff         string    `json:"dropoff,omitempty"`
	PickupTime      time.Time `json:"pickup_time"`
	Hours           float64   `json:"hours,omitempty"`
	Passengers      int       `json:"passengers"`
	VehicleCategory string    `json:"vehicle_category"`
	VehicleName     string    `json:"vehicle_name"`
	PayoutAmount    float64   `json:"payout_amount"`
	Currency        string    `json:"currency"`
}

// rideFromBooking builds the partner-facing summary. The payout shown is
// what the partner would earn, computed by the active payout policy.
func rideFromBooking(b *models.Booking, payoutAmount float64) AvailableRide {
	return AvailableRide{
		BookingID:       b.ID,
		TripID:          b.TripID,
		BookingType:     string(b.Trip.BookingType),
		Pickup:          b.Trip.Pickup,
		Dropoff:         b.Trip.Dropoff,
		PickupTime:      b.Trip.PickupTime,
		Hours:           b.Trip.Hours,
		Passengers:      b.Trip.Passengers,
		VehicleCategory: string(b.VehicleCategory),
		VehicleName:     b.VehicleName,
		PayoutAmount:    payoutAmount,
		Currency:        b.Currency,
	}
}

// CreatePartnerRequest registers a fleet partner. Partners start
// unapproved and cannot accept rides until an operator approves them.
type CreatePartnerRequest struct {
	CompanyName          string                 `json:"company_name" binding:"required"`
	ContactName          string                 `json:"contact_name" binding:"required"`
	Email                string                 `json:"email" binding:"required,email"`
	Phone                string                 `json:"phone" binding:"required"`
	CurrentFleetCategory models.VehicleCategory `json:"current_fleet_category" binding:"required"`
}
