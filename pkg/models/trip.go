package models

import "time"

// BookingType distinguishes destination transfers from hourly hires.
type BookingType string

const (
	BookingTypeDestination BookingType = "destination"
	BookingTypeHourly      BookingType = "hourly"
)

// Stop is an intermediate stop on a destination trip.
type Stop struct {
	Address     string  `json:"address"`
	WaitMinutes float64 `json:"wait_minutes"`
}

// TripRequest captures everything the customer configured for a trip.
// DistanceKm comes from an external distance provider and is treated as an
// opaque input; nil means the distance is unknown.
type TripRequest struct {
	BookingType BookingType `json:"booking_type"`
	Pickup      string      `json:"pickup"`
	Dropoff     string      `json:"dropoff,omitempty"`
	Stops       []Stop      `json:"stops,omitempty"`
	RoundTrip   bool        `json:"round_trip"`
	Hours       float64     `json:"hours,omitempty"`
	PickupTime  time.Time   `json:"pickup_time"`
	Passengers  int         `json:"passengers"`
	ChildSeats  int         `json:"child_seats"`
	BabySeats   int         `json:"baby_seats"`
	DistanceKm  *float64    `json:"distance_km,omitempty"`
}

// Validate checks trip parameters before any pricing or persistence.
func (t *TripRequest) Validate() error {
	switch t.BookingType {
	case BookingTypeDestination:
		if t.Pickup == "" || t.Dropoff == "" {
			return ErrTripIncomplete
		}
	case BookingTypeHourly:
		if t.Pickup == "" {
			return ErrTripIncomplete
		}
		if t.Hours <= 0 {
			return ErrTripInvalidHours
		}
	default:
		return ErrTripUnknownType
	}

	if t.Passengers <= 0 {
		return ErrTripNoPassengers
	}
	if t.ChildSeats < 0 || t.BabySeats < 0 {
		return ErrTripNegativeSeats
	}
	for _, stop := range t.Stops {
		if stop.WaitMinutes < 0 {
			return ErrTripNegativeWait
		}
	}
	return nil
}
