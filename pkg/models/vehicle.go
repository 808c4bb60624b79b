package models

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// Trip validation errors, surfaced before any mutation happens.
var (
	ErrTripIncomplete    = errors.New("trip is missing pickup or dropoff")
	ErrTripInvalidHours  = errors.New("hourly trip requires a positive duration")
	ErrTripUnknownType   = errors.New("unknown booking type")
	ErrTripNoPassengers  = errors.New("trip requires at least one passenger")
	ErrTripNegativeSeats = errors.New("seat counts must not be negative")
	ErrTripNegativeWait  = errors.New("stop wait duration must not be negative")
	ErrVehicleInactive   = errors.New("vehicle is not active")
)

// VehicleCategory groups vehicles for partner fleet matching.
type VehicleCategory string

const (
	CategorySedan     VehicleCategory = "sedan"
	CategoryVan       VehicleCategory = "van"
	CategoryLimousine VehicleCategory = "limousine"
	CategorySUV       VehicleCategory = "suv"
)

// Valid reports whether the category is one of the known fleet groups.
func (c VehicleCategory) Valid() bool {
	switch c {
	case CategorySedan, CategoryVan, CategoryLimousine, CategorySUV:
		return true
	}
	return false
}

// Vehicle is a bookable vehicle with its pricing profile.
type Vehicle struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Category VehicleCategory `json:"category"`
	Seats    int             `json:"seats"`
	Active   bool            `json:"active"`

	BasePrice        float64 `json:"base_price"`
	PricePerKm       float64 `json:"price_per_km"`
	MinimumFare      float64 `json:"minimum_fare"`
	ReturnTripPct    float64 `json:"return_trip_pct"`
	PricePerHour     float64 `json:"price_per_hour"`
	MinimumHours     float64 `json:"minimum_hours"`
	StopBasePrice    float64 `json:"stop_base_price"`
	StopPricePerHour float64 `json:"stop_price_per_hour"`
	ChildSeatPrice   float64 `json:"child_seat_price"`
	BabySeatPrice    float64 `json:"baby_seat_price"`
	DiscountPct      float64 `json:"discount_pct"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PricingProfile is the normalized set of pricing inputs the fare
// calculator works with. Every default is resolved here, once, so the
// calculator itself never branches on field presence.
type PricingProfile struct {
	BasePrice        float64
	PricePerKm       float64
	MinimumFare      float64
	ReturnTripPct    float64
	PricePerHour     float64
	MinimumHours     float64
	StopBasePrice    float64
	StopPricePerHour float64
	ChildSeatPrice   float64
	BabySeatPrice    float64
	DiscountPct      float64
}

// Pricing defaults applied when a vehicle profile leaves a field unset.
const (
	DefaultPricePerHour = 30.0
	DefaultMinimumHours = 1.0
)

// NormalizeProfile resolves the vehicle's pricing fields into a complete
// profile. It fails for inactive vehicles: they may not be priced or booked.
func (v *Vehicle) NormalizeProfile() (PricingProfile, error) {
	if !v.Active {
		return PricingProfile{}, ErrVehicleInactive
	}

	p := PricingProfile{
		BasePrice:        v.BasePrice,
		PricePerKm:       v.PricePerKm,
		MinimumFare:      v.MinimumFare,
		ReturnTripPct:    v.ReturnTripPct,
		PricePerHour:     v.PricePerHour,
		MinimumHours:     v.MinimumHours,
		StopBasePrice:    v.StopBasePrice,
		StopPricePerHour: v.StopPricePerHour,
		ChildSeatPrice:   v.ChildSeatPrice,
		BabySeatPrice:    v.BabySeatPrice,
		DiscountPct:      v.DiscountPct,
	}

	if p.PricePerHour <= 0 {
		p.PricePerHour = DefaultPricePerHour
	}
	if p.MinimumHours <= 0 {
		p.MinimumHours = DefaultMinimumHours
	}
	if p.MinimumFare < 0 {
		p.MinimumFare = 0
	}
	if p.DiscountPct < 0 {
		p.DiscountPct = 0
	}
	if p.DiscountPct > 100 {
		p.DiscountPct = 100
	}
	if p.ReturnTripPct < 0 {
		p.ReturnTripPct = 0
	}

	return p, nil
}

// FareBreakdown is the immutable result of a fare calculation. All
// intermediate values are retained for audit and display; nothing is ever
// re-derived from Total alone.
type FareBreakdown struct {
	VehicleFare float64 `json:"vehicle_fare"`
	ExtrasTotal float64 `json:"extras_total"`
	Subtotal    float64 `json:"subtotal"`
	TaxPct      float64 `json:"tax_pct"`
	TaxIncluded bool    `json:"tax_included"`
	TaxAmount   float64 `json:"tax_amount"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
}

// Round rounds all monetary values to 2 decimal places.
func (f *FareBreakdown) Round() {
	f.VehicleFare = math.Round(f.VehicleFare*100) / 100
	f.ExtrasTotal = math.Round(f.ExtrasTotal*100) / 100
	f.Subtotal = math.Round(f.Subtotal*100) / 100
	f.TaxAmount = math.Round(f.TaxAmount*100) / 100
	f.Total = math.Round(f.Total*100) / 100
}
