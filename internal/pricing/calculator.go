package pricing

import (
	"errors"
	"math"

	"github.com/UmarSidiki/taxibooking/pkg/config"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// ErrNonPositiveFare is returned when the computed total is zero or
// negative. Such a fare must never be persisted or charged.
var ErrNonPositiveFare = errors.New("computed fare is zero or negative")

// ComputeFare calculates the full fare breakdown for a trip. It is pure and
// deterministic: the same inputs always produce the same breakdown, and no
// I/O happens here.
//
// A nil distanceKm means the distance is unknown; destination trips then
// fall back to the vehicle's base price with no per-km component.
func ComputeFare(trip *models.TripRequest, profile models.PricingProfile, tax config.TaxConfig, distanceKm *float64, currency string) (models.FareBreakdown, error) {
	var vehicleFare float64

	switch trip.BookingType {
	case models.BookingTypeHourly:
		hours := math.Max(trip.Hours, profile.MinimumHours)
		vehicleFare = profile.PricePerHour * hours
	default:
		if distanceKm == nil {
			vehicleFare = profile.BasePrice
		} else {
			oneWay := math.Max(profile.BasePrice+profile.PricePerKm*(*distanceKm), profile.MinimumFare)
			vehicleFare = oneWay
			if trip.RoundTrip {
				vehicleFare = oneWay + oneWay*(profile.ReturnTripPct/100)
			}
		}
	}

	extras := float64(trip.ChildSeats)*profile.ChildSeatPrice +
		float64(trip.BabySeats)*profile.BabySeatPrice
	for _, stop := range trip.Stops {
		extras += profile.StopBasePrice + profile.StopPricePerHour*(stop.WaitMinutes/60)
	}

	// The discount applies to the combined vehicle and extras amount, not
	// to the vehicle fare alone.
	subtotal := vehicleFare + extras
	subtotal *= 1 - profile.DiscountPct/100

	breakdown := models.FareBreakdown{
		VehicleFare: vehicleFare,
		ExtrasTotal: extras,
		Subtotal:    subtotal,
		Currency:    currency,
	}

	switch {
	case !tax.Enabled:
		breakdown.Total = subtotal
	case tax.IncludedInPrice:
		breakdown.TaxPct = tax.RatePct
		breakdown.TaxIncluded = true
		breakdown.TaxAmount = subtotal - subtotal/(1+tax.RatePct/100)
		breakdown.Total = subtotal
	default:
		breakdown.TaxPct = tax.RatePct
		breakdown.TaxAmount = subtotal * tax.RatePct / 100
		breakdown.Total = subtotal + breakdown.TaxAmount
	}

	breakdown.Round()

	if breakdown.Total <= 0 {
		return models.FareBreakdown{}, ErrNonPositiveFare
	}
	return breakdown, nil
}
