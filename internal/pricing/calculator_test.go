package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UmarSidiki/taxibooking/pkg/config"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

func float64Ptr(v float64) *float64 { return &v }

func baseProfile() models.PricingProfile {
	return models.PricingProfile{
		BasePrice:    20,
		PricePerKm:   1.2,
		PricePerHour: 30,
		MinimumHours: 2,
	}
}

func destinationTrip() *models.TripRequest {
	return &models.TripRequest{
		BookingType: models.BookingTypeDestination,
		Pickup:      "Zurich",
		Dropoff:     "Geneva",
		Passengers:  2,
	}
}

func TestComputeFareDestinationOneWay(t *testing.T) {
	// 150km at base 20 + 1.2/km, no discount, no tax.
	fare, err := ComputeFare(destinationTrip(), baseProfile(), config.TaxConfig{}, float64Ptr(150), "eur")
	require.NoError(t, err)

	assert.Equal(t, 200.0, fare.VehicleFare)
	assert.Equal(t, 0.0, fare.ExtrasTotal)
	assert.Equal(t, 200.0, fare.Total)
	assert.Equal(t, "eur", fare.Currency)
}

func TestComputeFareRoundTrip(t *testing.T) {
	profile := baseProfile()
	profile.ReturnTripPct = 50

	trip := destinationTrip()
	trip.RoundTrip = true

	fare, err := ComputeFare(trip, profile, config.TaxConfig{}, float64Ptr(150), "eur")
	require.NoError(t, err)

	assert.Equal(t, 300.0, fare.VehicleFare)
	assert.Equal(t, 300.0, fare.Total)
}

func TestComputeFareHourlyMinimumHours(t *testing.T) {
	trip := &models.TripRequest{
		BookingType: models.BookingTypeHourly,
		Pickup:      "Zurich",
		Hours:       1.5,
		Passengers:  1,
	}

	// 1.5 requested hours against a 2 hour minimum at 30/hr bills 2 hours.
	fare, err := ComputeFare(trip, baseProfile(), config.TaxConfig{}, nil, "eur")
	require.NoError(t, err)

	assert.Equal(t, 60.0, fare.VehicleFare)
	assert.Equal(t, 60.0, fare.Total)
}

func TestComputeFareMinimumFareFloor(t *testing.T) {
	profile := baseProfile()
	profile.MinimumFare = 50

	fare, err := ComputeFare(destinationTrip(), profile, config.TaxConfig{}, float64Ptr(5), "eur")
	require.NoError(t, err)

	// 20 + 1.2*5 = 26 is below the floor.
	assert.Equal(t, 50.0, fare.VehicleFare)
}

func TestComputeFareUnknownDistanceFallsBackToBasePrice(t *testing.T) {
	trip := destinationTrip()
	trip.RoundTrip = true

	fare, err := ComputeFare(trip, baseProfile(), config.TaxConfig{}, nil, "eur")
	require.NoError(t, err)

	// No distance means base price only, with no round trip markup.
	assert.Equal(t, 20.0, fare.VehicleFare)
}

func TestComputeFareExtrasAndDiscountOrdering(t *testing.T) {
	profile := baseProfile()
	profile.ChildSeatPrice = 10
	profile.BabySeatPrice = 8
	profile.StopBasePrice = 5
	profile.StopPricePerHour = 12
	profile.DiscountPct = 10

	trip := destinationTrip()
	trip.ChildSeats = 2
	trip.BabySeats = 1
	trip.Stops = []models.Stop{{Address: "Bern", WaitMinutes: 30}}

	fare, err := ComputeFare(trip, profile, config.TaxConfig{}, float64Ptr(150), "eur")
	require.NoError(t, err)

	// extras = 2*10 + 1*8 + (5 + 12*0.5) = 39
	assert.Equal(t, 39.0, fare.ExtrasTotal)
	// Discount applies to vehicle fare and extras combined.
	assert.Equal(t, 200.0, fare.VehicleFare)
	assert.InDelta(t, (200.0+39.0)*0.9, fare.Subtotal, 0.001)
	assert.InDelta(t, 215.1, fare.Total, 0.001)
}

func TestComputeFareTaxAddedOnTop(t *testing.T) {
	tax := config.TaxConfig{Enabled: true, RatePct: 8.1}

	fare, err := ComputeFare(destinationTrip(), baseProfile(), tax, float64Ptr(150), "eur")
	require.NoError(t, err)

	assert.Equal(t, 8.1, fare.TaxPct)
	assert.False(t, fare.TaxIncluded)
	assert.InDelta(t, 16.2, fare.TaxAmount, 0.001)
	assert.InDelta(t, 216.2, fare.Total, 0.001)
}

func TestComputeFareTaxIncludedRoundTrip(t *testing.T) {
	tax := config.TaxConfig{Enabled: true, RatePct: 8.1, IncludedInPrice: true}

	fare, err := ComputeFare(destinationTrip(), baseProfile(), tax, float64Ptr(150), "eur")
	require.NoError(t, err)

	assert.True(t, fare.TaxIncluded)
	assert.Equal(t, 200.0, fare.Total)
	// The tax amount plus the net amount reconstructs the total, and the
	// displayed subtotal re-derives from the total and the rate.
	assert.InDelta(t, fare.Total, fare.TaxAmount+(fare.Total-fare.TaxAmount), 0.001)
	assert.InDelta(t, fare.Total/(1+tax.RatePct/100), fare.Total-fare.TaxAmount, 0.01)
}

func TestComputeFareDeterministic(t *testing.T) {
	profile := baseProfile()
	profile.DiscountPct = 7.5
	tax := config.TaxConfig{Enabled: true, RatePct: 19}

	first, err := ComputeFare(destinationTrip(), profile, tax, float64Ptr(42.7), "eur")
	require.NoError(t, err)
	second, err := ComputeFare(destinationTrip(), profile, tax, float64Ptr(42.7), "eur")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first.Total, 0.0)
}

func TestComputeFareRejectsNonPositiveTotal(t *testing.T) {
	profile := baseProfile()
	profile.DiscountPct = 100

	_, err := ComputeFare(destinationTrip(), profile, config.TaxConfig{}, float64Ptr(150), "eur")
	assert.ErrorIs(t, err, ErrNonPositiveFare)
}

func TestComputeFareRoundsToCents(t *testing.T) {
	profile := baseProfile()
	profile.PricePerKm = 1.333

	fare, err := ComputeFare(destinationTrip(), profile, config.TaxConfig{}, float64Ptr(7), "eur")
	require.NoError(t, err)

	// 20 + 1.333*7 = 29.331, rounded to 29.33.
	assert.Equal(t, 29.33, fare.VehicleFare)
	assert.Equal(t, 29.33, fare.Total)
}
