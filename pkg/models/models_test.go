package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDestinationTrip() TripRequest {
	return TripRequest{
		BookingType: BookingTypeDestination,
		Pickup:      "Zurich Airport",
		Dropoff:     "Lucerne",
		PickupTime:  time.Now().Add(24 * time.Hour),
		Passengers:  2,
	}
}

func TestTripRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TripRequest)
		wantErr error
	}{
		{
			name:   "valid destination trip",
			mutate: func(tr *TripRequest) {},
		},
		{
			name: "valid hourly trip without dropoff",
			mutate: func(tr *TripRequest) {
				tr.BookingType = BookingTypeHourly
				tr.Dropoff = ""
				tr.Hours = 3
			},
		},
		{
			name:    "destination trip missing dropoff",
			mutate:  func(tr *TripRequest) { tr.Dropoff = "" },
			wantErr: ErrTripIncomplete,
		},
		{
			name: "hourly trip with zero hours",
			mutate: func(tr *TripRequest) {
				tr.BookingType = BookingTypeHourly
				tr.Hours = 0
			},
			wantErr: ErrTripInvalidHours,
		},
		{
			name:    "unknown booking type",
			mutate:  func(tr *TripRequest) { tr.BookingType = "charter" },
			wantErr: ErrTripUnknownType,
		},
		{
			name:    "zero passengers",
			mutate:  func(tr *TripRequest) { tr.Passengers = 0 },
			wantErr: ErrTripNoPassengers,
		},
		{
			name:    "negative child seats",
			mutate:  func(tr *TripRequest) { tr.ChildSeats = -1 },
			wantErr: ErrTripNegativeSeats,
		},
		{
			name: "negative stop wait",
			mutate: func(tr *TripRequest) {
				tr.Stops = []Stop{{Address: "Zug", WaitMinutes: -5}}
			},
			wantErr: ErrTripNegativeWait,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := validDestinationTrip()
			tt.mutate(&trip)

			err := trip.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBookingStatus_IsTerminal(t *testing.T) {
	assert.False(t, BookingStatusUpcoming.IsTerminal())
	assert.True(t, BookingStatusCompleted.IsTerminal())
	assert.True(t, BookingStatusCanceled.IsTerminal())
}

func TestVehicleCategory_Valid(t *testing.T) {
	assert.True(t, CategorySedan.Valid())
	assert.True(t, CategoryVan.Valid())
	assert.True(t, CategoryLimousine.Valid())
	assert.True(t, CategorySUV.Valid())
	assert.False(t, VehicleCategory("bicycle").Valid())
	assert.False(t, VehicleCategory("").Valid())
}

func TestVehicle_NormalizeProfile(t *testing.T) {
	t.Run("inactive vehicle cannot be priced", func(t *testing.T) {
		v := Vehicle{Active: false}
		_, err := v.NormalizeProfile()
		assert.ErrorIs(t, err, ErrVehicleInactive)
	})

	t.Run("fills hourly defaults", func(t *testing.T) {
		v := Vehicle{Active: true, BasePrice: 20, PricePerKm: 2.5}
		p, err := v.NormalizeProfile()
		require.NoError(t, err)

		assert.Equal(t, DefaultPricePerHour, p.PricePerHour)
		assert.Equal(t, DefaultMinimumHours, p.MinimumHours)
		assert.Equal(t, 20.0, p.BasePrice)
		assert.Equal(t, 2.5, p.PricePerKm)
	})

	t.Run("clamps percentages", func(t *testing.T) {
		v := Vehicle{Active: true, DiscountPct: 150, ReturnTripPct: -10, MinimumFare: -1}
		p, err := v.NormalizeProfile()
		require.NoError(t, err)

		assert.Equal(t, 100.0, p.DiscountPct)
		assert.Equal(t, 0.0, p.ReturnTripPct)
		assert.Equal(t, 0.0, p.MinimumFare)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		v := Vehicle{
			Active:       true,
			PricePerHour: 55,
			MinimumHours: 2,
			DiscountPct:  15,
		}
		p, err := v.NormalizeProfile()
		require.NoError(t, err)

		assert.Equal(t, 55.0, p.PricePerHour)
		assert.Equal(t, 2.0, p.MinimumHours)
		assert.Equal(t, 15.0, p.DiscountPct)
	})
}

func TestFareBreakdown_Round(t *testing.T) {
	f := FareBreakdown{
		VehicleFare: 123.4567,
		ExtrasTotal: 10.005,
		Subtotal:    133.4617,
		TaxAmount:   10.27855,
		Total:       143.74025,
	}
	f.Round()

	assert.Equal(t, 123.46, f.VehicleFare)
	assert.Equal(t, 10.01, f.ExtrasTotal)
	assert.Equal(t, 133.46, f.Subtotal)
	assert.Equal(t, 10.28, f.TaxAmount)
	assert.Equal(t, 143.74, f.Total)
}
