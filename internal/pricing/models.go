package pricing

import (
	"github.com/google/uuid"

	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// QuoteRequest is the payload for a fare quote.
type QuoteRequest struct {
	VehicleID uuid.UUID          `json:"vehicle_id" binding:"required"`
	Trip      models.TripRequest `json:"trip" binding:"required"`
}

// QuoteResponse carries the computed fare along with the inputs that
// produced it, so the client can render and later re-submit them unchanged.
type QuoteResponse struct {
	VehicleID   uuid.UUID            `json:"vehicle_id"`
	VehicleName string               `json:"vehicle_name"`
	Trip        models.TripRequest   `json:"trip"`
	DistanceKm  *float64             `json:"distance_km,omitempty"`
	Fare        models.FareBreakdown `json:"fare"`
}
