package maps

import (
	"context"
	"errors"
)

// ErrUnavailable signals that the distance provider could not produce a
// result. Callers must treat it as "distance unknown", never as a hard
// failure of the surrounding operation.
var ErrUnavailable = errors.New("distance provider unavailable")

// DistanceProvider resolves the driving distance of a route.
type DistanceProvider interface {
	// DistanceKm returns the driving distance in kilometers from origin
	// through the intermediate stops to destination. Implementations return
	// ErrUnavailable (possibly wrapped) when no route can be resolved.
	DistanceKm(ctx context.Context, origin, destination string, stops []string) (float64, error)
}

// NoopProvider is used when distance pricing is disabled. It always
// reports the distance as unknown.
type NoopProvider struct{}

func (NoopProvider) DistanceKm(ctx context.Context, origin, destination string, stops []string) (float64, error) {
	return 0, ErrUnavailable
}
