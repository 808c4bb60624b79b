package maps

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"github.com/UmarSidiki/taxibooking/pkg/logger"
)

// GoogleProvider resolves driving distances through the Google Directions
// API.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a provider backed by the Google Maps client.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

// DistanceKm asks the Directions API for a driving route through the given
// stops and returns the summed distance of all its legs.
func (p *GoogleProvider) DistanceKm(ctx context.Context, origin, destination string, stops []string) (float64, error) {
	req := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Waypoints:   stops,
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := p.client.Directions(ctx, req)
	if err != nil {
		logger.Get().Warn("directions request failed",
			zap.String("origin", origin),
			zap.String("destination", destination),
			zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, fmt.Errorf("%w: no route found", ErrUnavailable)
	}

	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	return float64(meters) / 1000.0, nil
}
