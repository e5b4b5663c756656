// Package routing provides road-distance lookups against an external
// routing provider.
package routing

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"loadhitch/internal/domain"
)

// GoogleRoutes resolves driving distance through the Google Maps
// Directions API.
type GoogleRoutes struct {
	client *maps.Client
}

// NewGoogleRoutes creates a new GoogleRoutes with the given API key.
func NewGoogleRoutes(apiKey string) (*GoogleRoutes, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleRoutes{client: client}, nil
}

// RoadDistanceKm returns the driving distance in kilometers between the two
// coordinates, summed over the legs of the first returned route.
func (g *GoogleRoutes) RoadDistanceKm(ctx context.Context, pickup, delivery domain.Coordinate) (float64, error) {
	req := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", pickup.Lat, pickup.Lng),
		Destination: fmt.Sprintf("%f,%f", delivery.Lat, delivery.Lng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := g.client.Directions(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, fmt.Errorf("no route found")
	}

	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}

	return float64(meters) / 1000.0, nil
}
