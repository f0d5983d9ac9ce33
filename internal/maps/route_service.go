package maps

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"
)

var ErrNoRoute = errors.New("no route found")

// directionsClient is the subset of *maps.Client used here.
type directionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// DistanceService measures road distances with the Google Maps Directions API.
type DistanceService struct {
	client directionsClient
}

// NewDistanceService creates a new DistanceService with the given API Key.
func NewDistanceService(apiKey string) (*DistanceService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &DistanceService{client: client}, nil
}

// DistanceKm returns the driving distance in kilometres of the first route leg.
func (s *DistanceService) DistanceKm(ctx context.Context, origin, destination string) (float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Language:    "pt-BR",
		Region:      "BR",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, ErrNoRoute
	}

	return float64(routes[0].Legs[0].Distance.Meters) / 1000, nil
}
