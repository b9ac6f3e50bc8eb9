package domain

import "context"

// Place is a reverse-geocoded description of a coordinate.
type Place struct {
	DisplayName string
	Address     map[string]string
}

// ReverseGeocoder looks up a place description for a coordinate.
// It returns (nil, nil) when the provider has no result, and an error
// wrapping ErrUnavailable when the provider cannot be reached or answers
// with something unusable.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, c Coordinate) (*Place, error)
}

// HydrologySource lists monitoring sites inside a region, in source order.
// An empty slice means no sites; failures wrap ErrUnavailable.
type HydrologySource interface {
	Sites(ctx context.Context, region BoundingRegion) ([]ReferenceSite, error)
}

// DestinationSource loads the full, ordered destination list for a run.
type DestinationSource interface {
	Destinations(ctx context.Context) ([]Destination, error)
}
