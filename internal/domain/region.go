package domain

import "fmt"

// BoundingRegion is an axis-aligned latitude/longitude rectangle.
type BoundingRegion struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// ParkRegion is the approximate bounding box of Cuyahoga Valley National Park.
func ParkRegion() BoundingRegion {
	return BoundingRegion{MinLat: 41.10, MaxLat: 41.38, MinLon: -81.70, MaxLon: -81.50}
}

// Contains reports whether c lies inside the region, boundary included.
func (r BoundingRegion) Contains(c Coordinate) bool {
	return c.Lat >= r.MinLat && c.Lat <= r.MaxLat &&
		c.Lon >= r.MinLon && c.Lon <= r.MaxLon
}

// Validate rejects inverted or out-of-range bounds.
func (r BoundingRegion) Validate() error {
	if r.MinLat > r.MaxLat || r.MinLon > r.MaxLon {
		return fmt.Errorf("%w: inverted region %+v", ErrInvalidCoordinate, r)
	}
	if err := (Coordinate{Lat: r.MinLat, Lon: r.MinLon}).Validate(); err != nil {
		return err
	}
	return Coordinate{Lat: r.MaxLat, Lon: r.MaxLon}.Validate()
}

// Window returns the square region extending halfSpan degrees from center
// in every direction. It is the locality window used when querying
// monitoring sites around a single destination.
func Window(center Coordinate, halfSpan float64) BoundingRegion {
	return BoundingRegion{
		MinLat: center.Lat - halfSpan,
		MaxLat: center.Lat + halfSpan,
		MinLon: center.Lon - halfSpan,
		MaxLon: center.Lon + halfSpan,
	}
}
