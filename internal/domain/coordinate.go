package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Validate reports ErrInvalidCoordinate when the latitude is outside
// [-90, 90] or the longitude is outside [-180, 180].
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %g outside [-90, 90]", ErrInvalidCoordinate, c.Lat)
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %g outside [-180, 180]", ErrInvalidCoordinate, c.Lon)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lon)
}

// ParseCoordinate builds a coordinate from the textual latitude and longitude
// carried by destination records. A blank value on either side means the
// destination has no coordinate and yields (nil, nil). Range is not checked
// here; see Coordinate.Validate.
func ParseCoordinate(lat, lon string) (*Coordinate, error) {
	lat = strings.TrimSpace(lat)
	lon = strings.TrimSpace(lon)
	if lat == "" || lon == "" {
		return nil, nil
	}

	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinate, lat)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinate, lon)
	}
	return &Coordinate{Lat: la, Lon: lo}, nil
}

// Destination is a named point of interest. The name is the matching key
// for the whole run.
type Destination struct {
	Name string `json:"name"`
	// Latitude and Longitude keep the text exactly as supplied so reports
	// echo the source data.
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
	// Coordinate is nil when the source carries no coordinate.
	Coordinate *Coordinate `json:"coordinate,omitempty"`
}

// NewDestination builds a destination from a loaded record. It rejects
// records without a name and coordinate text that does not parse.
func NewDestination(name, lat, lon string) (Destination, error) {
	if strings.TrimSpace(name) == "" {
		return Destination{}, ErrMissingName
	}
	coord, err := ParseCoordinate(lat, lon)
	if err != nil {
		return Destination{}, fmt.Errorf("destination %q: %w", name, err)
	}
	return Destination{
		Name:       name,
		Latitude:   strings.TrimSpace(lat),
		Longitude:  strings.TrimSpace(lon),
		Coordinate: coord,
	}, nil
}

// HasCoordinate reports whether the destination carries a coordinate.
func (d Destination) HasCoordinate() bool {
	return d.Coordinate != nil
}

// ReferenceSite is an externally sourced point of known location: a
// hydrological monitoring station or a curated landmark.
type ReferenceSite struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
}
