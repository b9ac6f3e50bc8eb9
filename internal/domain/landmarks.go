package domain

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed landmarks.yaml
var defaultLandmarks []byte

// KnownCoordinates is an immutable table of authoritative landmark
// coordinates keyed by exact destination name.
type KnownCoordinates struct {
	entries map[string]Coordinate
}

// NewKnownCoordinates copies entries into a table after validating every
// coordinate.
func NewKnownCoordinates(entries map[string]Coordinate) (KnownCoordinates, error) {
	copied := make(map[string]Coordinate, len(entries))
	for name, c := range entries {
		if err := c.Validate(); err != nil {
			return KnownCoordinates{}, fmt.Errorf("landmark %q: %w", name, err)
		}
		copied[name] = c
	}
	return KnownCoordinates{entries: copied}, nil
}

type landmarkFile struct {
	Landmarks []struct {
		Name string  `yaml:"name"`
		Lat  float64 `yaml:"lat"`
		Lon  float64 `yaml:"lon"`
	} `yaml:"landmarks"`
}

// ParseKnownCoordinates decodes a landmarks YAML document.
func ParseKnownCoordinates(data []byte) (KnownCoordinates, error) {
	var f landmarkFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return KnownCoordinates{}, fmt.Errorf("parse landmarks: %w", err)
	}
	entries := make(map[string]Coordinate, len(f.Landmarks))
	for i, l := range f.Landmarks {
		if l.Name == "" {
			return KnownCoordinates{}, fmt.Errorf("landmark %d: %w", i, ErrMissingName)
		}
		if _, dup := entries[l.Name]; dup {
			return KnownCoordinates{}, fmt.Errorf("landmark %q listed twice", l.Name)
		}
		entries[l.Name] = Coordinate{Lat: l.Lat, Lon: l.Lon}
	}
	return NewKnownCoordinates(entries)
}

// LoadKnownCoordinates reads a landmarks YAML file.
func LoadKnownCoordinates(path string) (KnownCoordinates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KnownCoordinates{}, fmt.Errorf("read landmarks: %w", err)
	}
	return ParseKnownCoordinates(data)
}

// DefaultKnownCoordinates returns the embedded landmark table.
func DefaultKnownCoordinates() KnownCoordinates {
	k, err := ParseKnownCoordinates(defaultLandmarks)
	if err != nil {
		panic(fmt.Sprintf("embedded landmarks.yaml: %v", err))
	}
	return k
}

// Lookup returns the authoritative coordinate for name.
func (k KnownCoordinates) Lookup(name string) (Coordinate, bool) {
	c, ok := k.entries[name]
	return c, ok
}

// Len returns the number of landmarks in the table.
func (k KnownCoordinates) Len() int {
	return len(k.entries)
}

// Reconciliation compares a stored coordinate with the authoritative one.
type Reconciliation struct {
	Name            string     `json:"name"`
	Stored          Coordinate `json:"stored"`
	Known           Coordinate `json:"known"`
	DistanceMeters  float64    `json:"distance_m"`
	ToleranceMeters float64    `json:"tolerance_m"`
}

// Exceeded reports whether the stored coordinate is farther from the known
// one than the tolerance allows.
func (r Reconciliation) Exceeded() bool {
	return r.DistanceMeters > r.ToleranceMeters
}

// Reconcile looks name up and measures how far stored is from the known
// coordinate. ok is false when the name is not in the table.
func (k KnownCoordinates) Reconcile(name string, stored Coordinate, toleranceMeters float64) (rec Reconciliation, ok bool, err error) {
	known, found := k.entries[name]
	if !found {
		return Reconciliation{}, false, nil
	}
	d, err := Distance(stored, known)
	if err != nil {
		return Reconciliation{}, false, err
	}
	return Reconciliation{
		Name:            name,
		Stored:          stored,
		Known:           known,
		DistanceMeters:  d,
		ToleranceMeters: toleranceMeters,
	}, true, nil
}
