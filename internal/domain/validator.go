package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Thresholds holds the tunable constants of the validation rules.
type Thresholds struct {
	// KnownToleranceMeters is the largest accepted distance between a stored
	// coordinate and its known landmark coordinate.
	KnownToleranceMeters float64
	// WaterFeatureMaxMeters is the largest accepted distance between a water
	// feature and its nearest monitoring site.
	WaterFeatureMaxMeters float64
	// HydrologyWindowDegrees is the half-span of the window searched for
	// monitoring sites around a destination.
	HydrologyWindowDegrees float64
	// GeocodeDisplayLimit truncates the geocoded place name in suggestions.
	GeocodeDisplayLimit int
}

// DefaultThresholds returns the thresholds used by the park's validation.
func DefaultThresholds() Thresholds {
	return Thresholds{
		KnownToleranceMeters:   100,
		WaterFeatureMaxMeters:  500,
		HydrologyWindowDegrees: 0.02,
		GeocodeDisplayLimit:    80,
	}
}

// Rules is the static reference configuration for a run.
type Rules struct {
	Region           BoundingRegion
	Features         FeatureClassifier
	Known            KnownCoordinates
	ExpectedCounties []string
	Thresholds       Thresholds
}

// DefaultRules returns the park region, default water vocabulary, embedded
// landmark table, and the Summit/Cuyahoga county markers.
func DefaultRules() Rules {
	return Rules{
		Region:           ParkRegion(),
		Features:         FeatureClassifier{},
		Known:            DefaultKnownCoordinates(),
		ExpectedCounties: []string{"Summit", "Cuyahoga"},
		Thresholds:       DefaultThresholds(),
	}
}

// Validator runs the per-destination checks. A nil hydrology source or
// geocoder disables the corresponding check.
type Validator struct {
	rules     Rules
	hydrology HydrologySource
	geocoder  ReverseGeocoder
	logger    *slog.Logger
}

// NewValidator creates a Validator over the given rules and collaborators.
// A nil logger falls back to slog.Default.
func NewValidator(rules Rules, hydrology HydrologySource, geocoder ReverseGeocoder, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		rules:     rules,
		hydrology: hydrology,
		geocoder:  geocoder,
		logger:    logger,
	}
}

// Rules returns the validator's reference configuration.
func (v *Validator) Rules() Rules {
	return v.rules
}

// Validate decides whether dest's coordinate is plausible. Collaborator
// failures degrade the affected check to no contribution; Validate itself
// never fails.
func (v *Validator) Validate(ctx context.Context, dest Destination) ValidationResult {
	res := ValidationResult{Destination: dest}

	if dest.Coordinate == nil {
		res.Status = StatusMissing
		res.Issues = []Issue{{Check: CheckCoordinates, Message: "No coordinates"}}
		res.Checks = []CheckOutcome{{Check: CheckCoordinates, Outcome: OutcomeAbsent}}
		return res
	}

	coord := *dest.Coordinate
	if err := coord.Validate(); err != nil {
		res.Status = StatusWarning
		res.Issues = []Issue{{Check: CheckCoordinates, Message: "Coordinates out of valid range"}}
		res.Checks = []CheckOutcome{{Check: CheckCoordinates, Outcome: OutcomeInvalid}}
		return res
	}
	res.record(CheckCoordinates, OutcomeApplied)

	v.checkRegion(&res, coord)
	v.checkWaterFeature(ctx, &res, coord)
	v.checkKnownCoordinate(&res, coord)
	v.checkGeocode(ctx, &res, coord)

	res.Status = StatusOK
	if len(res.Issues) > 0 {
		res.Status = StatusWarning
	}
	return res
}

func (v *Validator) checkRegion(res *ValidationResult, coord Coordinate) {
	res.record(CheckRegion, OutcomeApplied)
	if !v.rules.Region.Contains(coord) {
		res.issue(CheckRegion, "Outside expected region")
	}
}

func (v *Validator) checkWaterFeature(ctx context.Context, res *ValidationResult, coord Coordinate) {
	name := res.Destination.Name
	if v.hydrology == nil || !v.rules.Features.IsWaterFeature(name) {
		res.record(CheckWaterFeature, OutcomeSkipped)
		return
	}

	window := Window(coord, v.rules.Thresholds.HydrologyWindowDegrees)
	sites, err := v.hydrology.Sites(ctx, window)
	if err != nil {
		v.logger.Warn("hydrology lookup failed",
			"destination", name,
			"lat", coord.Lat,
			"lon", coord.Lon,
			"error", err,
		)
		res.record(CheckWaterFeature, OutcomeUnavailable)
		return
	}

	match, ok, err := Nearest(coord, sites)
	if err != nil || !ok {
		res.record(CheckWaterFeature, OutcomeAbsent)
		return
	}
	res.record(CheckWaterFeature, OutcomeApplied)
	res.NearestSite = &match

	if match.DistanceMeters > v.rules.Thresholds.WaterFeatureMaxMeters {
		res.issue(CheckWaterFeature, fmt.Sprintf("Water feature %.0fm from nearest monitoring site", match.DistanceMeters))
		site := match.Site.Coordinate
		res.Suggestions = append(res.Suggestions, Suggestion{
			Source:     SourceNearestReference,
			Coordinate: &site,
			Note:       fmt.Sprintf("Consider: %s (%s)", site, match.Site.Name),
		})
		return
	}
	res.Suggestions = append(res.Suggestions, Suggestion{
		Source: SourceNearestReference,
		Note:   fmt.Sprintf("Near monitoring site: %s (%.0fm)", match.Site.Name, match.DistanceMeters),
	})
}

func (v *Validator) checkKnownCoordinate(res *ValidationResult, coord Coordinate) {
	rec, ok, err := v.rules.Known.Reconcile(res.Destination.Name, coord, v.rules.Thresholds.KnownToleranceMeters)
	switch {
	case err != nil:
		res.record(CheckKnownCoordinate, OutcomeInvalid)
		return
	case !ok:
		res.record(CheckKnownCoordinate, OutcomeAbsent)
		return
	}
	res.record(CheckKnownCoordinate, OutcomeApplied)
	res.Known = &rec

	if rec.Exceeded() {
		res.issue(CheckKnownCoordinate, fmt.Sprintf("%.0fm from known coordinate", rec.DistanceMeters))
		known := rec.Known
		res.Suggestions = append(res.Suggestions, Suggestion{
			Source:     SourceKnownTable,
			Coordinate: &known,
			Note:       fmt.Sprintf("Use known coordinate: %s", known),
		})
	}
}

func (v *Validator) checkGeocode(ctx context.Context, res *ValidationResult, coord Coordinate) {
	if v.geocoder == nil {
		res.record(CheckGeocode, OutcomeSkipped)
		return
	}

	place, err := v.geocoder.ReverseGeocode(ctx, coord)
	if err != nil {
		v.logger.Warn("reverse geocoding failed",
			"destination", res.Destination.Name,
			"lat", coord.Lat,
			"lon", coord.Lon,
			"error", err,
		)
		res.record(CheckGeocode, OutcomeUnavailable)
		return
	}
	if place == nil || place.DisplayName == "" {
		res.record(CheckGeocode, OutcomeAbsent)
		return
	}
	res.record(CheckGeocode, OutcomeApplied)

	if !containsAny(place.DisplayName, v.rules.ExpectedCounties) {
		res.issue(CheckGeocode, "Reverse geocode outside expected counties")
	}
	res.Suggestions = append(res.Suggestions, Suggestion{
		Source: SourceGeocoder,
		Note:   "Geocoded to: " + truncate(place.DisplayName, v.rules.Thresholds.GeocodeDisplayLimit),
	})
}

func (r *ValidationResult) record(check Check, outcome Outcome) {
	r.Checks = append(r.Checks, CheckOutcome{Check: check, Outcome: outcome})
}

func (r *ValidationResult) issue(check Check, msg string) {
	r.Issues = append(r.Issues, Issue{Check: check, Message: msg})
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// truncate cuts s to limit characters and marks the cut with "...".
func truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
