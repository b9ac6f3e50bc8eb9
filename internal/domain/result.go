package domain

import "time"

// Status is the overall verdict for one destination.
type Status string

const (
	StatusOK      Status = "OK"
	StatusWarning Status = "WARNING"
	StatusMissing Status = "MISSING"
)

// Statuses lists every status in report order.
var Statuses = []Status{StatusOK, StatusWarning, StatusMissing}

// Check names a single validation step.
type Check string

const (
	CheckCoordinates     Check = "coordinates"
	CheckRegion          Check = "region"
	CheckWaterFeature    Check = "water_feature"
	CheckKnownCoordinate Check = "known_coordinate"
	CheckGeocode         Check = "geocode"
)

// Outcome records how a check ran.
type Outcome string

const (
	// OutcomeApplied: the check ran against real data.
	OutcomeApplied Outcome = "applied"
	// OutcomeSkipped: the check does not apply or is disabled.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeAbsent: the check ran but there was nothing to compare against.
	OutcomeAbsent Outcome = "absent"
	// OutcomeUnavailable: a collaborator failed and the check contributed nothing.
	OutcomeUnavailable Outcome = "unavailable"
	// OutcomeInvalid: the input was rejected.
	OutcomeInvalid Outcome = "invalid"
)

// CheckOutcome pairs a check with how it ran.
type CheckOutcome struct {
	Check   Check   `json:"check"`
	Outcome Outcome `json:"outcome"`
}

// Issue is a detected problem, traceable to exactly one check.
type Issue struct {
	Check   Check  `json:"check"`
	Message string `json:"message"`
}

func (i Issue) String() string { return i.Message }

// SuggestionSource identifies what produced a suggestion.
type SuggestionSource string

const (
	SourceKnownTable       SuggestionSource = "known-table"
	SourceNearestReference SuggestionSource = "nearest-reference"
	SourceGeocoder         SuggestionSource = "geocoder"
)

// Suggestion proposes a corrected coordinate or carries an informational
// note. Coordinate is nil for purely informational suggestions.
type Suggestion struct {
	Source     SuggestionSource `json:"source"`
	Coordinate *Coordinate      `json:"coordinate,omitempty"`
	Note       string           `json:"note"`
}

func (s Suggestion) String() string { return s.Note }

// ValidationResult is the verdict for one destination.
type ValidationResult struct {
	Destination Destination    `json:"destination"`
	Status      Status         `json:"status"`
	Issues      []Issue        `json:"issues"`
	Suggestions []Suggestion   `json:"suggestions"`
	Checks      []CheckOutcome `json:"checks"`

	// NearestSite is set when the water-feature check found a monitoring site.
	NearestSite *Match `json:"nearest_site,omitempty"`
	// Known is set when the destination appears in the landmark table.
	Known *Reconciliation `json:"known,omitempty"`
}

// Outcome returns how check ran for this destination.
func (r ValidationResult) Outcome(check Check) (Outcome, bool) {
	for _, c := range r.Checks {
		if c.Check == check {
			return c.Outcome, true
		}
	}
	return "", false
}

// ResultBatch is the set of results produced by one run, handed to sinks.
type ResultBatch struct {
	RunID       string
	GeneratedAt time.Time
	Results     []ValidationResult
}
