// Package domain holds the coordinate validation core for the Roots of The
// Valley destination list.
//
// # Data Sources
//
// Destinations come from the site's destination API as a JSON array of
// {name, latitude, longitude} records. Coordinates arrive as strings (or
// occasionally numbers); an empty or missing value means the destination has
// no coordinate at all, never 0,0.
//
// Reference data is supplied per run by collaborators:
//
//   - USGS NWIS monitoring sites (hydrology), queried by bounding box.
//   - OpenStreetMap Nominatim reverse geocoding, one lookup per destination.
//   - A curated table of landmark coordinates compiled from USGS and NPS
//     sources, embedded as landmarks.yaml.
//
// # Conventions
//
// Coordinates are WGS-84 decimal degrees. Distances are great-circle meters
// on a sphere of radius 6,371,000 m (haversine). Bounding regions are
// axis-aligned rectangles with closed intervals; the park is small enough
// that no curvature correction is applied.
//
// Water features are recognized by name alone: a case-insensitive substring
// match against a fixed vocabulary (dam, river, lake, ...). "Damage" matches
// "dam". That is a known limitation and is kept as is.
//
// # Checks
//
// [Validator.Validate] runs, in order: the coordinate presence/range check,
// region containment, the water-feature cross-reference against the nearest
// monitoring site, the known-landmark reconciliation, and the reverse-geocode
// county check. Each issue and suggestion is tagged with the [Check] that
// produced it, and every check records a [CheckOutcome] so that "no data"
// ([OutcomeAbsent]) and "collaborator failed" ([OutcomeUnavailable]) stay
// distinguishable in the result.
//
// Thresholds (100 m known tolerance, 500 m monitoring-site distance, 0.02°
// locality window, 80 character geocode summary) have no documented
// derivation; they live in [Thresholds] so they can be tuned without
// touching the checks.
package domain
