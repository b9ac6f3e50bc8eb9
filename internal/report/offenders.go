package report

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rotv/coordinate-validator/internal/domain"
)

// WaterGrade classifies how far a water feature sits from its nearest
// monitoring site.
type WaterGrade string

const (
	GradeOK      WaterGrade = "OK"
	GradeCheck   WaterGrade = "CHECK"
	GradeFar     WaterGrade = "FAR"
	GradeMissing WaterGrade = "MISSING COORDS"
	GradeNoData  WaterGrade = "NO DATA"
)

// Grade boundaries in meters.
const (
	waterOKMeters    = 300
	waterCheckMeters = 1000
)

// GradeWaterDistance grades a distance to the nearest monitoring site.
func GradeWaterDistance(meters float64) WaterGrade {
	switch {
	case meters < waterOKMeters:
		return GradeOK
	case meters < waterCheckMeters:
		return GradeCheck
	default:
		return GradeFar
	}
}

// WaterRow is one water-feature destination matched against the site list.
type WaterRow struct {
	Destination domain.Destination
	// Match is nil when the row could not be matched.
	Match *domain.Match
	Grade WaterGrade
}

// WaterFeatures matches every water-feature destination, in input order,
// against sites. Destinations without a usable coordinate or without any
// site to compare against are graded without a match.
func WaterFeatures(dests []domain.Destination, classifier domain.FeatureClassifier, sites []domain.ReferenceSite) []WaterRow {
	var rows []WaterRow
	for _, d := range dests {
		if !classifier.IsWaterFeature(d.Name) {
			continue
		}
		row := WaterRow{Destination: d}
		switch m, ok, err := nearest(d, sites); {
		case !d.HasCoordinate():
			row.Grade = GradeMissing
		case err != nil || !ok:
			row.Grade = GradeNoData
		default:
			row.Match = &m
			row.Grade = GradeWaterDistance(m.DistanceMeters)
		}
		rows = append(rows, row)
	}
	return rows
}

func nearest(d domain.Destination, sites []domain.ReferenceSite) (domain.Match, bool, error) {
	if !d.HasCoordinate() {
		return domain.Match{}, false, nil
	}
	return domain.Nearest(*d.Coordinate, sites)
}

// WaterHeader is the water view's CSV column layout.
func WaterHeader() []string {
	return []string{"Name", "Current Lat", "Current Lng", "Distance to USGS (m)", "Nearest USGS Site", "USGS Lat", "USGS Lng", "Status"}
}

// Record returns the row as CSV fields in WaterHeader order.
func (r WaterRow) Record() []string {
	switch {
	case r.Grade == GradeMissing:
		return []string{r.Destination.Name, "", "", "", "", "", "", string(r.Grade)}
	case r.Match == nil:
		lat, lng := coordFields(r.Destination)
		return []string{r.Destination.Name, lat, lng, "", "No USGS sites found", "", "", string(r.Grade)}
	}
	lat, lng := coordFields(r.Destination)
	site := r.Match.Site
	return []string{
		r.Destination.Name,
		lat,
		lng,
		fmt.Sprintf("%.0f", r.Match.DistanceMeters),
		site.Name,
		fmt.Sprintf("%.6f", site.Coordinate.Lat),
		fmt.Sprintf("%.6f", site.Coordinate.Lon),
		string(r.Grade),
	}
}

func coordFields(d domain.Destination) (string, string) {
	if !d.HasCoordinate() {
		return "", ""
	}
	return fmt.Sprintf("%.6f", d.Coordinate.Lat), fmt.Sprintf("%.6f", d.Coordinate.Lon)
}

// WriteWaterCSV writes the water view, one record per row.
func WriteWaterCSV(w io.Writer, rows []WaterRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(WaterHeader()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("write csv row %q: %w", r.Destination.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WaterOffenders returns the matched rows graded worse than OK, farthest
// first. Rows at equal distance keep input order.
func WaterOffenders(rows []WaterRow) []WaterRow {
	var out []WaterRow
	for _, r := range rows {
		if r.Match != nil && r.Grade != GradeOK {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b WaterRow) int {
		return cmp.Compare(b.Match.DistanceMeters, a.Match.DistanceMeters)
	})
	return out
}

// RenderWaterOffenders lists each offender with its current and suggested
// coordinates.
func RenderWaterOffenders(rows []WaterRow) string {
	var b strings.Builder
	b.WriteString("=== Issues Found ===\n")
	for _, r := range rows {
		site := r.Match.Site
		fmt.Fprintf(&b, "  %s: %.0fm from %s\n", r.Destination.Name, r.Match.DistanceMeters, site.Name)
		fmt.Fprintf(&b, "    Current: %s, %s\n", r.Destination.Latitude, r.Destination.Longitude)
		fmt.Fprintf(&b, "    Suggest: %s\n", site.Coordinate)
	}
	return b.String()
}

// KnownSource labels deviations found against the landmark table.
const KnownSource = "Known/USGS"

// KnownDeviation is a destination whose stored coordinate is farther from
// its known landmark coordinate than the tolerance.
type KnownDeviation struct {
	Name           string
	Current        domain.Coordinate
	Suggested      domain.Coordinate
	DistanceMeters float64
	Source         string
}

// KnownDeviations reconciles every destination with a usable coordinate
// against known, returning those beyond tolerance farthest first.
func KnownDeviations(dests []domain.Destination, known domain.KnownCoordinates, toleranceMeters float64) []KnownDeviation {
	var out []KnownDeviation
	for _, d := range dests {
		if !d.HasCoordinate() {
			continue
		}
		rec, ok, err := known.Reconcile(d.Name, *d.Coordinate, toleranceMeters)
		if err != nil || !ok || !rec.Exceeded() {
			continue
		}
		out = append(out, KnownDeviation{
			Name:           d.Name,
			Current:        rec.Stored,
			Suggested:      rec.Known,
			DistanceMeters: rec.DistanceMeters,
			Source:         KnownSource,
		})
	}
	slices.SortStableFunc(out, func(a, b KnownDeviation) int {
		return cmp.Compare(b.DistanceMeters, a.DistanceMeters)
	})
	return out
}

// RenderKnownDeviations renders the known-landmark view.
func RenderKnownDeviations(devs []KnownDeviation) string {
	var b strings.Builder
	b.WriteString("COORDINATE ISSUES FOUND\n")
	if len(devs) == 0 {
		b.WriteString("\nNo issues found with known landmark coordinates!\n")
		return b.String()
	}
	for _, d := range devs {
		fmt.Fprintf(&b, "\n%s\n", d.Name)
		fmt.Fprintf(&b, "  Current:   %s\n", d.Current)
		fmt.Fprintf(&b, "  Suggested: %s\n", d.Suggested)
		fmt.Fprintf(&b, "  Distance:  %.0f meters off\n", d.DistanceMeters)
		fmt.Fprintf(&b, "  Source:    %s\n", d.Source)
	}
	return b.String()
}

// SortedSites returns a copy of sites ordered by name.
func SortedSites(sites []domain.ReferenceSite) []domain.ReferenceSite {
	out := slices.Clone(sites)
	slices.SortStableFunc(out, func(a, b domain.ReferenceSite) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// RenderSites lists reference sites one per line.
func RenderSites(sites []domain.ReferenceSite) string {
	var b strings.Builder
	for _, s := range sites {
		fmt.Fprintf(&b, "  %s: %s\n", s.Name, s.Coordinate)
	}
	return b.String()
}
