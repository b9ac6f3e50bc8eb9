// Package report turns validation results into the run's terminal
// artifacts: the per-destination report with summary counts and the
// worst-offender views used to triage fixes.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rotv/coordinate-validator/internal/domain"
)

// Row is one destination's line in the report.
type Row struct {
	Name string `json:"name"`
	// Latitude and Longitude echo the source text; both are blank when the
	// destination has no coordinate.
	Latitude    string        `json:"latitude"`
	Longitude   string        `json:"longitude"`
	Status      domain.Status `json:"status"`
	Issues      []string      `json:"issues"`
	Suggestions []string      `json:"suggestions"`
}

// Summary counts destinations per status.
type Summary struct {
	Total   int `json:"total"`
	OK      int `json:"ok"`
	Warning int `json:"warning"`
	Missing int `json:"missing"`
}

// Count returns the number of destinations with status s.
func (s Summary) Count(status domain.Status) int {
	switch status {
	case domain.StatusOK:
		return s.OK
	case domain.StatusWarning:
		return s.Warning
	case domain.StatusMissing:
		return s.Missing
	}
	return 0
}

// Counts returns the per-status counts as a map.
func (s Summary) Counts() map[domain.Status]int {
	return map[domain.Status]int{
		domain.StatusOK:      s.OK,
		domain.StatusWarning: s.Warning,
		domain.StatusMissing: s.Missing,
	}
}

func (s *Summary) add(status domain.Status) {
	s.Total++
	switch status {
	case domain.StatusOK:
		s.OK++
	case domain.StatusWarning:
		s.Warning++
	case domain.StatusMissing:
		s.Missing++
	}
}

// Report is the ordered set of rows produced by one run.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        []Row     `json:"rows"`
	Summary     Summary   `json:"summary"`
}

// FromBatch builds a report whose rows follow the batch's input order.
func FromBatch(batch domain.ResultBatch) Report {
	r := Report{
		RunID:       batch.RunID,
		GeneratedAt: batch.GeneratedAt,
		Rows:        make([]Row, 0, len(batch.Results)),
	}
	for _, res := range batch.Results {
		r.Rows = append(r.Rows, rowFor(res))
		r.Summary.add(res.Status)
	}
	return r
}

func rowFor(res domain.ValidationResult) Row {
	row := Row{
		Name:        res.Destination.Name,
		Status:      res.Status,
		Issues:      make([]string, 0, len(res.Issues)),
		Suggestions: make([]string, 0, len(res.Suggestions)),
	}
	if res.Destination.HasCoordinate() {
		row.Latitude = res.Destination.Latitude
		row.Longitude = res.Destination.Longitude
	}
	for _, i := range res.Issues {
		row.Issues = append(row.Issues, i.Message)
	}
	for _, s := range res.Suggestions {
		row.Suggestions = append(row.Suggestions, s.Note)
	}
	return row
}

// Header is the report's CSV column layout.
func Header() []string {
	return []string{"Name", "Latitude", "Longitude", "Status", "Issues", "Suggestions"}
}

// Record returns the row as CSV fields in Header order.
func (r Row) Record() []string {
	return []string{
		r.Name,
		r.Latitude,
		r.Longitude,
		string(r.Status),
		strings.Join(r.Issues, "; "),
		strings.Join(r.Suggestions, "; "),
	}
}

// WriteCSV writes the header and one record per row.
func (r Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range r.Rows {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("write csv row %q: %w", row.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Flagged returns the rows whose status is not OK, in report order.
func (r Report) Flagged() []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Status != domain.StatusOK {
			out = append(out, row)
		}
	}
	return out
}
