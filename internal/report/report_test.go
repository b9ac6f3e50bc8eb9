package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotv/coordinate-validator/internal/domain"
)

func mustDest(t *testing.T, name, lat, lon string) domain.Destination {
	t.Helper()
	d, err := domain.NewDestination(name, lat, lon)
	require.NoError(t, err)
	return d
}

func sampleBatch(t *testing.T) domain.ResultBatch {
	t.Helper()
	return domain.ResultBatch{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Results: []domain.ValidationResult{
			{
				Destination: mustDest(t, "Hale Farm", "", ""),
				Status:      domain.StatusMissing,
				Issues:      []domain.Issue{{Check: domain.CheckCoordinates, Message: "No coordinates"}},
			},
			{
				Destination: mustDest(t, "Peninsula Dam", "41.30", "-81.40"),
				Status:      domain.StatusWarning,
				Issues: []domain.Issue{
					{Check: domain.CheckRegion, Message: "Outside expected region"},
					{Check: domain.CheckKnownCoordinate, Message: "14072m from known coordinate"},
				},
				Suggestions: []domain.Suggestion{
					{Source: domain.SourceKnownTable, Note: "Use known coordinate: 41.242500, -81.550000"},
					{Source: domain.SourceGeocoder, Note: "Geocoded to: Hudson, Summit County, Ohio"},
				},
			},
			{
				Destination: mustDest(t, "Boston Store", "41.2630", "-81.5599"),
				Status:      domain.StatusOK,
			},
		},
	}
}

func TestFromBatch(t *testing.T) {
	r := FromBatch(sampleBatch(t))

	assert.Equal(t, "run-1", r.RunID)
	require.Len(t, r.Rows, 3)
	assert.Equal(t, []string{"Hale Farm", "Peninsula Dam", "Boston Store"},
		[]string{r.Rows[0].Name, r.Rows[1].Name, r.Rows[2].Name}, "rows keep input order")

	assert.Equal(t, Summary{Total: 3, OK: 1, Warning: 1, Missing: 1}, r.Summary)
	assert.Equal(t, map[domain.Status]int{domain.StatusOK: 1, domain.StatusWarning: 1, domain.StatusMissing: 1}, r.Summary.Counts())
}

func TestFromBatch_BlankCoordinatesWhenAbsent(t *testing.T) {
	r := FromBatch(sampleBatch(t))

	assert.Empty(t, r.Rows[0].Latitude)
	assert.Empty(t, r.Rows[0].Longitude)
	assert.Equal(t, "41.30", r.Rows[1].Latitude)
	assert.Equal(t, "-81.40", r.Rows[1].Longitude)
}

func TestFromBatch_Empty(t *testing.T) {
	r := FromBatch(domain.ResultBatch{RunID: "empty"})

	assert.Empty(t, r.Rows)
	assert.Equal(t, Summary{}, r.Summary)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FromBatch(sampleBatch(t)).WriteCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"Name", "Latitude", "Longitude", "Status", "Issues", "Suggestions"}, records[0])
	assert.Equal(t, []string{"Hale Farm", "", "", "MISSING", "No coordinates", ""}, records[1])
	assert.Equal(t, []string{
		"Peninsula Dam", "41.30", "-81.40", "WARNING",
		"Outside expected region; 14072m from known coordinate",
		"Use known coordinate: 41.242500, -81.550000; Geocoded to: Hudson, Summit County, Ohio",
	}, records[2])
	assert.Equal(t, []string{"Boston Store", "41.2630", "-81.5599", "OK", "", ""}, records[3])
}

func TestFlagged(t *testing.T) {
	flagged := FromBatch(sampleBatch(t)).Flagged()

	require.Len(t, flagged, 2)
	assert.Equal(t, "Hale Farm", flagged[0].Name)
	assert.Equal(t, "Peninsula Dam", flagged[1].Name)
}

func TestRenderSummary(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	out, err := RenderSummary(FromBatch(sampleBatch(t)))
	require.NoError(t, err)

	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "Status")
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "3")
}

func TestRenderFlagged(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	out, err := RenderFlagged(FromBatch(sampleBatch(t)))
	require.NoError(t, err)
	assert.Contains(t, out, "Peninsula Dam")
	assert.Contains(t, out, "No coordinates")
	assert.NotContains(t, out, "Boston Store")

	out, err = RenderFlagged(FromBatch(domain.ResultBatch{}))
	require.NoError(t, err)
	assert.Empty(t, out)
}
