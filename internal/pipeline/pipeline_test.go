package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotv/coordinate-validator/internal/domain"
	"github.com/rotv/coordinate-validator/internal/observability"
	"github.com/rotv/coordinate-validator/internal/pipeline"
	"github.com/rotv/coordinate-validator/internal/report"
)

// --- mocks ---

type mockSource struct {
	dests []domain.Destination
	err   error
}

func (m *mockSource) Destinations(_ context.Context) ([]domain.Destination, error) {
	return m.dests, m.err
}

type mockLoader struct {
	batches  []domain.ResultBatch
	failures int
	calls    int
}

func (m *mockLoader) Load(_ context.Context, batch domain.ResultBatch) error {
	m.calls++
	if m.calls <= m.failures {
		return errors.New("broker unavailable")
	}
	m.batches = append(m.batches, batch)
	return nil
}

// cancelingValidator cancels the run after validating the first destination.
type cancelingValidator struct {
	inner  pipeline.Validator
	cancel context.CancelFunc
}

func (c *cancelingValidator) Validate(ctx context.Context, d domain.Destination) domain.ValidationResult {
	defer c.cancel()
	return c.inner.Validate(ctx, d)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustDest(t *testing.T, name, lat, lon string) domain.Destination {
	t.Helper()
	d, err := domain.NewDestination(name, lat, lon)
	require.NoError(t, err)
	return d
}

func threeDestinations(t *testing.T) []domain.Destination {
	return []domain.Destination{
		mustDest(t, "Hale Farm", "", ""),
		mustDest(t, "Akron Zoo", "41.055", "-81.6"),
		mustDest(t, "Boston Store", "41.2630", "-81.5599"),
	}
}

func newValidator() *domain.Validator {
	return domain.NewValidator(domain.DefaultRules(), nil, nil, discardLogger())
}

// --- tests ---

func TestPipeline_Run_EndToEnd(t *testing.T) {
	frozen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(frozen))
	defer domain.SetClock(nil)

	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(&mockSource{dests: threeDestinations(t)}, newValidator(), discardLogger(), metrics, ldr)

	rep, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[domain.Status]int{
		domain.StatusOK:      1,
		domain.StatusWarning: 1,
		domain.StatusMissing: 1,
	}, rep.Summary.Counts())
	assert.Equal(t, frozen, rep.GeneratedAt)
	assert.NotEmpty(t, rep.RunID)

	want := []report.Row{
		{Name: "Hale Farm", Status: domain.StatusMissing, Issues: []string{"No coordinates"}, Suggestions: []string{}},
		{Name: "Akron Zoo", Latitude: "41.055", Longitude: "-81.6", Status: domain.StatusWarning, Issues: []string{"Outside expected region"}, Suggestions: []string{}},
		{Name: "Boston Store", Latitude: "41.2630", Longitude: "-81.5599", Status: domain.StatusOK, Issues: []string{}, Suggestions: []string{}},
	}
	if diff := cmp.Diff(want, rep.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, ldr.batches, 1)
	assert.Equal(t, rep.RunID, ldr.batches[0].RunID)
	assert.Len(t, ldr.batches[0].Results, 3)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DestinationsValidated.WithLabelValues("MISSING")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Issues.WithLabelValues("region")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.CheckOutcomes.WithLabelValues("region", "applied")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PipelineRunning), 0)
}

func TestPipeline_Run_SourceError(t *testing.T) {
	srcErr := domain.Unavailable(errors.New("connection refused"))
	p := pipeline.New(&mockSource{err: srcErr}, newValidator(), discardLogger(), observability.NewMetricsForTesting())

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_EmptyList(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockSource{}, newValidator(), discardLogger(), observability.NewMetricsForTesting(), ldr)

	rep, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rep.Rows)
	assert.Equal(t, report.Summary{}, rep.Summary)
}

func TestPipeline_Run_CancelledReturnsPartialReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ldr := &mockLoader{}
	v := &cancelingValidator{inner: newValidator(), cancel: cancel}
	p := pipeline.New(&mockSource{dests: threeDestinations(t)}, v, discardLogger(), observability.NewMetricsForTesting(), ldr)

	rep, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "Hale Farm", rep.Rows[0].Name)

	require.Len(t, ldr.batches, 1, "partial results still reach the sink")
	assert.Len(t, ldr.batches[0].Results, 1)
}

func TestPipeline_Run_LoaderRetries(t *testing.T) {
	ldr := &mockLoader{failures: 1}
	p := pipeline.New(&mockSource{dests: threeDestinations(t)}, newValidator(), discardLogger(), observability.NewMetricsForTesting(), ldr)

	rep, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, rep.Rows, 3)
	assert.Equal(t, 2, ldr.calls)
	assert.Len(t, ldr.batches, 1)
}

func TestPipeline_Run_LoaderFailureKeepsReport(t *testing.T) {
	ldr := &mockLoader{failures: 10}
	ok := &mockLoader{}
	p := pipeline.New(&mockSource{dests: threeDestinations(t)}, newValidator(), discardLogger(), observability.NewMetricsForTesting(), ldr, ok)

	rep, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
	assert.Len(t, rep.Rows, 3)
	assert.Equal(t, 3, ldr.calls)
	assert.Len(t, ok.batches, 1, "other sinks still receive results")
}

func TestPipeline_CheckReadinessAndLastReport(t *testing.T) {
	p := pipeline.New(&mockSource{dests: threeDestinations(t)}, newValidator(), discardLogger(), observability.NewMetricsForTesting())

	require.Error(t, p.CheckReadiness(context.Background()))
	_, ok := p.LastReport()
	assert.False(t, ok)

	rep, err := p.Run(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.CheckReadiness(context.Background()))
	last, ok := p.LastReport()
	require.True(t, ok)
	assert.Equal(t, rep.RunID, last.RunID)
}
