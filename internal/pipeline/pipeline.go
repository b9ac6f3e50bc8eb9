package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rotv/coordinate-validator/internal/domain"
	"github.com/rotv/coordinate-validator/internal/observability"
	"github.com/rotv/coordinate-validator/internal/report"
)

// Validator decides whether one destination's coordinate is plausible.
type Validator interface {
	Validate(ctx context.Context, dest domain.Destination) domain.ValidationResult
}

// ResultLoader writes a run's results to a sink.
type ResultLoader interface {
	Load(ctx context.Context, batch domain.ResultBatch) error
}

const (
	loadAttempts       = 3
	initialLoadBackoff = 200 * time.Millisecond
	maxLoadBackoff     = 5 * time.Second
)

// Pipeline runs the extract-validate-load sequence for one destination list.
type Pipeline struct {
	source    domain.DestinationSource
	validator Validator
	loaders   []ResultLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	last      atomic.Pointer[report.Report]
}

// New creates a Pipeline with the given stages and observability.
func New(source domain.DestinationSource, v Validator, logger *slog.Logger, metrics *observability.Metrics, loaders ...ResultLoader) *Pipeline {
	return &Pipeline{
		source:    source,
		validator: v,
		loaders:   loaders,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a run has produced a report.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no validation run has completed yet")
	}
	return nil
}

// LastReport returns the report of the most recent run.
func (p *Pipeline) LastReport() (report.Report, bool) {
	r := p.last.Load()
	if r == nil {
		return report.Report{}, false
	}
	return *r, true
}

// Run loads the destination list, validates every destination in input
// order, hands the results to each loader, and returns the report.
//
// Cancellation is checked between destinations. A cancelled run still
// returns the report for the destinations validated so far, together with
// the context's error. Loader failures are returned after the report is
// built so callers can still emit it.
func (p *Pipeline) Run(ctx context.Context) (report.Report, error) {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	dests, err := p.source.Destinations(ctx)
	if err != nil {
		return report.Report{}, fmt.Errorf("load destinations: %w", err)
	}
	p.logger.Info("validation started", "destinations", len(dests))

	results := make([]domain.ValidationResult, 0, len(dests))
	for i, dest := range dests {
		if ctx.Err() != nil {
			p.logger.Warn("validation interrupted", "validated", i, "destinations", len(dests), "reason", ctx.Err())
			break
		}
		res := p.validator.Validate(ctx, dest)
		p.record(res)
		p.logger.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(dests), dest.Name),
			"status", res.Status,
			"issues", len(res.Issues),
		)
		results = append(results, res)
	}

	batch := domain.ResultBatch{
		RunID:       uuid.NewString(),
		GeneratedAt: domain.Now(),
		Results:     results,
	}

	// Sinks receive whatever was validated, even after cancellation.
	loadErr := p.load(context.WithoutCancel(ctx), batch)

	rep := report.FromBatch(batch)
	p.last.Store(&rep)
	p.ready.Store(true)
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("validation finished",
		"run_id", rep.RunID,
		"ok", rep.Summary.OK,
		"warning", rep.Summary.Warning,
		"missing", rep.Summary.Missing,
		"duration", time.Since(start),
	)

	return rep, errors.Join(ctx.Err(), loadErr)
}

func (p *Pipeline) record(res domain.ValidationResult) {
	p.metrics.DestinationsValidated.WithLabelValues(string(res.Status)).Inc()
	for _, issue := range res.Issues {
		p.metrics.Issues.WithLabelValues(string(issue.Check)).Inc()
	}
	for _, c := range res.Checks {
		p.metrics.CheckOutcomes.WithLabelValues(string(c.Check), string(c.Outcome)).Inc()
	}
}

// load hands the batch to every loader, retrying each with exponential
// backoff. It returns the joined errors of loaders that never succeeded.
func (p *Pipeline) load(ctx context.Context, batch domain.ResultBatch) error {
	var errs []error
	for _, l := range p.loaders {
		if err := p.loadWithRetry(ctx, l, batch); err != nil {
			p.logger.Error("load results failed", "error", err, "results", len(batch.Results))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pipeline) loadWithRetry(ctx context.Context, l ResultLoader, batch domain.ResultBatch) error {
	backoff := initialLoadBackoff
	var err error
	for attempt := 1; attempt <= loadAttempts; attempt++ {
		if err = l.Load(ctx, batch); err == nil {
			return nil
		}
		if attempt == loadAttempts {
			break
		}
		p.logger.Warn("load results failed, retrying", "error", err, "attempt", attempt, "backoff", backoff)
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, maxLoadBackoff)
	}
	return fmt.Errorf("load results after %d attempts: %w", loadAttempts, err)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
