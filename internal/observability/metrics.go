package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coord_validator"

// Metrics holds the Prometheus counters, histograms, and gauges for a validation run.
type Metrics struct {
	DestinationsValidated *prometheus.CounterVec // labels: status={OK,WARNING,MISSING}
	Issues                *prometheus.CounterVec // labels: check
	CheckOutcomes         *prometheus.CounterVec // labels: check, outcome
	RunDuration           prometheus.Histogram
	PipelineRunning       prometheus.Gauge

	// Collaborator metrics.
	CollaboratorRequests *prometheus.CounterVec   // labels: collaborator={usgs,nominatim,destinations}, outcome={success,error,empty}
	CollaboratorDuration *prometheus.HistogramVec // labels: collaborator
	GeocodeCache         *prometheus.CounterVec   // labels: result={hit,miss}
}

func newMetrics() *Metrics {
	return &Metrics{
		DestinationsValidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "destinations_total",
			Help:      "Destinations validated, by resulting status.",
		}, []string{"status"}),
		Issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_total",
			Help:      "Issues raised, by the check that raised them.",
		}, []string{"check"}),
		CheckOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_outcomes_total",
			Help:      "How each check ran: applied, skipped, absent, unavailable, invalid.",
		}, []string{"check", "outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete validation run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a validation run is active, 0 otherwise.",
		}),
		CollaboratorRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_requests_total",
			Help:      "External collaborator requests by collaborator and outcome.",
		}, []string{"collaborator", "outcome"}),
		CollaboratorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collaborator_duration_seconds",
			Help:      "External collaborator request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"collaborator"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DestinationsValidated,
		m.Issues,
		m.CheckOutcomes,
		m.RunDuration,
		m.PipelineRunning,
		m.CollaboratorRequests,
		m.CollaboratorDuration,
		m.GeocodeCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
