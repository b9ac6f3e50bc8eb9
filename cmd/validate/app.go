package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rotv/coordinate-validator/internal/adapter/destinations"
	"github.com/rotv/coordinate-validator/internal/adapter/nominatim"
	"github.com/rotv/coordinate-validator/internal/adapter/resilience"
	"github.com/rotv/coordinate-validator/internal/adapter/usgs"
	"github.com/rotv/coordinate-validator/internal/config"
	"github.com/rotv/coordinate-validator/internal/domain"
	"github.com/rotv/coordinate-validator/internal/observability"
)

// app holds the wiring shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	rules   domain.Rules
	source  domain.DestinationSource
	usgs    *usgs.Client
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		rules:   rules,
	}

	if cfg.DestinationsFile != "" {
		a.source = destinations.NewFileSource(cfg.DestinationsFile, logger)
	} else {
		a.source = destinations.NewHTTPSource(cfg.DestinationsURL, a.httpClient("destinations", resilience.DefaultConfig("destinations").Timeout), logger, metrics)
	}

	if cfg.USGSEnabled {
		a.usgs = usgs.NewClient(cfg.USGSBaseURL, a.httpClient("usgs", cfg.USGSTimeout), logger, metrics)
	}
	return a, nil
}

func applyFlags(cfg *config.Config) {
	if destinationsURL != "" {
		cfg.DestinationsURL = destinationsURL
		cfg.DestinationsFile = ""
	}
	if destinationsFile != "" {
		cfg.DestinationsFile = destinationsFile
	}
	if usgsMode != "" {
		cfg.USGSMode = usgsMode
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if noUSGS {
		cfg.USGSEnabled = false
	}
	if noGeocode {
		cfg.NominatimEnabled = false
	}
}

func (a *app) httpClient(name string, timeout time.Duration) *resilience.Client {
	rc := resilience.DefaultConfig(name)
	rc.Timeout = timeout
	rc.MaxRetries = uint64(a.cfg.HTTPMaxRetries)
	return resilience.NewClient(rc)
}

// hydrology returns the source used by the water-feature check, or nil
// when the check is disabled. Both modes apply the same data-type filter.
func (a *app) hydrology() domain.HydrologySource {
	if a.usgs == nil {
		a.logger.Info("hydrology cross-check disabled")
		return nil
	}
	if a.cfg.USGSMode == "snapshot" {
		a.logger.Info("hydrology cross-check enabled", "mode", "snapshot")
		return usgs.NewSnapshot(a.usgs, usgs.DefaultArea())
	}
	a.logger.Info("hydrology cross-check enabled", "mode", "window")
	return a.usgs
}

// geocoder returns the cached reverse geocoder, or nil when the check is
// disabled.
func (a *app) geocoder() (domain.ReverseGeocoder, error) {
	if !a.cfg.NominatimEnabled {
		a.logger.Info("reverse geocoding disabled")
		return nil, nil
	}
	client := nominatim.NewClient(
		a.cfg.NominatimBaseURL,
		a.cfg.NominatimUserAgent,
		a.cfg.NominatimMinInterval,
		a.httpClient("nominatim", a.cfg.NominatimTimeout),
		a.logger,
		a.metrics,
	)
	cached, err := nominatim.NewCachedGeocoder(client, a.cfg.NominatimCacheSize, a.metrics)
	if err != nil {
		return nil, err
	}
	a.logger.Info("reverse geocoding enabled",
		"cache_size", a.cfg.NominatimCacheSize,
		"min_interval", a.cfg.NominatimMinInterval,
	)
	return cached, nil
}

// areaSites fetches every hydrology site in the park area, unfiltered by
// data type.
func (a *app) areaSites(ctx context.Context) ([]domain.ReferenceSite, error) {
	if a.usgs == nil {
		return nil, errors.New("this view needs the hydrology source; enable USGS_ENABLED")
	}
	return usgs.NewSnapshot(a.usgs.Unfiltered(), usgs.DefaultArea()).All(ctx)
}

// output opens the CSV destination: the --output file or stdout.
func output() (io.Writer, func() error, error) {
	if outputPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
