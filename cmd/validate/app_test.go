package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotv/coordinate-validator/internal/adapter/resilience"
	"github.com/rotv/coordinate-validator/internal/adapter/usgs"
	"github.com/rotv/coordinate-validator/internal/config"
	"github.com/rotv/coordinate-validator/internal/domain"
	"github.com/rotv/coordinate-validator/internal/observability"
)

func resetFlags(t *testing.T) {
	t.Cleanup(func() {
		destinationsURL, destinationsFile, usgsMode, logLevel, outputPath = "", "", "", "", ""
		noUSGS, noGeocode = false, false
	})
}

func TestApplyFlags_OverridesConfig(t *testing.T) {
	resetFlags(t)
	cfg := &config.Config{
		DestinationsURL:  "http://localhost:8080/api/destinations",
		DestinationsFile: "old.json",
		USGSMode:         "window",
		LogLevel:         "info",
		USGSEnabled:      true,
		NominatimEnabled: true,
	}
	destinationsURL = "http://example.test/destinations"
	usgsMode = "snapshot"
	logLevel = "debug"
	noUSGS = true
	noGeocode = true

	applyFlags(cfg)

	assert.Equal(t, "http://example.test/destinations", cfg.DestinationsURL)
	assert.Empty(t, cfg.DestinationsFile, "an explicit URL replaces the file source")
	assert.Equal(t, "snapshot", cfg.USGSMode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.USGSEnabled)
	assert.False(t, cfg.NominatimEnabled)
}

func TestApplyFlags_UnsetFlagsKeepConfig(t *testing.T) {
	resetFlags(t)
	cfg := &config.Config{
		DestinationsURL:  "http://localhost:8080/api/destinations",
		USGSMode:         "window",
		USGSEnabled:      true,
		NominatimEnabled: true,
	}

	applyFlags(cfg)

	assert.Equal(t, "http://localhost:8080/api/destinations", cfg.DestinationsURL)
	assert.Equal(t, "window", cfg.USGSMode)
	assert.True(t, cfg.USGSEnabled)
	assert.True(t, cfg.NominatimEnabled)
}

func TestApplyFlags_FileFlag(t *testing.T) {
	resetFlags(t)
	cfg := &config.Config{DestinationsURL: "http://localhost:8080/api/destinations"}
	destinationsFile = "destinations.json"

	applyFlags(cfg)

	assert.Equal(t, "destinations.json", cfg.DestinationsFile)
}

func TestHydrology_ModesApplySameDataTypeFilter(t *testing.T) {
	for _, mode := range []string{"window", "snapshot"} {
		t.Run(mode, func(t *testing.T) {
			var queries []url.Values
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				queries = append(queries, r.URL.Query())
				_, _ = w.Write([]byte("USGS\t04206000\tCUYAHOGA R AT OLD PORTAGE OH\tST\t41.1356\t-81.5471\n"))
			}))
			defer srv.Close()

			metrics := observability.NewMetricsForTesting()
			rc := resilience.DefaultConfig("usgs")
			rc.MaxRetries = 0
			a := &app{
				cfg:     &config.Config{USGSMode: mode},
				logger:  discardLogger(),
				metrics: metrics,
				usgs:    usgs.NewClient(srv.URL, resilience.NewClient(rc), discardLogger(), metrics),
			}

			src := a.hydrology()
			require.NotNil(t, src)
			sites, err := src.Sites(context.Background(), domain.Window(domain.Coordinate{Lat: 41.1356, Lon: -81.5471}, 0.02))
			require.NoError(t, err)
			assert.Len(t, sites, 1)

			require.Len(t, queries, 1)
			assert.Equal(t, usgs.DefaultDataTypes, queries[0].Get("hasDataTypeCd"))
		})
	}
}

func TestHydrology_DisabledIsNil(t *testing.T) {
	a := &app{cfg: &config.Config{USGSMode: "window"}, logger: discardLogger()}
	assert.Nil(t, a.hydrology())
}
