package nominatim

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotv/coordinate-validator/internal/adapter/resilience"
	"github.com/rotv/coordinate-validator/internal/domain"
	"github.com/rotv/coordinate-validator/internal/observability"
)

const testUserAgent = "ROTV-Validator/1.0 (coordinate validation)"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string, minInterval time.Duration) *Client {
	cfg := resilience.DefaultConfig("nominatim-test")
	cfg.MaxRetries = 0
	cfg.Timeout = 2 * time.Second
	return NewClient(baseURL, testUserAgent, minInterval, resilience.NewClient(cfg), discardLogger(), observability.NewMetricsForTesting())
}

var bostonStore = domain.Coordinate{Lat: 41.263, Lon: -81.5599}

func TestReverseGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "41.263000", r.URL.Query().Get("lat"))
		assert.Equal(t, "-81.559900", r.URL.Query().Get("lon"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{
			"place_id": 1,
			"display_name": "Boston Store, Boston Mills Road, Boston, Summit County, Ohio, United States",
			"address": {"county": "Summit County", "state": "Ohio"}
		}`))
	}))
	defer server.Close()

	c := testClient(server.URL+"/", 0)
	place, err := c.ReverseGeocode(context.Background(), bostonStore)
	require.NoError(t, err)
	require.NotNil(t, place)
	assert.Contains(t, place.DisplayName, "Summit County")
	assert.Equal(t, "Ohio", place.Address["state"])
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.CollaboratorRequests.WithLabelValues("nominatim", "success")), 0)
}

func TestReverseGeocode_NoResult(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "error object", body: `{"error": "Unable to geocode"}`},
		{name: "empty display name", body: `{"display_name": ""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			place, err := testClient(server.URL, 0).ReverseGeocode(context.Background(), bostonStore)
			require.NoError(t, err)
			assert.Nil(t, place)
		})
	}
}

func TestReverseGeocode_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "server error", handler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{name: "forbidden", handler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}},
		{name: "malformed body", handler: func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := testClient(server.URL, 0).ReverseGeocode(context.Background(), bostonStore)
			require.ErrorIs(t, err, domain.ErrUnavailable)
		})
	}
}

func TestReverseGeocode_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"display_name": "Peninsula, Summit County, Ohio"}`))
	}))
	defer server.Close()

	c := testClient(server.URL, 100*time.Millisecond)
	start := time.Now()
	for range 3 {
		_, err := c.ReverseGeocode(context.Background(), bostonStore)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 190*time.Millisecond)
}

func TestReverseGeocode_CanceledWhileWaiting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"display_name": "Peninsula, Summit County, Ohio"}`))
	}))
	defer server.Close()

	c := testClient(server.URL, time.Hour)
	_, err := c.ReverseGeocode(context.Background(), bostonStore)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.ReverseGeocode(ctx, bostonStore)
	require.ErrorIs(t, err, domain.ErrUnavailable)
}
