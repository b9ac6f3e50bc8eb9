// Package nominatim reverse geocodes coordinates with the OpenStreetMap
// Nominatim API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/rotv/coordinate-validator/internal/adapter/resilience"
	"github.com/rotv/coordinate-validator/internal/domain"
	"github.com/rotv/coordinate-validator/internal/observability"
)

// Client implements domain.ReverseGeocoder. Requests are spaced by the
// configured minimum interval as the public service's usage policy requires.
type Client struct {
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	client    *resilience.Client
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewClient creates a Nominatim client. A zero minInterval disables rate
// limiting.
func NewClient(baseURL, userAgent string, minInterval time.Duration, client *resilience.Client, logger *slog.Logger, metrics *observability.Metrics) *Client {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		limiter:   rate.NewLimiter(limit, 1),
		client:    client,
		logger:    logger,
		metrics:   metrics,
	}
}

// ReverseGeocode implements domain.ReverseGeocoder. It returns (nil, nil)
// when Nominatim has no place for the coordinate.
func (c *Client) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (*domain.Place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, domain.Unavailable(fmt.Errorf("nominatim rate limit: %w", err))
	}

	params := url.Values{
		"lat":    {fmt.Sprintf("%.6f", coord.Lat)},
		"lon":    {fmt.Sprintf("%.6f", coord.Lon)},
		"format": {"json"},
	}
	header := http.Header{
		"User-Agent": {c.userAgent},
		"Accept":     {"application/json"},
	}

	start := time.Now()
	body, err := c.client.Fetch(ctx, c.baseURL+"/reverse?"+params.Encode(), header)
	c.metrics.CollaboratorDuration.WithLabelValues("nominatim").Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.CollaboratorRequests.WithLabelValues("nominatim", "error").Inc()
		return nil, domain.Unavailable(fmt.Errorf("nominatim reverse: %w", err))
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		c.metrics.CollaboratorRequests.WithLabelValues("nominatim", "error").Inc()
		return nil, domain.Unavailable(fmt.Errorf("decode nominatim response: %w", err))
	}

	if resp.Error != "" || resp.DisplayName == "" {
		c.metrics.CollaboratorRequests.WithLabelValues("nominatim", "empty").Inc()
		c.logger.Debug("nominatim returned no place", "coordinate", coord.String(), "error", resp.Error)
		return nil, nil
	}

	c.metrics.CollaboratorRequests.WithLabelValues("nominatim", "success").Inc()
	return &domain.Place{DisplayName: resp.DisplayName, Address: resp.Address}, nil
}

// Nominatim API response.
type response struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}
