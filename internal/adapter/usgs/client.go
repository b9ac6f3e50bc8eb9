// Package usgs reads hydrological monitoring sites from the USGS NWIS site
// service.
package usgs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/rotv/coordinate-validator/internal/adapter/resilience"
	"github.com/rotv/coordinate-validator/internal/domain"
	"github.com/rotv/coordinate-validator/internal/observability"
)

// DefaultDataTypes limits window queries to sites with instantaneous or
// daily values.
const DefaultDataTypes = "iv,dv"

// Client implements domain.HydrologySource against the NWIS site service.
type Client struct {
	baseURL   string
	dataTypes string
	client    *resilience.Client
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewClient creates an NWIS client that filters by DefaultDataTypes.
func NewClient(baseURL string, client *resilience.Client, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:   baseURL,
		dataTypes: DefaultDataTypes,
		client:    client,
		logger:    logger,
		metrics:   metrics,
	}
}

// Unfiltered returns a copy of c that lists every site regardless of the
// data it publishes. The area-wide site views use it.
func (c *Client) Unfiltered() *Client {
	cp := *c
	cp.dataTypes = ""
	return &cp
}

// Sites implements domain.HydrologySource. A 404 is how NWIS answers a box
// with no sites, so it yields an empty list.
func (c *Client) Sites(ctx context.Context, region domain.BoundingRegion) ([]domain.ReferenceSite, error) {
	u := c.siteURL(region)

	start := time.Now()
	body, err := c.client.Fetch(ctx, u, http.Header{"Accept": {"text/plain"}})
	c.metrics.CollaboratorDuration.WithLabelValues("usgs").Observe(time.Since(start).Seconds())

	if resilience.IsStatus(err, http.StatusNotFound) {
		c.metrics.CollaboratorRequests.WithLabelValues("usgs", "empty").Inc()
		return nil, nil
	}
	if err != nil {
		c.metrics.CollaboratorRequests.WithLabelValues("usgs", "error").Inc()
		return nil, domain.Unavailable(fmt.Errorf("usgs site query: %w", err))
	}

	sites := ParseRDB(body)
	if len(sites) == 0 {
		c.metrics.CollaboratorRequests.WithLabelValues("usgs", "empty").Inc()
	} else {
		c.metrics.CollaboratorRequests.WithLabelValues("usgs", "success").Inc()
	}
	c.logger.Debug("usgs sites fetched", "bbox", bbox(region), "count", len(sites))
	return sites, nil
}

func (c *Client) siteURL(region domain.BoundingRegion) string {
	params := url.Values{
		"format":     {"rdb"},
		"bBox":       {bbox(region)},
		"siteStatus": {"all"},
	}
	if c.dataTypes != "" {
		params.Set("hasDataTypeCd", c.dataTypes)
	}
	return c.baseURL + "?" + params.Encode()
}

// bbox formats a region in NWIS west,south,east,north order.
func bbox(r domain.BoundingRegion) string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", r.MinLon, r.MinLat, r.MaxLon, r.MaxLat)
}
