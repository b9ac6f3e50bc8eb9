// Package destinations loads the destination list from the site API or a
// JSON file export of it.
package destinations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rotv/coordinate-validator/internal/adapter/resilience"
	"github.com/rotv/coordinate-validator/internal/domain"
	"github.com/rotv/coordinate-validator/internal/observability"
)

var validate = validator.New()

// record is one element of the destination list. Coordinates arrive as
// strings, numbers, or null.
type record struct {
	Name      string    `json:"name" validate:"required"`
	Latitude  coordText `json:"latitude"`
	Longitude coordText `json:"longitude"`
}

// coordText accepts a JSON string, number, or null and keeps it as text.
type coordText string

func (c *coordText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = coordText(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("coordinate must be a string, number, or null: %s", data)
		}
		*c = coordText(n.String())
	}
	return nil
}

// Decode parses a JSON destination list, preserving order. Records without
// a name or with unparsable coordinate text reject the whole list.
func Decode(data []byte) ([]domain.Destination, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode destinations: %w", err)
	}

	out := make([]domain.Destination, 0, len(records))
	for i, r := range records {
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("destination %d: %w", i, domain.ErrMissingName)
		}
		d, err := domain.NewDestination(r.Name, string(r.Latitude), string(r.Longitude))
		if err != nil {
			return nil, fmt.Errorf("destination %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// HTTPSource fetches destinations from the site API.
type HTTPSource struct {
	url     string
	client  *resilience.Client
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewHTTPSource creates a source reading from url.
func NewHTTPSource(url string, client *resilience.Client, logger *slog.Logger, metrics *observability.Metrics) *HTTPSource {
	return &HTTPSource{url: url, client: client, logger: logger, metrics: metrics}
}

// Destinations implements domain.DestinationSource.
func (s *HTTPSource) Destinations(ctx context.Context) ([]domain.Destination, error) {
	start := time.Now()
	body, err := s.client.Fetch(ctx, s.url, http.Header{"Accept": {"application/json"}})
	s.metrics.CollaboratorDuration.WithLabelValues("destinations").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.CollaboratorRequests.WithLabelValues("destinations", "error").Inc()
		return nil, domain.Unavailable(fmt.Errorf("fetch destinations: %w", err))
	}

	dests, err := Decode(body)
	if err != nil {
		s.metrics.CollaboratorRequests.WithLabelValues("destinations", "error").Inc()
		if errors.Is(err, domain.ErrMissingName) || errors.Is(err, domain.ErrInvalidCoordinate) {
			return nil, err
		}
		return nil, domain.Unavailable(err)
	}
	s.metrics.CollaboratorRequests.WithLabelValues("destinations", outcome(len(dests))).Inc()
	s.logger.Info("destinations loaded", "source", s.url, "count", len(dests))
	return dests, nil
}

// FileSource reads destinations from a JSON file with the API's shape.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a source reading path.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// Destinations implements domain.DestinationSource.
func (s *FileSource) Destinations(_ context.Context) ([]domain.Destination, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read destinations: %w", err)
	}
	dests, err := Decode(data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("destinations loaded", "source", s.path, "count", len(dests))
	return dests, nil
}

func outcome(n int) string {
	if n == 0 {
		return "empty"
	}
	return "success"
}

