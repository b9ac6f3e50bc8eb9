package usgs

import (
	"context"
	"sync"

	"github.com/rotv/coordinate-validator/internal/domain"
)

// DefaultArea is the area fetched for a snapshot: the park with a margin.
func DefaultArea() domain.BoundingRegion {
	return domain.BoundingRegion{MinLat: 41.05, MaxLat: 41.45, MinLon: -81.70, MaxLon: -81.40}
}

// Snapshot fetches every site in an area once and answers window queries
// locally. The first fetch's outcome, including failure, is reused for the
// rest of the run.
type Snapshot struct {
	inner domain.HydrologySource
	area  domain.BoundingRegion

	once  sync.Once
	sites []domain.ReferenceSite
	err   error
}

// NewSnapshot creates a snapshot of area backed by inner.
func NewSnapshot(inner domain.HydrologySource, area domain.BoundingRegion) *Snapshot {
	return &Snapshot{inner: inner, area: area}
}

// All returns every site in the snapshot area, in source order.
func (s *Snapshot) All(ctx context.Context) ([]domain.ReferenceSite, error) {
	s.once.Do(func() {
		s.sites, s.err = s.inner.Sites(ctx, s.area)
	})
	return s.sites, s.err
}

// Sites implements domain.HydrologySource by filtering the snapshot to
// region, preserving source order.
func (s *Snapshot) Sites(ctx context.Context, region domain.BoundingRegion) ([]domain.ReferenceSite, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.ReferenceSite
	for _, site := range all {
		if region.Contains(site.Coordinate) {
			out = append(out, site)
		}
	}
	return out, nil
}
