package search

import (
	"context"
	"fmt"

	"github.com/citygrid/placedex/internal/domain/criteria"
	"github.com/citygrid/placedex/internal/domain/place"
	"github.com/citygrid/placedex/internal/domain/query"
)

// Service handles multi-criteria place and event search. Failures on this
// path propagate to the caller: primary search is never silently degraded.
type Service struct {
	repo    Repository
	builder query.Builder
}

// New creates a search service.
func New(repo Repository, builder query.Builder) *Service {
	return &Service{repo: repo, builder: builder}
}

// Places returns the ranked place projections matching the criteria.
func (s *Service) Places(ctx context.Context, c criteria.Criteria) ([]place.Place, error) {
	results, err := s.repo.SearchPlaces(ctx, s.builder.Build(c))
	if err != nil {
		return nil, fmt.Errorf("search places: %w", err)
	}
	return results, nil
}

// Events returns the ranked event projections matching the criteria.
func (s *Service) Events(ctx context.Context, c criteria.Criteria) ([]place.Event, error) {
	results, err := s.repo.SearchEvents(ctx, s.builder.Build(c))
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return results, nil
}
