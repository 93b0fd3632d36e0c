package stats

import (
	"context"
	"testing"

	"github.com/citygrid/placedex/internal/db"
	"github.com/citygrid/placedex/internal/domain/query"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	aggregateFacetFn func(ctx context.Context, q *db.FacetQuery) ([]db.Bucket, error)
	searchSampleFn   func(ctx context.Context, q *db.SampleQuery) (*db.SearchResult, error)
	lastFacetQuery   *db.FacetQuery
	lastSampleQuery  *db.SampleQuery
}

func (m *mockStore) AggregateFacet(ctx context.Context, q *db.FacetQuery) ([]db.Bucket, error) {
	m.lastFacetQuery = q
	if m.aggregateFacetFn != nil {
		return m.aggregateFacetFn(ctx, q)
	}
	return nil, nil
}

func (m *mockStore) SearchSample(ctx context.Context, q *db.SampleQuery) (*db.SearchResult, error) {
	m.lastSampleQuery = q
	if m.searchSampleFn != nil {
		return m.searchSampleFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	browse := query.NewBuilder("Chicago", 20, 100).BrowseAll()
	repo := New(ms, "idx:places", browse)
	return repo, ms
}
