package stats

import (
	"context"
	"testing"

	"github.com/citygrid/placedex/internal/domain/facet"
	"github.com/citygrid/placedex/internal/domain/geo"
)

// mockRepo implements Repository for tests.
type mockRepo struct {
	facetBucketsFn func(ctx context.Context, kind facet.Kind, topN int) ([]facet.Bucket, error)
	coordinatesFn  func(ctx context.Context, limit int) ([]geo.Point, error)
}

func (m *mockRepo) FacetBuckets(ctx context.Context, kind facet.Kind, topN int) ([]facet.Bucket, error) {
	if m.facetBucketsFn != nil {
		return m.facetBucketsFn(ctx, kind, topN)
	}
	return nil, nil
}

func (m *mockRepo) Coordinates(ctx context.Context, limit int) ([]geo.Point, error) {
	if m.coordinatesFn != nil {
		return m.coordinatesFn(ctx, limit)
	}
	return nil, nil
}

func testCaps() Caps {
	return Caps{
		RatingTopN:   10,
		CategoryTopN: 10,
		RegionTopN:   50,
		ListingCap:   100,
		HeatmapCap:   1000,
	}
}

func newTestService(t *testing.T) (*Service, *mockRepo) {
	t.Helper()
	mr := &mockRepo{}
	return New(mr, testCaps()), mr
}
