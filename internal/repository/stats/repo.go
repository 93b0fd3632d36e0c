package stats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/citygrid/placedex/internal/db"
	"github.com/citygrid/placedex/internal/domain/facet"
	"github.com/citygrid/placedex/internal/domain/geo"
	"github.com/citygrid/placedex/internal/domain/place"
	"github.com/citygrid/placedex/internal/domain/query"
)

// store is the consumer interface for aggregation operations (ISP).
type store interface {
	AggregateFacet(ctx context.Context, q *db.FacetQuery) ([]db.Bucket, error)
	SearchSample(ctx context.Context, q *db.SampleQuery) (*db.SearchResult, error)
}

// facetFields maps facet kinds to indexed field names.
var facetFields = map[facet.Kind]string{
	facet.Rating:   place.FieldRating,
	facet.Category: place.FieldCategory,
	facet.ZipCode:  place.FieldZipCode,
	facet.Region:   place.FieldRegion,
}

// Repo issues aggregation queries against the primary document index.
type Repo struct {
	store   store
	index   string
	browse  query.Query
	timeout time.Duration
}

// New creates an aggregation repository. browse is the city-only query that
// scopes every aggregation to the served region.
func New(s store, indexName string, browse query.Query) *Repo {
	return &Repo{store: s, index: indexName, browse: browse}
}

// WithTimeout bounds every outbound index call.
func (r *Repo) WithTimeout(d time.Duration) *Repo {
	r.timeout = d
	return r
}

// FacetBuckets returns the top-N buckets for a facet, ordered by descending
// document count.
func (r *Repo) FacetBuckets(ctx context.Context, kind facet.Kind, topN int) ([]facet.Bucket, error) {
	field, ok := facetFields[kind]
	if !ok {
		return nil, fmt.Errorf("unknown facet kind %q", kind)
	}

	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	buckets, err := r.store.AggregateFacet(ctx, &db.FacetQuery{
		IndexName: r.index,
		Query:     r.browse,
		GroupBy:   field,
		TopN:      topN,
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", kind, err)
	}

	out := make([]facet.Bucket, len(buckets))
	for i, b := range buckets {
		out[i] = facet.Bucket{Key: b.Key, Count: b.Count}
	}
	return out, nil
}

// Coordinates returns up to limit coordinate pairs of matching documents, with
// no deduplication. Hits with invalid or unparsable coordinates are skipped.
func (r *Repo) Coordinates(ctx context.Context, limit int) ([]geo.Point, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	sr, err := r.store.SearchSample(ctx, &db.SampleQuery{
		IndexName:    r.index,
		Query:        r.browse,
		ReturnFields: []string{place.FieldLat, place.FieldLng},
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("sample coordinates: %w", err)
	}

	points := make([]geo.Point, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		lat, latErr := strconv.ParseFloat(entry.Fields[place.FieldLat], 64)
		lng, lngErr := strconv.ParseFloat(entry.Fields[place.FieldLng], 64)
		if latErr != nil || lngErr != nil || !geo.ValidateCoordinates(lat, lng) {
			continue
		}
		points = append(points, geo.Point{Lat: lat, Lng: lng})
	}
	return points, nil
}

func (r *Repo) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}
