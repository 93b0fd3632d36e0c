package places

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/citygrid/placedex/internal/db"
	"github.com/citygrid/placedex/internal/domain"
	"github.com/citygrid/placedex/internal/domain/place"
	"github.com/citygrid/placedex/internal/domain/query"
	"github.com/citygrid/placedex/internal/logger"
	"github.com/citygrid/placedex/internal/metrics"
)

// textSearchPort is the consumer interface for the primary document index (ISP).
type textSearchPort interface {
	SearchRanked(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error)
}

// vectorSearchPort is the consumer interface for the vector-enabled index (ISP).
type vectorSearchPort interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

var placeFields = []string{
	place.FieldID, place.FieldName, place.FieldCategory, place.FieldAddress,
	place.FieldRating, place.FieldReviewCount, place.FieldLat, place.FieldLng,
}

var eventFields = []string{
	place.FieldID, place.FieldName, place.FieldCategory, place.FieldZipCode,
	place.FieldLat, place.FieldLng,
}

// Repo executes retrieval queries against the two index handles and shapes
// raw hits into place projections. Read-only, single attempt per call: retries
// are a caller concern.
type Repo struct {
	text        textSearchPort
	vector      vectorSearchPort
	textIndex   string
	vectorIndex string
	timeout     time.Duration
	warnMissing bool
}

// New creates a retrieval repository over the primary and vector index handles.
func New(text textSearchPort, vector vectorSearchPort, textIndex, vectorIndex string) *Repo {
	return &Repo{
		text:        text,
		vector:      vector,
		textIndex:   textIndex,
		vectorIndex: vectorIndex,
	}
}

// WithTimeout bounds every outbound index call.
func (r *Repo) WithTimeout(d time.Duration) *Repo {
	r.timeout = d
	return r
}

// WithDataQualityWarnings enables a warn log whenever a hit is missing an
// expected field and a default is substituted.
func (r *Repo) WithDataQualityWarnings(enabled bool) *Repo {
	r.warnMissing = enabled
	return r
}

// SearchPlaces executes a ranked filter/text query and maps hits to Place
// projections. One-shot: the returned sequence is finite and not restartable.
func (r *Repo) SearchPlaces(ctx context.Context, q query.Query) ([]place.Place, error) {
	sr, err := r.searchRanked(ctx, q)
	if err != nil {
		return nil, err
	}

	results := make([]place.Place, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		p, missing := place.FromFields(entry.Fields)
		r.reportMissing(ctx, p.ID, missing)
		results = append(results, p)
	}
	return results, nil
}

// SearchEvents executes the same query with the event projection.
func (r *Repo) SearchEvents(ctx context.Context, q query.Query) ([]place.Event, error) {
	sr, err := r.searchRanked(ctx, q, eventFields...)
	if err != nil {
		return nil, err
	}

	results := make([]place.Event, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		e, missing := place.EventFromFields(entry.Fields)
		r.reportMissing(ctx, e.ID, missing)
		results = append(results, e)
	}
	return results, nil
}

// SearchKNN performs approximate k-nearest-neighbor retrieval on the vector
// index and shapes hits into the same Place projection as plain search.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, k, numCandidates int) ([]place.Place, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	sr, err := r.vector.SearchKNN(ctx, &db.KNNQuery{
		IndexName:     r.vectorIndex,
		Vector:        vector,
		K:             k,
		NumCandidates: numCandidates,
		ReturnFields:  placeFields,
	})
	if err != nil {
		metrics.IndexQueriesTotal.WithLabelValues("knn", "error").Inc()
		return nil, fmt.Errorf("search knn: %w: %w", domain.ErrRetrieval, err)
	}
	metrics.IndexQueriesTotal.WithLabelValues("knn", "success").Inc()

	results := make([]place.Place, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		p, missing := place.FromFields(entry.Fields)
		r.reportMissing(ctx, p.ID, missing)
		results = append(results, p)
	}
	return results, nil
}

func (r *Repo) searchRanked(ctx context.Context, q query.Query, fields ...string) (*db.SearchResult, error) {
	if len(fields) == 0 {
		fields = placeFields
	}

	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	sr, err := r.text.SearchRanked(ctx, &db.RankedQuery{
		IndexName:    r.textIndex,
		Query:        q,
		SortBy:       query.Ranking(),
		ReturnFields: fields,
	})
	if err != nil {
		metrics.IndexQueriesTotal.WithLabelValues("ranked", "error").Inc()
		return nil, fmt.Errorf("search ranked: %w: %w", domain.ErrRetrieval, err)
	}
	metrics.IndexQueriesTotal.WithLabelValues("ranked", "success").Inc()
	return sr, nil
}

func (r *Repo) reportMissing(ctx context.Context, id string, missing []string) {
	if !r.warnMissing || len(missing) == 0 {
		return
	}
	logger.FromContext(ctx).Warn("place document missing fields",
		zap.String("id", id),
		zap.Strings("fields", missing),
	)
}

func (r *Repo) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}
