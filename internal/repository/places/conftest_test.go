package places

import (
	"context"
	"testing"

	"github.com/citygrid/placedex/internal/db"
)

// mockTextStore implements textSearchPort for tests.
type mockTextStore struct {
	searchRankedFn func(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error)
	lastQuery      *db.RankedQuery
}

func (m *mockTextStore) SearchRanked(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error) {
	m.lastQuery = q
	if m.searchRankedFn != nil {
		return m.searchRankedFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

// mockVectorStore implements vectorSearchPort for tests.
type mockVectorStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	lastQuery   *db.KNNQuery
}

func (m *mockVectorStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.lastQuery = q
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockTextStore, *mockVectorStore) {
	t.Helper()
	mt := &mockTextStore{}
	mv := &mockVectorStore{}
	repo := New(mt, mv, "idx:places", "idx:places:vec")
	return repo, mt, mv
}

func placeHit(id, name string) db.SearchEntry {
	return db.SearchEntry{
		Key: "place:" + id,
		Fields: map[string]string{
			"id":           id,
			"name":         name,
			"category":     "Restaurants",
			"address":      "1747 N Damen Ave",
			"rating":       "4.5",
			"review_count": "812",
			"lat":          "41.8832",
			"lng":          "-87.6324",
		},
	}
}
