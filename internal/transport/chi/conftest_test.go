package chi

import (
	"context"
	"net/http/httptest"
	"testing"

	chimux "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/citygrid/placedex/internal/domain"
	"github.com/citygrid/placedex/internal/domain/facet"
	"github.com/citygrid/placedex/internal/domain/geo"
	"github.com/citygrid/placedex/internal/domain/place"
	"github.com/citygrid/placedex/internal/domain/query"
	healthuc "github.com/citygrid/placedex/internal/usecase/health"
	recommenduc "github.com/citygrid/placedex/internal/usecase/recommend"
	searchuc "github.com/citygrid/placedex/internal/usecase/search"
	statsuc "github.com/citygrid/placedex/internal/usecase/stats"
)

// --- Mocks ---

type mockSearchRepo struct {
	places    []place.Place
	events    []place.Event
	err       error
	lastQuery query.Query
}

func (m *mockSearchRepo) SearchPlaces(_ context.Context, q query.Query) ([]place.Place, error) {
	m.lastQuery = q
	return m.places, m.err
}

func (m *mockSearchRepo) SearchEvents(_ context.Context, q query.Query) ([]place.Event, error) {
	m.lastQuery = q
	return m.events, m.err
}

type mockStatsRepo struct {
	buckets []facet.Bucket
	points  []geo.Point
	err     error
}

func (m *mockStatsRepo) FacetBuckets(context.Context, facet.Kind, int) ([]facet.Bucket, error) {
	return m.buckets, m.err
}

func (m *mockStatsRepo) Coordinates(context.Context, int) ([]geo.Point, error) {
	return m.points, m.err
}

type mockKNNRepo struct {
	places []place.Place
	err    error
}

func (m *mockKNNRepo) SearchKNN(context.Context, []float32, int, int) ([]place.Place, error) {
	return m.places, m.err
}

type mockProfiles struct {
	text string
	err  error
}

func (m *mockProfiles) PreferenceText(context.Context, string) (string, error) {
	return m.text, m.err
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	if m.result.Embedding == nil {
		return domain.EmbeddingResult{Embedding: make([]float32, 4)}, nil
	}
	return m.result, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

// --- Fixtures ---

type fixtures struct {
	searchRepo *mockSearchRepo
	statsRepo  *mockStatsRepo
	knnRepo    *mockKNNRepo
	profiles   *mockProfiles
	embedder   *mockEmbedder
}

func newTestServer(t *testing.T) (*httptest.Server, *fixtures) {
	t.Helper()

	f := &fixtures{
		searchRepo: &mockSearchRepo{},
		statsRepo:  &mockStatsRepo{},
		knnRepo:    &mockKNNRepo{},
		profiles:   &mockProfiles{},
		embedder:   &mockEmbedder{},
	}

	builder := query.NewBuilder("Chicago", 20, 100)
	searchSvc := searchuc.New(f.searchRepo, builder)
	statsSvc := statsuc.New(f.statsRepo, statsuc.Caps{
		RatingTopN: 10, CategoryTopN: 10, RegionTopN: 50, ListingCap: 100, HeatmapCap: 1000,
	})
	recommendSvc := recommenduc.New(f.knnRepo, f.profiles, f.embedder, recommenduc.Params{
		K: 5, NumCandidates: 50, Dimensions: 4,
	})
	healthSvc := healthuc.New(&mockPinger{}, &mockPinger{}, nil)

	server := NewServer(searchSvc, statsSvc, recommendSvc, healthSvc, zap.NewNop())

	r := chimux.NewRouter()
	server.Register(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, f
}

func testPlace() place.Place {
	return place.Place{
		ID:          "p1",
		Name:        "Green City Market",
		Category:    "Food Halls",
		Address:     "1817 N Clark St",
		Rating:      4.7,
		ReviewCount: 9000,
		Lat:         41.8789,
		Lng:         -87.6359,
	}
}
