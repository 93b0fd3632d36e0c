package redis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/citygrid/placedex/internal/db"
	"github.com/citygrid/placedex/internal/domain/criteria"
	"github.com/citygrid/placedex/internal/domain/query"
)

func buildQuery(t *testing.T, text, zip string, categories []string) query.Query {
	t.Helper()
	c, err := criteria.New(text, zip, categories, 0, 0)
	if err != nil {
		t.Fatalf("criteria.New: %v", err)
	}
	return query.NewBuilder("Chicago", 20, 100).Build(c)
}

// --- query.go tests ---

func TestBuildQueryString_CityOnly(t *testing.T) {
	got := buildQueryString(buildQuery(t, "", "", nil))
	if got != "@city:{Chicago}" {
		t.Errorf("unexpected query string %q", got)
	}
}

func TestBuildQueryString_AllClauses(t *testing.T) {
	got := buildQueryString(buildQuery(t, "roast pork", "60614", []string{"Sandwiches", "Delis"}))

	if !strings.HasPrefix(got, "@city:{Chicago} @zip_code:{60614} @category:{Sandwiches|Delis}") {
		t.Errorf("unexpected filter prefix in %q", got)
	}
	for _, want := range []string{
		"@name:(%roast% %pork%) => { $weight: 3 }",
		"@category:(%roast% %pork%) => { $weight: 2 }",
		"@address:(%roast% %pork%) => { $weight: 1 }",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in query string %q", want, got)
		}
	}
	// Weighted sub-clauses are OR-ed: the best-scoring field wins.
	if !strings.Contains(got, " | ") {
		t.Errorf("expected OR-joined text clause in %q", got)
	}
}

func TestBuildQueryString_EmptyQueryMatchesAll(t *testing.T) {
	if got := buildQueryString(query.Query{}); got != "*" {
		t.Errorf("expected wildcard, got %q", got)
	}
}

func TestBuildTagFilter_Escaping(t *testing.T) {
	got := buildTagFilter(query.TagFilter{
		Field:  "category",
		Values: []string{"Bed & Breakfast", "Wine-Bars"},
	})
	want := `@category:{Bed\ \&\ Breakfast|Wine\-Bars}`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFuzzyTerms(t *testing.T) {
	got := fuzzyTerms("  deep   dish  ")
	if got != "%deep% %dish%" {
		t.Errorf("unexpected fuzzy terms %q", got)
	}
}

func TestFuzzyTerms_EscapesSpecials(t *testing.T) {
	got := fuzzyTerms("d'angelo's")
	if got != `%d\'angelo\'s%` {
		t.Errorf("unexpected fuzzy terms %q", got)
	}
}

func TestVectorToBytes(t *testing.T) {
	got := vectorToBytes([]float32{1.0})
	// 1.0 is 0x3f800000, little-endian
	want := string([]byte{0x00, 0x00, 0x80, 0x3f})
	if got != want {
		t.Errorf("expected %x, got %x", want, got)
	}
}

// --- search.go tests ---

func TestSearchRanked_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "FT.AGGREGATE" {
				return false
			}
			joined := strings.Join(cmd, " ")
			return strings.Contains(joined, "SORTBY 4 @rating DESC @review_count DESC") &&
				strings.Contains(joined, "DIALECT 2")
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2), // total
			mock.RedisArray(
				mock.RedisString("id"), mock.RedisString("p1"),
				mock.RedisString("name"), mock.RedisString("Alinea"),
				mock.RedisString("rating"), mock.RedisString("4.8"),
			),
			mock.RedisArray(
				mock.RedisString("id"), mock.RedisString("p2"),
				mock.RedisString("name"), mock.RedisString("Au Cheval"),
				mock.RedisString("rating"), mock.RedisString("4.6"),
			),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchRanked(context.Background(), &db.RankedQuery{
		IndexName:    "idx:places",
		Query:        buildQuery(t, "", "", nil),
		SortBy:       query.Ranking(),
		ReturnFields: []string{"id", "name", "rating"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected total 2, got %d", result.Total)
	}
	if result.Entries[0].Fields["name"] != "Alinea" {
		t.Errorf("expected first entry Alinea, got %v", result.Entries[0].Fields)
	}
}

func TestSearchRanked_RequiresIndexName(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewStoreForTest(mock.NewClient(ctrl))

	_, err := s.SearchRanked(context.Background(), &db.RankedQuery{
		Query: buildQuery(t, "", "", nil),
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchRanked_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.AGGREGATE"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.SearchRanked(context.Background(), &db.RankedQuery{
		IndexName: "idx:places",
		Query:     buildQuery(t, "", "", nil),
	})

	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpAggregate {
		t.Errorf("expected db.Error with OpAggregate, got %v", err)
	}
}

func TestSearchKNN_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "FT.SEARCH" {
				return false
			}
			return strings.Contains(cmd[2], "KNN 5") &&
				strings.Contains(cmd[2], "EF_RUNTIME 50")
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1), // total
			mock.RedisString("place:p1"),
			mock.RedisArray(
				mock.RedisString("__vector_score"), mock.RedisString("0.1"),
				mock.RedisString("id"), mock.RedisString("p1"),
				mock.RedisString("name"), mock.RedisString("Big Star"),
			),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:     "idx:places:vec",
		Vector:        []float32{0.1, 0.2},
		K:             5,
		NumCandidates: 50,
		ReturnFields:  []string{"id", "name"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 || len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %+v", result)
	}

	entry := result.Entries[0]
	if entry.Key != "place:p1" {
		t.Errorf("expected key place:p1, got %s", entry.Key)
	}
	// cosine distance 0.1 maps to similarity 0.9
	if entry.Score < 0.89 || entry.Score > 0.91 {
		t.Errorf("expected score ~0.9, got %f", entry.Score)
	}
	if _, ok := entry.Fields["__vector_score"]; ok {
		t.Error("expected raw score field stripped from entry fields")
	}
}

func TestSearchKNN_CandidatesBelowK(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewStoreForTest(mock.NewClient(ctrl))

	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:     "idx",
		Vector:        []float32{0.1},
		K:             10,
		NumCandidates: 5,
	})
	if err == nil {
		t.Fatal("expected error when candidate pool < k")
	}
}

func TestSearchKNN_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:     "idx",
		Vector:        []float32{0.1},
		K:             5,
		NumCandidates: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(result.Entries))
	}
}

func TestSearchSample_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "FT.SEARCH" {
				return false
			}
			joined := strings.Join(cmd, " ")
			return strings.Contains(joined, "RETURN 2 lat lng") &&
				strings.Contains(joined, "LIMIT 0 1000")
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("place:p1"),
			mock.RedisArray(
				mock.RedisString("lat"), mock.RedisString("41.88"),
				mock.RedisString("lng"), mock.RedisString("-87.63"),
			),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchSample(context.Background(), &db.SampleQuery{
		IndexName:    "idx:places",
		Query:        buildQuery(t, "", "", nil),
		ReturnFields: []string{"lat", "lng"},
		Limit:        1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Fields["lat"] != "41.88" {
		t.Errorf("unexpected result %+v", result)
	}
}

// --- aggregate.go tests ---

func TestAggregateFacet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "FT.AGGREGATE" {
				return false
			}
			joined := strings.Join(cmd, " ")
			return strings.Contains(joined, "GROUPBY 1 @category") &&
				strings.Contains(joined, "REDUCE COUNT 0 AS count") &&
				strings.Contains(joined, "SORTBY 2 @count DESC")
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisArray(
				mock.RedisString("category"), mock.RedisString("Restaurants"),
				mock.RedisString("count"), mock.RedisString("300"),
			),
			mock.RedisArray(
				mock.RedisString("category"), mock.RedisString("Bars"),
				mock.RedisString("count"), mock.RedisString("150"),
			),
		)))

	s := NewStoreForTest(c)
	buckets, err := s.AggregateFacet(context.Background(), &db.FacetQuery{
		IndexName: "idx:places",
		Query:     buildQuery(t, "", "", nil),
		GroupBy:   "category",
		TopN:      10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Key != "Restaurants" || buckets[0].Count != 300 {
		t.Errorf("unexpected first bucket %+v", buckets[0])
	}
}

func TestAggregateFacet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.AGGREGATE"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.AggregateFacet(context.Background(), &db.FacetQuery{
		IndexName: "idx:places",
		Query:     buildQuery(t, "", "", nil),
		GroupBy:   "category",
		TopN:      10,
	})

	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpAggregate {
		t.Errorf("expected db.Error with OpAggregate, got %v", err)
	}
}

// --- kv.go tests ---

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "placedex:profile:acct-1")).
		Return(mock.Result(mock.RedisString("cozy wine bars")))

	s := NewStoreForTest(c)
	data, err := s.Get(context.Background(), "placedex:profile:acct-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "cozy wine bars" {
		t.Errorf("unexpected value %q", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "missing")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
