package db

import "github.com/citygrid/placedex/internal/domain/query"

// RankedQuery is the input for filter/text search with a fixed sort order and
// a pagination window.
type RankedQuery struct {
	IndexName    string
	Query        query.Query
	SortBy       []query.SortKey
	ReturnFields []string
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName string
	Vector    []float32
	K         int
	// NumCandidates is the approximate-nearest candidate pool examined before
	// ranking the final K. Must be >= K.
	NumCandidates int
	ReturnFields  []string
}

// SampleQuery is the input for an unsorted, bounded field sample (heatmap).
type SampleQuery struct {
	IndexName    string
	Query        query.Query
	ReturnFields []string
	Limit        int
}

// FacetQuery is the input for a terms aggregation grouped by one field.
type FacetQuery struct {
	IndexName string
	Query     query.Query
	GroupBy   string
	TopN      int
}

// Bucket is one aggregation group: key and document count.
type Bucket struct {
	Key   string
	Count int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
