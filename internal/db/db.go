package db

import (
	"context"
	"time"
)

// Store is the read-only database facade combining all sub-interfaces.
// Consumers use the narrow sub-interfaces (ISP).
type Store interface {
	Pinger
	Searcher
	Aggregator
	KVReader
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchRanked(ctx context.Context, q *RankedQuery) (*SearchResult, error)
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchSample(ctx context.Context, q *SampleQuery) (*SearchResult, error)
}

// Aggregator provides bucketed aggregations over FT indexes.
type Aggregator interface {
	AggregateFacet(ctx context.Context, q *FacetQuery) ([]Bucket, error)
}

// KVReader provides simple key-value reads.
type KVReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}
