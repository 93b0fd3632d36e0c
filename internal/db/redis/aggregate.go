package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/citygrid/placedex/internal/db"
)

// AggregateFacet runs a terms aggregation via FT.AGGREGATE GROUPBY, returning
// the top-N buckets by descending document count.
func (s *Store) AggregateFacet(ctx context.Context, q *db.FacetQuery) ([]db.Bucket, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.GroupBy == "" {
		return nil, fmt.Errorf("group-by field is required")
	}
	if q.TopN <= 0 {
		return nil, fmt.Errorf("topN must be positive")
	}

	args := []string{
		q.IndexName, buildQueryString(q.Query),
		"GROUPBY", "1", "@" + q.GroupBy,
		"REDUCE", "COUNT", "0", "AS", "count",
		"SORTBY", "2", "@count", "DESC",
		"LIMIT", "0", strconv.Itoa(q.TopN),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	sr, err := parseRowResult(raw)
	if err != nil {
		return nil, err
	}

	buckets := make([]db.Bucket, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		key, ok := entry.Fields[q.GroupBy]
		if !ok {
			continue
		}
		count, err := strconv.Atoi(entry.Fields["count"])
		if err != nil {
			continue
		}
		buckets = append(buckets, db.Bucket{Key: key, Count: count})
	}

	return buckets, nil
}
