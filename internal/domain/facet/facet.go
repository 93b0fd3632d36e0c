// Package facet defines the aggregation facets and their bucketed output.
package facet

// Kind identifies a categorical or numeric field over which counts are
// aggregated.
type Kind string

const (
	// Rating buckets the discrete rating values present in the index.
	Rating Kind = "rating"
	// Category buckets the normalized category titles.
	Category Kind = "category"
	// ZipCode buckets the postal codes.
	ZipCode Kind = "zip_code"
	// Region buckets the state-level region field.
	Region Kind = "region"
)

// Bucket is one aggregation bucket: a key and its document count. Ordering is
// index-assigned, by descending count.
type Bucket struct {
	Key   string
	Count int
}
