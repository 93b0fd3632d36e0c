// Package query builds structured index queries from search criteria. The
// structures here are index-agnostic; the db layer translates them into the
// concrete search syntax.
package query

import (
	"github.com/citygrid/placedex/internal/domain/criteria"
	"github.com/citygrid/placedex/internal/domain/place"
)

// Relevance weights for the multi-field text clause. Name matches dominate,
// category matches rank next, address matches lowest. A document scores on its
// best-matching field, not on matching all of them.
const (
	WeightName     = 3.0
	WeightCategory = 2.0
	WeightAddress  = 1.0
)

// WeightedField is one field of the text clause with its relevance weight.
type WeightedField struct {
	Field  string
	Weight float64
}

// TagFilter is an exact-match filter clause: a document matches when its field
// value is any element of Values (OR within the set, AND with other filters).
type TagFilter struct {
	Field  string
	Values []string
}

// SortKey is one key of the result ordering.
type SortKey struct {
	Field string
	Desc  bool
}

// Ranking is the fixed result ordering: rating descending, ties broken by
// review count descending. Rating and popularity take precedence over textual
// relevance even when a text clause is active.
func Ranking() []SortKey {
	return []SortKey{
		{Field: place.FieldRating, Desc: true},
		{Field: place.FieldReviewCount, Desc: true},
	}
}

// Query is a bounded, structured index query.
type Query struct {
	text       string
	textFields []WeightedField
	tags       []TagFilter
	offset     int
	limit      int
}

// Text returns the free-text clause input, empty when no text clause applies.
func (q Query) Text() string { return q.text }

// TextFields returns the weighted fields of the text clause.
func (q Query) TextFields() []WeightedField { return q.textFields }

// Tags returns the exact-match filter clauses.
func (q Query) Tags() []TagFilter { return q.tags }

// Offset returns the window offset.
func (q Query) Offset() int { return q.offset }

// Limit returns the window size. Always positive: the builder never produces
// an unbounded query.
func (q Query) Limit() int { return q.limit }

// Builder assembles queries constrained to the served city.
type Builder struct {
	city         string
	defaultLimit int
	maxLimit     int
}

// NewBuilder creates a query builder for the given city and page size bounds.
func NewBuilder(city string, defaultLimit, maxLimit int) Builder {
	return Builder{city: city, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// Build assembles a query from criteria. The city filter is always present;
// empty criteria yield a city-only "browse all in region" query.
func (b Builder) Build(c criteria.Criteria) Query {
	tags := []TagFilter{{Field: place.FieldCity, Values: []string{b.city}}}

	if zip := c.ZipCode(); zip != "" {
		tags = append(tags, TagFilter{Field: place.FieldZipCode, Values: []string{zip}})
	}
	if cats := c.Categories(); len(cats) > 0 {
		tags = append(tags, TagFilter{Field: place.FieldCategory, Values: cats})
	}

	q := Query{
		tags:   tags,
		offset: c.Offset(),
		limit:  b.clampLimit(c.Limit()),
	}

	if text := c.Text(); text != "" {
		q.text = text
		q.textFields = []WeightedField{
			{Field: place.FieldName, Weight: WeightName},
			{Field: place.FieldCategory, Weight: WeightCategory},
			{Field: place.FieldAddress, Weight: WeightAddress},
		}
	}

	return q
}

// BrowseAll returns the city-only query used by aggregations over the whole
// served region.
func (b Builder) BrowseAll() Query {
	return b.Build(criteria.Criteria{})
}

// clampLimit applies the default and the hard cap. Clamping is idempotent:
// clamping an already clamped value changes nothing.
func (b Builder) clampLimit(limit int) int {
	if limit <= 0 {
		limit = b.defaultLimit
	}
	if limit > b.maxLimit {
		limit = b.maxLimit
	}
	return limit
}
