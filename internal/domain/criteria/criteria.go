// Package criteria defines the validated search criteria value object.
package criteria

import (
	"fmt"
	"strings"

	"github.com/citygrid/placedex/internal/domain"
)

// Criteria holds the optional, user-supplied search parameters. All entities
// are constructed per request and discarded after the response is serialized.
type Criteria struct {
	text       string
	zipCode    string
	categories []string
	limit      int
	offset     int
}

// New validates and creates search criteria. A zero limit means "use the
// service default"; clamping to the maximum page size is the query builder's
// responsibility.
func New(text, zipCode string, categories []string, limit, offset int) (Criteria, error) {
	if limit < 0 {
		return Criteria{}, fmt.Errorf("%w: limit must be >= 0, got %d", domain.ErrInvalidCriteria, limit)
	}
	if offset < 0 {
		return Criteria{}, fmt.Errorf("%w: offset must be >= 0, got %d", domain.ErrInvalidCriteria, offset)
	}

	cleaned := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		cleaned = nil
	}

	return Criteria{
		text:       strings.TrimSpace(text),
		zipCode:    strings.TrimSpace(zipCode),
		categories: cleaned,
		limit:      limit,
		offset:     offset,
	}, nil
}

// Text returns the free-text query, possibly empty.
func (c Criteria) Text() string { return c.text }

// ZipCode returns the exact postal-code filter, possibly empty.
func (c Criteria) ZipCode() string { return c.zipCode }

// Categories returns the category set-membership filter, possibly nil.
func (c Criteria) Categories() []string { return c.categories }

// Limit returns the requested page size (0 = default).
func (c Criteria) Limit() int { return c.limit }

// Offset returns the requested page offset.
func (c Criteria) Offset() int { return c.offset }
