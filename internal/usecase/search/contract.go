package search

import (
	"context"

	"github.com/citygrid/placedex/internal/domain/place"
	"github.com/citygrid/placedex/internal/domain/query"
)

// Repository defines the retrieval contract for ranked search.
type Repository interface {
	SearchPlaces(ctx context.Context, q query.Query) ([]place.Place, error)
	SearchEvents(ctx context.Context, q query.Query) ([]place.Event, error)
}
