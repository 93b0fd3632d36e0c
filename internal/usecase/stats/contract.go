package stats

import (
	"context"

	"github.com/citygrid/placedex/internal/domain/facet"
	"github.com/citygrid/placedex/internal/domain/geo"
)

// Repository defines the aggregation contract.
type Repository interface {
	FacetBuckets(ctx context.Context, kind facet.Kind, topN int) ([]facet.Bucket, error)
	Coordinates(ctx context.Context, limit int) ([]geo.Point, error)
}

// Caps bound every aggregation result.
type Caps struct {
	RatingTopN   int
	CategoryTopN int
	RegionTopN   int
	ListingCap   int
	HeatmapCap   int
}
