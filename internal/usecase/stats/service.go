package stats

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/citygrid/placedex/internal/domain/facet"
	"github.com/citygrid/placedex/internal/domain/geo"
	"github.com/citygrid/placedex/internal/logger"
	"github.com/citygrid/placedex/internal/metrics"
)

// Service computes on-demand analytics over the document index. Every
// operation is best-effort: an index failure is logged and absorbed into an
// empty result, because these are auxiliary widgets whose failure must not
// break the page.
type Service struct {
	repo Repository
	caps Caps
}

// New creates a stats service.
func New(repo Repository, caps Caps) *Service {
	return &Service{repo: repo, caps: caps}
}

// RatingDistribution returns a count per discrete rating value. Keys use the
// "<one-decimal>start" format.
func (s *Service) RatingDistribution(ctx context.Context) map[string]int {
	buckets, err := s.repo.FacetBuckets(ctx, facet.Rating, s.caps.RatingTopN)
	if err != nil {
		s.degrade(ctx, facet.Rating, err)
		return map[string]int{}
	}

	counts := make(map[string]int, len(buckets))
	for _, b := range buckets {
		rating, err := strconv.ParseFloat(b.Key, 64)
		if err != nil {
			continue
		}
		counts[formatRatingKey(rating)] += b.Count
	}
	return counts
}

// CategoryCounts returns a document count per category title. Counts sum to
// the total matching document count (occurrence semantics, not distinct).
func (s *Service) CategoryCounts(ctx context.Context) map[string]int {
	buckets, err := s.repo.FacetBuckets(ctx, facet.Category, s.caps.CategoryTopN)
	if err != nil {
		s.degrade(ctx, facet.Category, err)
		return map[string]int{}
	}

	counts := make(map[string]int, len(buckets))
	for _, b := range buckets {
		counts[b.Key] += b.Count
	}
	return counts
}

// ZipCodes returns the deduplicated postal codes present in the region.
func (s *Service) ZipCodes(ctx context.Context) []string {
	return s.listing(ctx, facet.ZipCode, s.caps.ListingCap)
}

// Categories returns the deduplicated category titles present in the region.
func (s *Service) Categories(ctx context.Context) []string {
	return s.listing(ctx, facet.Category, s.caps.ListingCap)
}

// Heatmap returns matching coordinate pairs for density rendering, capped at
// the fixed sample size and not deduplicated.
func (s *Service) Heatmap(ctx context.Context) []geo.Point {
	points, err := s.repo.Coordinates(ctx, s.caps.HeatmapCap)
	if err != nil {
		s.degrade(ctx, "heatmap", err)
		return []geo.Point{}
	}
	if len(points) > s.caps.HeatmapCap {
		points = points[:s.caps.HeatmapCap]
	}
	return points
}

// RegionStats returns state-level document counts, top-N capped.
func (s *Service) RegionStats(ctx context.Context) []facet.Bucket {
	buckets, err := s.repo.FacetBuckets(ctx, facet.Region, s.caps.RegionTopN)
	if err != nil {
		s.degrade(ctx, facet.Region, err)
		return []facet.Bucket{}
	}
	return buckets
}

// listing returns deduplicated facet keys (set semantics, no counts).
func (s *Service) listing(ctx context.Context, kind facet.Kind, topN int) []string {
	buckets, err := s.repo.FacetBuckets(ctx, kind, topN)
	if err != nil {
		s.degrade(ctx, kind, err)
		return []string{}
	}

	seen := make(map[string]struct{}, len(buckets))
	values := make([]string, 0, len(buckets))
	for _, b := range buckets {
		if _, ok := seen[b.Key]; ok {
			continue
		}
		seen[b.Key] = struct{}{}
		values = append(values, b.Key)
	}
	return values
}

func (s *Service) degrade(ctx context.Context, kind facet.Kind, err error) {
	logger.FromContext(ctx).Warn("aggregation degraded",
		zap.String("facet", string(kind)),
		zap.Error(err),
	)
	metrics.AggregationDegradedTotal.WithLabelValues(string(kind)).Inc()
}

// formatRatingKey renders a rating bucket key as "<one-decimal>start", e.g.
// 4.0 -> "4.0start", 4.55 -> "4.6start". The "start" suffix is an exact
// external-format contract with existing consumers; do not change it without
// product confirmation. Rounding at .x5 is half away from zero.
func formatRatingKey(rating float64) string {
	cents := int(math.Round(rating * 100))
	tenths := (cents + 5) / 10
	return fmt.Sprintf("%d.%dstart", tenths/10, tenths%10)
}
