package chi

import (
	"github.com/citygrid/placedex/internal/domain/facet"
	"github.com/citygrid/placedex/internal/domain/geo"
	"github.com/citygrid/placedex/internal/domain/place"
)

// Machine-readable error codes returned alongside HTTP statuses.
type ErrorCode string

const (
	CodeBadRequest        ErrorCode = "bad_request"
	CodeValidationFailed  ErrorCode = "validation_failed"
	CodeNoQueryText       ErrorCode = "no_query_text"
	CodeVectorDimMismatch ErrorCode = "vector_dim_mismatch"
	CodeEmbeddingProvider ErrorCode = "embedding_provider_error"
	CodeRetrievalFailed   ErrorCode = "retrieval_failed"
	CodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// PlaceResponse is the place projection on the wire.
type PlaceResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Address     string  `json:"address"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// EventResponse is the event projection on the wire.
type EventResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	ZipCode  string  `json:"zip_code"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// PointResponse is one heatmap coordinate pair.
type PointResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RegionStatResponse is one state-level rollup entry.
type RegionStatResponse struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// RecommendRequest is the body of POST /search/recommend.
type RecommendRequest struct {
	QueryText string `json:"query_text"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func placeToResponse(p place.Place) PlaceResponse {
	return PlaceResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Address:     p.Address,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		Lat:         p.Lat,
		Lng:         p.Lng,
	}
}

func placesToResponse(places []place.Place) []PlaceResponse {
	items := make([]PlaceResponse, len(places))
	for i, p := range places {
		items[i] = placeToResponse(p)
	}
	return items
}

func eventsToResponse(events []place.Event) []EventResponse {
	items := make([]EventResponse, len(events))
	for i, e := range events {
		items[i] = EventResponse{
			ID:       e.ID,
			Name:     e.Name,
			Category: e.Category,
			ZipCode:  e.ZipCode,
			Lat:      e.Lat,
			Lng:      e.Lng,
		}
	}
	return items
}

func pointsToResponse(points []geo.Point) []PointResponse {
	items := make([]PointResponse, len(points))
	for i, p := range points {
		items[i] = PointResponse{Lat: p.Lat, Lng: p.Lng}
	}
	return items
}

func bucketsToResponse(buckets []facet.Bucket) []RegionStatResponse {
	items := make([]RegionStatResponse, len(buckets))
	for i, b := range buckets {
		items[i] = RegionStatResponse{Name: b.Key, Value: b.Count}
	}
	return items
}
