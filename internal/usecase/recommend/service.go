package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/citygrid/placedex/internal/domain"
	"github.com/citygrid/placedex/internal/domain/place"
)

// Params bound the KNN retrieval and pin the expected vector geometry.
type Params struct {
	K             int
	NumCandidates int
	Dimensions    int
}

// Service orchestrates semantic recommendations: resolve query text, embed
// it, then run a KNN search over the vector index.
type Service struct {
	repo     Repository
	profiles ProfileReader
	embedder domain.Embedder
	params   Params
}

// New creates a recommendation service.
func New(repo Repository, profiles ProfileReader, embedder domain.Embedder, params Params) *Service {
	return &Service{repo: repo, profiles: profiles, embedder: embedder, params: params}
}

// Recommend returns the places most similar to the query text. When the text
// is empty the stored preference text of the authenticated account is used
// instead; when neither exists the request is rejected.
func (s *Service) Recommend(ctx context.Context, account, queryText string) ([]place.Place, error) {
	text := strings.TrimSpace(queryText)
	if text == "" && account != "" {
		stored, err := s.profiles.PreferenceText(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("preference fallback: %w: %w", domain.ErrRetrieval, err)
		}
		text = strings.TrimSpace(stored)
	}
	if text == "" {
		return nil, domain.ErrNoQueryText
	}

	result, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(result.Embedding) != s.params.Dimensions {
		return nil, fmt.Errorf("%w: got %d dimensions, want %d",
			domain.ErrVectorDimMismatch, len(result.Embedding), s.params.Dimensions)
	}

	places, err := s.repo.SearchKNN(ctx, result.Embedding, s.params.K, s.params.NumCandidates)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	return places, nil
}
