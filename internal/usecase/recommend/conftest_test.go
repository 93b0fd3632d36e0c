package recommend

import (
	"context"
	"testing"

	"github.com/citygrid/placedex/internal/domain"
	"github.com/citygrid/placedex/internal/domain/place"
)

// mockRepo implements Repository for tests.
type mockRepo struct {
	searchKNNFn func(ctx context.Context, vector []float32, k, numCandidates int) ([]place.Place, error)
	knnCalled   bool
}

func (m *mockRepo) SearchKNN(ctx context.Context, vector []float32, k, numCandidates int) ([]place.Place, error) {
	m.knnCalled = true
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, vector, k, numCandidates)
	}
	return nil, nil
}

// mockProfiles implements ProfileReader for tests.
type mockProfiles struct {
	text string
	err  error
}

func (m *mockProfiles) PreferenceText(context.Context, string) (string, error) {
	return m.text, m.err
}

// mockEmbedder implements domain.Embedder for tests.
type mockEmbedder struct {
	embedFn  func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	lastText string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.lastText = text
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: testVector(4)}, nil
}

func testVector(dims int) []float32 {
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}

func testParams() Params {
	return Params{K: 5, NumCandidates: 50, Dimensions: 4}
}

func newTestService(t *testing.T) (*Service, *mockRepo, *mockProfiles, *mockEmbedder) {
	t.Helper()
	mr := &mockRepo{}
	mp := &mockProfiles{}
	me := &mockEmbedder{}
	return New(mr, mp, me, testParams()), mr, mp, me
}
