package recommend

import (
	"context"

	"github.com/citygrid/placedex/internal/domain/place"
)

// Repository defines the vector retrieval contract.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, k, numCandidates int) ([]place.Place, error)
}

// ProfileReader resolves stored preference text for an account.
type ProfileReader interface {
	PreferenceText(ctx context.Context, account string) (string, error)
}
