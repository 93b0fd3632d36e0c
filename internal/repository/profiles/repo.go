package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/citygrid/placedex/internal/db"
)

// store is the consumer interface for profile reads (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Repo reads stored user preference text. The account CRUD layer owns writes;
// this engine only consumes the text as the recommendation fallback.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a profile repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// PreferenceText returns the stored preference text for an account, or an
// empty string when none is stored.
func (r *Repo) PreferenceText(ctx context.Context, account string) (string, error) {
	data, err := r.store.Get(ctx, r.key(account))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("profile GET %s: %w", account, err)
	}
	return string(data), nil
}

func (r *Repo) key(account string) string {
	return r.keyPrefix + "profile:" + account
}
