package cache

import (
	"context"
	"errors"

	"github.com/socialspark/cart-service/internal/domain"
)

// Snapshot bundles both halves of a user session for one cache round trip.
type Snapshot struct {
	Cart     domain.Cart     `json:"cart"`
	Wishlist domain.Wishlist `json:"wishlist"`
}

type SessionCache interface {
	Get(ctx context.Context, userID string) (*Snapshot, error)
	Set(ctx context.Context, userID string, snap *Snapshot) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
