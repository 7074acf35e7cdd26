package snapshot

import (
	"context"
	"errors"

	"github.com/socialspark/cart-service/internal/domain"
)

// ErrSnapshotNotFound means no durable state exists yet for the user; the
// caller starts from an empty session.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Store is the durable side of the persistence boundary: one cart snapshot
// and one wishlist snapshot per user, written whole after each mutation and
// read back on session hydration. Consumers define this interface, not the
// MongoDB implementation.
type Store interface {
	LoadCart(ctx context.Context, userID string) (*domain.Cart, error)
	SaveCart(ctx context.Context, cart *domain.Cart) error
	LoadWishlist(ctx context.Context, userID string) (*domain.Wishlist, error)
	SaveWishlist(ctx context.Context, wishlist *domain.Wishlist) error

	// DeleteAll drops both snapshots for the user (sign-out / full reset).
	DeleteAll(ctx context.Context, userID string) error
}
