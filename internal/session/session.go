package session

import (
	"errors"
	"sync"
	"time"

	"github.com/socialspark/cart-service/internal/domain"
)

// ErrNotInWishlist is returned by MoveToCart when the referenced id is not
// in the wishlist. Plain removes and quantity updates on a missing id are
// silent no-ops instead: removing a visible item must never fail, while
// move-to-cart references an id the caller believes exists.
var ErrNotInWishlist = errors.New("item not in wishlist")

// Session owns one user's cart and wishlist. Both collections sit behind a
// single mutex because MoveToCart touches both and must be one critical
// section; readers never observe the item in neither or double-counted.
type Session struct {
	mu       sync.Mutex
	cart     domain.Cart
	wishlist domain.Wishlist
}

func New(userID string) *Session {
	now := time.Now()
	return &Session{
		cart:     domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now},
		wishlist: domain.Wishlist{UserID: userID, CreatedAt: now, UpdatedAt: now},
	}
}

// Restore rebuilds a session from persisted snapshots. Either snapshot may
// be zero-valued; the user id is taken from whichever is set.
func Restore(userID string, cart domain.Cart, wishlist domain.Wishlist) *Session {
	s := New(userID)
	if !cart.CreatedAt.IsZero() {
		s.cart = cart
		s.cart.UserID = userID
	}
	if !wishlist.CreatedAt.IsZero() {
		s.wishlist = wishlist
		s.wishlist.UserID = userID
	}
	return s
}

// AddToCart merges the item into the cart. Same id: quantities add, the
// first-seen title/price/image win. New id: appended at the end. A quantity
// below 1 counts as 1.
func (s *Session) AddToCart(item domain.LineItem) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addToCartLocked(item)
	return s.cartCopyLocked()
}

func (s *Session) addToCartLocked(item domain.LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for i := range s.cart.Items {
		if s.cart.Items[i].ID == item.ID {
			s.cart.Items[i].Quantity += item.Quantity
			s.cart.UpdatedAt = time.Now()
			return
		}
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	s.cart.Items = append(s.cart.Items, item)
	s.cart.UpdatedAt = time.Now()
}

// UpdateQuantity sets the quantity of the matching item to exactly quantity.
// A value below 1 removes the item. An unknown id leaves the cart unchanged.
func (s *Session) UpdateQuantity(id string, quantity int) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		s.removeFromCartLocked(id)
		return s.cartCopyLocked()
	}
	for i := range s.cart.Items {
		if s.cart.Items[i].ID == id {
			s.cart.Items[i].Quantity = quantity
			s.cart.UpdatedAt = time.Now()
			break
		}
	}
	return s.cartCopyLocked()
}

func (s *Session) RemoveFromCart(id string) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeFromCartLocked(id)
	return s.cartCopyLocked()
}

func (s *Session) removeFromCartLocked(id string) {
	for i, item := range s.cart.Items {
		if item.ID == id {
			s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
			s.cart.UpdatedAt = time.Now()
			return
		}
	}
}

func (s *Session) ClearCart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Items = nil
	s.cart.UpdatedAt = time.Now()
	return s.cartCopyLocked()
}

// AddToWishlist appends the item unless its id is already present; a
// repeated add is a no-op, never a duplicate. Quantity is not tracked.
func (s *Session) AddToWishlist(item domain.LineItem) domain.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.wishlist.Items {
		if existing.ID == item.ID {
			return s.wishlistCopyLocked()
		}
	}
	item.Quantity = 0
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	s.wishlist.Items = append(s.wishlist.Items, item)
	s.wishlist.UpdatedAt = time.Now()
	return s.wishlistCopyLocked()
}

func (s *Session) RemoveFromWishlist(id string) domain.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeFromWishlistLocked(id)
	return s.wishlistCopyLocked()
}

func (s *Session) removeFromWishlistLocked(id string) {
	for i, item := range s.wishlist.Items {
		if item.ID == id {
			s.wishlist.Items = append(s.wishlist.Items[:i], s.wishlist.Items[i+1:]...)
			s.wishlist.UpdatedAt = time.Now()
			return
		}
	}
}

func (s *Session) ClearWishlist() domain.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wishlist.Items = nil
	s.wishlist.UpdatedAt = time.Now()
	return s.wishlistCopyLocked()
}

// MoveToCart transfers a wishlist entry into the cart with quantity 1,
// applying the usual cart merge rule. Both mutations happen under the one
// lock; an unknown id fails with ErrNotInWishlist and touches neither store.
func (s *Session) MoveToCart(id string) (domain.Cart, domain.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *domain.LineItem
	for i := range s.wishlist.Items {
		if s.wishlist.Items[i].ID == id {
			found = &s.wishlist.Items[i]
			break
		}
	}
	if found == nil {
		return s.cartCopyLocked(), s.wishlistCopyLocked(), ErrNotInWishlist
	}

	item := *found
	item.Quantity = 1
	item.AddedAt = time.Now()
	s.addToCartLocked(item)
	s.removeFromWishlistLocked(id)

	return s.cartCopyLocked(), s.wishlistCopyLocked(), nil
}

// Cart returns a snapshot copy; callers never see the live slice.
func (s *Session) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartCopyLocked()
}

func (s *Session) Wishlist() domain.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlistCopyLocked()
}

func (s *Session) cartCopyLocked() domain.Cart {
	c := s.cart
	c.Items = append([]domain.LineItem(nil), s.cart.Items...)
	return c
}

func (s *Session) wishlistCopyLocked() domain.Wishlist {
	w := s.wishlist
	w.Items = append([]domain.LineItem(nil), s.wishlist.Items...)
	return w
}
