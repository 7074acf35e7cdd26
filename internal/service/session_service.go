package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/socialspark/cart-service/internal/cache"
	"github.com/socialspark/cart-service/internal/domain"
	"github.com/socialspark/cart-service/internal/pricing"
	"github.com/socialspark/cart-service/internal/session"
	"github.com/socialspark/cart-service/internal/snapshot"
	"golang.org/x/sync/singleflight"
)

const persistTimeout = time.Second

// SessionService owns the live Session per user and mirrors every mutation
// into the snapshot store. The in-memory session is the source of truth:
// mutations apply synchronously and a persistence failure is logged, never
// surfaced to the caller or rolled back.
type SessionService struct {
	store   snapshot.Store
	cache   cache.SessionCache
	pricing *pricing.Calculator
	breaker *gobreaker.CircuitBreaker[struct{}]
	sfg     singleflight.Group // prevents hydration stampede per user

	mu       sync.Mutex
	sessions map[string]*session.Session
}

func NewSessionService(store snapshot.Store, c cache.SessionCache, calc *pricing.Calculator) *SessionService {
	return &SessionService{
		store:   store,
		cache:   c,
		pricing: calc,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:    "snapshot-store",
			Timeout: 30 * time.Second,
		}),
		sessions: make(map[string]*session.Session),
	}
}

// getSession returns the live session for the user, hydrating it from the
// cache or the snapshot store on first access.
func (s *SessionService) getSession(ctx context.Context, userID string) (*session.Session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[userID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		snap, errCache := s.cache.Get(ctx, userID)
		if errCache == nil {
			return session.Restore(userID, snap.Cart, snap.Wishlist), nil
		}
		if !errors.Is(errCache, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", errCache) // log cache error but continue
		}

		var cart domain.Cart
		loaded, errLoad := s.store.LoadCart(ctx, userID)
		if errLoad != nil && !errors.Is(errLoad, snapshot.ErrSnapshotNotFound) {
			return nil, errLoad
		}
		if loaded != nil {
			cart = *loaded
		}

		var wishlist domain.Wishlist
		loadedWl, errLoad := s.store.LoadWishlist(ctx, userID)
		if errLoad != nil && !errors.Is(errLoad, snapshot.ErrSnapshotNotFound) {
			return nil, errLoad
		}
		if loadedWl != nil {
			wishlist = *loadedWl
		}

		sess := session.Restore(userID, cart, wishlist)

		go func() {
			errSet := s.cache.Set(context.Background(), userID, &cache.Snapshot{
				Cart:     sess.Cart(),
				Wishlist: sess.Wishlist(),
			})
			if errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return sess, nil
	})
	if err != nil {
		return nil, err
	}

	sess := v.(*session.Session)
	s.mu.Lock()
	if existing, ok := s.sessions[userID]; ok {
		sess = existing
	} else {
		s.sessions[userID] = sess
	}
	s.mu.Unlock()
	return sess, nil
}

func (s *SessionService) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	sess, err := s.getSession(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	return sess.Cart(), nil
}

func (s *SessionService) GetWishlist(ctx context.Context, userID string) (domain.Wishlist, error) {
	sess, err := s.getSession(ctx, userID)
	if err != nil {
		return domain.Wishlist{}, err
	}
	return sess.Wishlist(), nil
}

// Summary recomputes the pricing breakdown from the current cart contents.
func (s *SessionService) Summary(ctx context.Context, userID string) (domain.Summary, error) {
	sess, err := s.getSession(ctx, userID)
	if err != nil {
		return domain.Summary{}, err
	}
	return s.pricing.Summarize(sess.Cart().Items), nil
}

func (s *SessionService) AddToCart(ctx context.Context, userID string, item domain.LineItem) (domain.Cart, error) {
	sess, err := s.getSession(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	cart := sess.AddToCart(item)
	s.persistCart(userID, cart)
	return cart, nil
}

func (s *SessionService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (domain.Cart, error) {
	sess, err := s.getSession(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	cart := sess.UpdateQuantity(itemID, quantity)
	s.persistCart(userID, cart)
	return cart, nil
}

func (s *SessionService) RemoveFromCart(ctx context.Context, userID, itemID string) (domain.Cart, error) {
	sess, err := s.getSession(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	cart := sess.RemoveFromCart(itemID)
	s.persistCart(userID, cart)
	return cart, nil
}

func (s *SessionService) ClearCart(ctx context.Context, userID string) (domain.Cart, error) {
	sess, err := s.getSession(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	cart := sess.ClearCart()
	s.persistCart(userID, cart)
	return cart, nil
}

func (s *SessionService) AddToWishlist(ctx context.Context, userID string, item domain.LineItem) (domain.Wishlist, error) {
	sess, err := s.getSession(ctx, userID)
	if err != nil {
		return domain.Wishlist{}, err
	}
	wl := sess.AddToWishlist(item)
	s.persistWishlist(userID, wl)
	return wl, nil
}

func (s *SessionService) RemoveFromWishlist(ctx context.Context, userID, itemID string) (domain.Wishlist, error) {
	sess, err := s.getSession(ctx, userID)
	if err != nil {
		return domain.Wishlist{}, err
	}
	wl := sess.RemoveFromWishlist(itemID)
	s.persistWishlist(userID, wl)
	return wl, nil
}

func (s *SessionService) ClearWishlist(ctx context.Context, userID string) (domain.Wishlist, error) {
	sess, err := s.getSession(ctx, userID)
	if err != nil {
		return domain.Wishlist{}, err
	}
	wl := sess.ClearWishlist()
	s.persistWishlist(userID, wl)
	return wl, nil
}

// MoveToCart transfers a wishlist entry into the cart. In memory both steps
// are one critical section inside the session. Durably, the cart snapshot is
// written first and the wishlist snapshot only after that succeeds: if the
// cart write fails, the item stays in the durable wishlist, which a user can
// recover from, rather than vanishing from both.
func (s *SessionService) MoveToCart(ctx context.Context, userID, itemID string) (domain.Cart, domain.Wishlist, error) {
	sess, err := s.getSession(ctx, userID)
	if err != nil {
		return domain.Cart{}, domain.Wishlist{}, err
	}

	cart, wl, err := sess.MoveToCart(itemID)
	if err != nil {
		return cart, wl, err
	}

	if errSave := s.saveCart(userID, cart); errSave != nil {
		log.Printf("persist cart error for user %s: %v", userID, errSave)
	} else if errSave := s.saveWishlist(userID, wl); errSave != nil {
		log.Printf("persist wishlist error for user %s: %v", userID, errSave)
	}
	s.invalidateCache(userID)

	return cart, wl, nil
}

// CompleteCheckout empties the cart after a successful checkout. The
// wishlist is left alone.
func (s *SessionService) CompleteCheckout(ctx context.Context, userID string) error {
	sess, err := s.getSession(ctx, userID)
	if err != nil {
		return err
	}
	cart := sess.ClearCart()
	s.persistCart(userID, cart)
	return nil
}

// ResetSession drops all state for the user: live session, durable
// snapshots and cache entry. Used on sign-out.
func (s *SessionService) ResetSession(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()

	pctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.store.DeleteAll(pctx, userID); err != nil {
		log.Printf("delete snapshots error for user %s: %v", userID, err)
	}
	s.invalidateCache(userID)
	return nil
}

func (s *SessionService) persistCart(userID string, cart domain.Cart) {
	if err := s.saveCart(userID, cart); err != nil {
		log.Printf("persist cart error for user %s: %v", userID, err)
	}
	s.invalidateCache(userID)
}

func (s *SessionService) persistWishlist(userID string, wl domain.Wishlist) {
	if err := s.saveWishlist(userID, wl); err != nil {
		log.Printf("persist wishlist error for user %s: %v", userID, err)
	}
	s.invalidateCache(userID)
}

func (s *SessionService) saveCart(userID string, cart domain.Cart) error {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.store.SaveCart(ctx, &cart)
	})
	return err
}

func (s *SessionService) saveWishlist(userID string, wl domain.Wishlist) error {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.store.SaveWishlist(ctx, &wl)
	})
	return err
}

func (s *SessionService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
