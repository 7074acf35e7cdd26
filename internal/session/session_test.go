package session

import (
	"sync"
	"testing"

	"github.com/socialspark/cart-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, price float64) domain.LineItem {
	return domain.LineItem{ID: id, Title: "item " + id, Price: price, Quantity: 1}
}

func TestAddToCart_MergesByID(t *testing.T) {
	s := New("u1")

	s.AddToCart(item("p1", 10))
	cart := s.AddToCart(item("p1", 10))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p1", cart.Items[0].ID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddToCart_FirstSeenFieldsWin(t *testing.T) {
	s := New("u1")

	s.AddToCart(domain.LineItem{ID: "p1", Title: "Original", Price: 10, Quantity: 1})
	cart := s.AddToCart(domain.LineItem{ID: "p1", Title: "Renamed", Price: 99, Quantity: 2})

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Original", cart.Items[0].Title)
	assert.Equal(t, 10.0, cart.Items[0].Price)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestAddToCart_DefaultsQuantityToOne(t *testing.T) {
	s := New("u1")

	cart := s.AddToCart(domain.LineItem{ID: "p1", Price: 5})

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestAddToCart_PreservesInsertionOrder(t *testing.T) {
	s := New("u1")

	s.AddToCart(item("a", 1))
	s.AddToCart(item("b", 2))
	s.AddToCart(item("c", 3))
	cart := s.AddToCart(item("a", 1)) // merge must not reorder

	require.Len(t, cart.Items, 3)
	assert.Equal(t, "a", cart.Items[0].ID)
	assert.Equal(t, "b", cart.Items[1].ID)
	assert.Equal(t, "c", cart.Items[2].ID)
}

func TestUpdateQuantity_AbsoluteSet(t *testing.T) {
	s := New("u1")
	s.AddToCart(item("p1", 10))

	cart := s.UpdateQuantity("p1", 7)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Quantity)
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	s := New("u1")
	s.AddToCart(item("p1", 10))

	cart := s.UpdateQuantity("p1", 0)

	assert.Empty(t, cart.Items)
}

func TestUpdateQuantity_NegativeRemoves(t *testing.T) {
	s := New("u1")
	s.AddToCart(item("p1", 10))

	cart := s.UpdateQuantity("p1", -5)

	assert.Empty(t, cart.Items)
}

func TestUpdateQuantity_UnknownIDIsNoop(t *testing.T) {
	s := New("u1")
	before := s.AddToCart(item("p1", 10))

	after := s.UpdateQuantity("ghost", 3)

	assert.Equal(t, before.Items, after.Items)
}

func TestRemoveFromCart_UnknownIDIsNoop(t *testing.T) {
	s := New("u1")
	before := s.AddToCart(item("p1", 10))

	after := s.RemoveFromCart("does-not-exist")

	assert.Equal(t, before.Items, after.Items)
}

func TestClearCart(t *testing.T) {
	s := New("u1")
	s.AddToCart(item("p1", 10))
	s.AddToCart(item("p2", 20))

	cart := s.ClearCart()

	assert.Empty(t, cart.Items)
}

func TestAddToWishlist_Dedups(t *testing.T) {
	s := New("u1")

	s.AddToWishlist(item("p1", 10))
	wl := s.AddToWishlist(item("p1", 10))

	assert.Len(t, wl.Items, 1)
}

func TestRemoveFromWishlist_UnknownIDIsNoop(t *testing.T) {
	s := New("u1")
	before := s.AddToWishlist(item("p1", 10))

	after := s.RemoveFromWishlist("ghost")

	assert.Equal(t, before.Items, after.Items)
}

func TestMoveToCart_TransfersItem(t *testing.T) {
	s := New("u1")
	s.AddToWishlist(item("p1", 10))

	cart, wl, err := s.MoveToCart("p1")
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p1", cart.Items[0].ID)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Empty(t, wl.Items)
}

func TestMoveToCart_MergesWithExistingCartEntry(t *testing.T) {
	s := New("u1")
	s.AddToCart(item("p1", 10))
	s.AddToWishlist(item("p1", 10))

	cart, wl, err := s.MoveToCart("p1")
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Empty(t, wl.Items)
}

func TestMoveToCart_UnknownIDLeavesBothUntouched(t *testing.T) {
	s := New("u1")
	s.AddToCart(item("a", 1))
	s.AddToWishlist(item("b", 2))

	cart, wl, err := s.MoveToCart("ghost")
	require.ErrorIs(t, err, ErrNotInWishlist)

	assert.Len(t, cart.Items, 1)
	assert.Len(t, wl.Items, 1)
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := New("u1")
	s.AddToCart(item("p1", 10))

	cart := s.Cart()
	cart.Items[0].Quantity = 99

	assert.Equal(t, 1, s.Cart().Items[0].Quantity)
}

func TestConcurrentMutations(t *testing.T) {
	s := New("u1")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.AddToCart(item("p1", 10))
		}()
		go func() {
			defer wg.Done()
			s.AddToWishlist(item("p2", 5))
			s.MoveToCart("p2")
		}()
	}
	wg.Wait()

	cart := s.Cart()
	// p1 merged into a single entry regardless of interleaving.
	count := 0
	for _, it := range cart.Items {
		if it.ID == "p1" {
			count++
			assert.Equal(t, 50, it.Quantity)
		}
	}
	assert.Equal(t, 1, count)
}
