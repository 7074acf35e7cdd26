package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/socialspark/cart-service/internal/domain"
	"github.com/socialspark/cart-service/internal/session"
)

type ServiceMock struct {
	cart     domain.Cart
	wishlist domain.Wishlist
	summary  domain.Summary
	err      error
}

func (s ServiceMock) GetCart(context.Context, string) (domain.Cart, error) {
	return s.cart, s.err
}

func (s ServiceMock) AddToCart(_ context.Context, _ string, item domain.LineItem) (domain.Cart, error) {
	if s.err != nil {
		return domain.Cart{}, s.err
	}
	cart := s.cart
	cart.Items = append(cart.Items, item)
	return cart, nil
}

func (s ServiceMock) UpdateQuantity(context.Context, string, string, int) (domain.Cart, error) {
	return s.cart, s.err
}

func (s ServiceMock) RemoveFromCart(context.Context, string, string) (domain.Cart, error) {
	return s.cart, s.err
}

func (s ServiceMock) ClearCart(context.Context, string) (domain.Cart, error) {
	return s.cart, s.err
}

func (s ServiceMock) Summary(context.Context, string) (domain.Summary, error) {
	return s.summary, s.err
}

func (s ServiceMock) GetWishlist(context.Context, string) (domain.Wishlist, error) {
	return s.wishlist, s.err
}

func (s ServiceMock) AddToWishlist(_ context.Context, _ string, item domain.LineItem) (domain.Wishlist, error) {
	if s.err != nil {
		return domain.Wishlist{}, s.err
	}
	wl := s.wishlist
	wl.Items = append(wl.Items, item)
	return wl, nil
}

func (s ServiceMock) RemoveFromWishlist(context.Context, string, string) (domain.Wishlist, error) {
	return s.wishlist, s.err
}

func (s ServiceMock) ClearWishlist(context.Context, string) (domain.Wishlist, error) {
	return s.wishlist, s.err
}

func (s ServiceMock) MoveToCart(context.Context, string, string) (domain.Cart, domain.Wishlist, error) {
	return s.cart, s.wishlist, s.err
}

func authed(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), "user_id", userID)
	return r.WithContext(ctx)
}

func TestGetCart_Success(t *testing.T) {
	mock := ServiceMock{
		cart: domain.Cart{
			UserID: "u1",
			Items:  []domain.LineItem{{ID: "p1", Quantity: 2, Price: 10}},
		},
	}

	handler := NewCartHandler(mock, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("GET", "/", nil), "u1")

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response domain.Cart
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.UserID != "u1" {
		t.Errorf("Expected user u1, got %s", response.UserID)
	}
	if len(response.Items) != 1 || response.Items[0].ID != "p1" {
		t.Errorf("Unexpected items: %v", response.Items)
	}
}

func TestGetCart_Unauthorized(t *testing.T) {
	handler := NewCartHandler(ServiceMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestAddItem_NormalizesPayload(t *testing.T) {
	handler := NewCartHandler(ServiceMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()

	body := bytes.NewBufferString(`{"product_id":"p1","name":"Mug","price":"12.50","store_id":"s1"}`)
	request := authed(httptest.NewRequest("POST", "/", body), "u1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body.String())
	}

	var response domain.Cart
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(response.Items))
	}
	if response.Items[0].ID != "p1" || response.Items[0].Title != "Mug" || response.Items[0].Price != 12.50 {
		t.Errorf("Item was not normalized: %+v", response.Items[0])
	}
}

func TestAddItem_InvalidItem(t *testing.T) {
	handler := NewCartHandler(ServiceMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()

	body := bytes.NewBufferString(`{"name":"No ID","price":5}`)
	request := authed(httptest.NewRequest("POST", "/", body), "u1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestAddItem_InvalidJSON(t *testing.T) {
	handler := NewCartHandler(ServiceMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()

	body := bytes.NewBufferString(`{broken`)
	request := authed(httptest.NewRequest("POST", "/", body), "u1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestUpdateQuantity_QuantityTooLarge(t *testing.T) {
	handler := NewCartHandler(ServiceMock{}, 5*time.Second)

	r := chi.NewRouter()
	r.Put("/cart/items/{item_id}", handler.UpdateQuantity)

	body := bytes.NewBufferString(`{"quantity":100}`)
	request := authed(httptest.NewRequest("PUT", "/cart/items/p1", body), "u1")
	recorder := httptest.NewRecorder()

	r.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestUpdateQuantity_ZeroIsAllowed(t *testing.T) {
	handler := NewCartHandler(ServiceMock{cart: domain.Cart{UserID: "u1"}}, 5*time.Second)

	r := chi.NewRouter()
	r.Put("/cart/items/{item_id}", handler.UpdateQuantity)

	// Zero quantity removes the item, so the handler must let it through.
	body := bytes.NewBufferString(`{"quantity":0}`)
	request := authed(httptest.NewRequest("PUT", "/cart/items/p1", body), "u1")
	recorder := httptest.NewRecorder()

	r.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
}

func TestGetSummary_Success(t *testing.T) {
	mock := ServiceMock{
		summary: domain.Summary{Subtotal: 25, Tax: 2, Shipping: 9.99, Total: 36.99, ItemCount: 3},
	}
	handler := NewCartHandler(mock, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("GET", "/", nil), "u1")

	handler.GetSummary(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response domain.Summary
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Total != 36.99 {
		t.Errorf("Expected total 36.99, got %v", response.Total)
	}
}

func TestMoveToCart_NotFound(t *testing.T) {
	handler := NewWishlistHandler(ServiceMock{err: session.ErrNotInWishlist}, 5*time.Second)

	r := chi.NewRouter()
	r.Post("/wishlist/items/{item_id}/move-to-cart", handler.MoveToCart)

	request := authed(httptest.NewRequest("POST", "/wishlist/items/ghost/move-to-cart", nil), "u1")
	recorder := httptest.NewRecorder()

	r.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestMoveToCart_Success(t *testing.T) {
	mock := ServiceMock{
		cart:     domain.Cart{UserID: "u1", Items: []domain.LineItem{{ID: "p1", Quantity: 1}}},
		wishlist: domain.Wishlist{UserID: "u1"},
	}
	handler := NewWishlistHandler(mock, 5*time.Second)

	r := chi.NewRouter()
	r.Post("/wishlist/items/{item_id}/move-to-cart", handler.MoveToCart)

	request := authed(httptest.NewRequest("POST", "/wishlist/items/p1/move-to-cart", nil), "u1")
	recorder := httptest.NewRecorder()

	r.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response struct {
		Cart     domain.Cart     `json:"cart"`
		Wishlist domain.Wishlist `json:"wishlist"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Cart.Items) != 1 || len(response.Wishlist.Items) != 0 {
		t.Errorf("Unexpected move result: %+v", response)
	}
}
