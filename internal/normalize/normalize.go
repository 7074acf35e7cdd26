package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/socialspark/cart-service/internal/domain"
)

// ErrInvalidItem is returned when a source record cannot be shaped into a
// LineItem (no usable id, or no non-negative numeric price).
var ErrInvalidItem = errors.New("invalid item")

// Field aliases seen across the feed, search and product payloads. First
// match wins, checked in order.
var (
	idKeys    = []string{"id", "product_id", "_id"}
	titleKeys = []string{"title", "name", "product_name"}
	imageKeys = []string{"image_url", "imageUrl", "image"}
	priceKeys = []string{"price", "unit_price"}
)

// canonicalKeys is the set of source fields consumed into named LineItem
// fields; everything else passes through in Meta untouched.
var canonicalKeys = map[string]bool{}

func init() {
	for _, keys := range [][]string{idKeys, titleKeys, imageKeys, priceKeys, {"quantity"}} {
		for _, k := range keys {
			canonicalKeys[k] = true
		}
	}
}

// Normalize shapes a heterogeneous source record (feed post, search result,
// product payload) into a canonical LineItem. It is the single coercion
// boundary: session stores only ever see its output.
func Normalize(src map[string]any) (domain.LineItem, error) {
	if src == nil {
		return domain.LineItem{}, fmt.Errorf("%w: nil record", ErrInvalidItem)
	}

	id := firstString(src, idKeys)
	if id == "" {
		return domain.LineItem{}, fmt.Errorf("%w: no usable id", ErrInvalidItem)
	}

	price, ok := firstNumber(src, priceKeys)
	if !ok {
		return domain.LineItem{}, fmt.Errorf("%w: no numeric price", ErrInvalidItem)
	}
	if price < 0 {
		return domain.LineItem{}, fmt.Errorf("%w: negative price %v", ErrInvalidItem, price)
	}

	item := domain.LineItem{
		ID:       id,
		Title:    firstString(src, titleKeys),
		Price:    price,
		ImageURL: firstString(src, imageKeys),
		Quantity: 1,
		AddedAt:  time.Now(),
	}

	if q, ok := asInt(src["quantity"]); ok && q >= 1 {
		item.Quantity = q
	}

	for k, v := range src {
		if canonicalKeys[k] {
			continue
		}
		if item.Meta == nil {
			item.Meta = make(map[string]any)
		}
		item.Meta[k] = v
	}

	return item, nil
}

func firstString(src map[string]any, keys []string) string {
	for _, k := range keys {
		switch v := src[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			// Numeric ids from JSON payloads decode as float64.
			if v == float64(int64(v)) {
				return strconv.FormatInt(int64(v), 10)
			}
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return ""
}

func firstNumber(src map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		v, present := src[k]
		if !present {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
