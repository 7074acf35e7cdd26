package domain

import "time"

// LineItem is the canonical record for one product inside the cart or
// wishlist. Fields from heterogeneous sources (feed posts, search results,
// product pages) are mapped onto it by the normalize package; anything the
// source carried beyond the canonical fields rides along in Meta.
type LineItem struct {
	ID       string         `json:"id" bson:"id"`
	Title    string         `json:"title" bson:"title"`
	Price    float64        `json:"price" bson:"price"`
	ImageURL string         `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Quantity int            `json:"quantity,omitempty" bson:"quantity,omitempty"`
	Meta     map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
	AddedAt  time.Time      `json:"added_at" bson:"added_at"`
}

type Cart struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string     `json:"user_id" bson:"user_id"`
	Items     []LineItem `json:"items" bson:"items"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

type Wishlist struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string     `json:"user_id" bson:"user_id"`
	Items     []LineItem `json:"items" bson:"items"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// Summary is the derived pricing breakdown for the current cart contents.
// It is computed fresh on every request, never stored.
type Summary struct {
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Shipping  float64 `json:"shipping"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}
