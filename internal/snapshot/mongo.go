package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/socialspark/cart-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoStore struct {
	carts     *mongo.Collection
	wishlists *mongo.Collection
}

func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{
		carts:     db.Collection("cart_snapshots"),
		wishlists: db.Collection("wishlist_snapshots"),
	}
}

func (m *mongoStore) LoadCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := m.carts.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load cart snapshot: %w", err)
	}
	return &cart, nil
}

func (m *mongoStore) SaveCart(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	filter := bson.M{"user_id": cart.UserID}
	update := bson.M{"$set": bson.M{
		"user_id":    cart.UserID,
		"items":      cart.Items,
		"created_at": cart.CreatedAt,
		"updated_at": cart.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.carts.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}
	return nil
}

func (m *mongoStore) LoadWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	var wishlist domain.Wishlist
	err := m.wishlists.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wishlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load wishlist snapshot: %w", err)
	}
	return &wishlist, nil
}

func (m *mongoStore) SaveWishlist(ctx context.Context, wishlist *domain.Wishlist) error {
	now := time.Now()
	if wishlist.CreatedAt.IsZero() {
		wishlist.CreatedAt = now
	}
	wishlist.UpdatedAt = now

	filter := bson.M{"user_id": wishlist.UserID}
	update := bson.M{"$set": bson.M{
		"user_id":    wishlist.UserID,
		"items":      wishlist.Items,
		"created_at": wishlist.CreatedAt,
		"updated_at": wishlist.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.wishlists.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save wishlist snapshot: %w", err)
	}
	return nil
}

func (m *mongoStore) DeleteAll(ctx context.Context, userID string) error {
	filter := bson.M{"user_id": userID}
	if _, err := m.carts.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	if _, err := m.wishlists.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete wishlist snapshot: %w", err)
	}
	return nil
}

// CreateIndexes sets up the unique user_id key and a TTL on updated_at so
// abandoned snapshots age out.
func (m *mongoStore) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60),
		},
	}

	for _, coll := range []*mongo.Collection{m.carts, m.wishlists} {
		if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}
