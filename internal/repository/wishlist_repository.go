package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type wishlistRepository struct {
	collection *mongo.Collection
}

func NewWishlistRepository(db *mongo.Database) WishlistRepository {
	return &wishlistRepository{
		collection: db.Collection(UsersCollection),
	}
}

func (w *wishlistRepository) GetWishlist(ctx context.Context, userID primitive.ObjectID) (*domain.Wishlist, error) {
	var wishlist domain.Wishlist

	opts := options.FindOne().SetProjection(bson.M{"wishlist": 1})
	err := w.collection.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&wishlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domain.Wishlist{UserID: userID, Products: []primitive.ObjectID{}}, nil
		}
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	if wishlist.Products == nil {
		wishlist.Products = []primitive.ObjectID{}
	}
	return &wishlist, nil
}

// Toggle flips membership of productID in one pipeline update and reports
// whether the product is in the wishlist afterwards.
func (w *wishlistRepository) Toggle(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	current := bson.D{{Key: "$ifNull", Value: bson.A{"$wishlist", bson.A{}}}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "wishlist", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{productID, current}}}},
				{Key: "then", Value: bson.D{{Key: "$filter", Value: bson.D{
					{Key: "input", Value: current},
					{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", productID}}}},
				}}}},
				{Key: "else", Value: bson.D{{Key: "$concatArrays", Value: bson.A{current, bson.A{productID}}}}},
			}}}},
			{Key: "created_at", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$created_at", "$$NOW"}}}},
			{Key: "updated_at", Value: "$$NOW"},
		}}},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"wishlist": 1})

	var wishlist domain.Wishlist
	err := retryUpsert(func() error {
		return w.collection.FindOneAndUpdate(ctx, bson.M{"_id": userID}, pipeline, opts).Decode(&wishlist)
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle wishlist item: %w", err)
	}
	return wishlist.Contains(productID), nil
}

func (w *wishlistRepository) Add(ctx context.Context, userID, productID primitive.ObjectID) error {
	now := time.Now().UTC()
	update := bson.M{
		"$addToSet":    bson.M{"wishlist": productID},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}

	err := retryUpsert(func() error {
		_, err := w.collection.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (w *wishlistRepository) Remove(ctx context.Context, userID, productID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"wishlist": productID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := w.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
