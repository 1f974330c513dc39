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

// maxAddAttempts bounds the merge-or-insert loop in AddItem. Each retry is
// caused by another request creating the same entry concurrently.
const maxAddAttempts = 3

// cartRepository keeps the cart as a nested array on the user document.
type cartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) CartRepository {
	return &cartRepository{
		collection: db.Collection(UsersCollection),
	}
}

func (m *cartRepository) GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	var cart domain.Cart

	opts := options.FindOne().SetProjection(bson.M{"cart": 1, "updated_at": 1})
	err := m.collection.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}

	return &cart, nil
}

// AddItem increments the entry for productID, or inserts it when absent. The
// user document is created on first use. Both branches are single atomic
// updates so concurrent adds never lose an increment.
func (m *cartRepository) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	for attempt := 0; attempt < maxAddAttempts; attempt++ {
		now := time.Now().UTC()

		result, err := m.collection.UpdateOne(ctx,
			bson.M{"_id": userID, "cart.product_id": productID},
			bson.M{
				"$inc": bson.M{"cart.$.quantity": quantity},
				"$set": bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to increment cart item: %w", err)
		}
		if result.MatchedCount > 0 {
			return nil
		}

		item := domain.CartItem{ProductID: productID, Quantity: quantity, AddedAt: now}
		_, err = m.collection.UpdateOne(ctx,
			bson.M{"_id": userID, "cart.product_id": bson.M{"$ne": productID}},
			bson.M{
				"$push":        bson.M{"cart": item},
				"$set":         bson.M{"updated_at": now},
				"$setOnInsert": bson.M{"created_at": now},
			},
			options.Update().SetUpsert(true),
		)
		if err == nil {
			return nil
		}
		// The document exists and already holds productID: someone else
		// inserted it between our two updates. Go back to the $inc branch.
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return fmt.Errorf("add item %s: %w", productID.Hex(), ErrConflict)
}

func (m *cartRepository) SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	filter := bson.M{
		"_id":             userID,
		"cart.product_id": productID,
	}
	update := bson.M{
		"$set": bson.M{
			"cart.$[elem].quantity": quantity,
			"updated_at":            time.Now().UTC(),
		},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.product_id": productID},
		},
	})

	result, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to update item quantity: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

// RemoveItem fails only when the user has no record at all. Removing an
// entry that is not in the cart succeeds.
func (m *cartRepository) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{
			"cart": bson.M{"product_id": productID},
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

// ClearCart empties the entry list. The user document itself stays.
func (m *cartRepository) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"cart":       []domain.CartItem{},
			"updated_at": time.Now().UTC(),
		},
	}

	_, err := m.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
