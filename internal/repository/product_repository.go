package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{
		collection: db.Collection(ProductsCollection),
	}
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := bson.M{}
	if filter.HasCategory() {
		query["category"] = filter.Category
	}
	if filter.Search != "" {
		query["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]domain.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *productRepository) Get(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// GetMany resolves a batch of ids. Ids with no matching product are simply
// absent from the result.
func (r *productRepository) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Product, error) {
	result := make(map[primitive.ObjectID]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var p domain.Product
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		result[p.ID] = p
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return result, nil
}

// DecrementStock takes quantity units off the product only when that many
// are available.
func (r *productRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	filter := bson.M{
		"_id":   id,
		"stock": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("failed to check product: %w", err)
		}
		if count == 0 {
			return ErrProductNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

// Upsert writes products keyed by their external product code. Existing
// documents keep their _id and created_at.
func (r *productRepository) Upsert(ctx context.Context, products []domain.Product) (*UpsertResult, error) {
	if len(products) == 0 {
		return &UpsertResult{}, nil
	}

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(products))
	for _, p := range products {
		if p.Code == "" {
			return nil, fmt.Errorf("product %q has no product_id", p.Name)
		}
		set := bson.M{
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"discount":    p.Discount,
			"stock":       p.Stock,
			"category":    p.Category,
			"image_url":   p.ImageURL,
			"updated_at":  now,
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"product_id": p.Code}).
			SetUpdate(bson.M{
				"$set":         set,
				"$setOnInsert": bson.M{"created_at": now},
			}).
			SetUpsert(true))
	}

	res, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert products: %w", err)
	}
	return &UpsertResult{Inserted: res.UpsertedCount, Updated: res.MatchedCount}, nil
}

func (r *productRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "product_id", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"product_id": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "name", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}
