package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &orderRepository{
		collection: db.Collection(OrdersCollection),
	}
}

// Create inserts the order and fills in its generated id.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) && order.IdempotencyKey != "" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// ListByUser returns the user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, page domain.Page) ([]domain.Order, error) {
	page = page.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Size))

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]domain.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// Get returns the order only when it belongs to userID.
func (r *orderRepository) Get(ctx context.Context, userID, orderID primitive.ObjectID) (*domain.Order, error) {
	return r.findOne(ctx, bson.M{"_id": orderID, "user_id": userID})
}

func (r *orderRepository) FindByIdempotencyKey(ctx context.Context, userID primitive.ObjectID, key string) (*domain.Order, error) {
	return r.findOne(ctx, bson.M{"user_id": userID, "idempotency_key": key})
}

func (r *orderRepository) findOne(ctx context.Context, filter bson.M) (*domain.Order, error) {
	var order domain.Order
	err := r.collection.FindOne(ctx, filter).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}
