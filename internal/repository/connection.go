package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetRegistry(NewRegistry()).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// EnsureIndexes creates the indexes every collection relies on. Safe to call
// on each start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	creators := []interface {
		CreateIndexes(ctx context.Context) error
	}{
		&productRepository{collection: db.Collection(ProductsCollection)},
		&orderRepository{collection: db.Collection(OrdersCollection)},
		&outboxRepository{collection: db.Collection(OutboxCollection)},
	}
	for _, c := range creators {
		if err := c.CreateIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}
