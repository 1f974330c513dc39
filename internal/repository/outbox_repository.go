package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sagaasachin/MaanClothing/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// processedEventTTL is how long published events are kept before MongoDB
// expires them.
const processedEventTTL = 7 * 24 * time.Hour

type outboxRepository struct {
	collection *mongo.Collection
}

func NewOutboxRepository(db *mongo.Database) OutboxRepository {
	return &outboxRepository{
		collection: db.Collection(OutboxCollection),
	}
}

func (r *outboxRepository) Enqueue(ctx context.Context, event *domain.OutboxEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	event.Processed = false

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// GetUnprocessedEvents returns up to limit pending events, oldest first.
func (r *outboxRepository) GetUnprocessedEvents(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"processed": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get unprocessed events: %w", err)
	}

	events := make([]domain.OutboxEvent, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode outbox events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) MarkEventAsProcessed(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{
		"processed":    true,
		"processed_at": time.Now().UTC(),
	}}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("failed to mark event as processed: %w", err)
	}
	return nil
}

func (r *outboxRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "processed", Value: 1}, {Key: "created_at", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "processed_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(processedEventTTL.Seconds())),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create outbox indexes: %w", err)
	}
	return nil
}
