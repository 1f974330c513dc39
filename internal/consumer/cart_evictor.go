package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/sagaasachin/MaanClothing/internal/domain"
)

const (
	minReadBackoff = 500 * time.Millisecond
	maxReadBackoff = 30 * time.Second
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type cacheDeleter interface {
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

// CartEvictor drops cached carts for users who just placed an order. The
// checkout path evicts too, but only on the instance that served it.
type CartEvictor struct {
	reader MessageReader
	cache  cacheDeleter
	log    *zap.Logger

	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewCartEvictor(cache cacheDeleter, log *zap.Logger, topic, groupID string, brokers ...string) *CartEvictor {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newCartEvictor(reader, cache, log)
}

func newCartEvictor(reader MessageReader, cache cacheDeleter, log *zap.Logger) *CartEvictor {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartEvictor{
		reader:     reader,
		cache:      cache,
		log:        log.Named("cart-evictor"),
		minBackoff: minReadBackoff,
		maxBackoff: maxReadBackoff,
	}
}

func (e *CartEvictor) Run(ctx context.Context) {
	defer func() {
		if err := e.reader.Close(); err != nil {
			e.log.Warn("error closing kafka reader", zap.Error(err))
		}
	}()
	backoff := e.minBackoff
	for ctx.Err() == nil {
		m, err := e.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			e.log.Error("error reading message", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, e.maxBackoff)
			continue
		}
		backoff = e.minBackoff
		e.handle(ctx, m)
	}
}

func (e *CartEvictor) handle(ctx context.Context, m kafka.Message) {
	if t := header(m, "event_type"); t != "" && t != domain.EventOrderPlaced {
		return
	}

	var payload domain.OrderPlacedPayload
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		e.log.Warn("error parsing message", zap.Int64("offset", m.Offset), zap.Error(err))
		return
	}
	userID, err := primitive.ObjectIDFromHex(payload.UserID)
	if err != nil {
		e.log.Warn("missing or invalid user_id", zap.String("order_id", payload.OrderID))
		return
	}

	if err := e.cache.Delete(ctx, userID); err != nil && !errors.Is(err, context.Canceled) {
		e.log.Error("failed to evict cart cache", zap.String("user_id", payload.UserID), zap.Error(err))
	}
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
