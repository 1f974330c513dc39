package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sagaasachin/MaanClothing/internal/domain"
)

type MockCache struct {
	mu      sync.Mutex
	deleted []primitive.ObjectID
	err     error
}

func (m *MockCache) Delete(_ context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, userID)
	return m.err
}

func (m *MockCache) Deleted() []primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]primitive.ObjectID(nil), m.deleted...)
}

// chanReader hands out queued messages and then blocks until ctx is done.
type chanReader struct {
	msgs   chan kafka.Message
	closed bool
}

func (r *chanReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *chanReader) Close() error {
	r.closed = true
	return nil
}

// failingReader fails every read until it runs out of failures, then
// behaves like chanReader.
type failingReader struct {
	chanReader
	mu       sync.Mutex
	failures int
	calls    int
}

func (r *failingReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	r.calls++
	fail := r.failures > 0
	if fail {
		r.failures--
	}
	r.mu.Unlock()
	if fail {
		return kafka.Message{}, errors.New("broker unavailable")
	}
	return r.chanReader.ReadMessage(ctx)
}

func (r *failingReader) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func orderPlaced(t *testing.T, userID primitive.ObjectID) kafka.Message {
	t.Helper()
	value, err := json.Marshal(domain.OrderPlacedPayload{
		OrderID: primitive.NewObjectID().Hex(),
		UserID:  userID.Hex(),
	})
	require.NoError(t, err)
	return kafka.Message{
		Value:   value,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(domain.EventOrderPlaced)}},
	}
}

func TestHandle_EvictsUserCart(t *testing.T) {
	cache := &MockCache{}
	e := newCartEvictor(&chanReader{}, cache, nil)
	userID := primitive.NewObjectID()

	e.handle(context.Background(), orderPlaced(t, userID))

	assert.Equal(t, []primitive.ObjectID{userID}, cache.Deleted())
}

func TestHandle_SkipsBadMessages(t *testing.T) {
	cache := &MockCache{}
	e := newCartEvictor(&chanReader{}, cache, nil)

	e.handle(context.Background(), kafka.Message{Value: []byte("not json")})
	e.handle(context.Background(), kafka.Message{Value: []byte(`{"user_id": "42"}`)})

	other := orderPlaced(t, primitive.NewObjectID())
	other.Headers = []kafka.Header{{Key: "event_type", Value: []byte("OrderShipped")}}
	e.handle(context.Background(), other)

	assert.Empty(t, cache.Deleted())
}

func TestHandle_CacheErrorIsNotFatal(t *testing.T) {
	cache := &MockCache{err: errors.New("redis down")}
	e := newCartEvictor(&chanReader{}, cache, nil)

	assert.NotPanics(t, func() {
		e.handle(context.Background(), orderPlaced(t, primitive.NewObjectID()))
	})
	assert.Len(t, cache.Deleted(), 1)
}

func TestRun_ConsumesUntilCancelled(t *testing.T) {
	cache := &MockCache{}
	reader := &chanReader{msgs: make(chan kafka.Message, 2)}
	e := newCartEvictor(reader, cache, nil)

	u1, u2 := primitive.NewObjectID(), primitive.NewObjectID()
	reader.msgs <- orderPlaced(t, u1)
	reader.msgs <- orderPlaced(t, u2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(cache.Deleted()) == 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []primitive.ObjectID{u1, u2}, cache.Deleted())
	assert.True(t, reader.closed)
}

func TestRun_BacksOffOnReadErrors(t *testing.T) {
	reader := &failingReader{failures: 1000}
	e := newCartEvictor(reader, &MockCache{}, nil)
	e.minBackoff = 20 * time.Millisecond
	e.maxBackoff = 40 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	e.Run(ctx)

	// 20 + 40 + 40 + 40 + 40 ms covers the window, a hot loop would not stop
	// at a handful of reads
	assert.LessOrEqual(t, reader.Calls(), 8)
	assert.True(t, reader.closed)
}

func TestRun_RecoversAfterReadErrors(t *testing.T) {
	cache := &MockCache{}
	reader := &failingReader{failures: 2, chanReader: chanReader{msgs: make(chan kafka.Message, 1)}}
	e := newCartEvictor(reader, cache, nil)
	e.minBackoff = time.Millisecond

	userID := primitive.NewObjectID()
	reader.msgs <- orderPlaced(t, userID)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(cache.Deleted()) == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done
	assert.GreaterOrEqual(t, reader.Calls(), 3)
}
