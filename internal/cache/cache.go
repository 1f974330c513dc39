package cache

import (
	"context"
	"errors"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartCache holds the stored cart document, not the joined view, so catalog
// changes show up on the next read without invalidation.
//
// Every user has a generation that Delete bumps. Get reports the generation
// it saw, and Set only writes when the generation is still the same, so a
// reader that loaded the cart before an invalidation cannot put the old cart
// back.
type CartCache interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, int64, error)
	Set(ctx context.Context, userID primitive.ObjectID, cart *domain.Cart, version int64) error
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

var (
	ErrCacheMiss = errors.New("cache miss")
	// ErrStale is returned by Set when the cart was invalidated after the
	// version was read. Nothing is written.
	ErrStale = errors.New("cache entry is stale")
)

// Noop is used when Redis is not configured. Every read misses.
type Noop struct{}

func (Noop) Get(context.Context, primitive.ObjectID) (*domain.Cart, int64, error) {
	return nil, 0, ErrCacheMiss
}

func (Noop) Set(context.Context, primitive.ObjectID, *domain.Cart, int64) error { return nil }

func (Noop) Delete(context.Context, primitive.ObjectID) error { return nil }
