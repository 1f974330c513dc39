package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sagaasachin/MaanClothing/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	baseTTL   = 15 * time.Minute
	maxJitter = 5 // minutes

	// genTTL only has to outlive a cart load. An expired generation reads
	// as 0, which never matches a version handed out after a bump.
	genTTL = time.Hour
)

// setIfCurrent writes KEYS[1] only while KEYS[2] still holds ARGV[1].
var setIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[2])
if (gen or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

type RedisCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
}

// Get returns the cached cart and the generation it belongs to. On a miss the
// current generation is still returned so the caller can fill the entry.
func (r *RedisCache) Get(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, int64, error) {
	vals, err := r.client.MGet(ctx, entryKey(userID), genKey(userID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("redis get failed: %w", err)
	}

	version, err := parseGen(vals[1])
	if err != nil {
		return nil, 0, err
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, version, ErrCacheMiss
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, 0, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	return &cart, version, nil
}

// Set stores the cart with a jittered TTL so entries written together do
// not all expire together. It returns ErrStale without writing when the
// generation moved past version.
func (r *RedisCache) Set(ctx context.Context, userID primitive.ObjectID, cart *domain.Cart, version int64) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	ttl := r.baseTTL + time.Duration(rand.Intn(maxJitter))*time.Minute
	written, err := setIfCurrent.Run(ctx, r.client,
		[]string{entryKey(userID), genKey(userID)},
		strconv.FormatInt(version, 10), data, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	if written == 0 {
		return ErrStale
	}
	return nil
}

// Delete bumps the generation and drops the entry in one transaction.
func (r *RedisCache) Delete(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(userID))
		pipe.Expire(ctx, genKey(userID), genTTL)
		pipe.Del(ctx, entryKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func parseGen(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	gen, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cart generation failed: %w", err)
	}
	return gen, nil
}

// The hash tag keeps both keys of a user in one cluster slot, which the
// script and the transaction need.
func entryKey(userID primitive.ObjectID) string {
	return fmt.Sprintf("cart:{%s}", userID.Hex())
}

func genKey(userID primitive.ObjectID) string {
	return fmt.Sprintf("cart:{%s}:gen", userID.Hex())
}
