package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/etay-atar/Sandbox/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// Redis stores the credential under a single key. No TTL is set; the backend
// decides when a token stops being valid.
type Redis struct {
	rdb    *redis.Client
	key    string
	cipher Cipher
}

// NewRedis creates a store from a URL (e.g., "redis://localhost:6379").
func NewRedis(redisURL, key string, c Cipher) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return NewRedisFromClient(redis.NewClient(opts), key, c), nil
}

func NewRedisFromClient(rdb *redis.Client, key string, c Cipher) *Redis {
	if c == nil {
		c = Plaintext{}
	}
	return &Redis{rdb: rdb, key: key, cipher: c}
}

func (r *Redis) Get(ctx context.Context) (string, bool, error) {
	sealed, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read credential from redis: %w", err)
	}

	value, err := r.cipher.Open(sealed)
	if err != nil {
		return "", false, fmt.Errorf("failed to open stored credential: %w", err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, value string) error {
	sealed, err := r.cipher.Seal(value)
	if err != nil {
		return fmt.Errorf("failed to seal credential: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key, sealed, 0).Err(); err != nil {
		return fmt.Errorf("failed to write credential to redis: %w", err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to remove credential from redis: %w", err)
	}
	return nil
}

// Instrument records every Redis command on m.
func (r *Redis) Instrument(m *metrics.StoreMetrics) {
	r.rdb.AddHook(metricsHook{m: m})
}

// Ping verifies the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
