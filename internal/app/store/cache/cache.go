// internal/app/store/cache/cache.go
//
// Package cache holds short-lived copies of backend API responses that are
// the same for every visitor (featured courses, support articles).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrEmptyKey is returned for a blank key.
var ErrEmptyKey = errors.New("cache: key cannot be empty")

// Cache is a byte-value cache with per-key TTL. Get returns nil, nil on a
// miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	Health(ctx context.Context) error
}

// Redis implements Cache on a go-redis client. All keys are namespaced by
// prefix so several deployments can share one Redis.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis wraps client. prefix may be empty.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string { return r.prefix + k }

// Set stores value under key for ttl.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get returns the value under key, or nil if it does not exist.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return b, nil
}

// Delete removes key and reports whether it existed.
func (r *Redis) Delete(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	n, err := r.client.Del(ctx, r.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n > 0, nil
}

// Health pings Redis.
func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Noop never stores anything. It is used when no Redis address is
// configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, error)              { return nil, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Delete(context.Context, string) (bool, error)             { return false, nil }
func (Noop) Health(context.Context) error                             { return nil }

// Remember returns the cached value for key, or calls load and caches its
// result for ttl. Cache failures are logged and never fail the call; load
// errors are returned and nothing is cached.
func Remember[T any](ctx context.Context, c Cache, log *zap.Logger, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if b, err := c.Get(ctx, key); err != nil {
		log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	} else if b != nil {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
		log.Warn("cache entry undecodable, reloading", zap.String("key", key))
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if b, err := json.Marshal(v); err != nil {
		log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
	} else if err := c.Set(ctx, key, b, ttl); err != nil {
		log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
