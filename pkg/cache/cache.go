// Package cache is a JSON read-through cache over Redis. A Store without a
// client is valid and behaves as a permanent miss, so callers never branch
// on whether Redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jcorner/storefront/pkg/logger"
	"github.com/jcorner/storefront/pkg/metrics"
)

type Store struct {
	rdb    *redis.Client
	prefix string
}

// Connect dials Redis at addr and verifies the connection with a ping.
// An empty addr returns a disabled Store.
func Connect(ctx context.Context, addr, password string) (*Store, error) {
	if addr == "" {
		return &Store{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return &Store{}, fmt.Errorf("cache: redis ping: %w", err)
	}
	return New(rdb), nil
}

// New wraps an existing client. A nil client gives a disabled Store.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, prefix: "storefront:"}
}

// Enabled reports whether a Redis client is attached.
func (s *Store) Enabled() bool { return s != nil && s.rdb != nil }

// Get unmarshals the value at key into dest. Returns true on a hit.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}

	val, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.WithCtx(ctx).Warn("cache get failed", "key", key, "error", err)
		}
		metrics.CacheMisses.WithLabelValues(family(key)).Inc()
		return false
	}

	if err := json.Unmarshal(val, dest); err != nil {
		metrics.CacheMisses.WithLabelValues(family(key)).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(family(key)).Inc()
	return true
}

// Set stores value as JSON under key for ttl.
func (s *Store) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.prefix+key, data, ttl).Err()
}

// Del removes keys.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return s.rdb.Del(ctx, full...).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Close()
}

// family is the metric label for key: everything before the first ':'.
func family(key string) string {
	f, _, _ := strings.Cut(key, ":")
	return f
}
