package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledStoreIsAMiss(t *testing.T) {
	ctx := context.Background()
	s, err := Connect(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, s.Enabled())

	require.NoError(t, s.Set(ctx, "products:active", []string{"a"}, time.Minute))
	var out []string
	assert.False(t, s.Get(ctx, "products:active", &out))
	assert.NoError(t, s.Del(ctx, "products:active"))
	assert.NoError(t, s.Ping(ctx))
	assert.NoError(t, s.Close())
}

func TestNilStoreIsSafe(t *testing.T) {
	var s *Store
	var out string
	assert.False(t, s.Get(context.Background(), "k", &out))
	assert.NoError(t, s.Set(context.Background(), "k", "v", time.Second))
}

func TestUnreachableRedisMisses(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := New(rdb)
	defer s.Close()

	var out string
	assert.False(t, s.Get(context.Background(), "product:1", &out))
	assert.Error(t, s.Set(context.Background(), "product:1", "v", time.Second))
}

func TestFamily(t *testing.T) {
	assert.Equal(t, "product", family("product:64b7"))
	assert.Equal(t, "products", family("products"))
}
