package redis_a_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/ammerola/resell-dashboard/internal/adapters/redis_adapter"
	"github.com/ammerola/resell-dashboard/test/helpers"
)

func newTestCache(t *testing.T) (*redis_a.Cache, *helpers.TestRedis) {
	t.Helper()
	tr := helpers.SetupTestRedis(t)
	return redis_a.NewCache(tr.Client, 5*time.Minute, helpers.TestLogger()), tr
}

func TestCache_SetAndGet(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{
			name:  "stores_and_retrieves_string",
			key:   "test:string",
			value: "test value",
		},
		{
			name:  "stores_and_retrieves_supplier_list",
			key:   "test:suppliers",
			value: helpers.CreateTestSuppliers(2),
		},
		{
			name:  "stores_and_retrieves_slice",
			key:   "test:slice",
			value: []string{"item1", "item2", "item3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, cache.Set(ctx, tt.key, tt.value))

			var raw json.RawMessage
			require.NoError(t, cache.Get(ctx, tt.key, &raw))

			expected, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, string(expected), string(raw))
		})
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	ctx := context.Background()
	cache, tr := newTestCache(t)

	require.NoError(t, cache.SetWithTTL(ctx, "ttl:test", "value", 100*time.Millisecond))

	var result string
	require.NoError(t, cache.Get(ctx, "ttl:test", &result))
	assert.Equal(t, "value", result)

	tr.Server.FastForward(200 * time.Millisecond)

	err := cache.Get(ctx, "ttl:test", &result)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestCache_TTL(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	require.NoError(t, cache.SetWithTTL(ctx, "ttl:long", "value", 2*time.Minute))

	ttl, err := cache.TTL(ctx, "ttl:long")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, ttl)
}

func TestCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	keysToDelete := []string{"list:inventory", "list:suppliers"}
	keysToKeep := []string{"other:1", "listing:2"}

	for _, key := range append(keysToDelete, keysToKeep...) {
		require.NoError(t, cache.Set(ctx, key, "value"))
	}

	require.NoError(t, redis_a.InvalidateAll(ctx, cache))

	for _, key := range keysToDelete {
		var result string
		assert.ErrorIs(t, cache.Get(ctx, key, &result), redis_a.ErrCacheMiss, key)
	}
	for _, key := range keysToKeep {
		var result string
		require.NoError(t, cache.Get(ctx, key, &result))
		assert.Equal(t, "value", result)
	}
}

func TestCache_GetOrSet(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	fetchCount := 0
	fetchFunc := func() (interface{}, error) {
		fetchCount++
		return "fetched value", nil
	}

	var result1 string
	require.NoError(t, cache.GetOrSet(ctx, "getorset:test", &result1, fetchFunc, time.Minute))
	assert.Equal(t, "fetched value", result1)
	assert.Equal(t, 1, fetchCount)

	var result2 string
	require.NoError(t, cache.GetOrSet(ctx, "getorset:test", &result2, fetchFunc, time.Minute))
	assert.Equal(t, "fetched value", result2)
	assert.Equal(t, 1, fetchCount)

	boom := errors.New("upstream down")
	var result3 string
	err := cache.GetOrSet(ctx, "getorset:other", &result3, func() (interface{}, error) { return nil, boom }, time.Minute)
	assert.ErrorIs(t, err, boom)
}

func TestCache_Unavailable(t *testing.T) {
	ctx := context.Background()
	cache, tr := newTestCache(t)
	tr.Server.Close()

	assert.Error(t, cache.Ping(ctx))

	var result string
	err := cache.Get(ctx, "any", &result)
	require.Error(t, err)
	assert.NotErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestCache_BuildKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   redis_a.CacheKeyPrefix
		parts    []string
		expected string
	}{
		{name: "list_key", prefix: redis_a.PrefixList, parts: []string{"inventory"}, expected: "list:inventory"},
		{name: "multiple_parts", prefix: redis_a.PrefixList, parts: []string{"suppliers", "active"}, expected: "list:suppliers:active"},
		{name: "no_parts", prefix: redis_a.PrefixList, parts: []string{}, expected: "list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, redis_a.BuildKey(tt.prefix, tt.parts...))
		})
	}
}
