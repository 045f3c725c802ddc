package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(8, time.Minute)

	var got item
	hit, err := c.Get(ctx, "products:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "products:1", item{ID: 1, Name: "Latte"}))
	hit, err = c.Get(ctx, "products:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Latte", got.Name)
}

func TestMemoryCacheInvalidateAll(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(8, time.Minute)
	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))

	require.NoError(t, c.InvalidateAll(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestGetOrLoadLoadsOnce(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(8, time.Minute)
	calls := 0
	load := func() ([]item, error) {
		calls++
		return []item{{ID: 1, Name: "Mocha"}}, nil
	}

	first, err := GetOrLoad(ctx, c, "featured", load)
	require.NoError(t, err)
	second, err := GetOrLoad(ctx, c, "featured", load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(8, time.Minute)
	_, err := GetOrLoad(ctx, c, "k", func() (int, error) { return 0, errors.New("db down") })
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "products:category:LATTE:0:10", Key("products", "category", "LATTE", 0, 10))
}

func TestNewUnsupportedDriver(t *testing.T) {
	_, err := New("memcached", 10, time.Minute, RedisOptions{})
	assert.Error(t, err)
}

func TestRedisCacheUnavailableFallsBackToLoad(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := NewRedisCache(RedisOptions{Addr: "127.0.0.1:1"}, time.Minute)
	defer c.Close()

	v, err := GetOrLoad(ctx, c, "products:1", func() (string, error) { return "Espresso", nil })
	require.NoError(t, err)
	assert.Equal(t, "Espresso", v)
	assert.Equal(t, "coffeeshop:catalog:3:products:1", dataKey(3, "products:1"))
}
