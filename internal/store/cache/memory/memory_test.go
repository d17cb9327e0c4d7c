package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booomerangs/relay-api/internal/store/cache"
	"github.com/booomerangs/relay-api/internal/store/cache/memory"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetGetRoundTrip(t *testing.T) {
	c := memory.NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Name: "alpha", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "alpha", Count: 3}, got)
}

func TestGetMissingKey(t *testing.T) {
	c := memory.NewMemoryCache()

	var got payload
	err := c.Get(context.Background(), "absent", &got)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestExpiredKeyIsMiss(t *testing.T) {
	c := memory.NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Name: "x"}, time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	var got payload
	assert.ErrorIs(t, c.Get(ctx, "k", &got), cache.ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	c := memory.NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Name: "x"}, time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	var got payload
	assert.ErrorIs(t, c.Get(ctx, "k", &got), cache.ErrCacheMiss)
}
