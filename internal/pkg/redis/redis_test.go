package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()})), mr
}

func TestJSONRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.SetJSON(ctx, "k", payload{Name: "a"}, time.Minute))

	var got payload
	found, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a", got.Name)

	found, err = c.GetJSON(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLockLifecycle(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	ok, err := c.AcquireLock(ctx, "lock", "a", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AcquireLock(ctx, "lock", "b", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.ExtendLock(ctx, "lock", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.ExtendLock(ctx, "lock", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.ReleaseLock(ctx, "lock", "b"))
	assert.True(t, mr.Exists("lock"))
	require.NoError(t, c.ReleaseLock(ctx, "lock", "a"))
	assert.False(t, mr.Exists("lock"))
}

func TestRateLimitWindow(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	allowed, remaining, err := c.RateLimit(ctx, "rl", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)

	allowed, remaining, err = c.RateLimit(ctx, "rl", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, err = c.RateLimit(ctx, "rl", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(time.Minute + time.Second)
	allowed, _, err = c.RateLimit(ctx, "rl", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
