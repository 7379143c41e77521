package leader

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	pkgredis "github.com/linkflow-ai/insights/internal/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T) (*pkgredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return pkgredis.Wrap(client), mr
}

func TestOnlyOneLeader(t *testing.T) {
	locker, _ := newLocker(t)
	ctx := context.Background()

	a := NewElection(locker, "insights:scheduler:leader", 30*time.Second)
	b := NewElection(locker, "insights:scheduler:leader", 30*time.Second)

	ok, err := a.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, b.IsLeader())

	// Re-acquiring while leading keeps leadership.
	ok, err = a.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, a.Release(ctx))
	assert.False(t, a.IsLeader())

	ok, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExtendDetectsLostLock(t *testing.T) {
	locker, mr := newLocker(t)
	ctx := context.Background()

	e := NewElection(locker, "lock", 10*time.Second)
	ok, err := e.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, e.Extend(ctx))

	mr.FastForward(11 * time.Second)
	assert.False(t, e.Extend(ctx))
	assert.False(t, e.IsLeader())

	// Release after loss is a no-op.
	assert.NoError(t, e.Release(ctx))
}

func TestExtendRequiresLeadership(t *testing.T) {
	locker, _ := newLocker(t)
	e := NewElection(locker, "lock", time.Second)
	assert.False(t, e.Extend(context.Background()))
	assert.NotEmpty(t, e.Identity())
}
