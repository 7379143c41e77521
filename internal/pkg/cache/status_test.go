package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatusCache(t *testing.T) (*StatusCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStatusCache(client, time.Minute), mr
}

func TestStatusCache_HitOnExactVersion(t *testing.T) {
	c, _ := newStatusCache(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	v := EventSetVersion{Count: 10, LatestAt: at}

	statuses := map[string]insights.WorkflowStatus{
		"W": {WorkflowID: "W", TotalExecutions: 10, SuccessfulExecutions: 8, SuccessRate: 80, LastRun: at},
	}
	require.NoError(t, c.Set(ctx, "int-1", "all", v, statuses))

	got, err := c.Get(ctx, "int-1", "all", v)
	require.NoError(t, err)
	require.Contains(t, got, "W")
	assert.Equal(t, 80.0, got["W"].SuccessRate)
	assert.True(t, at.Equal(got["W"].LastRun))
}

func TestStatusCache_MissOnNewVersion(t *testing.T) {
	c, _ := newStatusCache(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, c.Set(ctx, "int-1", "all", EventSetVersion{Count: 10, LatestAt: at}, map[string]insights.WorkflowStatus{}))

	got, err := c.Get(ctx, "int-1", "all", EventSetVersion{Count: 11, LatestAt: at.Add(time.Second)})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.Get(ctx, "int-2", "all", EventSetVersion{Count: 10, LatestAt: at})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStatusCache_TTLAndInvalidate(t *testing.T) {
	c, mr := newStatusCache(t)
	ctx := context.Background()
	v := EventSetVersion{Count: 1, LatestAt: time.Unix(100, 0)}

	require.NoError(t, c.Set(ctx, "int-1", "all", v, map[string]insights.WorkflowStatus{"W": {WorkflowID: "W"}}))
	mr.FastForward(2 * time.Minute)
	got, err := c.Get(ctx, "int-1", "all", v)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "int-1", "all", v, map[string]insights.WorkflowStatus{"W": {WorkflowID: "W"}}))
	require.NoError(t, c.Invalidate(ctx, "int-1"))
	got, err = c.Get(ctx, "int-1", "all", v)
	require.NoError(t, err)
	assert.Nil(t, got)
}
