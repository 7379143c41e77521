package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/linkflow-ai/insights/internal/pkg/config"
	"github.com/linkflow-ai/insights/internal/pkg/queue"
	pkgredis "github.com/linkflow-ai/insights/internal/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister struct {
	ids   []string
	since time.Time
	err   error
}

func (l *staticLister) ActiveIntegrations(_ context.Context, since time.Time) ([]string, error) {
	l.since = since
	return l.ids, l.err
}

type recordingQueue struct {
	mu       sync.Mutex
	payloads []queue.EvaluateAlertsPayload
	errs     map[string]error
}

func (q *recordingQueue) EnqueueEvaluateAlerts(_ context.Context, p queue.EvaluateAlertsPayload) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.errs[p.IntegrationID]; err != nil {
		return nil, err
	}
	q.payloads = append(q.payloads, p)
	return &asynq.TaskInfo{ID: p.IntegrationID}, nil
}

func (q *recordingQueue) EnqueueArchiveExport(context.Context, queue.ArchiveExportPayload) (*asynq.TaskInfo, error) {
	return nil, errors.New("unexpected archive")
}

type fixedPending int64

func (p fixedPending) PendingTasks(context.Context) (int64, error) { return int64(p), nil }

func newRedisClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func schedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		AlertsCron:   "*/5 * * * *",
		AlertsWindow: 24 * time.Hour,
		LockTTL:      3 * time.Second,
		LockRefresh:  50 * time.Millisecond,
		MaxPending:   100,
	}
}

func TestDispatchEnqueuesPerIntegration(t *testing.T) {
	client, _ := newRedisClient(t)
	lister := &staticLister{ids: []string{"a", "b", "c"}}
	q := &recordingQueue{errs: map[string]error{
		"b": asynq.ErrTaskIDConflict,
		"c": errors.New("redis timeout"),
	}}

	s, err := New(schedulerConfig(), Dependencies{
		Locker:       pkgredis.Wrap(client),
		Integrations: lister,
		Queue:        q,
	})
	require.NoError(t, err)

	at := time.Date(2026, 10, 14, 9, 35, 42, 0, time.UTC)
	result, err := s.Dispatch(context.Background(), at)
	require.NoError(t, err)

	assert.Equal(t, DispatchResult{Integrations: 3, Enqueued: 1, Duplicates: 1, Failed: 1}, result)
	require.Len(t, q.payloads, 1)

	end := time.Date(2026, 10, 14, 9, 35, 0, 0, time.UTC)
	assert.Equal(t, queue.EvaluateAlertsPayload{IntegrationID: "a", Start: end.Add(-24 * time.Hour), End: end}, q.payloads[0])
	assert.Equal(t, end.Add(-24*time.Hour), lister.since)
}

func TestDispatchBackpressure(t *testing.T) {
	client, _ := newRedisClient(t)
	q := &recordingQueue{}

	s, err := New(schedulerConfig(), Dependencies{
		Locker:       pkgredis.Wrap(client),
		Integrations: &staticLister{ids: []string{"a"}},
		Queue:        q,
		Pending:      fixedPending(100),
	})
	require.NoError(t, err)

	result, err := s.Dispatch(context.Background(), time.Now())
	require.NoError(t, err)
	assert.True(t, result.Paused)
	assert.Empty(t, q.payloads)
}

func TestDispatchListerError(t *testing.T) {
	client, _ := newRedisClient(t)
	s, err := New(schedulerConfig(), Dependencies{
		Locker:       pkgredis.Wrap(client),
		Integrations: &staticLister{err: errors.New("db down")},
		Queue:        &recordingQueue{},
	})
	require.NoError(t, err)

	_, err = s.Dispatch(context.Background(), time.Now())
	assert.ErrorContains(t, err, "db down")
}

func TestNewRejectsBadCron(t *testing.T) {
	cfg := schedulerConfig()
	cfg.AlertsCron = "every five minutes"
	_, err := New(cfg, Dependencies{})
	assert.Error(t, err)
}

func TestLeaderLoopAcquiresAndReleases(t *testing.T) {
	client, mr := newRedisClient(t)

	s, err := New(schedulerConfig(), Dependencies{
		Locker:       pkgredis.Wrap(client),
		Integrations: &staticLister{},
		Queue:        &recordingQueue{},
	})
	require.NoError(t, err)

	s.Start(context.Background())
	require.Eventually(t, s.IsLeader, 2*time.Second, 10*time.Millisecond)
	assert.True(t, mr.Exists("insights:scheduler:leader"))

	s.Stop()
	assert.False(t, s.IsLeader())
	assert.False(t, mr.Exists("insights:scheduler:leader"))
}

func TestRedisPending(t *testing.T) {
	client, mr := newRedisClient(t)
	_, err := mr.Lpush("asynq:{default}:pending", "t1")
	require.NoError(t, err)
	_, err = mr.Lpush("asynq:{default}:pending", "t2")
	require.NoError(t, err)

	depth, err := NewRedisPending(client, queue.QueueDefault).PendingTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), depth)
}
