package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/linkflow-ai/insights/internal/pkg/config"
	"github.com/linkflow-ai/insights/internal/pkg/queue"
	"github.com/linkflow-ai/insights/internal/scheduler/leader"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// IntegrationLister reports integrations that recorded events since a time.
type IntegrationLister interface {
	ActiveIntegrations(ctx context.Context, since time.Time) ([]string, error)
}

// PendingCounter reports the backlog of the queue alert tasks go to.
type PendingCounter interface {
	PendingTasks(ctx context.Context) (int64, error)
}

type Dependencies struct {
	Locker       leader.Locker
	Integrations IntegrationLister
	Queue        queue.Enqueuer
	Pending      PendingCounter
}

type Scheduler struct {
	cfg          config.SchedulerConfig
	election     *leader.Election
	cron         *cron.Cron
	integrations IntegrationLister
	queue        queue.Enqueuer
	pending      PendingCounter
	now          func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// DispatchResult summarises one tick.
type DispatchResult struct {
	Integrations int
	Enqueued     int
	Duplicates   int
	Failed       int
	Paused       bool
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func New(cfg config.SchedulerConfig, deps Dependencies) (*Scheduler, error) {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	if cfg.LockRefresh <= 0 || cfg.LockRefresh >= cfg.LockTTL {
		cfg.LockRefresh = cfg.LockTTL / 3
	}
	if cfg.AlertsWindow <= 0 {
		cfg.AlertsWindow = 24 * time.Hour
	}
	if cfg.LeaderKey == "" {
		cfg.LeaderKey = "insights:scheduler:leader"
	}

	schedule, err := cronParser.Parse(cfg.AlertsCron)
	if err != nil {
		return nil, fmt.Errorf("invalid alerts cron %q: %w", cfg.AlertsCron, err)
	}

	s := &Scheduler{
		cfg:          cfg,
		election:     leader.NewElection(deps.Locker, cfg.LeaderKey, cfg.LockTTL),
		integrations: deps.Integrations,
		queue:        deps.Queue,
		pending:      deps.Pending,
		now:          time.Now,
	}

	logger := cronLogger{}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	s.cron.Schedule(schedule, cron.FuncJob(s.tick))
	return s, nil
}

// Start runs the election loop and the cron clock. Every instance ticks; only
// the leader dispatches.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	log.Info().
		Str("leader_key", s.cfg.LeaderKey).
		Str("alerts_cron", s.cfg.AlertsCron).
		Dur("alerts_window", s.cfg.AlertsWindow).
		Msg("Starting scheduler")

	s.wg.Add(1)
	go s.leaderLoop(ctx)
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	<-s.cron.Stop().Done()
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.election.Release(ctx)

	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) leaderLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.LockRefresh)
	defer ticker.Stop()

	s.campaign(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.campaign(ctx)
		}
	}
}

func (s *Scheduler) campaign(ctx context.Context) {
	if s.election.IsLeader() {
		s.election.Extend(ctx)
		return
	}
	if _, err := s.election.TryAcquire(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to acquire leadership")
	}
}

func (s *Scheduler) IsLeader() bool {
	return s.election.IsLeader()
}

func (s *Scheduler) tick() {
	if !s.election.IsLeader() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.Dispatch(ctx, s.now()); err != nil {
		log.Error().Err(err).Msg("Alert dispatch failed")
	}
}

// Dispatch enqueues one alert evaluation per active integration for the
// window ending at the tick minute. Re-running a tick is absorbed by task id
// dedupe.
func (s *Scheduler) Dispatch(ctx context.Context, at time.Time) (DispatchResult, error) {
	var result DispatchResult

	if s.pending != nil && s.cfg.MaxPending > 0 {
		depth, err := s.pending.PendingTasks(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to check queue depth")
		} else if depth >= s.cfg.MaxPending {
			log.Warn().
				Int64("depth", depth).
				Int64("max", s.cfg.MaxPending).
				Msg("Backpressure: skipping alert dispatch")
			result.Paused = true
			return result, nil
		}
	}

	end := at.UTC().Truncate(time.Minute)
	start := end.Add(-s.cfg.AlertsWindow)

	ids, err := s.integrations.ActiveIntegrations(ctx, start)
	if err != nil {
		return result, fmt.Errorf("list active integrations: %w", err)
	}
	result.Integrations = len(ids)

	for _, id := range ids {
		_, err := s.queue.EnqueueEvaluateAlerts(ctx, queue.EvaluateAlertsPayload{
			IntegrationID: id,
			Start:         start,
			End:           end,
		})
		switch {
		case err == nil:
			result.Enqueued++
		case errors.Is(err, asynq.ErrTaskIDConflict), errors.Is(err, asynq.ErrDuplicateTask):
			result.Duplicates++
		default:
			result.Failed++
			log.Error().Err(err).Str("integration_id", id).Msg("Failed to enqueue alert evaluation")
		}
	}

	log.Info().
		Int("integrations", result.Integrations).
		Int("enqueued", result.Enqueued).
		Int("duplicates", result.Duplicates).
		Int("failed", result.Failed).
		Time("window_end", end).
		Msg("Alert evaluations dispatched")

	return result, nil
}

// RedisPending counts the pending list asynq keeps per queue.
type RedisPending struct {
	client *redis.Client
	key    string
}

func NewRedisPending(client *redis.Client, queueName string) *RedisPending {
	return &RedisPending{client: client, key: "asynq:{" + queueName + "}:pending"}
}

func (p *RedisPending) PendingTasks(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, p.key).Result()
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
