package leader

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/linkflow-ai/insights/internal/pkg/metrics"
	"github.com/rs/zerolog/log"
)

// Locker is the compare-and-set lock the election runs on.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ExtendLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type Election struct {
	locker   Locker
	key      string
	identity string
	ttl      time.Duration
	isLeader atomic.Bool
}

func NewElection(locker Locker, key string, ttl time.Duration) *Election {
	return &Election{
		locker:   locker,
		key:      key,
		identity: uuid.New().String(),
		ttl:      ttl,
	}
}

// TryAcquire is a no-op returning true while this instance already leads.
func (e *Election) TryAcquire(ctx context.Context) (bool, error) {
	if e.isLeader.Load() {
		return true, nil
	}

	acquired, err := e.locker.AcquireLock(ctx, e.key, e.identity, e.ttl)
	if err != nil {
		return false, err
	}

	if acquired {
		e.setLeader(true)
		log.Info().
			Str("identity", e.identity).
			Str("key", e.key).
			Msg("Leadership acquired")
	}

	return acquired, nil
}

func (e *Election) Extend(ctx context.Context) bool {
	if !e.isLeader.Load() {
		return false
	}

	extended, err := e.locker.ExtendLock(ctx, e.key, e.identity, e.ttl)
	if err != nil {
		log.Error().Err(err).Msg("Failed to extend leadership")
		e.setLeader(false)
		return false
	}

	if !extended {
		log.Warn().Msg("Lost leadership (lock expired)")
		e.setLeader(false)
		return false
	}

	return true
}

func (e *Election) Release(ctx context.Context) error {
	if !e.isLeader.Load() {
		return nil
	}

	err := e.locker.ReleaseLock(ctx, e.key, e.identity)
	e.setLeader(false)

	if err != nil {
		log.Error().Err(err).Msg("Failed to release leadership")
		return err
	}

	log.Info().Str("identity", e.identity).Msg("Leadership released")
	return nil
}

func (e *Election) setLeader(leader bool) {
	e.isLeader.Store(leader)
	if leader {
		metrics.SchedulerIsLeader.Set(1)
	} else {
		metrics.SchedulerIsLeader.Set(0)
	}
}

func (e *Election) IsLeader() bool {
	return e.isLeader.Load()
}

func (e *Election) Identity() string {
	return e.identity
}
