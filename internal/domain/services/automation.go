package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linkflow-ai/insights/internal/domain/models"
	"github.com/linkflow-ai/insights/internal/domain/repositories"
	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/linkflow-ai/insights/internal/pkg/cache"
	"github.com/linkflow-ai/insights/internal/pkg/config"
	"github.com/linkflow-ai/insights/internal/pkg/logger"
	"github.com/linkflow-ai/insights/internal/pkg/metrics"
)

var (
	ErrInvalidEvent = errors.New("invalid execution event")
	ErrEmptyBatch   = errors.New("no events in batch")
)

// EventStore is the execution event log.
type EventStore interface {
	Append(ctx context.Context, events []models.ExecutionEvent) error
	FindPage(ctx context.Context, integrationID string, start, end time.Time, after *repositories.EventCursor, limit int) ([]models.ExecutionEvent, error)
	Stats(ctx context.Context, integrationID string, start, end time.Time) (repositories.EventSetStats, error)
	ActiveIntegrations(ctx context.Context, since time.Time) ([]string, error)
}

// StatusCache stores derived statuses per event-set version.
type StatusCache interface {
	Get(ctx context.Context, integrationID, scope string, version cache.EventSetVersion) (map[string]insights.WorkflowStatus, error)
	Set(ctx context.Context, integrationID, scope string, version cache.EventSetVersion, statuses map[string]insights.WorkflowStatus) error
	Invalidate(ctx context.Context, integrationID string) error
}

// AutomationService derives workflow analytics from the execution event log.
type AutomationService struct {
	events   EventStore
	cache    StatusCache
	roi      insights.ROIConfig
	pageSize int
	now      func() time.Time
}

func NewAutomationService(events EventStore, statusCache StatusCache, cfg config.InsightsConfig) *AutomationService {
	pageSize := cfg.EventPageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	roi := cfg.ROI()
	if roi.HourlyCost == 0 && roi.AutomationCost == 0 {
		roi = insights.DefaultROIConfig()
	}
	return &AutomationService{
		events:   events,
		cache:    statusCache,
		roi:      roi,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// Ingest validates and appends a batch of events reported for one integration.
func (s *AutomationService) Ingest(ctx context.Context, integrationID string, events []insights.ExecutionEvent) (int, error) {
	if len(events) == 0 {
		return 0, ErrEmptyBatch
	}

	rows := make([]models.ExecutionEvent, 0, len(events))
	for i, e := range events {
		if e.WorkflowID == "" || e.ExecutionID == "" {
			return 0, fmt.Errorf("%w: event %d: workflow and execution ids are required", ErrInvalidEvent, i)
		}
		if !knownStatus(e.Status) {
			return 0, fmt.Errorf("%w: event %d: unknown status %q", ErrInvalidEvent, i, e.Status)
		}
		if e.DurationMs < 0 {
			return 0, fmt.Errorf("%w: event %d: negative duration", ErrInvalidEvent, i)
		}
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = s.now()
		}
		rows = append(rows, models.ExecutionEvent{
			ID:            e.ID,
			IntegrationID: integrationID,
			WorkflowID:    e.WorkflowID,
			WorkflowName:  e.WorkflowName,
			ExecutionID:   e.ExecutionID,
			EventType:     e.EventType,
			Status:        e.Status,
			StartedAt:     e.StartedAt,
			FinishedAt:    e.FinishedAt,
			DurationMs:    e.DurationMs,
			InputData:     e.InputData,
			OutputData:    e.OutputData,
			ErrorData:     e.ErrorData,
			CreatedAt:     createdAt.UTC(),
		})
	}

	if err := s.events.Append(ctx, rows); err != nil {
		return 0, fmt.Errorf("append events: %w", err)
	}

	// Older versions can no longer be hit; drop them instead of waiting for the TTL.
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, integrationID); err != nil {
			logger.WithIntegrationID(integrationID).Warn().Err(err).Msg("status cache invalidation failed")
		}
	}
	return len(rows), nil
}

func knownStatus(status string) bool {
	switch status {
	case insights.StatusCompleted, insights.StatusFailed, insights.StatusCancelled,
		insights.StatusRunning, insights.StatusWaiting:
		return true
	}
	return false
}

// Events loads the full event set of the window page by page.
func (s *AutomationService) Events(ctx context.Context, integrationID string, rng insights.DateRange) ([]insights.ExecutionEvent, error) {
	var (
		out    []insights.ExecutionEvent
		cursor *repositories.EventCursor
	)
	for {
		page, err := s.events.FindPage(ctx, integrationID, rng.Start, rng.End, cursor, s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("load events: %w", err)
		}
		out = append(out, models.ToInsightsEvents(page)...)
		if len(page) < s.pageSize {
			break
		}
		last := page[len(page)-1]
		cursor = &repositories.EventCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	if out == nil {
		out = []insights.ExecutionEvent{}
	}
	return out, nil
}

// Statuses returns the per-workflow rollup of the window, served from cache
// when the event set is unchanged.
func (s *AutomationService) Statuses(ctx context.Context, integrationID string, rng insights.DateRange) (map[string]insights.WorkflowStatus, error) {
	statuses, _, err := s.statusesAndEvents(ctx, integrationID, rng, false)
	return statuses, err
}

// statusesAndEvents loads events only when needed: on a cache miss or when
// the caller asks for them.
func (s *AutomationService) statusesAndEvents(ctx context.Context, integrationID string, rng insights.DateRange, needEvents bool) (map[string]insights.WorkflowStatus, []insights.ExecutionEvent, error) {
	log := logger.WithIntegrationID(integrationID)

	var (
		version  cache.EventSetVersion
		useCache = s.cache != nil
	)
	if useCache {
		stats, err := s.events.Stats(ctx, integrationID, rng.Start, rng.End)
		if err != nil {
			return nil, nil, fmt.Errorf("event stats: %w", err)
		}
		if stats.Count == 0 {
			return map[string]insights.WorkflowStatus{}, []insights.ExecutionEvent{}, nil
		}
		version = cache.EventSetVersion{Count: stats.Count}
		if stats.LatestAt != nil {
			version.LatestAt = *stats.LatestAt
		}

		if !needEvents {
			cached, err := s.cache.Get(ctx, integrationID, rangeScope(rng), version)
			if err != nil {
				log.Warn().Err(err).Msg("status cache read failed")
			}
			metrics.RecordCacheLookup(cached != nil)
			if cached != nil {
				return cached, nil, nil
			}
		}
	}

	events, err := s.Events(ctx, integrationID, rng)
	if err != nil {
		return nil, nil, err
	}
	statuses := insights.AggregateWorkflowStatus(events)

	if useCache {
		if err := s.cache.Set(ctx, integrationID, rangeScope(rng), version, statuses); err != nil {
			log.Warn().Err(err).Msg("status cache write failed")
		}
	}
	return statuses, events, nil
}

func rangeScope(rng insights.DateRange) string {
	return fmt.Sprintf("%d-%d", unixOrZero(rng.Start), unixOrZero(rng.End))
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// StatusList is Statuses ordered by workflow id.
func (s *AutomationService) StatusList(ctx context.Context, integrationID string, rng insights.DateRange) ([]insights.WorkflowStatus, error) {
	statuses, err := s.Statuses(ctx, integrationID, rng)
	if err != nil {
		return nil, err
	}
	return insights.SortedStatuses(statuses), nil
}

func (s *AutomationService) ROI(ctx context.Context, integrationID string, rng insights.DateRange) ([]insights.ROIRecord, error) {
	statuses, err := s.Statuses(ctx, integrationID, rng)
	if err != nil {
		return nil, err
	}
	return insights.CalculateROI(statuses, s.roi), nil
}

func (s *AutomationService) Alerts(ctx context.Context, integrationID string, rng insights.DateRange) ([]insights.PerformanceAlert, error) {
	statuses, err := s.Statuses(ctx, integrationID, rng)
	if err != nil {
		return nil, err
	}
	return insights.EvaluateAlerts(statuses, s.now()), nil
}

func (s *AutomationService) Export(ctx context.Context, integrationID string, rng insights.DateRange) (*insights.AutomationExport, error) {
	events, err := s.Events(ctx, integrationID, rng)
	if err != nil {
		return nil, err
	}
	return insights.BuildAutomationExport(events, s.roi, rng, s.now()), nil
}

// FetchAutomation returns the automation bundle for the window, or nil when the
// integration reported no events in it. The previous bundle covers the window
// of equal length immediately before.
func (s *AutomationService) FetchAutomation(ctx context.Context, integrationID string, rng insights.DateRange) (*insights.AutomationMetrics, error) {
	statuses, events, err := s.statusesAndEvents(ctx, integrationID, rng, true)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	bundle := insights.SummarizeAutomation(statuses, events)

	if prev, ok := previousRange(rng); ok {
		prevEvents, err := s.Events(ctx, integrationID, prev)
		if err != nil {
			logger.WithIntegrationID(integrationID).Warn().Err(err).Msg("previous period unavailable")
		} else if len(prevEvents) > 0 {
			p := insights.SummarizeAutomation(insights.AggregateWorkflowStatus(prevEvents), prevEvents)
			bundle.Previous = &insights.AutomationPeriod{SuccessRate: p.SuccessRate, TimeSavedHours: p.TimeSavedHours}
		}
	}
	return bundle, nil
}

func previousRange(rng insights.DateRange) (insights.DateRange, bool) {
	if rng.Start.IsZero() || rng.End.IsZero() || !rng.End.After(rng.Start) {
		return insights.DateRange{}, false
	}
	length := rng.End.Sub(rng.Start)
	return insights.DateRange{Start: rng.Start.Add(-length), End: rng.Start.Add(-time.Nanosecond)}, true
}

// ActiveIntegrations lists integrations with events since the cutoff.
func (s *AutomationService) ActiveIntegrations(ctx context.Context, since time.Time) ([]string, error) {
	return s.events.ActiveIntegrations(ctx, since)
}
