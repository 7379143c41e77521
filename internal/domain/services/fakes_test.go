package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/linkflow-ai/insights/internal/domain/models"
	"github.com/linkflow-ai/insights/internal/domain/repositories"
	"github.com/linkflow-ai/insights/internal/insights"
)

var baseTime = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

// memoryEvents is an in-memory EventStore with the same ordering and window
// semantics as the gorm repository.
type memoryEvents struct {
	mu        sync.Mutex
	rows      []models.ExecutionEvent
	pageCalls int
	failWith  error
}

func (m *memoryEvents) Append(_ context.Context, events []models.ExecutionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		if e.ID == "" {
			e.ID = e.ExecutionID + e.CreatedAt.Format(time.RFC3339Nano)
		}
		m.rows = append(m.rows, e)
	}
	sort.Slice(m.rows, func(i, j int) bool {
		if !m.rows[i].CreatedAt.Equal(m.rows[j].CreatedAt) {
			return m.rows[i].CreatedAt.Before(m.rows[j].CreatedAt)
		}
		return m.rows[i].ID < m.rows[j].ID
	})
	return nil
}

func (m *memoryEvents) inWindow(e models.ExecutionEvent, integrationID string, start, end time.Time) bool {
	if e.IntegrationID != integrationID {
		return false
	}
	if !start.IsZero() && e.CreatedAt.Before(start) {
		return false
	}
	if !end.IsZero() && e.CreatedAt.After(end) {
		return false
	}
	return true
}

func (m *memoryEvents) FindPage(_ context.Context, integrationID string, start, end time.Time, after *repositories.EventCursor, limit int) ([]models.ExecutionEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageCalls++
	if m.failWith != nil {
		return nil, m.failWith
	}

	var out []models.ExecutionEvent
	for _, e := range m.rows {
		if !m.inWindow(e, integrationID, start, end) {
			continue
		}
		if after != nil {
			if e.CreatedAt.Before(after.CreatedAt) || (e.CreatedAt.Equal(after.CreatedAt) && e.ID <= after.ID) {
				continue
			}
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryEvents) Stats(_ context.Context, integrationID string, start, end time.Time) (repositories.EventSetStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return repositories.EventSetStats{}, m.failWith
	}

	var stats repositories.EventSetStats
	for _, e := range m.rows {
		if !m.inWindow(e, integrationID, start, end) {
			continue
		}
		stats.Count++
		if stats.LatestAt == nil || e.CreatedAt.After(*stats.LatestAt) {
			at := e.CreatedAt
			stats.LatestAt = &at
		}
	}
	return stats, nil
}

func (m *memoryEvents) ActiveIntegrations(_ context.Context, since time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var ids []string
	for _, e := range m.rows {
		if !e.CreatedAt.Before(since) && !seen[e.IntegrationID] {
			seen[e.IntegrationID] = true
			ids = append(ids, e.IntegrationID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memoryEvents) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pageCalls
}

// scenarioRows is ten one-hour runs of workflow W: eight completed, two failed.
func scenarioRows(integrationID string, at time.Time) []models.ExecutionEvent {
	rows := make([]models.ExecutionEvent, 0, 10)
	for i := 0; i < 10; i++ {
		status := insights.StatusCompleted
		if i >= 8 {
			status = insights.StatusFailed
		}
		created := at.Add(time.Duration(i) * time.Minute)
		rows = append(rows, models.ExecutionEvent{
			ID:            integrationID + "-" + created.Format(time.RFC3339),
			IntegrationID: integrationID,
			WorkflowID:    "W",
			WorkflowName:  "Lead sync",
			ExecutionID:   created.Format(time.RFC3339),
			EventType:     status,
			Status:        status,
			DurationMs:    3600000,
			CreatedAt:     created,
		})
	}
	return rows
}

type stubAnalytics struct {
	metrics *insights.AnalyticsMetrics
	err     error
}

func (s stubAnalytics) FetchAnalytics(context.Context, string, insights.DateRange) (*insights.AnalyticsMetrics, error) {
	return s.metrics, s.err
}

type stubAutomation struct {
	metrics *insights.AutomationMetrics
	err     error
}

func (s stubAutomation) FetchAutomation(context.Context, string, insights.DateRange) (*insights.AutomationMetrics, error) {
	return s.metrics, s.err
}

type stubGoals struct {
	rows []models.Goal
	err  error
}

func (s stubGoals) FindByIntegration(context.Context, string, *repositories.ListOptions) ([]models.Goal, int64, error) {
	return s.rows, int64(len(s.rows)), s.err
}

type stubMetrics struct {
	rows []models.CustomMetric
	err  error
}

func (s stubMetrics) FindByIntegration(context.Context, string, *repositories.ListOptions) ([]models.CustomMetric, int64, error) {
	return s.rows, int64(len(s.rows)), s.err
}

type recordingPublisher struct {
	channel string
	message interface{}
	err     error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, channel string, message interface{}) error {
	p.channel, p.message = channel, message
	return p.err
}

var errUpstream = errors.New("upstream unavailable")
