package repositories

import (
	"context"
	"time"

	"github.com/linkflow-ai/insights/internal/domain/models"
	"gorm.io/gorm"
)

// EventCursor is the keyset position after the last row of a page.
type EventCursor struct {
	CreatedAt time.Time
	ID        string
}

// EventSetStats summarises the events of one integration in a window.
type EventSetStats struct {
	Count    int64
	LatestAt *time.Time
}

type ExecutionEventRepository struct {
	*BaseRepository[models.ExecutionEvent]
}

func NewExecutionEventRepository(db *gorm.DB) *ExecutionEventRepository {
	return &ExecutionEventRepository{
		BaseRepository: NewBaseRepository[models.ExecutionEvent](db),
	}
}

func (r *ExecutionEventRepository) window(ctx context.Context, integrationID string, start, end time.Time) *gorm.DB {
	query := r.DB().WithContext(ctx).Model(&models.ExecutionEvent{}).Where("integration_id = ?", integrationID)
	if !start.IsZero() {
		query = query.Where("created_at >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("created_at <= ?", end)
	}
	return query
}

// Append stores a batch of events for one integration.
func (r *ExecutionEventRepository) Append(ctx context.Context, events []models.ExecutionEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.DB().WithContext(ctx).CreateInBatches(events, 500).Error
}

// FindPage returns up to limit events ordered by (created_at, id) strictly after cursor.
func (r *ExecutionEventRepository) FindPage(ctx context.Context, integrationID string, start, end time.Time, after *EventCursor, limit int) ([]models.ExecutionEvent, error) {
	query := r.window(ctx, integrationID, start, end)
	if after != nil {
		query = query.Where("(created_at > ?) OR (created_at = ? AND id > ?)", after.CreatedAt, after.CreatedAt, after.ID)
	}

	var events []models.ExecutionEvent
	err := query.Order("created_at ASC").Order("id ASC").Limit(limit).Find(&events).Error
	return events, err
}

// Stats is the event-set version used to key derived caches.
func (r *ExecutionEventRepository) Stats(ctx context.Context, integrationID string, start, end time.Time) (EventSetStats, error) {
	var stats EventSetStats
	err := r.window(ctx, integrationID, start, end).
		Select("COUNT(*) AS count, MAX(created_at) AS latest_at").
		Scan(&stats).Error
	return stats, err
}

// ActiveIntegrations lists integrations that reported events since the cutoff.
func (r *ExecutionEventRepository) ActiveIntegrations(ctx context.Context, since time.Time) ([]string, error) {
	var ids []string
	err := r.DB().WithContext(ctx).Model(&models.ExecutionEvent{}).
		Where("created_at >= ?", since).
		Distinct().
		Order("integration_id").
		Pluck("integration_id", &ids).Error
	return ids, err
}
