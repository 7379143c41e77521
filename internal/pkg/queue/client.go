package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/linkflow-ai/insights/internal/pkg/config"
	"github.com/linkflow-ai/insights/internal/pkg/metrics"
)

const (
	TypeEvaluateAlerts = "insights:evaluate_alerts"
	TypeArchiveExport  = "insights:archive_export"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Enqueuer is the subset of the client the scheduler and API depend on.
type Enqueuer interface {
	EnqueueEvaluateAlerts(ctx context.Context, payload EvaluateAlertsPayload) (*asynq.TaskInfo, error)
	EnqueueArchiveExport(ctx context.Context, payload ArchiveExportPayload) (*asynq.TaskInfo, error)
}

type Client struct {
	client *asynq.Client
}

func NewClient(cfg *config.RedisConfig) *Client {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Client{client: client}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Alert evaluation
type EvaluateAlertsPayload struct {
	IntegrationID string    `json:"integration_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

func NewEvaluateAlertsTask(payload EvaluateAlertsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeEvaluateAlerts, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(2*time.Minute),
		asynq.Retention(time.Hour),
	), nil
}

// EnqueueEvaluateAlerts dedupes on (integration, window end) so a re-elected
// scheduler cannot double-enqueue the same tick.
func (c *Client) EnqueueEvaluateAlerts(ctx context.Context, payload EvaluateAlertsPayload) (*asynq.TaskInfo, error) {
	task, err := NewEvaluateAlertsTask(payload)
	if err != nil {
		return nil, err
	}
	id := fmt.Sprintf("alerts:%s:%d", payload.IntegrationID, payload.End.Unix())
	info, err := c.client.EnqueueContext(ctx, task, asynq.TaskID(id))
	if err == nil {
		metrics.QueueTasksTotal.WithLabelValues(TypeEvaluateAlerts).Inc()
	}
	return info, err
}

// Export archive
type ArchiveExportPayload struct {
	ExportID      string    `json:"export_id"`
	IntegrationID string    `json:"integration_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

func NewArchiveExportTask(payload ArchiveExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeArchiveExport, data,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Retention(24*time.Hour),
	), nil
}

func (c *Client) EnqueueArchiveExport(ctx context.Context, payload ArchiveExportPayload) (*asynq.TaskInfo, error) {
	task, err := NewArchiveExportTask(payload)
	if err != nil {
		return nil, err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if err == nil {
		metrics.QueueTasksTotal.WithLabelValues(TypeArchiveExport).Inc()
	}
	return info, err
}

// DecodePayload unmarshals a task payload into dest.
func DecodePayload(task *asynq.Task, dest interface{}) error {
	if err := json.Unmarshal(task.Payload(), dest); err != nil {
		return fmt.Errorf("%s: invalid payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	return nil
}
