package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/linkflow-ai/insights/internal/insights"
	"gorm.io/gorm"
)

// ExecutionEvent is the append-only execution log row one integration's
// workflow platform reports.
type ExecutionEvent struct {
	ID            string     `gorm:"size:36;primaryKey" json:"id"`
	IntegrationID string     `gorm:"size:128;not null;index:idx_events_integration_created,priority:1" json:"integration_id"`
	WorkflowID    string     `gorm:"size:128;not null;index" json:"workflow_id"`
	WorkflowName  string     `gorm:"size:255" json:"workflow_name"`
	ExecutionID   string     `gorm:"size:128;not null" json:"execution_id"`
	EventType     string     `gorm:"size:20;not null" json:"event_type"`
	Status        string     `gorm:"size:20;not null" json:"status"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	DurationMs    int64      `gorm:"default:0" json:"duration_ms"`
	InputData     JSON       `json:"input_data,omitempty"`
	OutputData    JSON       `json:"output_data,omitempty"`
	ErrorData     JSON       `json:"error_data,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;index:idx_events_integration_created,priority:2" json:"created_at"`
}

func (ExecutionEvent) TableName() string {
	return "execution_events"
}

func (e *ExecutionEvent) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

func (e *ExecutionEvent) ToInsights() insights.ExecutionEvent {
	return insights.ExecutionEvent{
		ID:           e.ID,
		WorkflowID:   e.WorkflowID,
		WorkflowName: e.WorkflowName,
		ExecutionID:  e.ExecutionID,
		EventType:    e.EventType,
		Status:       e.Status,
		StartedAt:    e.StartedAt,
		FinishedAt:   e.FinishedAt,
		DurationMs:   e.DurationMs,
		InputData:    e.InputData,
		OutputData:   e.OutputData,
		ErrorData:    e.ErrorData,
		CreatedAt:    e.CreatedAt,
	}
}

func ToInsightsEvents(rows []ExecutionEvent) []insights.ExecutionEvent {
	events := make([]insights.ExecutionEvent, len(rows))
	for i := range rows {
		events[i] = rows[i].ToInsights()
	}
	return events
}
