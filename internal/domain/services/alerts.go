package services

import (
	"context"
	"fmt"
	"time"

	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/linkflow-ai/insights/internal/pkg/logger"
	"github.com/linkflow-ai/insights/internal/pkg/metrics"
)

// Publisher fans alert batches out to realtime subscribers.
type Publisher interface {
	PublishJSON(ctx context.Context, channel string, message interface{}) error
}

// AlertBatch is the message published per evaluation.
type AlertBatch struct {
	IntegrationID string                      `json:"integrationId"`
	EvaluatedAt   time.Time                   `json:"evaluatedAt"`
	DateRange     insights.DateRange          `json:"dateRange"`
	Alerts        []insights.PerformanceAlert `json:"alerts"`
}

func AlertChannel(integrationID string) string {
	return fmt.Sprintf("integration:%s:alerts", integrationID)
}

type AlertSource interface {
	Alerts(ctx context.Context, integrationID string, rng insights.DateRange) ([]insights.PerformanceAlert, error)
}

// AlertService evaluates alerts and pushes non-empty batches to subscribers.
type AlertService struct {
	source    AlertSource
	publisher Publisher
	now       func() time.Time
}

func NewAlertService(source AlertSource, publisher Publisher) *AlertService {
	return &AlertService{source: source, publisher: publisher, now: time.Now}
}

func (s *AlertService) Evaluate(ctx context.Context, integrationID string, rng insights.DateRange) (*AlertBatch, error) {
	alerts, err := s.source.Alerts(ctx, integrationID, rng)
	if err != nil {
		return nil, err
	}

	batch := &AlertBatch{
		IntegrationID: integrationID,
		EvaluatedAt:   s.now(),
		DateRange:     rng,
		Alerts:        alerts,
	}
	for _, a := range alerts {
		metrics.RecordAlert(a.Type, a.Severity)
		if a.Severity == insights.SeverityCritical {
			logger.WithWorkflowID(a.WorkflowID).Warn().
				Str("integration_id", integrationID).
				Str("type", a.Type).
				Float64("value", a.CurrentValue).
				Msg("critical alert")
		}
	}
	if len(alerts) == 0 || s.publisher == nil {
		return batch, nil
	}

	if err := s.publisher.PublishJSON(ctx, AlertChannel(integrationID), batch); err != nil {
		return batch, fmt.Errorf("publish alerts: %w", err)
	}
	logger.WithIntegrationID(integrationID).Info().Int("alerts", len(alerts)).Msg("alerts published")
	return batch, nil
}
