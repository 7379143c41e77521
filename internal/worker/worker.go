package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/linkflow-ai/insights/internal/domain/services"
	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/linkflow-ai/insights/internal/pkg/config"
	"github.com/linkflow-ai/insights/internal/pkg/logger"
	"github.com/linkflow-ai/insights/internal/pkg/queue"
	"github.com/rs/zerolog/log"
)

type AlertEvaluator interface {
	Evaluate(ctx context.Context, integrationID string, rng insights.DateRange) (*services.AlertBatch, error)
}

type Archiver interface {
	Archive(ctx context.Context, integrationID, exportID string, rng insights.DateRange) (string, error)
}

type Worker struct {
	server  *queue.Server
	alerts  AlertEvaluator
	archive Archiver
}

func New(cfg *config.Config, alerts AlertEvaluator, archive Archiver) *Worker {
	w := &Worker{
		server:  queue.NewServer(&cfg.Redis, cfg.Worker),
		alerts:  alerts,
		archive: archive,
	}

	// Register handlers
	w.server.HandleFunc(queue.TypeEvaluateAlerts, w.handleEvaluateAlerts)
	w.server.HandleFunc(queue.TypeArchiveExport, w.handleArchiveExport)

	return w
}

func (w *Worker) Start() error {
	log.Info().Msg("Starting worker...")
	return w.server.Start()
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func taskID(task *asynq.Task) string {
	if rw := task.ResultWriter(); rw != nil {
		return rw.TaskID()
	}
	return ""
}

func window(task *asynq.Task, integrationID string, rng insights.DateRange) error {
	if integrationID == "" {
		return fmt.Errorf("%s: missing integration_id: %w", task.Type(), asynq.SkipRetry)
	}
	if rng.End.Before(rng.Start) {
		return fmt.Errorf("%s: end before start: %w", task.Type(), asynq.SkipRetry)
	}
	return nil
}

func (w *Worker) handleEvaluateAlerts(ctx context.Context, task *asynq.Task) error {
	var payload queue.EvaluateAlertsPayload
	if err := queue.DecodePayload(task, &payload); err != nil {
		return err
	}
	rng := insights.DateRange{Start: payload.Start, End: payload.End}
	if err := window(task, payload.IntegrationID, rng); err != nil {
		return err
	}

	l := logger.WithTask(task.Type(), taskID(task))
	batch, err := w.alerts.Evaluate(ctx, payload.IntegrationID, rng)
	if err != nil {
		l.Error().Err(err).Str("integration_id", payload.IntegrationID).Msg("alert evaluation failed")
		return err
	}

	l.Info().
		Str("integration_id", payload.IntegrationID).
		Int("alerts", len(batch.Alerts)).
		Msg("alerts evaluated")
	return nil
}

func (w *Worker) handleArchiveExport(ctx context.Context, task *asynq.Task) error {
	var payload queue.ArchiveExportPayload
	if err := queue.DecodePayload(task, &payload); err != nil {
		return err
	}
	rng := insights.DateRange{Start: payload.Start, End: payload.End}
	if err := window(task, payload.IntegrationID, rng); err != nil {
		return err
	}
	if payload.ExportID == "" {
		return fmt.Errorf("%s: missing export_id: %w", task.Type(), asynq.SkipRetry)
	}

	l := logger.WithTask(task.Type(), taskID(task))
	key, err := w.archive.Archive(ctx, payload.IntegrationID, payload.ExportID, rng)
	if err != nil {
		l.Error().Err(err).Str("export_id", payload.ExportID).Msg("archive export failed")
		return err
	}

	l.Info().Str("export_id", payload.ExportID).Str("key", key).Msg("export archived")
	return nil
}
