package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/linkflow-ai/insights/internal/api/dto"
	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/linkflow-ai/insights/internal/pkg/logger"
	"github.com/linkflow-ai/insights/internal/pkg/queue"
	"github.com/linkflow-ai/insights/internal/pkg/validator"
)

type AutomationProvider interface {
	Ingest(ctx context.Context, integrationID string, events []insights.ExecutionEvent) (int, error)
	StatusList(ctx context.Context, integrationID string, rng insights.DateRange) ([]insights.WorkflowStatus, error)
	ROI(ctx context.Context, integrationID string, rng insights.DateRange) ([]insights.ROIRecord, error)
	Alerts(ctx context.Context, integrationID string, rng insights.DateRange) ([]insights.PerformanceAlert, error)
	Export(ctx context.Context, integrationID string, rng insights.DateRange) (*insights.AutomationExport, error)
}

const maxIngestBody = 8 << 20

type AutomationHandler struct {
	automation AutomationProvider
	queue      queue.Enqueuer
	ranges     rangeParser
}

func NewAutomationHandler(automation AutomationProvider, enqueuer queue.Enqueuer, defaultRange time.Duration) *AutomationHandler {
	return &AutomationHandler{
		automation: automation,
		queue:      enqueuer,
		ranges:     newRangeParser(defaultRange),
	}
}

func (h *AutomationHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	id, ok := integrationID(w, r)
	if !ok {
		return
	}

	var req dto.IngestEventsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIngestBody)).Decode(&req); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	accepted, err := h.automation.Ingest(r.Context(), id, req.Events)
	if err != nil {
		logger.WithIntegrationID(id).Warn().Err(err).Msg("event ingest rejected")
		dto.HandleServiceError(w, err)
		return
	}

	dto.Accepted(w, dto.IngestResponse{Accepted: accepted})
}

func (h *AutomationHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	query, ok := h.ranges.parse(w, r)
	if !ok {
		return
	}

	statuses, err := h.automation.StatusList(r.Context(), query.IntegrationID, query.DateRange())
	if err != nil {
		h.fail(w, query, err, "workflow statuses failed")
		return
	}
	dto.OK(w, statuses)
}

func (h *AutomationHandler) ROI(w http.ResponseWriter, r *http.Request) {
	query, ok := h.ranges.parse(w, r)
	if !ok {
		return
	}

	records, err := h.automation.ROI(r.Context(), query.IntegrationID, query.DateRange())
	if err != nil {
		h.fail(w, query, err, "workflow roi failed")
		return
	}
	dto.OK(w, records)
}

func (h *AutomationHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	query, ok := h.ranges.parse(w, r)
	if !ok {
		return
	}

	alerts, err := h.automation.Alerts(r.Context(), query.IntegrationID, query.DateRange())
	if err != nil {
		h.fail(w, query, err, "workflow alerts failed")
		return
	}
	dto.OK(w, alerts)
}

func (h *AutomationHandler) Export(w http.ResponseWriter, r *http.Request) {
	query, ok := h.ranges.parse(w, r)
	if !ok {
		return
	}

	export, err := h.automation.Export(r.Context(), query.IntegrationID, query.DateRange())
	if err != nil {
		h.fail(w, query, err, "workflow export failed")
		return
	}
	dto.OK(w, export)
}

// Archive enqueues an export bundle to be written to object storage.
func (h *AutomationHandler) Archive(w http.ResponseWriter, r *http.Request) {
	query, ok := h.ranges.parse(w, r)
	if !ok {
		return
	}
	if h.queue == nil {
		dto.ServiceUnavailable(w, "archive queue is not configured")
		return
	}

	exportID := uuid.NewString()
	info, err := h.queue.EnqueueArchiveExport(r.Context(), queue.ArchiveExportPayload{
		ExportID:      exportID,
		IntegrationID: query.IntegrationID,
		Start:         query.Start,
		End:           query.End,
	})
	if err != nil {
		h.fail(w, query, err, "archive enqueue failed")
		return
	}

	dto.Accepted(w, dto.ArchiveResponse{
		ExportID: exportID,
		TaskID:   info.ID,
		Queue:    info.Queue,
	})
}

func (h *AutomationHandler) fail(w http.ResponseWriter, query dto.RangeQuery, err error, msg string) {
	logger.WithIntegrationID(query.IntegrationID).Error().Err(err).Msg(msg)
	dto.HandleServiceError(w, err)
}
