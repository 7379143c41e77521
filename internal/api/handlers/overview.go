package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linkflow-ai/insights/internal/api/dto"
	"github.com/linkflow-ai/insights/internal/domain/services"
	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/linkflow-ai/insights/internal/pkg/logger"
)

type OverviewProvider interface {
	GetOverview(ctx context.Context, req services.OverviewRequest) (*insights.BusinessOverview, error)
	ExportKPIs(ctx context.Context, req services.OverviewRequest, w io.Writer) error
}

type OverviewHandler struct {
	overview OverviewProvider
	ranges   rangeParser
}

func NewOverviewHandler(overview OverviewProvider, defaultRange time.Duration) *OverviewHandler {
	return &OverviewHandler{overview: overview, ranges: newRangeParser(defaultRange)}
}

func (h *OverviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	query, ok := h.ranges.parse(w, r)
	if !ok {
		return
	}

	overview, err := h.overview.GetOverview(r.Context(), overviewRequest(query))
	if err != nil {
		logger.WithIntegrationID(query.IntegrationID).Error().Err(err).Msg("overview failed")
		dto.HandleServiceError(w, err)
		return
	}

	dto.OK(w, overview)
}

// Export streams the KPI table as CSV. The body is buffered so a failed build
// still gets a JSON error instead of a truncated file.
func (h *OverviewHandler) Export(w http.ResponseWriter, r *http.Request) {
	query, ok := h.ranges.parse(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.overview.ExportKPIs(r.Context(), overviewRequest(query), &buf); err != nil {
		logger.WithIntegrationID(query.IntegrationID).Error().Err(err).Msg("kpi export failed")
		dto.HandleServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("kpis-%s-%s.csv", query.IntegrationID, query.End.Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func overviewRequest(q dto.RangeQuery) services.OverviewRequest {
	return services.OverviewRequest{
		IntegrationID: q.IntegrationID,
		PropertyID:    q.PropertyID,
		DateRange:     q.DateRange(),
	}
}
