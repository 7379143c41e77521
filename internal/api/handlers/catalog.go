package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linkflow-ai/insights/internal/api/dto"
	"github.com/linkflow-ai/insights/internal/domain/repositories"
	"github.com/linkflow-ai/insights/internal/domain/services"
	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/linkflow-ai/insights/internal/pkg/validator"
	"github.com/rs/zerolog/log"
)

type Catalog interface {
	CreateGoal(ctx context.Context, integrationID string, input services.CreateGoalInput) (*insights.BusinessGoal, error)
	ListGoals(ctx context.Context, integrationID string, opts *repositories.ListOptions) ([]insights.BusinessGoal, int64, error)
	DeleteGoal(ctx context.Context, integrationID, id string) error
	CreateMetric(ctx context.Context, integrationID string, input services.CreateMetricInput) (*insights.CustomMetric, error)
	ListMetrics(ctx context.Context, integrationID string, opts *repositories.ListOptions) ([]insights.CustomMetric, int64, error)
	DeleteMetric(ctx context.Context, integrationID, id string) error
}

type CatalogHandler struct {
	catalog Catalog
}

func NewCatalogHandler(catalog Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	id, ok := integrationID(w, r)
	if !ok {
		return
	}

	page, perPage, opts := pageOptions(r)
	goals, total, err := h.catalog.ListGoals(r.Context(), id, opts)
	if err != nil {
		log.Error().Err(err).Str("integration_id", id).Msg("failed to list goals")
		dto.HandleServiceError(w, err)
		return
	}

	dto.JSONWithMeta(w, http.StatusOK, goals, dto.NewMeta(page, perPage, total))
}

func (h *CatalogHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := integrationID(w, r)
	if !ok {
		return
	}

	var req dto.CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	goal, err := h.catalog.CreateGoal(r.Context(), id, services.CreateGoalInput{
		Title:    req.Title,
		Target:   req.Target,
		Current:  req.Current,
		Unit:     req.Unit,
		Deadline: req.Deadline,
		Category: req.Category,
	})
	if err != nil {
		log.Error().Err(err).Str("integration_id", id).Msg("failed to create goal")
		dto.HandleServiceError(w, err)
		return
	}

	dto.Created(w, goal)
}

func (h *CatalogHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := integrationID(w, r)
	if !ok {
		return
	}

	if err := h.catalog.DeleteGoal(r.Context(), id, chi.URLParam(r, "goalID")); err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.NoContent(w)
}

func (h *CatalogHandler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := integrationID(w, r)
	if !ok {
		return
	}

	page, perPage, opts := pageOptions(r)
	metrics, total, err := h.catalog.ListMetrics(r.Context(), id, opts)
	if err != nil {
		log.Error().Err(err).Str("integration_id", id).Msg("failed to list custom metrics")
		dto.HandleServiceError(w, err)
		return
	}

	dto.JSONWithMeta(w, http.StatusOK, metrics, dto.NewMeta(page, perPage, total))
}

func (h *CatalogHandler) CreateMetric(w http.ResponseWriter, r *http.Request) {
	id, ok := integrationID(w, r)
	if !ok {
		return
	}

	var req dto.CreateMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	metric, err := h.catalog.CreateMetric(r.Context(), id, services.CreateMetricInput{
		Name:        req.Name,
		Value:       req.Value,
		Unit:        req.Unit,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		log.Error().Err(err).Str("integration_id", id).Msg("failed to create custom metric")
		dto.HandleServiceError(w, err)
		return
	}

	dto.Created(w, metric)
}

func (h *CatalogHandler) DeleteMetric(w http.ResponseWriter, r *http.Request) {
	id, ok := integrationID(w, r)
	if !ok {
		return
	}

	if err := h.catalog.DeleteMetric(r.Context(), id, chi.URLParam(r, "metricID")); err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.NoContent(w)
}

func pageOptions(r *http.Request) (int, int, *repositories.ListOptions) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	opts := repositories.NewListOptions(page, perPage)
	if page < 1 {
		page = 1
	}
	return page, opts.Limit, opts
}
