package services

import (
	"context"
	"errors"
	"time"

	"github.com/linkflow-ai/insights/internal/domain/models"
	"github.com/linkflow-ai/insights/internal/domain/repositories"
	"github.com/linkflow-ai/insights/internal/insights"
)

var (
	ErrGoalNotFound   = errors.New("goal not found")
	ErrMetricNotFound = errors.New("custom metric not found")
)

// CatalogService manages the goals and custom metrics shown on the overview.
type CatalogService struct {
	goals   *repositories.GoalRepository
	metrics *repositories.CustomMetricRepository
}

func NewCatalogService(goals *repositories.GoalRepository, metrics *repositories.CustomMetricRepository) *CatalogService {
	return &CatalogService{goals: goals, metrics: metrics}
}

type CreateGoalInput struct {
	Title    string
	Target   float64
	Current  float64
	Unit     string
	Deadline time.Time
	Category string
}

func (s *CatalogService) CreateGoal(ctx context.Context, integrationID string, input CreateGoalInput) (*insights.BusinessGoal, error) {
	goal := &models.Goal{
		IntegrationID: integrationID,
		Title:         input.Title,
		Target:        input.Target,
		Current:       input.Current,
		Unit:          input.Unit,
		Deadline:      input.Deadline.UTC(),
		Status:        insights.GoalOnTrack,
		Category:      input.Category,
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, err
	}
	out := goal.ToInsights()
	return &out, nil
}

func (s *CatalogService) ListGoals(ctx context.Context, integrationID string, opts *repositories.ListOptions) ([]insights.BusinessGoal, int64, error) {
	rows, total, err := s.goals.FindByIntegration(ctx, integrationID, opts)
	if err != nil {
		return nil, 0, err
	}
	out := make([]insights.BusinessGoal, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToInsights())
	}
	return out, total, nil
}

func (s *CatalogService) DeleteGoal(ctx context.Context, integrationID, id string) error {
	if err := s.goals.Delete(ctx, integrationID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrGoalNotFound
		}
		return err
	}
	return nil
}

type CreateMetricInput struct {
	Name        string
	Value       float64
	Unit        string
	Description string
	Tags        []string
}

func (s *CatalogService) CreateMetric(ctx context.Context, integrationID string, input CreateMetricInput) (*insights.CustomMetric, error) {
	metric := &models.CustomMetric{
		IntegrationID: integrationID,
		Name:          input.Name,
		Value:         input.Value,
		Unit:          input.Unit,
		Description:   input.Description,
		Tags:          models.Tags(input.Tags),
	}
	if err := s.metrics.Create(ctx, metric); err != nil {
		return nil, err
	}
	out := metric.ToInsights()
	return &out, nil
}

func (s *CatalogService) ListMetrics(ctx context.Context, integrationID string, opts *repositories.ListOptions) ([]insights.CustomMetric, int64, error) {
	rows, total, err := s.metrics.FindByIntegration(ctx, integrationID, opts)
	if err != nil {
		return nil, 0, err
	}
	out := make([]insights.CustomMetric, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToInsights())
	}
	return out, total, nil
}

func (s *CatalogService) DeleteMetric(ctx context.Context, integrationID, id string) error {
	if err := s.metrics.Delete(ctx, integrationID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMetricNotFound
		}
		return err
	}
	return nil
}
