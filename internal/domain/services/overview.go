package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/linkflow-ai/insights/internal/domain/models"
	"github.com/linkflow-ai/insights/internal/domain/repositories"
	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/linkflow-ai/insights/internal/pkg/config"
	"github.com/linkflow-ai/insights/internal/pkg/logger"
	"github.com/linkflow-ai/insights/internal/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// ErrOverviewFetch is returned when every upstream source failed.
var ErrOverviewFetch = errors.New("failed to fetch overview sources")

type AnalyticsSource interface {
	FetchAnalytics(ctx context.Context, propertyID string, rng insights.DateRange) (*insights.AnalyticsMetrics, error)
}

type AutomationSource interface {
	FetchAutomation(ctx context.Context, integrationID string, rng insights.DateRange) (*insights.AutomationMetrics, error)
}

type GoalStore interface {
	FindByIntegration(ctx context.Context, integrationID string, opts *repositories.ListOptions) ([]models.Goal, int64, error)
}

type CustomMetricStore interface {
	FindByIntegration(ctx context.Context, integrationID string, opts *repositories.ListOptions) ([]models.CustomMetric, int64, error)
}

type OverviewRequest struct {
	IntegrationID string
	PropertyID    string
	DateRange     insights.DateRange
}

type OverviewService struct {
	analytics  AnalyticsSource
	automation AutomationSource
	goals      GoalStore
	custom     CustomMetricStore
	rules      []insights.Rule
	trendDays  int
	now        func() time.Time
}

// NewOverviewService compiles the configured rules on top of the built-in ones.
// Any nil collaborator is treated as an always-absent source.
func NewOverviewService(
	analytics AnalyticsSource,
	automation AutomationSource,
	goals GoalStore,
	custom CustomMetricStore,
	cfg config.InsightsConfig,
) (*OverviewService, error) {
	extra, err := insights.CompileRules(cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("invalid recommendation rules: %w", err)
	}
	return &OverviewService{
		analytics:  analytics,
		automation: automation,
		goals:      goals,
		custom:     custom,
		rules:      append(insights.DefaultRules(), extra...),
		trendDays:  cfg.TrendDays,
		now:        time.Now,
	}, nil
}

// GetOverview fetches both sources concurrently. A failed or empty source
// becomes an absent bundle; only when both fail is an error returned.
func (s *OverviewService) GetOverview(ctx context.Context, req OverviewRequest) (*insights.BusinessOverview, error) {
	start := s.now()
	log := logger.WithIntegrationID(req.IntegrationID)

	var (
		analytics     *insights.AnalyticsMetrics
		automation    *insights.AutomationMetrics
		goals         []insights.BusinessGoal
		custom        []insights.CustomMetric
		analyticsErr  error
		automationErr error
	)

	// Goroutines never return errors so one failing source cannot cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		if s.analytics == nil {
			return nil
		}
		analytics, analyticsErr = s.analytics.FetchAnalytics(ctx, req.PropertyID, req.DateRange)
		return nil
	})
	g.Go(func() error {
		if s.automation == nil {
			return nil
		}
		automation, automationErr = s.automation.FetchAutomation(ctx, req.IntegrationID, req.DateRange)
		return nil
	})
	g.Go(func() error {
		goals = s.loadGoals(ctx, req.IntegrationID)
		return nil
	})
	g.Go(func() error {
		custom = s.loadCustomMetrics(ctx, req.IntegrationID)
		return nil
	})
	_ = g.Wait()

	if analyticsErr != nil {
		metrics.RecordSourceFailure("analytics")
		logger.WithSource(req.IntegrationID, "analytics").Warn().Err(analyticsErr).Msg("source unavailable")
		analytics = nil
	}
	if automationErr != nil {
		metrics.RecordSourceFailure("automation")
		logger.WithSource(req.IntegrationID, "automation").Warn().Err(automationErr).Msg("source unavailable")
		automation = nil
	}
	if analyticsErr != nil && automationErr != nil {
		metrics.RecordOverview("failed", s.now().Sub(start).Seconds())
		return nil, fmt.Errorf("%w: %w", ErrOverviewFetch, errors.Join(analyticsErr, automationErr))
	}

	overview := insights.BuildOverview(insights.OverviewInput{
		Analytics:     analytics,
		Automation:    automation,
		Goals:         goals,
		CustomMetrics: custom,
		Rules:         s.rules,
		DateRange:     req.DateRange,
		TrendDays:     s.trendDays,
	}, s.now())

	outcome := "complete"
	if analytics == nil || automation == nil {
		outcome = "partial"
	}
	metrics.RecordOverview(outcome, s.now().Sub(start).Seconds())
	metrics.RecordHealthScore(req.IntegrationID, overview.HealthScore.Overall)

	log.Debug().
		Str("outcome", outcome).
		Int("health", overview.HealthScore.Overall).
		Int("kpis", len(overview.KPIs)).
		Msg("overview built")

	return overview, nil
}

// ExportKPIs writes the CSV projection of a freshly built overview.
func (s *OverviewService) ExportKPIs(ctx context.Context, req OverviewRequest, w io.Writer) error {
	overview, err := s.GetOverview(ctx, req)
	if err != nil {
		return err
	}
	return insights.ExportKPIsCSV(w, overview)
}

func (s *OverviewService) loadGoals(ctx context.Context, integrationID string) []insights.BusinessGoal {
	out := []insights.BusinessGoal{}
	if s.goals == nil {
		return out
	}
	rows, _, err := s.goals.FindByIntegration(ctx, integrationID, &repositories.ListOptions{OrderBy: "deadline", Order: "asc", Limit: 100})
	if err != nil {
		logger.WithIntegrationID(integrationID).Warn().Err(err).Msg("goals unavailable")
		return out
	}
	for i := range rows {
		out = append(out, rows[i].ToInsights())
	}
	return out
}

func (s *OverviewService) loadCustomMetrics(ctx context.Context, integrationID string) []insights.CustomMetric {
	out := []insights.CustomMetric{}
	if s.custom == nil {
		return out
	}
	rows, _, err := s.custom.FindByIntegration(ctx, integrationID, &repositories.ListOptions{OrderBy: "name", Order: "asc", Limit: 100})
	if err != nil {
		logger.WithIntegrationID(integrationID).Warn().Err(err).Msg("custom metrics unavailable")
		return out
	}
	for i := range rows {
		out = append(out, rows[i].ToInsights())
	}
	return out
}
