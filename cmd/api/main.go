package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/linkflow-ai/insights/internal/analytics"
	"github.com/linkflow-ai/insights/internal/api"
	"github.com/linkflow-ai/insights/internal/domain/repositories"
	"github.com/linkflow-ai/insights/internal/domain/services"
	"github.com/linkflow-ai/insights/internal/pkg/cache"
	"github.com/linkflow-ai/insights/internal/pkg/config"
	"github.com/linkflow-ai/insights/internal/pkg/database"
	"github.com/linkflow-ai/insights/internal/pkg/httpclient"
	"github.com/linkflow-ai/insights/internal/pkg/logger"
	"github.com/linkflow-ai/insights/internal/pkg/queue"
	pkgredis "github.com/linkflow-ai/insights/internal/pkg/redis"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init("api", cfg.App.Environment, cfg.App.Debug)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Msg("Starting API server")

	// Connect to database
	db, err := database.NewGormDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := pkgredis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize queue client
	queueClient := queue.NewClient(&cfg.Redis)
	defer queueClient.Close()

	// Initialize repositories
	eventRepo := repositories.NewExecutionEventRepository(db)
	goalRepo := repositories.NewGoalRepository(db)
	metricRepo := repositories.NewCustomMetricRepository(db)

	// Initialize services
	statusCache := cache.NewStatusCache(redisClient.Client, cfg.Insights.CacheTTL)
	automationSvc := services.NewAutomationService(eventRepo, statusCache, cfg.Insights)
	httpConfig := httpclient.DefaultConfig()
	if cfg.Analytics.Timeout > 0 {
		httpConfig.ResponseTimeout = cfg.Analytics.Timeout
	}
	upstreams := httpclient.NewPooledClient(httpConfig)
	defer upstreams.CloseIdleConnections()
	analyticsClient := analytics.NewClient(cfg.Analytics, upstreams)
	overviewSvc, err := services.NewOverviewService(analyticsClient, automationSvc, goalRepo, metricRepo, cfg.Insights)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build overview service")
	}
	catalogSvc := services.NewCatalogService(goalRepo, metricRepo)

	// Create server
	server := api.NewServer(cfg, api.Dependencies{
		Overview:   overviewSvc,
		Automation: automationSvc,
		Catalog:    catalogSvc,
		Queue:      queueClient,
		Redis:      redisClient,
		DB:         db,
		Upstreams:  upstreams,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server
	if err := server.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
	log.Info().Msg("API server stopped")
}
