package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/linkflow-ai/insights/internal/domain/repositories"
	"github.com/linkflow-ai/insights/internal/domain/services"
	"github.com/linkflow-ai/insights/internal/pkg/cache"
	"github.com/linkflow-ai/insights/internal/pkg/config"
	"github.com/linkflow-ai/insights/internal/pkg/database"
	"github.com/linkflow-ai/insights/internal/pkg/logger"
	pkgredis "github.com/linkflow-ai/insights/internal/pkg/redis"
	"github.com/linkflow-ai/insights/internal/pkg/storage"
	"github.com/linkflow-ai/insights/internal/worker"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init("worker", cfg.App.Environment, cfg.App.Debug)

	log.Info().
		Str("app", cfg.App.Name).
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("Starting worker service")

	// Connect to database
	db, err := database.NewGormDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Connect to Redis
	redisClient, err := pkgredis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Object storage for archived exports
	s3Client, err := storage.NewS3Client(context.Background(), &cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure object storage")
	}
	bucket := storage.NewBucket(s3Client, cfg.S3.Bucket, cfg.S3.Prefix)

	// Initialize services
	eventRepo := repositories.NewExecutionEventRepository(db)
	statusCache := cache.NewStatusCache(redisClient.Client, cfg.Insights.CacheTTL)
	automationSvc := services.NewAutomationService(eventRepo, statusCache, cfg.Insights)
	alertSvc := services.NewAlertService(automationSvc, redisClient)
	archiveSvc := services.NewArchiveService(automationSvc, bucket)

	w := worker.New(cfg, alertSvc, archiveSvc)
	if err := w.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start worker")
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker...")
	w.Shutdown()
	log.Info().Msg("Worker stopped")
}
