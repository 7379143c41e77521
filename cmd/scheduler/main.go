package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/linkflow-ai/insights/internal/domain/repositories"
	"github.com/linkflow-ai/insights/internal/pkg/config"
	"github.com/linkflow-ai/insights/internal/pkg/database"
	"github.com/linkflow-ai/insights/internal/pkg/logger"
	"github.com/linkflow-ai/insights/internal/pkg/queue"
	pkgredis "github.com/linkflow-ai/insights/internal/pkg/redis"
	"github.com/linkflow-ai/insights/internal/scheduler"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init("scheduler", cfg.App.Environment, cfg.App.Debug)

	log.Info().
		Str("app", cfg.App.Name).
		Str("alerts_cron", cfg.Scheduler.AlertsCron).
		Msg("Starting scheduler")

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

	queueClient := queue.NewClient(&cfg.Redis)
	defer queueClient.Close()

	s, err := scheduler.New(cfg.Scheduler, scheduler.Dependencies{
		Locker:       redisClient,
		Integrations: repositories.NewExecutionEventRepository(db),
		Queue:        queueClient,
		Pending:      scheduler.NewRedisPending(redisClient.Client, queue.QueueDefault),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.Start(ctx)

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info().Msg("Received shutdown signal")

	s.Stop()
	log.Info().Msg("Scheduler stopped")
}
