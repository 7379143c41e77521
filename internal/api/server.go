package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/linkflow-ai/insights/internal/api/handlers"
	"github.com/linkflow-ai/insights/internal/api/middleware"
	"github.com/linkflow-ai/insights/internal/api/websocket"
	"github.com/linkflow-ai/insights/internal/pkg/config"
	"github.com/linkflow-ai/insights/internal/pkg/metrics"
	"github.com/linkflow-ai/insights/internal/pkg/queue"
	pkgredis "github.com/linkflow-ai/insights/internal/pkg/redis"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Server struct {
	cfg          *config.Config
	router       *chi.Mux
	httpServer   *http.Server
	wsHub        *websocket.Hub
	wsSubscriber *websocket.Subscriber
}

// Dependencies are the collaborators behind the routes. DB and Redis may be
// nil, in which case health reports them as not configured and rate limiting
// and the alert stream relay are off.
type Dependencies struct {
	Overview   handlers.OverviewProvider
	Automation handlers.AutomationProvider
	Catalog    handlers.Catalog
	Queue      queue.Enqueuer
	Redis      *pkgredis.Client
	DB         *gorm.DB
	Upstreams  handlers.CircuitReporter
}

func NewServer(cfg *config.Config, deps Dependencies) *Server {
	router := chi.NewRouter()
	wsHub := websocket.NewHub()

	var wsSubscriber *websocket.Subscriber
	limiter := middleware.NewRateLimiter(nil)
	if deps.Redis != nil {
		wsSubscriber = websocket.NewSubscriber(deps.Redis.Client, wsHub)
		limiter = middleware.NewRateLimiter(deps.Redis)
	}

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.RequestIDHeader)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger())
	router.Use(middleware.Recoverer())

	// CORS - support multiple origins (comma-separated in config)
	allowedOrigins := splitOrigins(cfg.App.FrontendURL)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	router.Use(corsHandler.Handler)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.DB, nil, deps.Upstreams)
	if deps.Redis != nil {
		healthHandler = handlers.NewHealthHandler(deps.DB, deps.Redis.Client, deps.Upstreams)
	}
	overviewHandler := handlers.NewOverviewHandler(deps.Overview, cfg.Insights.DefaultRange)
	automationHandler := handlers.NewAutomationHandler(deps.Automation, deps.Queue, cfg.Insights.DefaultRange)
	catalogHandler := handlers.NewCatalogHandler(deps.Catalog)
	wsHandler := handlers.NewWebSocketHandler(wsHub, allowedOrigins)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.MetricsMiddleware)
		r.Use(chimiddleware.Timeout(60 * time.Second))

		r.Get("/health", healthHandler.Health)
		r.Get("/health/live", healthHandler.Live)
		r.Get("/health/ready", healthHandler.Ready)

		r.Route("/integrations/{integrationID}", func(r chi.Router) {
			r.Use(limiter.Limit(cfg.Server.RateLimit, cfg.Server.RateWindow))

			r.Get("/overview", overviewHandler.Get)
			r.Get("/overview/export", overviewHandler.Export)

			r.Post("/events", automationHandler.Ingest)

			r.Route("/workflows", func(r chi.Router) {
				r.Get("/", automationHandler.Statuses)
				r.Get("/roi", automationHandler.ROI)
				r.Get("/alerts", automationHandler.Alerts)
				r.Get("/export", automationHandler.Export)
				r.Post("/export/archive", automationHandler.Archive)
			})

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", catalogHandler.ListGoals)
				r.Post("/", catalogHandler.CreateGoal)
				r.Delete("/{goalID}", catalogHandler.DeleteGoal)
			})

			r.Route("/metrics", func(r chi.Router) {
				r.Get("/", catalogHandler.ListMetrics)
				r.Post("/", catalogHandler.CreateMetric)
				r.Delete("/{metricID}", catalogHandler.DeleteMetric)
			})
		})
	})

	// Metrics endpoint (Prometheus)
	router.Handle("/metrics", metrics.Handler())

	// WebSocket
	router.Get("/ws/alerts", wsHandler.HandleConnection)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		cfg:          cfg,
		router:       router,
		httpServer:   httpServer,
		wsHub:        wsHub,
		wsSubscriber: wsSubscriber,
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Start serves until ctx is cancelled, then drains connections.
func (s *Server) Start(ctx context.Context) error {
	if s.wsSubscriber != nil {
		if err := s.wsSubscriber.Start(ctx); err != nil {
			return err
		}
		defer s.wsSubscriber.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.wsHub.Close()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) Hub() *websocket.Hub {
	return s.wsHub
}
