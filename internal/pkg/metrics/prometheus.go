package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insights_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	// Overview Metrics
	OverviewBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_overview_builds_total",
			Help: "Total number of business overviews built",
		},
		[]string{"outcome"},
	)

	OverviewBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insights_overview_build_duration_seconds",
			Help:    "Time to fetch sources and assemble an overview",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	HealthScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insights_health_score",
			Help: "Latest overall business health score per integration",
		},
		[]string{"integration_id"},
	)

	// Upstream Metrics
	SourceFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_source_fetch_failures_total",
			Help: "Failed fetches per upstream source",
		},
		[]string{"source"},
	)

	// Automation Metrics
	AlertsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_alerts_emitted_total",
			Help: "Performance alerts emitted by periodic evaluation",
		},
		[]string{"type", "severity"},
	)

	StatusCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_status_cache_lookups_total",
			Help: "Workflow status cache lookups",
		},
		[]string{"result"},
	)

	// Queue Metrics
	QueueTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_queue_tasks_total",
			Help: "Total number of tasks enqueued",
		},
		[]string{"task_type"},
	)

	QueueTasksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_queue_tasks_processed_total",
			Help: "Total number of tasks processed",
		},
		[]string{"task_type", "status"},
	)

	// Scheduler Metrics
	SchedulerIsLeader = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "insights_scheduler_is_leader",
			Help: "1 when this scheduler instance holds the leader lock",
		},
	)
)

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware records HTTP metrics labelled by chi route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working behind the middleware.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func RecordOverview(outcome string, seconds float64) {
	OverviewBuildsTotal.WithLabelValues(outcome).Inc()
	OverviewBuildDuration.Observe(seconds)
}

func RecordHealthScore(integrationID string, score int) {
	HealthScore.WithLabelValues(integrationID).Set(float64(score))
}

func RecordSourceFailure(source string) {
	SourceFetchFailures.WithLabelValues(source).Inc()
}

func RecordAlert(alertType, severity string) {
	AlertsEmittedTotal.WithLabelValues(alertType, severity).Inc()
}

func RecordCacheLookup(hit bool) {
	if hit {
		StatusCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	StatusCacheLookups.WithLabelValues("miss").Inc()
}
