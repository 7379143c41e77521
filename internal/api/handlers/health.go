package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/linkflow-ai/insights/internal/api/dto"
	"github.com/linkflow-ai/insights/internal/pkg/circuitbreaker"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const checkTimeout = 2 * time.Second

// CircuitReporter exposes the breaker state per upstream host.
// *httpclient.PooledClient satisfies it.
type CircuitReporter interface {
	CircuitStates() map[string]circuitbreaker.State
}

type HealthHandler struct {
	db        *gorm.DB
	redis     *redis.Client
	upstreams CircuitReporter
}

func NewHealthHandler(db *gorm.DB, redis *redis.Client, upstreams CircuitReporter) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, upstreams: upstreams}
}

// upstreamStates is informational. An open breaker degrades the overview to
// an absent bundle, so it never fails readiness.
func (h *HealthHandler) upstreamStates() map[string]string {
	states := map[string]string{}
	if h.upstreams == nil {
		return states
	}
	for host, state := range h.upstreams.CircuitStates() {
		states[host] = state.String()
	}
	return states
}

func (h *HealthHandler) checks(ctx context.Context) (map[string]string, bool) {
	checks := make(map[string]string)
	healthy := true

	if h.db != nil {
		if err := h.pingDB(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "not configured"
	}

	return checks, healthy
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.checks(r.Context())

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	dto.JSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "insights-api",
		"checks":    checks,
		"upstreams": h.upstreamStates(),
	})
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	dto.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.checks(r.Context())
	if !healthy {
		for name, result := range checks {
			if result != "ok" && result != "not configured" {
				dto.ServiceUnavailable(w, name+" not ready: "+result)
				return
			}
		}
	}
	dto.JSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"upstreams": h.upstreamStates(),
	})
}
