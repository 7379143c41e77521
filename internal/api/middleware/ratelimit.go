package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linkflow-ai/insights/internal/api/dto"
	"github.com/rs/zerolog/log"
)

// Counter is the fixed-window counter behind the limiter.
type Counter interface {
	RateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error)
}

type RateLimiter struct {
	counter Counter
	now     func() time.Time
}

func NewRateLimiter(counter Counter) *RateLimiter {
	return &RateLimiter{counter: counter, now: time.Now}
}

// Limit caps requests per integration, falling back to the client address on
// routes without an integration. Counter failures let the request through.
func (rl *RateLimiter) Limit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 || rl.counter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rl.getKey(r)

			allowed, remaining, err := rl.counter.RateLimit(r.Context(), key, limit, window)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", rl.now().Add(window).Unix()))

			if !allowed {
				dto.ErrorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) getKey(r *http.Request) string {
	if id := chi.URLParam(r, "integrationID"); id != "" {
		return "ratelimit:integration:" + id
	}

	ip := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	} else if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return "ratelimit:ip:" + ip
}
