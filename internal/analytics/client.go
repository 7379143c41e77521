package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/linkflow-ai/insights/internal/pkg/circuitbreaker"
	"github.com/linkflow-ai/insights/internal/pkg/config"
	"github.com/linkflow-ai/insights/internal/pkg/httpclient"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const dateLayout = "2006-01-02"

var (
	ErrNotConfigured = errors.New("analytics provider not configured")
	ErrNoProperty    = errors.New("analytics property id is required")
	ErrBadReport     = errors.New("malformed analytics report")
)

// StatusError is a non-200 answer from the provider. Only 429 and 5xx are retried.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analytics provider returned %d", e.StatusCode)
}

// Doer sends HTTP requests. *httpclient.PooledClient satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client reads report data from the analytics provider reporting API.
type Client struct {
	http       Doer
	baseURL    string
	apiKey     string
	property   string
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

func NewClient(cfg config.AnalyticsConfig, doer Doer) *Client {
	if doer == nil {
		hc := httpclient.DefaultConfig()
		if cfg.Timeout > 0 {
			hc.ResponseTimeout = cfg.Timeout
		}
		doer = httpclient.NewPooledClient(hc)
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		http:       doer,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		property:   cfg.PropertyID,
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.Timeout,
	}
}

type reportTotals struct {
	Sessions           float64 `json:"sessions"`
	Users              float64 `json:"users"`
	PageViews          float64 `json:"pageViews"`
	BounceRate         float64 `json:"bounceRate"`
	AvgSessionDuration float64 `json:"avgSessionDuration"`
	ConversionRate     float64 `json:"conversionRate"`
	Conversions        float64 `json:"conversions"`
}

func (t reportTotals) toInsights() insights.AnalyticsTotals {
	return insights.AnalyticsTotals(t)
}

type reportDay struct {
	Date           string  `json:"date"`
	Sessions       float64 `json:"sessions"`
	Users          float64 `json:"users"`
	BounceRate     float64 `json:"bounceRate"`
	ConversionRate float64 `json:"conversionRate"`
}

type reportResponse struct {
	Totals   *reportTotals `json:"totals"`
	Previous *reportTotals `json:"previous"`
	Daily    []reportDay   `json:"daily"`
}

// FetchAnalytics returns the analytics bundle for the window. An empty report
// (no totals) yields nil without error.
func (c *Client) FetchAnalytics(ctx context.Context, propertyID string, rng insights.DateRange) (*insights.AnalyticsMetrics, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	if propertyID == "" {
		propertyID = c.property
	}
	if propertyID == "" {
		return nil, ErrNoProperty
	}

	endpoint := fmt.Sprintf("%s/v1/properties/%s/report", c.baseURL, url.PathEscape(propertyID))
	q := url.Values{}
	q.Set("start", rng.Start.UTC().Format(dateLayout))
	q.Set("end", rng.End.UTC().Format(dateLayout))

	var report reportResponse
	if err := c.getWithRetry(ctx, endpoint+"?"+q.Encode(), &report); err != nil {
		return nil, err
	}
	if report.Totals == nil {
		return nil, nil
	}

	out := &insights.AnalyticsMetrics{
		AnalyticsTotals: report.Totals.toInsights(),
		Daily:           make([]insights.DailyAnalytics, 0, len(report.Daily)),
	}
	if report.Previous != nil {
		prev := report.Previous.toInsights()
		out.Previous = &prev
	}
	for _, d := range report.Daily {
		out.Daily = append(out.Daily, insights.DailyAnalytics{
			Date:           d.Date,
			Sessions:       d.Sessions,
			Users:          d.Users,
			BounceRate:     d.BounceRate,
			ConversionRate: d.ConversionRate,
		})
	}
	return out, nil
}

func (c *Client) getWithRetry(ctx context.Context, target string, dest interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = c.get(ctx, target, dest)
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
		log.Debug().Err(lastErr).Int("attempt", attempt+1).Msg("analytics request failed")
	}
	return lastErr
}

func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= http.StatusInternalServerError
	}
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, ErrBadReport) || errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

func (c *Client) get(ctx context.Context, target string, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", ErrBadReport, err)
	}
	return nil
}
