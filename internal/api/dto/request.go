package dto

import (
	"fmt"
	"net/http"
	"time"

	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/linkflow-ai/insights/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

// RangeQuery is the validated scope of every read endpoint.
type RangeQuery struct {
	IntegrationID string    `validate:"required,identifier"`
	PropertyID    string    `validate:"omitempty,identifier"`
	Start         time.Time `validate:"required"`
	End           time.Time `validate:"required,gtefield=Start"`
}

func (q RangeQuery) DateRange() insights.DateRange {
	return insights.DateRange{Start: q.Start, End: q.End}
}

// ParseRangeQuery reads start, end and property from the query string. Missing
// bounds default to the window of length fallback ending at now. Dates may be
// RFC 3339 timestamps or plain days; a plain end day covers the whole day.
func ParseRangeQuery(r *http.Request, integrationID string, fallback time.Duration, now time.Time) (RangeQuery, error) {
	q := r.URL.Query()
	now = now.UTC()

	end := now
	if raw := q.Get("end"); raw != "" {
		t, err := parseBound(raw, true)
		if err != nil {
			return RangeQuery{}, fmt.Errorf("%w: end: %v", ErrInvalidInput, err)
		}
		end = t
	}

	start := end.Add(-fallback)
	if raw := q.Get("start"); raw != "" {
		t, err := parseBound(raw, false)
		if err != nil {
			return RangeQuery{}, fmt.Errorf("%w: start: %v", ErrInvalidInput, err)
		}
		start = t
	}

	query := RangeQuery{
		IntegrationID: integrationID,
		PropertyID:    q.Get("property"),
		Start:         start,
		End:           end,
	}
	if err := validator.Validate(&query); err != nil {
		return RangeQuery{}, err
	}
	return query, nil
}

func parseBound(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 or YYYY-MM-DD, got %q", raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// Execution events
type IngestEventsRequest struct {
	Events []insights.ExecutionEvent `json:"events" validate:"required,min=1,max=5000"`
}

// Goals
type CreateGoalRequest struct {
	Title    string    `json:"title" validate:"required,min=1,max=200"`
	Target   float64   `json:"target" validate:"gt=0"`
	Current  float64   `json:"current" validate:"gte=0"`
	Unit     string    `json:"unit" validate:"max=32"`
	Deadline time.Time `json:"deadline" validate:"required"`
	Category string    `json:"category" validate:"omitempty,oneof=traffic engagement conversion automation overall"`
}

// Custom metrics
type CreateMetricRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Value       float64  `json:"value"`
	Unit        string   `json:"unit" validate:"max=32"`
	Description string   `json:"description" validate:"max=500"`
	Tags        []string `json:"tags" validate:"max=20,dive,min=1,max=50"`
}
