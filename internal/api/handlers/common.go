package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linkflow-ai/insights/internal/api/dto"
	"github.com/linkflow-ai/insights/internal/pkg/validator"
)

// rangeParser resolves the integration and date range of a request.
type rangeParser struct {
	defaultRange time.Duration
	now          func() time.Time
}

func newRangeParser(defaultRange time.Duration) rangeParser {
	if defaultRange <= 0 {
		defaultRange = 30 * 24 * time.Hour
	}
	return rangeParser{defaultRange: defaultRange, now: time.Now}
}

// parse writes the error response itself and reports whether to continue.
func (p rangeParser) parse(w http.ResponseWriter, r *http.Request) (dto.RangeQuery, bool) {
	query, err := dto.ParseRangeQuery(r, chi.URLParam(r, "integrationID"), p.defaultRange, p.now())
	if err != nil {
		if errors.Is(err, dto.ErrInvalidInput) {
			dto.BadRequest(w, err.Error())
		} else {
			dto.ValidationErrorResponse(w, err)
		}
		return dto.RangeQuery{}, false
	}
	return query, true
}

// integrationID validates the path id for routes that take no range.
func integrationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "integrationID")
	if err := validator.ValidateVar(id, "required,identifier"); err != nil {
		dto.BadRequest(w, "invalid integration id")
		return "", false
	}
	return id, true
}
