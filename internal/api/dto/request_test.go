package dto

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func TestParseRangeQueryDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/overview", nil)

	q, err := ParseRangeQuery(r, "shop-1", 7*24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, now, q.End)
	assert.Equal(t, now.Add(-7*24*time.Hour), q.Start)
	assert.Empty(t, q.PropertyID)
}

func TestParseRangeQueryTimestamps(t *testing.T) {
	r := httptest.NewRequest("GET", "/overview?start=2026-10-01T10:00:00%2B02:00&end=2026-10-02&property=GA-1", nil)

	q, err := ParseRangeQuery(r, "shop-1", time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC), q.Start)
	assert.Equal(t, time.Date(2026, 10, 2, 23, 59, 59, 999999999, time.UTC), q.End)
	assert.Equal(t, "GA-1", q.PropertyID)
	assert.Equal(t, q.Start, q.DateRange().Start)
}

func TestParseRangeQueryOnlyEndShiftsWindow(t *testing.T) {
	r := httptest.NewRequest("GET", "/overview?end=2026-09-30T00:00:00Z", nil)

	q, err := ParseRangeQuery(r, "shop-1", 24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 29, 0, 0, 0, 0, time.UTC), q.Start)
}

func TestParseRangeQueryErrors(t *testing.T) {
	r := httptest.NewRequest("GET", "/overview?start=last-week", nil)
	_, err := ParseRangeQuery(r, "shop-1", time.Hour, now)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	r = httptest.NewRequest("GET", "/overview?start=2026-10-05&end=2026-10-01", nil)
	_, err = ParseRangeQuery(r, "shop-1", time.Hour, now)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidInput))

	r = httptest.NewRequest("GET", "/overview?property=has%20space", nil)
	_, err = ParseRangeQuery(r, "shop-1", time.Hour, now)
	assert.Error(t, err)

	r = httptest.NewRequest("GET", "/overview", nil)
	_, err = ParseRangeQuery(r, "", time.Hour, now)
	assert.Error(t, err)
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(0, 20, 41)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, 3, meta.TotalPages)

	assert.Equal(t, 0, NewMeta(1, 20, 0).TotalPages)
}
