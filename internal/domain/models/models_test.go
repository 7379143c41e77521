package models

import (
	"testing"
	"time"

	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_ScanFormats(t *testing.T) {
	var pg Tags
	require.NoError(t, pg.Scan([]byte(`{seo,"paid ads"}`)))
	assert.Equal(t, Tags{"seo", "paid ads"}, pg)

	var my Tags
	require.NoError(t, my.Scan(`["seo","paid ads"]`))
	assert.Equal(t, Tags{"seo", "paid ads"}, my)

	var none Tags
	require.NoError(t, none.Scan(nil))
	assert.Nil(t, none)
}

func TestJSON_Scan(t *testing.T) {
	var j JSON
	require.NoError(t, j.Scan(`{"a":1}`))
	assert.Equal(t, 1.0, j["a"])
	assert.Error(t, j.Scan(42))
}

func TestGoal_ToInsights(t *testing.T) {
	g := Goal{ID: "g1", Title: "Signups", Target: 200, Current: 50, Status: insights.GoalAtRisk, Deadline: time.Unix(0, 0)}
	got := g.ToInsights()
	assert.Equal(t, 25.0, got.Progress)
	assert.Equal(t, insights.GoalAtRisk, got.Status)

	g.Current = 250
	got = g.ToInsights()
	assert.Equal(t, 100.0, got.Progress)
	assert.Equal(t, insights.GoalCompleted, got.Status)

	g.Target = 0
	assert.Equal(t, 0.0, g.ToInsights().Progress)
}
