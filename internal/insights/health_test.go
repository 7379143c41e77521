package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBands_Score(t *testing.T) {
	tests := []struct {
		value float64
		want  int
	}{
		{20000, 90},
		{10001, 90},
		{10000, 75},
		{5001, 75},
		{5000, 60},
		{1001, 60},
		{1000, 40},
		{0, 40},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, trafficBands.Score(tt.value), "sessions=%v", tt.value)
	}
}

func TestEngagementBands_Joint(t *testing.T) {
	assert.Equal(t, 90, engagementBands.Score(30, 200))
	// low bounce alone is not enough for the top band
	assert.Equal(t, 75, engagementBands.Score(30, 150))
	assert.Equal(t, 60, engagementBands.Score(30, 60))
	assert.Equal(t, 40, engagementBands.Score(80, 300))
}

func TestCalculateHealthScore_BothAbsent(t *testing.T) {
	h := CalculateHealthScore(nil, nil)
	assert.Equal(t, HealthCategories{Traffic: 50, Engagement: 50, Conversion: 50, Automation: 50}, h.Categories)
	assert.Equal(t, 50, h.Overall)
	assert.Equal(t, TrendStable, h.Trend)
	assert.Contains(t, h.Recommendations, generalAdvice)
}

func TestCalculateHealthScore_AnalyticsAbsentScenario(t *testing.T) {
	automation := &AutomationMetrics{SuccessRate: 96, TimeSavedHours: 120}

	h := CalculateHealthScore(nil, automation)
	assert.Equal(t, 90, h.Categories.Automation)
	assert.Equal(t, 50, h.Categories.Traffic)
	assert.Equal(t, 50, h.Categories.Engagement)
	assert.Equal(t, 50, h.Categories.Conversion)
	assert.Equal(t, 60, h.Overall)
	assert.Equal(t, TrendStable, h.Trend)
	assert.Len(t, h.Recommendations, 3)
	assert.NotContains(t, h.Recommendations, generalAdvice)
}

func TestCalculateHealthScore_Strong(t *testing.T) {
	analytics := &AnalyticsMetrics{AnalyticsTotals: AnalyticsTotals{
		Sessions:           12000,
		BounceRate:         35,
		AvgSessionDuration: 240,
		ConversionRate:     6,
	}}
	automation := &AutomationMetrics{SuccessRate: 99, TimeSavedHours: 300}

	h := CalculateHealthScore(analytics, automation)
	assert.Equal(t, 90, h.Overall)
	assert.Equal(t, TrendImproving, h.Trend)
	assert.Empty(t, h.Recommendations)
}

func TestCalculateHealthScore_Weak(t *testing.T) {
	analytics := &AnalyticsMetrics{AnalyticsTotals: AnalyticsTotals{
		Sessions:       200,
		BounceRate:     85,
		ConversionRate: 0.5,
	}}
	automation := &AutomationMetrics{SuccessRate: 50}

	h := CalculateHealthScore(analytics, automation)
	assert.Equal(t, 40, h.Overall)
	assert.Equal(t, TrendDeclining, h.Trend)
	assert.Len(t, h.Recommendations, 5)
}
