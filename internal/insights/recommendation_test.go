package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRecommendations_BounceAndConversion(t *testing.T) {
	analytics := &AnalyticsMetrics{AnalyticsTotals: AnalyticsTotals{
		Sessions:           8000,
		BounceRate:         75,
		AvgSessionDuration: 90,
		ConversionRate:     1.5,
	}}
	automation := &AutomationMetrics{SuccessRate: 97, TimeSavedHours: 200}
	snap := Snapshot{Analytics: analytics, Automation: automation, Health: CalculateHealthScore(analytics, automation)}

	recs := GenerateRecommendations(snap, DefaultRules())
	require.GreaterOrEqual(t, len(recs), 2)
	assert.Equal(t, "reduce-bounce-rate", recs[0].ID)
	assert.Equal(t, "optimize-conversion-funnel", recs[1].ID)
	assert.Equal(t, ImpactHigh, recs[0].Impact)
	assert.Equal(t, ImpactHigh, recs[1].Impact)
}

func TestGenerateRecommendations_AllRulesFire(t *testing.T) {
	analytics := &AnalyticsMetrics{AnalyticsTotals: AnalyticsTotals{BounceRate: 90, ConversionRate: 0.2}}
	automation := &AutomationMetrics{SuccessRate: 50}
	snap := Snapshot{Analytics: analytics, Automation: automation, Health: CalculateHealthScore(analytics, automation)}

	recs := GenerateRecommendations(snap, DefaultRules())
	require.Len(t, recs, 4)
	ids := []string{recs[0].ID, recs[1].ID, recs[2].ID, recs[3].ID}
	assert.Equal(t, []string{
		"reduce-bounce-rate",
		"optimize-conversion-funnel",
		"business-health-review",
		"improve-workflow-reliability",
	}, ids)
}

func TestGenerateRecommendations_AbsentBundles(t *testing.T) {
	snap := Snapshot{Health: CalculateHealthScore(nil, nil)}

	recs := GenerateRecommendations(snap, DefaultRules())
	require.Len(t, recs, 1)
	assert.Equal(t, "business-health-review", recs[0].ID)
}

func TestSortRecommendations(t *testing.T) {
	recs := []Recommendation{
		{ID: "low", Impact: ImpactLow, Priority: 1},
		{ID: "med-2", Impact: ImpactMedium, Priority: 2},
		{ID: "high-3", Impact: ImpactHigh, Priority: 3},
		{ID: "med-1", Impact: ImpactMedium, Priority: 1},
		{ID: "high-1", Impact: ImpactHigh, Priority: 1},
	}
	SortRecommendations(recs)

	var ids []string
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"high-1", "high-3", "med-1", "med-2", "low"}, ids)
}
