package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kpiByID(kpis []BusinessKPI, id string) (BusinessKPI, bool) {
	for _, k := range kpis {
		if k.ID == id {
			return k, true
		}
	}
	return BusinessKPI{}, false
}

func TestSynthesizeKPIs_AllSources(t *testing.T) {
	analytics := &AnalyticsMetrics{
		AnalyticsTotals: AnalyticsTotals{Sessions: 6000, Users: 4000, BounceRate: 45, AvgSessionDuration: 150, ConversionRate: 2.5},
		Previous:        &AnalyticsTotals{Sessions: 5000, Users: 4000, BounceRate: 50, AvgSessionDuration: 150, ConversionRate: 2},
	}
	automation := &AutomationMetrics{SuccessRate: 92, TimeSavedHours: 40}
	health := CalculateHealthScore(analytics, automation)

	kpis := SynthesizeKPIs(analytics, automation, health)
	require.Len(t, kpis, 8)

	sessions, _ := kpiByID(kpis, "sessions")
	assert.Equal(t, 1000.0, sessions.Change)
	assert.Equal(t, 20.0, sessions.ChangePercent)
	assert.Equal(t, DirectionUp, sessions.Trend)
	assert.Equal(t, KPIGood, sessions.Status)

	bounce, _ := kpiByID(kpis, "bounce_rate")
	assert.Equal(t, DirectionDown, bounce.Trend)
	assert.Equal(t, KPIGood, bounce.Status)
	require.NotNil(t, bounce.Target)
	assert.Equal(t, 50.0, *bounce.Target)

	users, _ := kpiByID(kpis, "users")
	assert.Equal(t, DirectionStable, users.Trend)

	conversion, _ := kpiByID(kpis, "conversion_rate")
	assert.Equal(t, KPIWarning, conversion.Status)

	rate, _ := kpiByID(kpis, "automation_success_rate")
	assert.Equal(t, KPIWarning, rate.Status)
	assert.Equal(t, 0.0, rate.Change)
}

func TestSynthesizeKPIs_OmitsAbsentSources(t *testing.T) {
	kpis := SynthesizeKPIs(nil, nil, CalculateHealthScore(nil, nil))
	require.Len(t, kpis, 1)
	assert.Equal(t, "health_score", kpis[0].ID)
	assert.Equal(t, KPICritical, kpis[0].Status)

	kpis = SynthesizeKPIs(nil, &AutomationMetrics{SuccessRate: 99, TimeSavedHours: 150}, CalculateHealthScore(nil, nil))
	require.Len(t, kpis, 3)
	_, ok := kpiByID(kpis, "sessions")
	assert.False(t, ok)
}

func TestSynthesizeKPIs_HealthStatus(t *testing.T) {
	tests := []struct {
		overall int
		want    string
	}{
		{90, KPIGood},
		{75, KPIGood},
		{74, KPIWarning},
		{51, KPIWarning},
		{50, KPICritical},
		{10, KPICritical},
	}
	for _, tt := range tests {
		kpis := SynthesizeKPIs(nil, nil, HealthScore{Overall: tt.overall})
		assert.Equal(t, tt.want, kpis[0].Status, "overall=%d", tt.overall)
	}
}

func TestSynthesizeKPIs_ZeroPrevious(t *testing.T) {
	analytics := &AnalyticsMetrics{
		AnalyticsTotals: AnalyticsTotals{Sessions: 100},
		Previous:        &AnalyticsTotals{},
	}
	kpis := SynthesizeKPIs(analytics, nil, HealthScore{})
	sessions, _ := kpiByID(kpis, "sessions")
	assert.Equal(t, 100.0, sessions.Change)
	assert.Equal(t, 0.0, sessions.ChangePercent)
}
