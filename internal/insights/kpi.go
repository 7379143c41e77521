package insights

// statusRule classifies a KPI value. Higher-is-better rules use good/warning as
// lower bounds, lower-is-better rules as upper bounds.
type statusRule struct {
	good, warning float64
	lowerIsBetter bool
	inclusiveGood bool
}

func (r statusRule) classify(v float64) string {
	if r.lowerIsBetter {
		switch {
		case v < r.good:
			return KPIGood
		case v < r.warning:
			return KPIWarning
		default:
			return KPICritical
		}
	}
	switch {
	case v > r.good || (r.inclusiveGood && v == r.good):
		return KPIGood
	case v > r.warning:
		return KPIWarning
	default:
		return KPICritical
	}
}

var (
	sessionsRule       = statusRule{good: 5000, warning: 1000}
	usersRule          = statusRule{good: 3000, warning: 500}
	bounceRule         = statusRule{good: 50, warning: 70, lowerIsBetter: true}
	durationRule       = statusRule{good: 120, warning: 60}
	conversionRule     = statusRule{good: 3, warning: 2, inclusiveGood: true}
	automationRateRule = statusRule{good: 95, warning: 90, inclusiveGood: true}
	timeSavedRule      = statusRule{good: 100, warning: 20}
	healthRule         = statusRule{good: 75, warning: 50, inclusiveGood: true}
)

var (
	bounceTarget     = 50.0
	conversionTarget = 3.0
	automationTarget = 95.0
	healthTarget     = 75.0
)

// SynthesizeKPIs projects the bundles and health score into the KPI catalogue.
// KPIs whose source bundle is absent are omitted, never zero-filled.
func SynthesizeKPIs(analytics *AnalyticsMetrics, automation *AutomationMetrics, health HealthScore) []BusinessKPI {
	kpis := []BusinessKPI{}

	if analytics != nil {
		prev := analytics.Previous
		pick := func(f func(AnalyticsTotals) float64) *float64 {
			if prev == nil {
				return nil
			}
			v := f(*prev)
			return &v
		}

		kpis = append(kpis,
			newKPI("sessions", "Sessions", analytics.Sessions, "sessions", CategoryTraffic,
				pick(func(t AnalyticsTotals) float64 { return t.Sessions }), sessionsRule, nil),
			newKPI("users", "Users", analytics.Users, "users", CategoryTraffic,
				pick(func(t AnalyticsTotals) float64 { return t.Users }), usersRule, nil),
			newKPI("bounce_rate", "Bounce Rate", analytics.BounceRate, "%", CategoryEngagement,
				pick(func(t AnalyticsTotals) float64 { return t.BounceRate }), bounceRule, &bounceTarget),
			newKPI("session_duration", "Avg. Session Duration", analytics.AvgSessionDuration, "seconds", CategoryEngagement,
				pick(func(t AnalyticsTotals) float64 { return t.AvgSessionDuration }), durationRule, nil),
			newKPI("conversion_rate", "Conversion Rate", analytics.ConversionRate, "%", CategoryConversion,
				pick(func(t AnalyticsTotals) float64 { return t.ConversionRate }), conversionRule, &conversionTarget),
		)
	}

	if automation != nil {
		var prevRate, prevHours *float64
		if automation.Previous != nil {
			r, h := automation.Previous.SuccessRate, automation.Previous.TimeSavedHours
			prevRate, prevHours = &r, &h
		}
		kpis = append(kpis,
			newKPI("automation_success_rate", "Automation Success Rate", automation.SuccessRate, "%", CategoryAutomation,
				prevRate, automationRateRule, &automationTarget),
			newKPI("time_saved", "Time Saved", automation.TimeSavedHours, "hours", CategoryAutomation,
				prevHours, timeSavedRule, nil),
		)
	}

	kpis = append(kpis, newKPI("health_score", "Business Health Score", float64(health.Overall), "points", CategoryOverall,
		nil, healthRule, &healthTarget))

	return kpis
}

func newKPI(id, name string, value float64, unit, category string, previous *float64, rule statusRule, target *float64) BusinessKPI {
	value = finite(value)
	kpi := BusinessKPI{
		ID:       id,
		Name:     name,
		Value:    round2(value),
		Unit:     unit,
		Trend:    DirectionStable,
		Category: category,
		Status:   rule.classify(value),
	}
	if target != nil {
		t := *target
		kpi.Target = &t
	}
	if previous != nil {
		prev := finite(*previous)
		kpi.Change = round2(value - prev)
		kpi.ChangePercent = round2(safeDiv(value-prev, prev) * 100)
	}
	switch {
	case kpi.Change > 0:
		kpi.Trend = DirectionUp
	case kpi.Change < 0:
		kpi.Trend = DirectionDown
	}
	return kpi
}
