package insights

import "time"

// OverviewInput is everything needed to assemble an overview. Bundles may be nil.
type OverviewInput struct {
	Analytics     *AnalyticsMetrics
	Automation    *AutomationMetrics
	Goals         []BusinessGoal
	CustomMetrics []CustomMetric
	Rules         []Rule
	DateRange     DateRange
	TrendDays     int
}

// BuildOverview runs health, KPI, trend and recommendation derivation in
// dependency order. Identical input yields identical content apart from LastUpdated.
func BuildOverview(in OverviewInput, now time.Time) *BusinessOverview {
	health := CalculateHealthScore(in.Analytics, in.Automation)
	kpis := SynthesizeKPIs(in.Analytics, in.Automation, health)

	var daily []DailyAnalytics
	if in.Analytics != nil {
		daily = in.Analytics.Daily
	}
	var monthly []MonthlyAutomation
	if in.Automation != nil {
		monthly = in.Automation.Monthly
	}
	end := in.DateRange.End
	if end.IsZero() {
		end = now
	}
	trends := BuildTrends(daily, monthly, end, in.TrendDays)

	rules := in.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	recs := GenerateRecommendations(Snapshot{
		Analytics:  in.Analytics,
		Automation: in.Automation,
		Health:     health,
	}, rules)

	goals := in.Goals
	if goals == nil {
		goals = []BusinessGoal{}
	}
	custom := in.CustomMetrics
	if custom == nil {
		custom = []CustomMetric{}
	}

	return &BusinessOverview{
		KPIs:            kpis,
		HealthScore:     health,
		Trends:          trends,
		Goals:           goals,
		Recommendations: recs,
		CustomMetrics:   custom,
		LastUpdated:     now,
		DateRange:       in.DateRange,
	}
}

// BuildAutomationExport assembles the workflow export bundle from raw events.
func BuildAutomationExport(events []ExecutionEvent, cfg ROIConfig, dateRange DateRange, now time.Time) *AutomationExport {
	statuses := AggregateWorkflowStatus(events)
	if events == nil {
		events = []ExecutionEvent{}
	}
	return &AutomationExport{
		Workflows:  SortedStatuses(statuses),
		Metrics:    SummarizeAutomation(statuses, events),
		Events:     events,
		Alerts:     EvaluateAlerts(statuses, now),
		ROI:        CalculateROI(statuses, cfg),
		ExportedAt: now,
		DateRange:  dateRange,
	}
}
