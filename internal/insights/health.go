package insights

import "math"

// NeutralScore is assigned to every sub-score whose source bundle is absent.
const NeutralScore = 50

// HealthFloor is the sub-score below which a category gets a recommendation.
const HealthFloor = 60

var (
	trafficBands = Bands{
		Steps: []Band{{Min: 10000, Score: 90}, {Min: 5000, Score: 75}, {Min: 1000, Score: 60}},
		Floor: 40,
	}

	// bounce rate (%) and average session duration (seconds)
	engagementBands = JointBands{
		Steps: []JointBand{
			{Match: func(bounce, dur float64) bool { return bounce < 40 && dur > 180 }, Score: 90},
			{Match: func(bounce, dur float64) bool { return bounce < 55 && dur > 120 }, Score: 75},
			{Match: func(bounce, _ float64) bool { return bounce < 70 }, Score: 60},
		},
		Floor: 40,
	}

	conversionBands = Bands{
		Steps: []Band{{Min: 5, Score: 90}, {Min: 3, Score: 75}, {Min: 1, Score: 60}},
		Floor: 40,
	}

	// success rate (%) and hours saved
	automationBands = JointBands{
		Steps: []JointBand{
			{Match: func(rate, hours float64) bool { return rate > 95 && hours > 100 }, Score: 90},
			{Match: func(rate, hours float64) bool { return rate > 90 && hours > 50 }, Score: 75},
			{Match: func(rate, _ float64) bool { return rate > 80 }, Score: 60},
		},
		Floor: 40,
	}
)

var categoryAdvice = []struct {
	category string
	message  string
	score    func(HealthCategories) int
}{
	{CategoryTraffic, "Increase traffic through SEO, content marketing and paid acquisition channels",
		func(c HealthCategories) int { return c.Traffic }},
	{CategoryEngagement, "Improve engagement by reducing bounce rate and making landing pages more relevant",
		func(c HealthCategories) int { return c.Engagement }},
	{CategoryConversion, "Optimize the conversion funnel with clearer calls to action and fewer checkout steps",
		func(c HealthCategories) int { return c.Conversion }},
	{CategoryAutomation, "Review failing workflows and automate more repetitive processes",
		func(c HealthCategories) int { return c.Automation }},
}

const generalAdvice = "Overall business health needs attention: prioritize the lowest scoring categories first"

// CalculateHealthScore maps the two optional bundles into the composite score.
func CalculateHealthScore(analytics *AnalyticsMetrics, automation *AutomationMetrics) HealthScore {
	c := HealthCategories{
		Traffic:    NeutralScore,
		Engagement: NeutralScore,
		Conversion: NeutralScore,
		Automation: NeutralScore,
	}

	if analytics != nil {
		c.Traffic = trafficBands.Score(finite(analytics.Sessions))
		c.Engagement = engagementBands.Score(finite(analytics.BounceRate), finite(analytics.AvgSessionDuration))
		c.Conversion = conversionBands.Score(finite(analytics.ConversionRate))
	}
	if automation != nil {
		c.Automation = automationBands.Score(finite(automation.SuccessRate), finite(automation.TimeSavedHours))
	}

	overall := clampScore(int(math.Round(float64(c.Traffic+c.Engagement+c.Conversion+c.Automation) / 4)))

	return HealthScore{
		Overall:         overall,
		Categories:      c,
		Trend:           healthTrend(overall),
		Recommendations: healthAdvice(c, overall),
	}
}

func healthTrend(overall int) string {
	switch {
	case overall > 75:
		return TrendImproving
	case overall < 50:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func healthAdvice(c HealthCategories, overall int) []string {
	advice := []string{}
	for _, a := range categoryAdvice {
		if a.score(c) < HealthFloor {
			advice = append(advice, a.message)
		}
	}
	if overall < HealthFloor {
		advice = append(advice, generalAdvice)
	}
	return advice
}
