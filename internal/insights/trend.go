package insights

import (
	"math"
	"time"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"

	// DefaultTrendDays is the lookback window of the trend series.
	DefaultTrendDays = 30
)

// BuildTrends produces one row per day of the window ending at end, oldest first.
// Values are looked up by exact date (analytics) or month (automation); missing
// entries are 0 and never interpolated.
func BuildTrends(daily []DailyAnalytics, monthly []MonthlyAutomation, end time.Time, days int) []BusinessTrend {
	if days <= 0 {
		days = DefaultTrendDays
	}

	byDay := make(map[string]DailyAnalytics, len(daily))
	for _, d := range daily {
		byDay[d.Date] = d
	}
	byMonth := make(map[string]float64, len(monthly))
	for _, m := range monthly {
		byMonth[m.Month] = m.SuccessRate
	}

	end = end.UTC()
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	trends := make([]BusinessTrend, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := last.AddDate(0, 0, -i)
		key := day.Format(dayLayout)

		row := BusinessTrend{Date: key}
		if d, ok := byDay[key]; ok {
			row.Traffic = finite(d.Sessions)
			row.Engagement = finite(d.BounceRate)
			row.Conversion = finite(d.ConversionRate)
		}
		row.Automation = finite(byMonth[day.Format(monthLayout)])
		row.OverallHealth = chartHealth(row)

		trends = append(trends, row)
	}
	return trends
}

// chartHealth is a single-number rollup for charting only. HealthScore is the
// authoritative composite.
func chartHealth(row BusinessTrend) int {
	traffic := row.Traffic / 1000
	engagement := (100 - row.Engagement) / 100
	mean := (traffic + engagement + row.Conversion + row.Automation) / 4
	return clampScore(int(math.Round(finite(mean))))
}
