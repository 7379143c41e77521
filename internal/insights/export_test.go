package insights

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportKPIsCSV_RowCount(t *testing.T) {
	analytics := &AnalyticsMetrics{AnalyticsTotals: AnalyticsTotals{Sessions: 1234.5, BounceRate: 42, ConversionRate: 3.1}}
	overview := BuildOverview(OverviewInput{Analytics: analytics}, baseTime)

	var buf bytes.Buffer
	require.NoError(t, ExportKPIsCSV(&buf, overview))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(overview.KPIs)+1)
	assert.Equal(t, KPIExportHeader, rows[0])
	assert.Equal(t, []string{"Sessions", "1234.5", "sessions", "0", "0%", KPIWarning}, rows[1])
}

func TestExportKPIsCSV_NilOverview(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportKPIsCSV(&buf, nil))
	assert.Equal(t, "Metric,Value,Unit,Change,Change %,Status\n", buf.String())
}

func TestBuildOverview_Idempotent(t *testing.T) {
	analytics := &AnalyticsMetrics{AnalyticsTotals: AnalyticsTotals{Sessions: 7000, BounceRate: 72, ConversionRate: 1.2}}
	automation := SummarizeAutomation(AggregateWorkflowStatus(scenarioEvents()), scenarioEvents())
	in := OverviewInput{
		Analytics:  analytics,
		Automation: automation,
		DateRange:  DateRange{Start: baseTime.AddDate(0, 0, -30), End: baseTime},
	}

	first := BuildOverview(in, baseTime)
	second := BuildOverview(in, baseTime.Add(time.Minute))

	assert.Equal(t, first.KPIs, second.KPIs)
	assert.Equal(t, first.HealthScore, second.HealthScore)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.Equal(t, first.Trends, second.Trends)
	assert.NotEqual(t, first.LastUpdated, second.LastUpdated)
	assert.NotNil(t, first.Goals)
	assert.NotNil(t, first.CustomMetrics)
}

func TestBuildAutomationExport(t *testing.T) {
	events := scenarioEvents()
	export := BuildAutomationExport(events, DefaultROIConfig(), DateRange{}, baseTime)

	assert.Len(t, export.Workflows, 1)
	assert.Len(t, export.Events, len(events))
	assert.Len(t, export.ROI, 1)
	assert.NotEmpty(t, export.Alerts)
	assert.Equal(t, 10, export.Metrics.TotalExecutions)
	assert.Equal(t, baseTime, export.ExportedAt)
}
