package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateROI(t *testing.T) {
	statuses := AggregateWorkflowStatus(scenarioEvents())

	records := CalculateROI(statuses, DefaultROIConfig())
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "W", r.WorkflowID)
	assert.Equal(t, 10.0, r.TimeSavedHours)
	assert.Equal(t, 500.0, r.CostSavings)
	assert.Equal(t, 400.0, r.ROI)
	assert.Equal(t, 2.4, r.PaybackPeriod)
}

func TestCalculateROI_NoSavings(t *testing.T) {
	statuses := map[string]WorkflowStatus{
		"idle": {WorkflowID: "idle"},
	}

	r := CalculateROI(statuses, DefaultROIConfig())[0]
	assert.Equal(t, 0.0, r.CostSavings)
	assert.Equal(t, 0.0, r.ROI)
	assert.Equal(t, 0.0, r.PaybackPeriod)
}

func TestCalculateROI_ZeroAutomationCost(t *testing.T) {
	statuses := AggregateWorkflowStatus(scenarioEvents())

	r := CalculateROI(statuses, ROIConfig{HourlyCost: 50, AutomationCost: 0})[0]
	assert.Equal(t, 500.0, r.CostSavings)
	assert.Equal(t, 0.0, r.ROI)
	assert.Equal(t, 0.0, r.PaybackPeriod)
}

func TestCalculateROI_SortedByWorkflow(t *testing.T) {
	statuses := map[string]WorkflowStatus{
		"c": {WorkflowID: "c"},
		"a": {WorkflowID: "a"},
		"b": {WorkflowID: "b"},
	}

	records := CalculateROI(statuses, DefaultROIConfig())
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].WorkflowID)
	assert.Equal(t, "c", records[2].WorkflowID)
}
