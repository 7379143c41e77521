package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAlerts_SuccessRateScenario(t *testing.T) {
	alerts := EvaluateAlerts(AggregateWorkflowStatus(scenarioEvents()), baseTime)

	var drop *PerformanceAlert
	for i := range alerts {
		if alerts[i].Type == AlertSuccessRateDrop {
			drop = &alerts[i]
		}
	}
	require.NotNil(t, drop)
	assert.Equal(t, SeverityMedium, drop.Severity)
	assert.Equal(t, 90.0, drop.Threshold)
	assert.Equal(t, 80.0, drop.CurrentValue)
	assert.Equal(t, baseTime, drop.TriggeredAt)
	assert.False(t, drop.Resolved)
}

func TestEvaluateAlerts_Severities(t *testing.T) {
	tests := []struct {
		name     string
		status   WorkflowStatus
		typ      string
		severity string
	}{
		{"critical success rate", WorkflowStatus{WorkflowID: "a", TotalExecutions: 10, SuccessRate: 60}, AlertSuccessRateDrop, SeverityCritical},
		{"high success rate", WorkflowStatus{WorkflowID: "a", TotalExecutions: 10, SuccessRate: 75}, AlertSuccessRateDrop, SeverityHigh},
		{"slow", WorkflowStatus{WorkflowID: "a", TotalExecutions: 1, SuccessRate: 100, AverageExecutionTime: 15000}, AlertExecutionTimeIncrease, SeverityMedium},
		{"very slow", WorkflowStatus{WorkflowID: "a", TotalExecutions: 1, SuccessRate: 100, AverageExecutionTime: 31000}, AlertExecutionTimeIncrease, SeverityCritical},
		{"failures", WorkflowStatus{WorkflowID: "a", TotalExecutions: 100, SuccessRate: 94, FailedExecutions: 6}, AlertFailureSpike, SeverityHigh},
		{"failure storm", WorkflowStatus{WorkflowID: "a", TotalExecutions: 100, SuccessRate: 91, FailedExecutions: 11}, AlertFailureSpike, SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := EvaluateAlerts(map[string]WorkflowStatus{"a": tt.status}, baseTime)
			require.Len(t, alerts, 1)
			assert.Equal(t, tt.typ, alerts[0].Type)
			assert.Equal(t, tt.severity, alerts[0].Severity)
		})
	}
}

func TestEvaluateAlerts_Healthy(t *testing.T) {
	statuses := map[string]WorkflowStatus{
		"ok":    {WorkflowID: "ok", TotalExecutions: 20, SuccessRate: 99, AverageExecutionTime: 500},
		"empty": {WorkflowID: "empty"},
	}
	assert.Empty(t, EvaluateAlerts(statuses, baseTime))
}

func TestEvaluateAlerts_NotDeduplicated(t *testing.T) {
	statuses := AggregateWorkflowStatus(scenarioEvents())
	first := EvaluateAlerts(statuses, baseTime)
	second := EvaluateAlerts(statuses, baseTime)
	assert.Equal(t, first, second)
}
