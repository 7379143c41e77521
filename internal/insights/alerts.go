package insights

import (
	"fmt"
	"sort"
	"time"
)

const (
	SuccessRateThreshold      = 90.0
	SuccessRateCritical       = 70.0
	SuccessRateHigh           = 80.0
	ExecutionTimeThresholdMs  = 10000.0
	ExecutionTimeHighMs       = 20000.0
	ExecutionTimeCriticalMs   = 30000.0
	FailureSpikeThreshold     = 5
	FailureSpikeCriticalLimit = 10
)

// EvaluateAlerts applies the fixed performance thresholds to every status.
// Alerts are recomputed on each call and are never deduplicated.
func EvaluateAlerts(statuses map[string]WorkflowStatus, now time.Time) []PerformanceAlert {
	alerts := []PerformanceAlert{}

	for _, s := range SortedStatuses(statuses) {
		if s.TotalExecutions > 0 && s.SuccessRate < SuccessRateThreshold {
			severity := SeverityMedium
			switch {
			case s.SuccessRate < SuccessRateCritical:
				severity = SeverityCritical
			case s.SuccessRate < SuccessRateHigh:
				severity = SeverityHigh
			}
			alerts = append(alerts, newAlert(s, AlertSuccessRateDrop, severity,
				fmt.Sprintf("Success rate for %s dropped to %.1f%%", displayName(s), s.SuccessRate),
				SuccessRateThreshold, round2(s.SuccessRate), now))
		}

		if s.AverageExecutionTime > ExecutionTimeThresholdMs {
			severity := SeverityMedium
			switch {
			case s.AverageExecutionTime > ExecutionTimeCriticalMs:
				severity = SeverityCritical
			case s.AverageExecutionTime > ExecutionTimeHighMs:
				severity = SeverityHigh
			}
			alerts = append(alerts, newAlert(s, AlertExecutionTimeIncrease, severity,
				fmt.Sprintf("Average execution time for %s is %.1fs", displayName(s), s.AverageExecutionTime/1000),
				ExecutionTimeThresholdMs, round2(s.AverageExecutionTime), now))
		}

		if s.FailedExecutions > FailureSpikeThreshold {
			severity := SeverityHigh
			if s.FailedExecutions > FailureSpikeCriticalLimit {
				severity = SeverityCritical
			}
			alerts = append(alerts, newAlert(s, AlertFailureSpike, severity,
				fmt.Sprintf("%s failed %d times", displayName(s), s.FailedExecutions),
				FailureSpikeThreshold, float64(s.FailedExecutions), now))
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank(alerts[i].Severity) > severityRank(alerts[j].Severity)
	})
	return alerts
}

func newAlert(s WorkflowStatus, alertType, severity, message string, threshold, value float64, now time.Time) PerformanceAlert {
	return PerformanceAlert{
		ID:           s.WorkflowID + ":" + alertType,
		WorkflowID:   s.WorkflowID,
		WorkflowName: s.WorkflowName,
		Type:         alertType,
		Severity:     severity,
		Message:      message,
		Threshold:    threshold,
		CurrentValue: value,
		TriggeredAt:  now,
	}
}

func displayName(s WorkflowStatus) string {
	if s.WorkflowName != "" {
		return s.WorkflowName
	}
	return s.WorkflowID
}

func severityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}
