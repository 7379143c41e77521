package insights

import (
	"sort"
	"time"
)

const msPerHour = float64(time.Hour / time.Millisecond)

type workflowAccumulator struct {
	status WorkflowStatus
	latest *ExecutionEvent
	named  *ExecutionEvent
}

// statusRank orders statuses for events sharing one CreatedAt. A terminal
// status outranks an in-flight one.
func statusRank(status string) int {
	switch status {
	case StatusFailed:
		return 5
	case StatusCancelled:
		return 4
	case StatusCompleted:
		return 3
	case StatusRunning:
		return 2
	case StatusWaiting:
		return 1
	}
	return 0
}

// supersedes reports whether a is the newer run than b. Equal timestamps fall
// back to status rank, then event id, so the result never depends on input order.
func supersedes(a, b *ExecutionEvent) bool {
	if b == nil {
		return true
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
		return ra > rb
	}
	if a.ID != b.ID {
		return a.ID > b.ID
	}
	return a.Status > b.Status
}

// AggregateWorkflowStatus folds an unordered event list into one status per workflow.
// Last run and current status follow the newest CreatedAt, not stream order.
func AggregateWorkflowStatus(events []ExecutionEvent) map[string]WorkflowStatus {
	groups := make(map[string]*workflowAccumulator)

	for i := range events {
		ev := &events[i]
		acc, ok := groups[ev.WorkflowID]
		if !ok {
			acc = &workflowAccumulator{status: WorkflowStatus{WorkflowID: ev.WorkflowID}}
			groups[ev.WorkflowID] = acc
		}

		s := &acc.status
		s.TotalExecutions++
		switch ev.Status {
		case StatusCompleted:
			s.SuccessfulExecutions++
		case StatusFailed:
			s.FailedExecutions++
		}
		s.TimeSaved += ev.DurationMs
		if supersedes(ev, acc.latest) {
			acc.latest = ev
		}
		if ev.WorkflowName != "" && supersedes(ev, acc.named) {
			acc.named = ev
		}
	}

	statuses := make(map[string]WorkflowStatus, len(groups))
	for id, acc := range groups {
		s := acc.status
		total := float64(s.TotalExecutions)
		s.SuccessRate = safeDiv(float64(s.SuccessfulExecutions)*100, total)
		s.AverageExecutionTime = safeDiv(float64(s.TimeSaved), total)
		s.LastRun = acc.latest.CreatedAt
		s.Status = acc.latest.Status
		if acc.named != nil {
			s.WorkflowName = acc.named.WorkflowName
		}
		statuses[id] = s
	}
	return statuses
}

// SortedStatuses returns the statuses ordered by workflow id.
func SortedStatuses(statuses map[string]WorkflowStatus) []WorkflowStatus {
	out := make([]WorkflowStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkflowID < out[j].WorkflowID })
	return out
}

// SummarizeAutomation rolls per-workflow statuses into the automation bundle.
// The monthly series is keyed on the event creation month.
func SummarizeAutomation(statuses map[string]WorkflowStatus, events []ExecutionEvent) *AutomationMetrics {
	m := &AutomationMetrics{Monthly: []MonthlyAutomation{}}

	for _, s := range statuses {
		m.TotalExecutions += s.TotalExecutions
		m.SuccessfulExecutions += s.SuccessfulExecutions
		m.FailedExecutions += s.FailedExecutions
		m.TimeSavedMs += s.TimeSaved
		if s.Status != StatusCancelled && s.TotalExecutions > 0 {
			m.ActiveWorkflows++
		}
	}

	total := float64(m.TotalExecutions)
	m.SuccessRate = round2(safeDiv(float64(m.SuccessfulExecutions)*100, total))
	m.AverageExecutionTime = safeDiv(float64(m.TimeSavedMs), total)
	m.TimeSavedHours = round2(float64(m.TimeSavedMs) / msPerHour)

	type monthCount struct{ total, ok int }
	months := make(map[string]*monthCount)
	for _, ev := range events {
		key := ev.CreatedAt.UTC().Format(monthLayout)
		mc, ok := months[key]
		if !ok {
			mc = &monthCount{}
			months[key] = mc
		}
		mc.total++
		if ev.Status == StatusCompleted {
			mc.ok++
		}
	}
	for month, mc := range months {
		m.Monthly = append(m.Monthly, MonthlyAutomation{
			Month:       month,
			Executions:  mc.total,
			SuccessRate: round2(safeDiv(float64(mc.ok)*100, float64(mc.total))),
		})
	}
	sort.Slice(m.Monthly, func(i, j int) bool { return m.Monthly[i].Month < m.Monthly[j].Month })

	return m
}
