package insights

import "time"

// Execution event types
const (
	EventStarted   = "started"
	EventCompleted = "completed"
	EventFailed    = "failed"
	EventCancelled = "cancelled"
)

// Execution statuses
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusRunning   = "running"
	StatusWaiting   = "waiting"
)

// ExecutionEvent is one workflow run transition as recorded by the workflow platform.
type ExecutionEvent struct {
	ID           string                 `json:"id"`
	WorkflowID   string                 `json:"workflowId"`
	WorkflowName string                 `json:"workflowName"`
	ExecutionID  string                 `json:"executionId"`
	EventType    string                 `json:"eventType"`
	Status       string                 `json:"status"`
	StartedAt    *time.Time             `json:"startedAt,omitempty"`
	FinishedAt   *time.Time             `json:"finishedAt,omitempty"`
	DurationMs   int64                  `json:"duration"`
	InputData    map[string]interface{} `json:"inputData,omitempty"`
	OutputData   map[string]interface{} `json:"outputData,omitempty"`
	ErrorData    map[string]interface{} `json:"errorData,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// WorkflowStatus is derived from the full event set of one workflow.
type WorkflowStatus struct {
	WorkflowID           string    `json:"workflowId"`
	WorkflowName         string    `json:"workflowName"`
	Status               string    `json:"status"`
	TotalExecutions      int       `json:"totalExecutions"`
	SuccessfulExecutions int       `json:"successfulExecutions"`
	FailedExecutions     int       `json:"failedExecutions"`
	SuccessRate          float64   `json:"successRate"`
	AverageExecutionTime float64   `json:"averageExecutionTime"`
	TimeSaved            int64     `json:"timeSaved"`
	LastRun              time.Time `json:"lastRun"`
}

// ROIRecord is the cost return of a single workflow.
type ROIRecord struct {
	WorkflowID     string  `json:"workflowId"`
	WorkflowName   string  `json:"workflowName"`
	TimeSavedHours float64 `json:"timeSavedHours"`
	CostSavings    float64 `json:"costSavings"`
	AutomationCost float64 `json:"automationCost"`
	ROI            float64 `json:"roi"`
	PaybackPeriod  float64 `json:"paybackPeriod"`
}

// Alert types
const (
	AlertSuccessRateDrop       = "success_rate_drop"
	AlertExecutionTimeIncrease = "execution_time_increase"
	AlertFailureSpike          = "failure_spike"
)

// Severity levels
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

type PerformanceAlert struct {
	ID           string    `json:"id"`
	WorkflowID   string    `json:"workflowId"`
	WorkflowName string    `json:"workflowName"`
	Type         string    `json:"type"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message"`
	Threshold    float64   `json:"threshold"`
	CurrentValue float64   `json:"currentValue"`
	TriggeredAt  time.Time `json:"triggeredAt"`
	Resolved     bool      `json:"resolved"`
}

// AnalyticsTotals holds the aggregate web-analytics values of one period.
type AnalyticsTotals struct {
	Sessions           float64 `json:"sessions"`
	Users              float64 `json:"users"`
	PageViews          float64 `json:"pageViews"`
	BounceRate         float64 `json:"bounceRate"`
	AvgSessionDuration float64 `json:"avgSessionDuration"`
	ConversionRate     float64 `json:"conversionRate"`
	Conversions        float64 `json:"conversions"`
}

// DailyAnalytics is one day of the analytics series. Date is YYYY-MM-DD.
type DailyAnalytics struct {
	Date           string  `json:"date"`
	Sessions       float64 `json:"sessions"`
	Users          float64 `json:"users"`
	BounceRate     float64 `json:"bounceRate"`
	ConversionRate float64 `json:"conversionRate"`
}

// AnalyticsMetrics is the analytics bundle. A nil pointer means the source was unavailable.
type AnalyticsMetrics struct {
	AnalyticsTotals
	Previous *AnalyticsTotals `json:"previous,omitempty"`
	Daily    []DailyAnalytics `json:"daily"`
}

// MonthlyAutomation is one month of the automation series. Month is YYYY-MM.
type MonthlyAutomation struct {
	Month       string  `json:"month"`
	Executions  int     `json:"executions"`
	SuccessRate float64 `json:"successRate"`
}

// AutomationMetrics is the automation bundle. A nil pointer means the source was unavailable.
type AutomationMetrics struct {
	TotalExecutions      int                 `json:"totalExecutions"`
	SuccessfulExecutions int                 `json:"successfulExecutions"`
	FailedExecutions     int                 `json:"failedExecutions"`
	SuccessRate          float64             `json:"successRate"`
	AverageExecutionTime float64             `json:"averageExecutionTime"`
	TimeSavedMs          int64               `json:"timeSavedMs"`
	TimeSavedHours       float64             `json:"timeSavedHours"`
	ActiveWorkflows      int                 `json:"activeWorkflows"`
	Monthly              []MonthlyAutomation `json:"monthly"`
	Previous             *AutomationPeriod   `json:"previous,omitempty"`
}

// AutomationPeriod carries comparison values for automation KPIs.
type AutomationPeriod struct {
	SuccessRate    float64 `json:"successRate"`
	TimeSavedHours float64 `json:"timeSavedHours"`
}

// Health trends
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

type HealthCategories struct {
	Traffic    int `json:"traffic"`
	Engagement int `json:"engagement"`
	Conversion int `json:"conversion"`
	Automation int `json:"automation"`
}

type HealthScore struct {
	Overall         int              `json:"overall"`
	Categories      HealthCategories `json:"categories"`
	Trend           string           `json:"trend"`
	Recommendations []string         `json:"recommendations"`
}

// KPI statuses and directions
const (
	KPIGood     = "good"
	KPIWarning  = "warning"
	KPICritical = "critical"

	DirectionUp     = "up"
	DirectionDown   = "down"
	DirectionStable = "stable"
)

// KPI categories
const (
	CategoryTraffic    = "traffic"
	CategoryEngagement = "engagement"
	CategoryConversion = "conversion"
	CategoryAutomation = "automation"
	CategoryOverall    = "overall"
)

type BusinessKPI struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Value         float64  `json:"value"`
	Unit          string   `json:"unit"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"changePercent"`
	Trend         string   `json:"trend"`
	Category      string   `json:"category"`
	Status        string   `json:"status"`
	Target        *float64 `json:"target,omitempty"`
}

type BusinessTrend struct {
	Date          string  `json:"date"`
	Traffic       float64 `json:"traffic"`
	Engagement    float64 `json:"engagement"`
	Conversion    float64 `json:"conversion"`
	Automation    float64 `json:"automation"`
	OverallHealth int     `json:"overallHealth"`
}

// Goal statuses
const (
	GoalOnTrack   = "on-track"
	GoalAtRisk    = "at-risk"
	GoalBehind    = "behind"
	GoalCompleted = "completed"
)

type BusinessGoal struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Target   float64   `json:"target"`
	Current  float64   `json:"current"`
	Unit     string    `json:"unit"`
	Deadline time.Time `json:"deadline"`
	Progress float64   `json:"progress"`
	Status   string    `json:"status"`
	Category string    `json:"category"`
}

type CustomMetric struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Value       float64  `json:"value"`
	Unit        string   `json:"unit"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Impact levels
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

type Recommendation struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Category    string `json:"category"`
	Priority    int    `json:"priority"`
	Actionable  bool   `json:"actionable"`
	Effort      string `json:"estimatedEffort"`
}

// DateRange is an inclusive calendar range.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BusinessOverview is the aggregate root rebuilt on every request.
type BusinessOverview struct {
	KPIs            []BusinessKPI    `json:"kpis"`
	HealthScore     HealthScore      `json:"healthScore"`
	Trends          []BusinessTrend  `json:"trends"`
	Goals           []BusinessGoal   `json:"goals"`
	Recommendations []Recommendation `json:"recommendations"`
	CustomMetrics   []CustomMetric   `json:"customMetrics"`
	LastUpdated     time.Time        `json:"lastUpdated"`
	DateRange       DateRange        `json:"dateRange"`
}

// AutomationExport is the workflow export bundle.
type AutomationExport struct {
	Workflows  []WorkflowStatus   `json:"workflows"`
	Metrics    *AutomationMetrics `json:"metrics"`
	Events     []ExecutionEvent   `json:"events"`
	Alerts     []PerformanceAlert `json:"alerts"`
	ROI        []ROIRecord        `json:"roi"`
	ExportedAt time.Time          `json:"exportedAt"`
	DateRange  DateRange          `json:"dateRange"`
}
