package insights

import "sort"

const (
	DefaultHourlyCost     = 50.0
	DefaultAutomationCost = 100.0
)

// ROIConfig holds the labor and platform cost constants used for ROI.
type ROIConfig struct {
	HourlyCost     float64
	AutomationCost float64
}

func DefaultROIConfig() ROIConfig {
	return ROIConfig{
		HourlyCost:     DefaultHourlyCost,
		AutomationCost: DefaultAutomationCost,
	}
}

// CalculateROI derives one ROI record per workflow, ordered by workflow id.
func CalculateROI(statuses map[string]WorkflowStatus, cfg ROIConfig) []ROIRecord {
	records := make([]ROIRecord, 0, len(statuses))
	for _, s := range statuses {
		records = append(records, roiFor(s, cfg))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].WorkflowID < records[j].WorkflowID })
	return records
}

func roiFor(s WorkflowStatus, cfg ROIConfig) ROIRecord {
	hours := float64(s.TimeSaved) / msPerHour
	savings := finite(hours * cfg.HourlyCost)

	rec := ROIRecord{
		WorkflowID:     s.WorkflowID,
		WorkflowName:   s.WorkflowName,
		TimeSavedHours: round2(hours),
		CostSavings:    round2(savings),
		AutomationCost: cfg.AutomationCost,
	}
	if savings <= 0 {
		return rec
	}

	rec.ROI = round2(safeDiv(savings-cfg.AutomationCost, cfg.AutomationCost) * 100)
	rec.PaybackPeriod = round2(safeDiv(cfg.AutomationCost, savings/12))
	return rec
}
