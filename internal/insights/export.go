package insights

import (
	"encoding/csv"
	"io"
	"strconv"
)

// KPIExportHeader is the column layout of the tabular KPI export.
var KPIExportHeader = []string{"Metric", "Value", "Unit", "Change", "Change %", "Status"}

// ExportKPIsCSV writes one CSV row per KPI of the overview. It never recomputes.
func ExportKPIsCSV(w io.Writer, overview *BusinessOverview) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(KPIExportHeader); err != nil {
		return err
	}
	if overview != nil {
		for _, kpi := range overview.KPIs {
			if err := cw.Write(KPIRow(kpi)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// KPIRow is the tabular projection of one KPI.
func KPIRow(kpi BusinessKPI) []string {
	return []string{
		kpi.Name,
		formatNumber(kpi.Value),
		kpi.Unit,
		formatNumber(kpi.Change),
		formatNumber(kpi.ChangePercent) + "%",
		kpi.Status,
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
