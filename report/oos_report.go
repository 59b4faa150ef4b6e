package report

import (
	"bytes"
	"fmt"

	"incarts/exports/models"
)

// BuildOutOfStock lays out the out-of-stock workbook: Summary, daily
// counts, geography breakdown and substitution details, in that order.
func BuildOutOfStock(
	filter models.OutOfStockFilter,
	summary models.OutOfStockSummary,
	daily []models.DailyOutOfStock,
	states []models.StateOutOfStock,
	substitutions []models.SubstitutionDetail,
) (*bytes.Buffer, error) {
	wb, err := NewWorkbook()
	if err != nil {
		return nil, err
	}

	projectLabel := summary.ProjectName
	if projectLabel == "" {
		projectLabel = filter.ProjectID
	}

	meta := []string{
		"Project: " + projectLabel,
		fmt.Sprintf("Period: %s to %s",
			filter.StartDate.Format(models.DateFormat),
			filter.EndDate.Format(models.DateFormat)),
	}
	if filter.LinkName != "" {
		meta = append(meta, "Link Name: "+filter.LinkName)
	}
	if filter.Slug != "" {
		meta = append(meta, "Slug: "+filter.Slug)
	}

	if err := wb.AddSummary(SummarySheet{
		Name:  "Summary",
		Title: "Out of Stock Analytics Summary",
		Meta:  meta,
		Metrics: []Metric{
			{Name: "Out of Stock Count", Value: summary.OutOfStockCount},
			{Name: "States Affected", Value: summary.StatesAffected},
			{Name: "Zip Codes Affected", Value: summary.ZipCodesAffected},
		},
	}); err != nil {
		return nil, err
	}

	if err := wb.AddTable(TableSheet{
		Name:    "Out of Stock by Date",
		Headers: []string{"Date", "Count"},
		Rows:    dailyOutOfStockRows(daily),
	}); err != nil {
		return nil, err
	}

	if err := wb.AddTable(TableSheet{
		Name:    "Out of Stock by State",
		Headers: []string{"State", "City", "Count"},
		Rows:    stateOutOfStockRows(states),
	}); err != nil {
		return nil, err
	}

	if err := wb.AddTable(TableSheet{
		Name:    "Substitution Details",
		Headers: []string{"Date", "Primary Product", "Replacement Product", "Substitution Reason", "Count"},
		Rows:    substitutionRows(substitutions),
	}); err != nil {
		return nil, err
	}

	return wb.Buffer()
}

func dailyOutOfStockRows(daily []models.DailyOutOfStock) [][]any {
	rows := make([][]any, 0, len(daily))
	for _, r := range daily {
		rows = append(rows, []any{r.Date.Format(models.DateFormat), r.Count})
	}
	return rows
}

func stateOutOfStockRows(states []models.StateOutOfStock) [][]any {
	rows := make([][]any, 0, len(states))
	for _, r := range states {
		rows = append(rows, []any{r.State, r.City, r.Count})
	}
	return rows
}

func substitutionRows(substitutions []models.SubstitutionDetail) [][]any {
	rows := make([][]any, 0, len(substitutions))
	for _, r := range substitutions {
		rows = append(rows, []any{
			r.Date.Format(models.DateFormat),
			r.PrimaryProduct,
			r.ReplacementProduct,
			r.Reason,
			r.Count,
		})
	}
	return rows
}
