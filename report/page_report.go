package report

import (
	"bytes"
	"fmt"

	"incarts/exports/models"
)

// PageAnalyticsData bundles every query result of a page-analytics export.
type PageAnalyticsData struct {
	Summary     models.PageAnalyticsSummary
	Daily       []models.DailyPageMetrics
	Pages       []models.PagePerformance
	Traffic     []models.TrafficSource
	Geographic  []models.GeoDistribution
	Devices     []models.DeviceMetrics
	ClickDetail []models.ClickDetail
}

// BuildPageAnalytics lays out the page-analytics workbook. The Click
// Details sheet is appended only when its query returned rows; every other
// sheet is always present, header-only when empty.
func BuildPageAnalytics(filter models.PageAnalyticsFilter, data PageAnalyticsData) (*bytes.Buffer, error) {
	wb, err := NewWorkbook()
	if err != nil {
		return nil, err
	}

	projectLabel := filter.ProjectID
	if projectLabel == "" {
		projectLabel = "All Projects"
	}

	meta := []string{
		"Project: " + projectLabel,
		fmt.Sprintf("Period: %s to %s",
			filter.StartDate.Format(models.DateFormat),
			filter.EndDate.Format(models.DateFormat)),
	}
	if filter.PageSlug != "" {
		meta = append(meta, "Page Slug: "+filter.PageSlug)
	}
	if filter.Source != "" {
		meta = append(meta, "Source: "+filter.Source)
	}
	if filter.Medium != "" {
		meta = append(meta, "Medium: "+filter.Medium)
	}

	if err := wb.AddSummary(SummarySheet{
		Name:  "Summary",
		Title: "Page Analytics Summary Report",
		Meta:  meta,
		Metrics: []Metric{
			{Name: "Total Pages", Value: data.Summary.TotalPages},
			{Name: "Total Projects", Value: data.Summary.TotalProjects},
			{Name: "Total Page Views", Value: data.Summary.TotalPageViews},
			{Name: "Total Users", Value: data.Summary.TotalUsers},
			{Name: "Total Sessions", Value: data.Summary.TotalSessions},
			{Name: "Total Clicks", Value: data.Summary.TotalClicks},
			{Name: "Average Session Duration (seconds)", Value: data.Summary.AvgSessionDuration},
			{Name: "Average Bounce Rate (%)", Value: data.Summary.AvgBounceRate},
			{Name: "Overall CTR (%)", Value: data.Summary.OverallCTR},
		},
	}); err != nil {
		return nil, err
	}

	if err := wb.AddTable(TableSheet{
		Name:    "Daily Breakdown",
		Headers: []string{"Date", "Page Views", "Users", "Sessions", "Clicks", "CTR (%)", "Active Pages"},
		Rows:    dailyPageRows(data.Daily),
		Widths:  []float64{15, 15, 15, 15, 15, 15, 15},
	}); err != nil {
		return nil, err
	}

	if err := wb.AddTable(TableSheet{
		Name: "Page Performance",
		Headers: []string{
			"Page Slug", "Project", "Views", "Users", "Sessions", "Clicks",
			"CTR (%)", "Avg Duration (s)", "Bounce Rate (%)", "Days Active",
		},
		Rows:   pagePerformanceRows(data.Pages),
		Widths: []float64{18, 18, 18, 18, 18, 18, 18, 18, 18, 18},
	}); err != nil {
		return nil, err
	}

	if err := wb.AddTable(TableSheet{
		Name:    "Traffic Sources",
		Headers: []string{"Source", "Medium", "Page Views", "Users", "Sessions", "Unique Pages"},
		Rows:    trafficSourceRows(data.Traffic),
		Widths:  []float64{20, 20, 20, 20, 20, 20},
	}); err != nil {
		return nil, err
	}

	if err := wb.AddTable(TableSheet{
		Name:    "Geographic Distribution",
		Headers: []string{"Country", "State", "City", "Page Views", "Users", "Unique Pages"},
		Rows:    geoRows(data.Geographic),
		Widths:  []float64{20, 20, 20, 20, 20, 20},
	}); err != nil {
		return nil, err
	}

	if err := wb.AddTable(TableSheet{
		Name:    "Device Breakdown",
		Headers: []string{"Device Category", "Page Views", "Users", "Sessions", "Avg Duration (s)", "Bounce Rate (%)"},
		Rows:    deviceRows(data.Devices),
		Widths:  []float64{20, 20, 20, 20, 20, 20},
	}); err != nil {
		return nil, err
	}

	if len(data.ClickDetail) > 0 {
		if err := wb.AddTable(TableSheet{
			Name:    "Click Details",
			Headers: []string{"Page Slug", "Destination URL", "Event Name", "Total Clicks", "Page Views", "CTR (%)"},
			Rows:    clickDetailRows(data.ClickDetail),
			Widths:  []float64{30, 50, 15, 15, 15, 15},
		}); err != nil {
			return nil, err
		}
	}

	return wb.Buffer()
}

func dailyPageRows(daily []models.DailyPageMetrics) [][]any {
	rows := make([][]any, 0, len(daily))
	for _, r := range daily {
		rows = append(rows, []any{
			r.Date.Format(models.DateFormat),
			r.PageViews, r.Users, r.Sessions, r.Clicks, r.CTRPct, r.ActivePages,
		})
	}
	return rows
}

func pagePerformanceRows(pages []models.PagePerformance) [][]any {
	rows := make([][]any, 0, len(pages))
	for _, r := range pages {
		rows = append(rows, []any{
			r.PageSlug, r.ProjectName,
			r.TotalViews, r.TotalUsers, r.TotalSessions, r.TotalClicks,
			r.CTRPct, r.AvgSessionDuration, r.AvgBounceRate, r.DaysActive,
		})
	}
	return rows
}

func trafficSourceRows(traffic []models.TrafficSource) [][]any {
	rows := make([][]any, 0, len(traffic))
	for _, r := range traffic {
		rows = append(rows, []any{r.Source, r.Medium, r.PageViews, r.Users, r.Sessions, r.UniquePages})
	}
	return rows
}

func geoRows(geo []models.GeoDistribution) [][]any {
	rows := make([][]any, 0, len(geo))
	for _, r := range geo {
		rows = append(rows, []any{r.Country, r.State, r.City, r.PageViews, r.Users, r.UniquePages})
	}
	return rows
}

func deviceRows(devices []models.DeviceMetrics) [][]any {
	rows := make([][]any, 0, len(devices))
	for _, r := range devices {
		rows = append(rows, []any{r.DeviceCategory, r.PageViews, r.Users, r.Sessions, r.AvgSessionDuration, r.AvgBounceRate})
	}
	return rows
}

func clickDetailRows(clicks []models.ClickDetail) [][]any {
	rows := make([][]any, 0, len(clicks))
	for _, r := range clicks {
		rows = append(rows, []any{r.PageSlug, r.DestinationURL, r.EventName, r.Clicks, r.PageViews, r.AvgCTR})
	}
	return rows
}
