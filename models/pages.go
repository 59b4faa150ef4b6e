package models

import "time"

// PageAnalyticsSummary aggregates the whole reporting period across all
// matching pages. Duration is in seconds, rates in percent.
type PageAnalyticsSummary struct {
	TotalPages         uint64
	TotalProjects      uint64
	TotalPageViews     uint64
	TotalUsers         uint64
	TotalSessions      uint64
	TotalClicks        uint64
	AvgSessionDuration float64
	AvgBounceRate      float64
	OverallCTR         float64
}

// DailyPageMetrics is one point of the daily breakdown.
type DailyPageMetrics struct {
	Date        time.Time
	PageViews   uint64
	Users       uint64
	Sessions    uint64
	Clicks      uint64
	CTRPct      float64
	ActivePages uint64
}

// PagePerformance is one page+project row ordered by total views.
type PagePerformance struct {
	PageSlug           string
	ProjectName        string
	TotalViews         uint64
	TotalUsers         uint64
	TotalSessions      uint64
	TotalClicks        uint64
	CTRPct             float64
	AvgSessionDuration float64
	AvgBounceRate      float64
	DaysActive         uint64
}

// TrafficSource is one source+medium row of the acquisition breakdown.
type TrafficSource struct {
	Source      string
	Medium      string
	PageViews   uint64
	Users       uint64
	Sessions    uint64
	UniquePages uint64
}

// GeoDistribution is one country/state/city row, capped at the top 100.
type GeoDistribution struct {
	Country     string
	State       string
	City        string
	PageViews   uint64
	Users       uint64
	UniquePages uint64
}

// DeviceMetrics is one device-category row of the device breakdown.
type DeviceMetrics struct {
	DeviceCategory     string
	PageViews          uint64
	Users              uint64
	Sessions           uint64
	AvgSessionDuration float64
	AvgBounceRate      float64
}

// ClickDetail is one page/destination/event row, capped at the top 500.
type ClickDetail struct {
	PageSlug       string
	DestinationURL string
	EventName      string
	Clicks         uint64
	PageViews      uint64
	AvgCTR         float64
}
