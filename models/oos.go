package models

import "time"

// OutOfStockSummary aggregates top-line counts for the reporting period.
// ProjectName is a representative label pulled from the matching rows.
type OutOfStockSummary struct {
	OutOfStockCount  uint64
	StatesAffected   uint64
	ZipCodesAffected uint64
	ProjectName      string
}

// DailyOutOfStock is one point of the daily time series.
type DailyOutOfStock struct {
	Date  time.Time
	Count uint64
}

// StateOutOfStock is one row of the geography breakdown.
type StateOutOfStock struct {
	State string
	City  string
	Count uint64
}

// SubstitutionDetail is one row of the top-N substitution breakdown.
type SubstitutionDetail struct {
	Date               time.Time
	PrimaryProduct     string
	ReplacementProduct string
	Reason             string
	Count              uint64
}
