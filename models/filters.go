package models

import (
	"fmt"
	"time"
)

// DateFormat is the wire format for all report date parameters.
const DateFormat = "2006-01-02"

// QueryParameter is a typed server-side bind value. Type is a ClickHouse
// scalar type name ("Date" or "String") matching the placeholder that
// references it.
type QueryParameter struct {
	Name  string
	Type  string
	Value string
}

// OutOfStockFilter holds the validated criteria shared by every query of an
// out-of-stock export. Immutable once built.
type OutOfStockFilter struct {
	StartDate time.Time
	EndDate   time.Time
	ProjectID string
	LinkName  string
	Slug      string
}

// PageAnalyticsFilter holds the validated criteria shared by every query of
// a page-analytics export. Only the date range is required.
type PageAnalyticsFilter struct {
	StartDate time.Time
	EndDate   time.Time
	ProjectID string
	PageSlug  string
	Source    string
	Medium    string
}

// NewOutOfStockFilter validates raw query parameters for the out-of-stock
// report. Returns a *ValidationError when parameters are missing, dates are
// malformed, or the range is inverted.
func NewOutOfStockFilter(startDate, endDate, projectID, linkName, slug string) (OutOfStockFilter, error) {
	var missing []string
	if startDate == "" {
		missing = append(missing, "start_date")
	}
	if endDate == "" {
		missing = append(missing, "end_date")
	}
	if projectID == "" {
		missing = append(missing, "project_id")
	}
	if len(missing) > 0 {
		return OutOfStockFilter{}, &ValidationError{Missing: missing}
	}

	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return OutOfStockFilter{}, err
	}

	return OutOfStockFilter{
		StartDate: start,
		EndDate:   end,
		ProjectID: projectID,
		LinkName:  linkName,
		Slug:      slug,
	}, nil
}

// NewPageAnalyticsFilter validates raw query parameters for the
// page-analytics report. project_id, page_slug, source and medium are all
// optional narrowing dimensions.
func NewPageAnalyticsFilter(startDate, endDate, projectID, pageSlug, source, medium string) (PageAnalyticsFilter, error) {
	var missing []string
	if startDate == "" {
		missing = append(missing, "start_date")
	}
	if endDate == "" {
		missing = append(missing, "end_date")
	}
	if len(missing) > 0 {
		return PageAnalyticsFilter{}, &ValidationError{Missing: missing}
	}

	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return PageAnalyticsFilter{}, err
	}

	return PageAnalyticsFilter{
		StartDate: start,
		EndDate:   end,
		ProjectID: projectID,
		PageSlug:  pageSlug,
		Source:    source,
		Medium:    medium,
	}, nil
}

func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(DateFormat, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{Detail: fmt.Sprintf("Invalid date format: %v", err)}
	}
	end, err := time.Parse(DateFormat, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{Detail: fmt.Sprintf("Invalid date format: %v", err)}
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, &ValidationError{Detail: "start_date cannot be after end_date"}
	}
	return start, end, nil
}
