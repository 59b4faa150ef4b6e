package store

import (
	"strings"

	"incarts/exports/models"
)

// BuildOutOfStockFilters turns validated out-of-stock criteria into a WHERE
// predicate plus the ordered parameter bindings it references. Every value
// is bound server-side; user input never appears in the query text.
func BuildOutOfStockFilters(f models.OutOfStockFilter) (string, []models.QueryParameter) {
	conditions := []string{
		"date BETWEEN {start_date:Date} AND {end_date:Date}",
		"project_id = {project_id:String}",
	}
	params := []models.QueryParameter{
		{Name: "start_date", Type: "Date", Value: f.StartDate.Format(models.DateFormat)},
		{Name: "end_date", Type: "Date", Value: f.EndDate.Format(models.DateFormat)},
		{Name: "project_id", Type: "String", Value: f.ProjectID},
	}

	if f.LinkName != "" {
		conditions = append(conditions, "link_name = {link_name:String}")
		params = append(params, models.QueryParameter{Name: "link_name", Type: "String", Value: f.LinkName})
	}
	if f.Slug != "" {
		conditions = append(conditions, "short_id = {slug:String}")
		params = append(params, models.QueryParameter{Name: "slug", Type: "String", Value: f.Slug})
	}

	return strings.Join(conditions, " AND "), params
}

// BuildPageAnalyticsFilters turns validated page-analytics criteria into a
// WHERE predicate plus the ordered parameter bindings. Only the date range
// is mandatory; absent optional filters contribute no clause.
func BuildPageAnalyticsFilters(f models.PageAnalyticsFilter) (string, []models.QueryParameter) {
	conditions := []string{
		"date BETWEEN {start_date:Date} AND {end_date:Date}",
	}
	params := []models.QueryParameter{
		{Name: "start_date", Type: "Date", Value: f.StartDate.Format(models.DateFormat)},
		{Name: "end_date", Type: "Date", Value: f.EndDate.Format(models.DateFormat)},
	}

	if f.ProjectID != "" {
		conditions = append(conditions, "project_id = {project_id:String}")
		params = append(params, models.QueryParameter{Name: "project_id", Type: "String", Value: f.ProjectID})
	}
	if f.PageSlug != "" {
		conditions = append(conditions, "page_slug = {page_slug:String}")
		params = append(params, models.QueryParameter{Name: "page_slug", Type: "String", Value: f.PageSlug})
	}
	if f.Source != "" {
		conditions = append(conditions, "source = {source:String}")
		params = append(params, models.QueryParameter{Name: "source", Type: "String", Value: f.Source})
	}
	if f.Medium != "" {
		conditions = append(conditions, "medium = {medium:String}")
		params = append(params, models.QueryParameter{Name: "medium", Type: "String", Value: f.Medium})
	}

	return strings.Join(conditions, " AND "), params
}
