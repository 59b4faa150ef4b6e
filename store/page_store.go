package store

import (
	"context"
	"fmt"
	"log"
	"math"

	"incarts/exports/database"
	"incarts/exports/models"
)

const (
	pageSummaryTable = "dashboard_summary_with_traffic_pages"
	pageGeoTable     = "pages_geographic_analytics"
	pageDeviceTable  = "pages_device_analytics"
	pageClicksTable  = "dashboard_click_through_details_pages"
)

// GeoDistributionLimit caps the geographic breakdown at the top rows.
const GeoDistributionLimit = 100

// ClickDetailLimit caps the click-through breakdown at the top rows.
const ClickDetailLimit = 500

// unsetCitySentinel is how the upstream tracker labels rows without a
// resolved city; these are excluded from the geographic breakdown.
const unsetCitySentinel = "(not set)"

// PageAnalyticsStore runs the page-analytics report queries. All queries
// apply the shared predicate unchanged.
type PageAnalyticsStore struct {
	Conn Conn
}

func NewPageAnalyticsStore(chClient *database.ClickHouseClient) *PageAnalyticsStore {
	return &PageAnalyticsStore{Conn: chClient.Conn}
}

// GetSummaryMetrics returns period-wide totals and averages. The averages
// come back NaN from the warehouse when nothing matches; those are reported
// as zero so the summary sheet stays numeric.
func (s *PageAnalyticsStore) GetSummaryMetrics(ctx context.Context, where string, params []models.QueryParameter) (models.PageAnalyticsSummary, error) {
	query := fmt.Sprintf(`
		SELECT
			uniqExact(page_slug) AS total_pages,
			uniqExact(project_id) AS total_projects,
			sum(total_page_views) AS total_page_views,
			sum(total_users) AS total_users,
			sum(total_sessions) AS total_sessions,
			sum(total_clicks) AS total_clicks,
			round(avg(avg_session_duration_seconds), 2) AS avg_session_duration,
			round(avg(bounce_rate_pct), 2) AS avg_bounce_rate,
			if(sum(total_page_views) = 0, 0,
				round(sum(total_clicks) / sum(total_page_views) * 100, 2)) AS overall_ctr
		FROM %s
		WHERE %s
	`, pageSummaryTable, where)

	var summary models.PageAnalyticsSummary
	row := s.Conn.QueryRow(ctx, query, namedArgs(params)...)
	if err := row.Scan(
		&summary.TotalPages,
		&summary.TotalProjects,
		&summary.TotalPageViews,
		&summary.TotalUsers,
		&summary.TotalSessions,
		&summary.TotalClicks,
		&summary.AvgSessionDuration,
		&summary.AvgBounceRate,
		&summary.OverallCTR,
	); err != nil {
		return models.PageAnalyticsSummary{}, fmt.Errorf("failed to query page analytics summary: %w", err)
	}

	if math.IsNaN(summary.AvgSessionDuration) {
		summary.AvgSessionDuration = 0
	}
	if math.IsNaN(summary.AvgBounceRate) {
		summary.AvgBounceRate = 0
	}

	return summary, nil
}

// GetDailyBreakdown returns per-day aggregates in ascending date order.
func (s *PageAnalyticsStore) GetDailyBreakdown(ctx context.Context, where string, params []models.QueryParameter) ([]models.DailyPageMetrics, error) {
	query := fmt.Sprintf(`
		SELECT
			toDate(date) AS day,
			sum(total_page_views) AS page_views,
			sum(total_users) AS users,
			sum(total_sessions) AS sessions,
			sum(total_clicks) AS clicks,
			if(sum(total_page_views) = 0, 0,
				round(sum(total_clicks) / sum(total_page_views) * 100, 2)) AS ctr_pct,
			uniqExact(page_slug) AS active_pages
		FROM %s
		WHERE %s
		GROUP BY day
		ORDER BY day ASC
	`, pageSummaryTable, where)

	rows, err := s.Conn.Query(ctx, query, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily breakdown: %w", err)
	}
	defer rows.Close()

	var results []models.DailyPageMetrics
	for rows.Next() {
		var r models.DailyPageMetrics
		if err := rows.Scan(&r.Date, &r.PageViews, &r.Users, &r.Sessions, &r.Clicks, &r.CTRPct, &r.ActivePages); err != nil {
			log.Printf("Error scanning row for daily breakdown: %v", err)
			continue
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during daily breakdown query: %w", err)
	}

	return results, nil
}

// GetPagePerformance returns per-page aggregates ordered by total views.
func (s *PageAnalyticsStore) GetPagePerformance(ctx context.Context, where string, params []models.QueryParameter) ([]models.PagePerformance, error) {
	query := fmt.Sprintf(`
		SELECT
			page_slug,
			project_name,
			sum(total_page_views) AS total_views,
			sum(total_users) AS total_users,
			sum(total_sessions) AS total_sessions,
			sum(total_clicks) AS total_clicks,
			if(sum(total_page_views) = 0, 0,
				round(sum(total_clicks) / sum(total_page_views) * 100, 2)) AS ctr_pct,
			round(avg(avg_session_duration_seconds), 2) AS avg_session_duration,
			round(avg(bounce_rate_pct), 2) AS avg_bounce_rate,
			uniqExact(date) AS days_active
		FROM %s
		WHERE %s
		GROUP BY page_slug, project_name
		ORDER BY total_views DESC
	`, pageSummaryTable, where)

	rows, err := s.Conn.Query(ctx, query, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query page performance: %w", err)
	}
	defer rows.Close()

	var results []models.PagePerformance
	for rows.Next() {
		var r models.PagePerformance
		if err := rows.Scan(
			&r.PageSlug, &r.ProjectName,
			&r.TotalViews, &r.TotalUsers, &r.TotalSessions, &r.TotalClicks,
			&r.CTRPct, &r.AvgSessionDuration, &r.AvgBounceRate, &r.DaysActive,
		); err != nil {
			log.Printf("Error scanning row for page performance: %v", err)
			continue
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during page performance query: %w", err)
	}

	return results, nil
}

// GetTrafficSources returns the source/medium breakdown ordered by views.
func (s *PageAnalyticsStore) GetTrafficSources(ctx context.Context, where string, params []models.QueryParameter) ([]models.TrafficSource, error) {
	query := fmt.Sprintf(`
		SELECT
			source,
			medium,
			sum(total_page_views) AS page_views,
			sum(total_users) AS users,
			sum(total_sessions) AS sessions,
			uniqExact(page_slug) AS unique_pages
		FROM %s
		WHERE %s
		GROUP BY source, medium
		ORDER BY page_views DESC
	`, pageSummaryTable, where)

	rows, err := s.Conn.Query(ctx, query, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query traffic sources: %w", err)
	}
	defer rows.Close()

	var results []models.TrafficSource
	for rows.Next() {
		var r models.TrafficSource
		if err := rows.Scan(&r.Source, &r.Medium, &r.PageViews, &r.Users, &r.Sessions, &r.UniquePages); err != nil {
			log.Printf("Error scanning row for traffic sources: %v", err)
			continue
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during traffic sources query: %w", err)
	}

	return results, nil
}

// GetGeographicData returns the top locations by views, skipping rows whose
// city was never resolved, capped at GeoDistributionLimit.
func (s *PageAnalyticsStore) GetGeographicData(ctx context.Context, where string, params []models.QueryParameter) ([]models.GeoDistribution, error) {
	query := fmt.Sprintf(`
		SELECT
			country,
			state,
			city,
			sum(page_views) AS total_page_views,
			sum(users) AS total_users,
			uniqExact(page_slug) AS unique_pages
		FROM %s
		WHERE %s
			AND city != '%s'
		GROUP BY country, state, city
		ORDER BY total_page_views DESC
		LIMIT %d
	`, pageGeoTable, where, unsetCitySentinel, GeoDistributionLimit)

	rows, err := s.Conn.Query(ctx, query, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query geographic data: %w", err)
	}
	defer rows.Close()

	var results []models.GeoDistribution
	for rows.Next() {
		var r models.GeoDistribution
		if err := rows.Scan(&r.Country, &r.State, &r.City, &r.PageViews, &r.Users, &r.UniquePages); err != nil {
			log.Printf("Error scanning row for geographic data: %v", err)
			continue
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during geographic data query: %w", err)
	}

	return results, nil
}

// GetDeviceBreakdown returns per-device-category aggregates ordered by views.
func (s *PageAnalyticsStore) GetDeviceBreakdown(ctx context.Context, where string, params []models.QueryParameter) ([]models.DeviceMetrics, error) {
	query := fmt.Sprintf(`
		SELECT
			device_category,
			sum(page_views) AS total_page_views,
			sum(users) AS total_users,
			sum(sessions) AS total_sessions,
			round(avg(avg_session_duration_seconds), 2) AS avg_session_duration,
			round(avg(bounce_rate_pct), 2) AS avg_bounce_rate
		FROM %s
		WHERE %s
		GROUP BY device_category
		ORDER BY total_page_views DESC
	`, pageDeviceTable, where)

	rows, err := s.Conn.Query(ctx, query, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query device breakdown: %w", err)
	}
	defer rows.Close()

	var results []models.DeviceMetrics
	for rows.Next() {
		var r models.DeviceMetrics
		if err := rows.Scan(&r.DeviceCategory, &r.PageViews, &r.Users, &r.Sessions, &r.AvgSessionDuration, &r.AvgBounceRate); err != nil {
			log.Printf("Error scanning row for device breakdown: %v", err)
			continue
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during device breakdown query: %w", err)
	}

	return results, nil
}

// GetClickDetails returns the top click-through rows, capped at
// ClickDetailLimit. An empty result means the click sheet is skipped.
func (s *PageAnalyticsStore) GetClickDetails(ctx context.Context, where string, params []models.QueryParameter) ([]models.ClickDetail, error) {
	query := fmt.Sprintf(`
		SELECT
			page_slug,
			destination_url,
			event_name,
			sum(total_clicks) AS clicks,
			max(page_views_that_day) AS page_views,
			round(avg(link_ctr_pct), 2) AS avg_ctr
		FROM %s
		WHERE %s
		GROUP BY page_slug, destination_url, event_name
		ORDER BY clicks DESC
		LIMIT %d
	`, pageClicksTable, where, ClickDetailLimit)

	rows, err := s.Conn.Query(ctx, query, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query click details: %w", err)
	}
	defer rows.Close()

	var results []models.ClickDetail
	for rows.Next() {
		var r models.ClickDetail
		if err := rows.Scan(&r.PageSlug, &r.DestinationURL, &r.EventName, &r.Clicks, &r.PageViews, &r.AvgCTR); err != nil {
			log.Printf("Error scanning row for click details: %v", err)
			continue
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during click details query: %w", err)
	}

	return results, nil
}
