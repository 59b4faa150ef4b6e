package store

import (
	"context"
	"fmt"
	"log"

	"incarts/exports/database"
	"incarts/exports/models"
)

const outOfStockTable = "out_of_stock_analytics"

// SubstitutionDetailLimit caps the substitution breakdown at the top rows.
const SubstitutionDetailLimit = 25

// OutOfStockStore runs the out-of-stock report queries. All queries apply
// the shared predicate unchanged.
type OutOfStockStore struct {
	Conn Conn
}

func NewOutOfStockStore(chClient *database.ClickHouseClient) *OutOfStockStore {
	return &OutOfStockStore{Conn: chClient.Conn}
}

// GetSummaryMetrics returns total event count, distinct geography impact and
// a representative project label for the filtered period.
func (s *OutOfStockStore) GetSummaryMetrics(ctx context.Context, where string, params []models.QueryParameter) (models.OutOfStockSummary, error) {
	query := fmt.Sprintf(`
		SELECT
			count() AS out_of_stock_count,
			uniqExact(state) AS states_affected,
			uniqExact(zip_code) AS zip_codes_affected,
			any(project_name) AS project_name
		FROM %s
		WHERE %s
	`, outOfStockTable, where)

	var summary models.OutOfStockSummary
	row := s.Conn.QueryRow(ctx, query, namedArgs(params)...)
	if err := row.Scan(
		&summary.OutOfStockCount,
		&summary.StatesAffected,
		&summary.ZipCodesAffected,
		&summary.ProjectName,
	); err != nil {
		return models.OutOfStockSummary{}, fmt.Errorf("failed to query out-of-stock summary: %w", err)
	}

	return summary, nil
}

// GetOutOfStockByDate returns daily out-of-stock counts in ascending date order.
func (s *OutOfStockStore) GetOutOfStockByDate(ctx context.Context, where string, params []models.QueryParameter) ([]models.DailyOutOfStock, error) {
	query := fmt.Sprintf(`
		SELECT toDate(date) AS day, count() AS total
		FROM %s
		WHERE %s
		GROUP BY day
		ORDER BY day ASC
	`, outOfStockTable, where)

	rows, err := s.Conn.Query(ctx, query, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query out-of-stock by date: %w", err)
	}
	defer rows.Close()

	var results []models.DailyOutOfStock
	for rows.Next() {
		var r models.DailyOutOfStock
		if err := rows.Scan(&r.Date, &r.Count); err != nil {
			log.Printf("Error scanning row for out-of-stock by date: %v", err)
			continue
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during out-of-stock by date query: %w", err)
	}

	return results, nil
}

// GetOutOfStockByState returns counts grouped by state and city, largest first.
func (s *OutOfStockStore) GetOutOfStockByState(ctx context.Context, where string, params []models.QueryParameter) ([]models.StateOutOfStock, error) {
	query := fmt.Sprintf(`
		SELECT state, city, count() AS total
		FROM %s
		WHERE %s
		GROUP BY state, city
		ORDER BY total DESC, state ASC, city ASC
	`, outOfStockTable, where)

	rows, err := s.Conn.Query(ctx, query, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query out-of-stock by state: %w", err)
	}
	defer rows.Close()

	var results []models.StateOutOfStock
	for rows.Next() {
		var r models.StateOutOfStock
		if err := rows.Scan(&r.State, &r.City, &r.Count); err != nil {
			log.Printf("Error scanning row for out-of-stock by state: %v", err)
			continue
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during out-of-stock by state query: %w", err)
	}

	return results, nil
}

// GetSubstitutionDetails returns the top substitution combinations, capped
// at SubstitutionDetailLimit rows.
func (s *OutOfStockStore) GetSubstitutionDetails(ctx context.Context, where string, params []models.QueryParameter) ([]models.SubstitutionDetail, error) {
	query := fmt.Sprintf(`
		SELECT
			toDate(date) AS day,
			primary_product_name,
			replacement_product_name,
			substitution_reason,
			count() AS total
		FROM %s
		WHERE %s
		GROUP BY day, primary_product_name, replacement_product_name, substitution_reason
		ORDER BY total DESC, day ASC,
			primary_product_name ASC, replacement_product_name ASC,
			substitution_reason ASC
		LIMIT %d
	`, outOfStockTable, where, SubstitutionDetailLimit)

	rows, err := s.Conn.Query(ctx, query, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query substitution details: %w", err)
	}
	defer rows.Close()

	var results []models.SubstitutionDetail
	for rows.Next() {
		var r models.SubstitutionDetail
		if err := rows.Scan(&r.Date, &r.PrimaryProduct, &r.ReplacementProduct, &r.Reason, &r.Count); err != nil {
			log.Printf("Error scanning row for substitution details: %v", err)
			continue
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during substitution details query: %w", err)
	}

	return results, nil
}
