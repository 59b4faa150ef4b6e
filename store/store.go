package store

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"incarts/exports/models"
)

// Conn is the subset of the ClickHouse driver connection the stores use.
// clickhouse.Conn satisfies it; tests substitute fakes.
type Conn interface {
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) driver.Row
}

// namedArgs converts the ordered parameter bindings into ClickHouse named
// arguments matching the {name:Type} placeholders in the predicate.
func namedArgs(params []models.QueryParameter) []any {
	args := make([]any, 0, len(params))
	for _, p := range params {
		args = append(args, clickhouse.Named(p.Name, p.Value))
	}
	return args
}
