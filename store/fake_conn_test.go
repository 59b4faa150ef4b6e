package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// fakeConn scripts one result set per test and records every query and its
// bound arguments.
type fakeConn struct {
	queries [][]string // query text, then arg names in order
	rows    [][]any
	row     []any
	err     error
}

func (f *fakeConn) record(query string, args []any) {
	entry := []string{query}
	for _, arg := range args {
		if nv, ok := arg.(driver.NamedValue); ok {
			entry = append(entry, nv.Name)
		} else {
			entry = append(entry, fmt.Sprintf("positional:%v", arg))
		}
	}
	f.queries = append(f.queries, entry)
}

func (f *fakeConn) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	f.record(query, args)
	if f.err != nil {
		return nil, f.err
	}
	return &fakeRows{rows: f.rows}, nil
}

func (f *fakeConn) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	f.record(query, args)
	return &fakeRow{values: f.row, err: f.err}
}

func (f *fakeConn) lastQuery() string {
	if len(f.queries) == 0 {
		return ""
	}
	return f.queries[len(f.queries)-1][0]
}

func (f *fakeConn) lastArgNames() []string {
	if len(f.queries) == 0 {
		return nil
	}
	return f.queries[len(f.queries)-1][1:]
}

type fakeRows struct {
	rows [][]any
	idx  int
	cur  []any
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.cur = r.rows[r.idx]
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error { return scanValues(r.cur, dest) }

func (r *fakeRows) ScanStruct(dest any) error { return errors.New("not implemented") }

func (r *fakeRows) ColumnTypes() []driver.ColumnType { return nil }

func (r *fakeRows) Totals(dest ...any) error { return nil }

func (r *fakeRows) Columns() []string { return nil }

func (r *fakeRows) Close() error { return nil }

func (r *fakeRows) Err() error { return nil }

type fakeRow struct {
	values []any
	err    error
}

func (r *fakeRow) Err() error { return r.err }

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanValues(r.values, dest)
}

func (r *fakeRow) ScanStruct(dest any) error { return errors.New("not implemented") }

func scanValues(src []any, dest []any) error {
	if len(src) != len(dest) {
		return fmt.Errorf("expected %d scan destinations, got %d", len(src), len(dest))
	}
	for i, v := range src {
		switch d := dest[i].(type) {
		case *uint64:
			*d = v.(uint64)
		case *float64:
			*d = v.(float64)
		case *string:
			*d = v.(string)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("unsupported scan destination %T", dest[i])
		}
	}
	return nil
}
