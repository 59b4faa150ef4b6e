package models

import (
	"fmt"
	"strings"
)

// ValidationError reports a rejected export request before any warehouse
// call is made. Either Missing or Detail is populated, never both.
type ValidationError struct {
	Missing []string
	Detail  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "Missing required parameters: " + strings.Join(e.Missing, ", ")
	}
	return e.Detail
}

// QueryError wraps a failed warehouse call with the query it belongs to.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q failed: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// RenderError wraps a failure during workbook assembly.
type RenderError struct {
	Report string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s workbook: %v", e.Report, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
