// Package report renders query results into styled xlsx workbooks.
package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	headerFillColor = "4472C4"
	bandFillColor   = "D9E1F2"
	titleFontColor  = "1F4E78"

	defaultColWidth = 25.0
)

// TableSheet describes one tabular sheet: a styled header row followed by
// one row of cells per record, columns in header order.
type TableSheet struct {
	Name    string
	Headers []string
	Rows    [][]any
	// Widths overrides the default column width per column; columns past
	// the end of the slice use the default.
	Widths []float64
}

// Metric is one name/value pair of a summary sheet.
type Metric struct {
	Name  string
	Value any
}

// SummarySheet carries the title and metadata block plus the metric table
// rendered below it.
type SummarySheet struct {
	Name    string
	Title   string
	Meta    []string
	Metrics []Metric
}

// Workbook assembles styled sheets in insertion order and serializes them
// to an in-memory buffer.
type Workbook struct {
	file        *excelize.File
	sheets      []string
	headerStyle int
	titleStyle  int
	metaStyle   int
	bandStyle   int
}

func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFillColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Bold: true, Color: titleFontColor},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}

	metaStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11, Italic: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata style: %w", err)
	}

	bandStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{bandFillColor}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create banding style: %w", err)
	}

	return &Workbook{
		file:        f,
		headerStyle: headerStyle,
		titleStyle:  titleStyle,
		metaStyle:   metaStyle,
		bandStyle:   bandStyle,
	}, nil
}

// AddTable renders a header row plus data rows onto a new sheet. Empty
// result sets still produce the sheet with its header row.
func (w *Workbook) AddTable(t TableSheet) error {
	if _, err := w.file.NewSheet(t.Name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", t.Name, err)
	}
	w.sheets = append(w.sheets, t.Name)

	if err := w.writeHeaderRow(t.Name, 1, t.Headers); err != nil {
		return err
	}

	for i, row := range t.Rows {
		for col, value := range row {
			if err := w.setCell(t.Name, col+1, i+2, value); err != nil {
				return err
			}
		}
	}

	for col := range t.Headers {
		width := defaultColWidth
		if col < len(t.Widths) && t.Widths[col] > 0 {
			width = t.Widths[col]
		}
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("invalid column %d on sheet %q: %w", col+1, t.Name, err)
		}
		if err := w.file.SetColWidth(t.Name, colName, colName, width); err != nil {
			return fmt.Errorf("failed to set column width on sheet %q: %w", t.Name, err)
		}
	}

	return nil
}

// AddSummary renders the title line, the italic metadata block, then the
// two-column metric table with alternating row shading.
func (w *Workbook) AddSummary(s SummarySheet) error {
	if _, err := w.file.NewSheet(s.Name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", s.Name, err)
	}
	w.sheets = append(w.sheets, s.Name)

	if err := w.setCell(s.Name, 1, 1, s.Title); err != nil {
		return err
	}
	if err := w.file.SetCellStyle(s.Name, "A1", "A1", w.titleStyle); err != nil {
		return fmt.Errorf("failed to style title on sheet %q: %w", s.Name, err)
	}

	for i, line := range s.Meta {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("invalid metadata row on sheet %q: %w", s.Name, err)
		}
		if err := w.file.SetCellValue(s.Name, cell, line); err != nil {
			return fmt.Errorf("failed to write metadata on sheet %q: %w", s.Name, err)
		}
		if err := w.file.SetCellStyle(s.Name, cell, cell, w.metaStyle); err != nil {
			return fmt.Errorf("failed to style metadata on sheet %q: %w", s.Name, err)
		}
	}

	// One blank row separates the metadata block from the metric table.
	headerRow := len(s.Meta) + 3
	if err := w.writeHeaderRow(s.Name, headerRow, []string{"Metric", "Value"}); err != nil {
		return err
	}

	for i, m := range s.Metrics {
		row := headerRow + 1 + i
		if err := w.setCell(s.Name, 1, row, m.Name); err != nil {
			return err
		}
		if err := w.setCell(s.Name, 2, row, m.Value); err != nil {
			return err
		}
		if i%2 == 1 {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(2, row)
			if err := w.file.SetCellStyle(s.Name, first, last, w.bandStyle); err != nil {
				return fmt.Errorf("failed to band metric row on sheet %q: %w", s.Name, err)
			}
		}
	}

	if err := w.file.SetColWidth(s.Name, "A", "A", 40); err != nil {
		return fmt.Errorf("failed to set column width on sheet %q: %w", s.Name, err)
	}
	if err := w.file.SetColWidth(s.Name, "B", "B", 20); err != nil {
		return fmt.Errorf("failed to set column width on sheet %q: %w", s.Name, err)
	}

	return nil
}

// Buffer drops the workbook's default sheet, activates the first rendered
// sheet and serializes everything to an in-memory buffer ready to stream.
func (w *Workbook) Buffer() (*bytes.Buffer, error) {
	if err := w.file.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if len(w.sheets) > 0 {
		index, err := w.file.GetSheetIndex(w.sheets[0])
		if err != nil {
			return nil, fmt.Errorf("failed to look up sheet %q: %w", w.sheets[0], err)
		}
		w.file.SetActiveSheet(index)
	}
	return w.file.WriteToBuffer()
}

func (w *Workbook) writeHeaderRow(sheet string, row int, headers []string) error {
	for col, header := range headers {
		if err := w.setCell(sheet, col+1, row, header); err != nil {
			return err
		}
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid header row on sheet %q: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), row)
	if err != nil {
		return fmt.Errorf("invalid header row on sheet %q: %w", sheet, err)
	}
	if err := w.file.SetCellStyle(sheet, first, last, w.headerStyle); err != nil {
		return fmt.Errorf("failed to style header row on sheet %q: %w", sheet, err)
	}
	return nil
}

func (w *Workbook) setCell(sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell (%d,%d) on sheet %q: %w", col, row, sheet, err)
	}
	if err := w.file.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write cell %s on sheet %q: %w", cell, sheet, err)
	}
	return nil
}
