// Package export renders in-memory lists as single sheet xlsx workbooks with
// fixed headers and column widths.
package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ErrNoColumns is returned when a sheet has nothing to render.
var ErrNoColumns = errors.New("export: sheet has no columns")

const defaultSheet = "Sheet1"

// Column maps one field of T to a spreadsheet column.
type Column[T any] struct {
	Header string
	Width  float64
	Value  func(T) any
}

// Sheet describes a workbook with one sheet holding one row per item.
type Sheet[T any] struct {
	Name    string
	File    string
	Columns []Column[T]
}

// FileName is the suggested download name.
func (s Sheet[T]) FileName() string {
	if s.File == "" {
		return s.sheetName() + ".xlsx"
	}
	return s.File
}

func (s Sheet[T]) sheetName() string {
	if s.Name == "" {
		return defaultSheet
	}
	return s.Name
}

// Render writes the header row followed by one row per item and returns
// the encoded workbook.
func (s Sheet[T]) Render(items []T) ([]byte, error) {
	if len(s.Columns) == 0 {
		return nil, ErrNoColumns
	}

	f := excelize.NewFile()
	defer f.Close()

	name := s.sheetName()
	if name != defaultSheet {
		if err := f.SetSheetName(defaultSheet, name); err != nil {
			return nil, fmt.Errorf("export: name sheet %q: %w", name, err)
		}
	}

	header := make([]any, len(s.Columns))
	for i, col := range s.Columns {
		header[i] = col.Header
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return nil, fmt.Errorf("export: write header: %w", err)
	}

	for r, item := range items {
		row := make([]any, len(s.Columns))
		for i, col := range s.Columns {
			if col.Value != nil {
				row[i] = col.Value(item)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, fmt.Errorf("export: row %d: %w", r+2, err)
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return nil, fmt.Errorf("export: write row %d: %w", r+2, err)
		}
	}

	for i, col := range s.Columns {
		if col.Width <= 0 {
			continue
		}
		letter, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("export: column %d: %w", i+1, err)
		}
		if err := f.SetColWidth(name, letter, letter, col.Width); err != nil {
			return nil, fmt.Errorf("export: width of column %s: %w", letter, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
