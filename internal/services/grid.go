package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"fteapp/pkg/contracts/domain"
)

var gridDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// CoerceGridValue turns a posted grid input back into a cell. hint is the
// kind the cell had when the grid was rendered.
//
// Empty input is missing. A text cell stays text, so "007" is not turned
// into 7. Dates and booleans keep their kind when the text still parses as
// one. Number and missing cells (new rows) parse as numbers when they can;
// everything else is text.
func CoerceGridValue(raw string, hint domain.CellKind) domain.Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.Missing()
	}

	switch hint {
	case domain.CellText:
		return domain.Text(raw)
	case domain.CellDate:
		for _, layout := range gridDateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return domain.Date(t)
			}
		}
	case domain.CellBool:
		if b, err := strconv.ParseBool(trimmed); err == nil {
			return domain.Bool(b)
		}
	}

	if v, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return domain.Number(v)
	}
	return domain.Text(raw)
}

// GridTable rebuilds a table from posted grid values. values and hints are
// indexed [row][column]; short rows are padded with missing cells.
func GridTable(columns []string, values, hints [][]string) domain.Table {
	tbl := domain.Table{Columns: columns, Rows: make([][]domain.Cell, 0, len(values))}
	for r, row := range values {
		cells := make([]domain.Cell, len(columns))
		for c := range columns {
			if c >= len(row) {
				continue
			}
			hint := domain.CellMissing
			if r < len(hints) && c < len(hints[r]) {
				hint = domain.ParseCellKind(hints[r][c])
			}
			cells[c] = CoerceGridValue(row[c], hint)
		}
		tbl.Rows = append(tbl.Rows, cells)
	}
	return tbl
}
