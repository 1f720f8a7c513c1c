package workbook

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"fteapp/pkg/contracts/domain"
)

// maxPaddedRows bounds how far a declared used range may extend past the
// last populated row before it is treated as stale formatting
const maxPaddedRows = 10000

// ErrSheetNotFound is returned when a requested sheet is absent from the workbook
var ErrSheetNotFound = errors.New("sheet not found")

// Codec reads and writes domain tables as xlsx workbooks
type Codec struct {
	// DefaultSheet is used when writing without an explicit sheet name
	DefaultSheet string
}

// NewCodec creates a codec that writes to "Sheet1" by default
func NewCodec() *Codec {
	return &Codec{DefaultSheet: "Sheet1"}
}

// Read decodes one sheet of the workbook at path. An empty sheet name
// selects the first sheet.
func (c *Codec) Read(path, sheet string) (domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return domain.Table{}, fmt.Errorf("%w: %q (workbook has %s)", ErrSheetNotFound, sheet, quoteList(f.GetSheetList()))
	}

	return readSheet(f, sheet)
}

// SheetNames lists the worksheets of the workbook at path, in tab order
func (c *Codec) SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = strconv.Quote(n)
	}
	return strings.Join(quoted, ", ")
}

func readSheet(f *excelize.File, sheet string) (domain.Table, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read rows from %q: %w", sheet, err)
	}

	tbl := domain.Table{Columns: []string{}, Rows: [][]domain.Cell{}}
	if len(rows) == 0 {
		return tbl, nil
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	tbl.Columns = headerNames(rows[0], width)

	formats := &dateFormatCache{f: f, known: map[int]bool{}}
	for r := 1; r < len(rows); r++ {
		cells := make([]domain.Cell, width)
		for c := 0; c < width && c < len(rows[r]); c++ {
			cell, err := readCell(f, formats, sheet, c+1, r+1, rows[r][c])
			if err != nil {
				return domain.Table{}, err
			}
			cells[c] = cell
		}
		tbl.Rows = append(tbl.Rows, cells)
	}

	if end := dimensionRows(f, sheet); end > len(rows) && end-len(rows) <= maxPaddedRows {
		for r := len(rows); r < end; r++ {
			tbl.Rows = append(tbl.Rows, make([]domain.Cell, width))
		}
	}

	return tbl, nil
}

// dimensionRows returns the last row of the sheet's declared used range,
// or 0 when the range is absent or unreadable
func dimensionRows(f *excelize.File, sheet string) int {
	ref, err := f.GetSheetDimension(sheet)
	if err != nil || ref == "" {
		return 0
	}
	parts := strings.Split(ref, ":")
	_, row, err := excelize.CellNameToCoordinates(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return row
}

// headerNames names blank header cells "Unnamed: <index>"
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	for i := 0; i < width; i++ {
		var name string
		if i < len(header) {
			name = header[i]
		}
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		names[i] = name
	}
	return names
}

func readCell(f *excelize.File, formats *dateFormatCache, sheet string, col, row int, raw string) (domain.Cell, error) {
	if raw == "" {
		return domain.Missing(), nil
	}

	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return domain.Missing(), err
	}

	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return domain.Missing(), fmt.Errorf("failed to read cell type at %s: %w", ref, err)
	}

	switch typ {
	case excelize.CellTypeBool:
		return domain.Bool(raw == "1" || strings.EqualFold(raw, "true")), nil

	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return domain.Date(t), nil
		}
		return domain.Text(raw), nil

	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return domain.Text(raw), nil

	default:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Text(raw), nil
		}

		styleID, err := f.GetCellStyle(sheet, ref)
		if err == nil && formats.isDate(styleID) {
			if t, err := serialToTime(v); err == nil {
				return domain.Date(t), nil
			}
		}
		return domain.Number(v), nil
	}
}

// excelEpoch is day zero of the 1900 date system for serials past the
// phantom 1900-02-29
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// serialToTime converts a 1900-system serial to UTC at millisecond
// precision. ExcelDateToTime rounds to whole seconds.
func serialToTime(v float64) (time.Time, error) {
	if v < 61 {
		return excelize.ExcelDateToTime(v, false)
	}
	days := math.Floor(v)
	ms := math.Round((v - days) * float64(24*time.Hour/time.Millisecond))
	return excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(ms) * time.Millisecond), nil
}

// dateFormatCache remembers which style indexes carry a date number format
type dateFormatCache struct {
	f     *excelize.File
	known map[int]bool
}

func (d *dateFormatCache) isDate(styleID int) bool {
	if styleID == 0 {
		return false
	}
	if v, ok := d.known[styleID]; ok {
		return v
	}

	style, err := d.f.GetStyle(styleID)
	isDate := err == nil && style != nil && isDateStyle(style)
	d.known[styleID] = isDate
	return isDate
}

func isDateStyle(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	id := style.NumFmt
	return (id >= 14 && id <= 22) || (id >= 27 && id <= 36) || (id >= 45 && id <= 47) || (id >= 50 && id <= 58)
}

// isDateFormatCode reports whether a custom number format renders a date or time
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}

	stripped := b.String()
	if stripped == "" || strings.Contains(stripped, "general") {
		return false
	}
	return strings.ContainsAny(stripped, "ydhs")
}
