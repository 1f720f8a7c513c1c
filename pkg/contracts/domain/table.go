package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CellKind identifies which scalar a Cell holds
type CellKind int

const (
	CellMissing CellKind = iota
	CellNumber
	CellText
	CellBool
	CellDate
)

// String returns the lowercase kind name used in form hints and logs
func (k CellKind) String() string {
	switch k {
	case CellNumber:
		return "number"
	case CellText:
		return "text"
	case CellBool:
		return "bool"
	case CellDate:
		return "date"
	default:
		return "missing"
	}
}

// ParseCellKind is the inverse of CellKind.String. Unknown names map to CellMissing.
func ParseCellKind(s string) CellKind {
	switch s {
	case "number":
		return CellNumber
	case "text":
		return CellText
	case "bool":
		return CellBool
	case "date":
		return CellDate
	default:
		return CellMissing
	}
}

// Cell is a single spreadsheet value. The zero value is a missing cell.
type Cell struct {
	Kind CellKind
	Num  float64
	Str  string
	Flag bool
	Time time.Time
}

// Missing returns an empty cell
func Missing() Cell { return Cell{} }

// Number returns a numeric cell. NaN is stored as missing.
func Number(v float64) Cell {
	if math.IsNaN(v) {
		return Cell{}
	}
	return Cell{Kind: CellNumber, Num: v}
}

// Text returns a string cell
func Text(s string) Cell { return Cell{Kind: CellText, Str: s} }

// Bool returns a boolean cell
func Bool(b bool) Cell { return Cell{Kind: CellBool, Flag: b} }

// Date returns a date cell normalized to UTC
func Date(t time.Time) Cell { return Cell{Kind: CellDate, Time: t.UTC()} }

// IsMissing reports whether the cell carries no usable value.
// Empty text counts as missing, the same way a blank spreadsheet cell does.
func (c Cell) IsMissing() bool {
	switch c.Kind {
	case CellMissing:
		return true
	case CellText:
		return c.Str == ""
	default:
		return false
	}
}

// Float returns the numeric value of the cell. Text that parses as a
// float is accepted; every other kind reports false.
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Num, true
	case CellText:
		v, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64)
		if err != nil || math.IsNaN(v) {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// String renders the cell for display and CSV export
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellText:
		return c.Str
	case CellBool:
		if c.Flag {
			return "true"
		}
		return "false"
	case CellDate:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 && c.Time.Nanosecond() == 0 {
			return c.Time.Format("2006-01-02")
		}
		return c.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Equal compares kind and value
func (c Cell) Equal(o Cell) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case CellNumber:
		return c.Num == o.Num
	case CellText:
		return c.Str == o.Str
	case CellBool:
		return c.Flag == o.Flag
	case CellDate:
		return c.Time.Equal(o.Time)
	default:
		return true
	}
}

// MarshalJSON encodes missing as null, numbers, strings and booleans as the
// matching JSON scalar, and dates as {"date": RFC3339}.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellNumber:
		return json.Marshal(c.Num)
	case CellText:
		return json.Marshal(c.Str)
	case CellBool:
		return json.Marshal(c.Flag)
	case CellDate:
		return json.Marshal(struct {
			Date time.Time `json:"date"`
		}{c.Time})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON
func (c *Cell) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*c = Missing()
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*c = Bool(b)
	case '{':
		var d struct {
			Date *time.Time `json:"date"`
		}
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		if d.Date == nil {
			return fmt.Errorf("cell object must carry a date field")
		}
		*c = Date(*d.Date)
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("unsupported cell value %s: %w", trimmed, err)
		}
		*c = Number(v)
	}
	return nil
}

// Table is a header row plus data rows. Every row has len(Columns) cells.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// Schema names the columns a table falls back to when its file is absent
type Schema struct {
	Name    string
	Columns []string
}

// EmptyTable returns a table with the schema's columns and no rows
func EmptyTable(s Schema) Table {
	cols := make([]string, len(s.Columns))
	copy(cols, s.Columns)
	return Table{Columns: cols, Rows: [][]Cell{}}
}

// Len returns the number of data rows
func (t Table) Len() int { return len(t.Rows) }

// IsEmpty reports whether the table has no data rows
func (t Table) IsEmpty() bool { return len(t.Rows) == 0 }

// ColumnIndex returns the position of the named column, or -1
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumns reports whether every named column is present
func (t Table) HasColumns(names ...string) bool {
	for _, n := range names {
		if t.ColumnIndex(n) < 0 {
			return false
		}
	}
	return true
}

// Cell returns the value at row i in the named column. Out of range
// lookups return a missing cell.
func (t Table) Cell(i int, column string) Cell {
	j := t.ColumnIndex(column)
	if j < 0 || i < 0 || i >= len(t.Rows) || j >= len(t.Rows[i]) {
		return Missing()
	}
	return t.Rows[i][j]
}

// AppendRow adds a row, padding with missing cells or truncating to the column count
func (t *Table) AppendRow(cells ...Cell) {
	row := make([]Cell, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// RemoveRow deletes row i. Out of range indexes are ignored.
func (t *Table) RemoveRow(i int) {
	if i < 0 || i >= len(t.Rows) {
		return
	}
	t.Rows = append(t.Rows[:i], t.Rows[i+1:]...)
}

// Clone returns a deep copy
func (t Table) Clone() Table {
	out := Table{
		Columns: make([]string, len(t.Columns)),
		Rows:    make([][]Cell, len(t.Rows)),
	}
	copy(out.Columns, t.Columns)
	for i, row := range t.Rows {
		out.Rows[i] = make([]Cell, len(row))
		copy(out.Rows[i], row)
	}
	return out
}

// Normalized returns a copy in which empty text cells are Missing, the form
// a blank spreadsheet cell reads back as
func (t Table) Normalized() Table {
	out := t.Clone()
	for _, row := range out.Rows {
		for j, c := range row {
			if c.Kind == CellText && c.Str == "" {
				row[j] = Missing()
			}
		}
	}
	return out
}

// Equal compares columns and every cell in order
func (t Table) Equal(o Table) bool {
	if len(t.Columns) != len(o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		if len(t.Rows[i]) != len(o.Rows[i]) {
			return false
		}
		for j := range t.Rows[i] {
			if !t.Rows[i][j].Equal(o.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}

// Validate checks the structural invariant that each row matches the header width
func (t Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, expected %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}
