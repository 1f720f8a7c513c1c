package domain

import "fmt"

// Column headers as they appear in the workbooks
const (
	ColSection           = "Section"
	ColRolling12MonthFTE = "Rolling 12month FTE"
	ColOptimalFTE        = "Optimal FTE"
	ColRadiologist       = "Radiologist"
	ColType              = "Type"
	ColEffectiveDate     = "Effective Date"
	ColFTEChange         = "FTE Change"
)

// Series names in the overview chart
const (
	SeriesActual  = ColRolling12MonthFTE
	SeriesOptimal = ColOptimalFTE
)

var (
	// ActualSourceSchema is the minimum shape of the cumulative summary sheet
	ActualSourceSchema = Schema{Name: "actual", Columns: []string{ColSection, ColRolling12MonthFTE}}

	// ActualSchema is the aggregated, one-row-per-section output
	ActualSchema = Schema{Name: "actual", Columns: []string{ColSection, ColRolling12MonthFTE}}

	OptimalSchema = Schema{Name: "optimal", Columns: []string{ColSection, ColOptimalFTE}}

	ForecastSchema = Schema{Name: "forecast", Columns: []string{
		ColRadiologist, ColType, ColEffectiveDate, ColFTEChange, ColSection,
	}}
)

// TableKind names one of the three datasets the dashboard works with
type TableKind string

const (
	TableActual   TableKind = "actual"
	TableOptimal  TableKind = "optimal"
	TableForecast TableKind = "forecast"
)

// ParseTableKind validates a table name from a URL or CLI flag
func ParseTableKind(s string) (TableKind, error) {
	switch k := TableKind(s); k {
	case TableActual, TableOptimal, TableForecast:
		return k, nil
	default:
		return "", fmt.Errorf("unknown table %q", s)
	}
}

// Editable reports whether users may save the table. The actual table is derived.
func (k TableKind) Editable() bool {
	return k == TableOptimal || k == TableForecast
}

// Schema returns the fallback schema for the table
func (k TableKind) Schema() Schema {
	switch k {
	case TableOptimal:
		return OptimalSchema
	case TableForecast:
		return ForecastSchema
	default:
		return ActualSchema
	}
}

// Title is the human readable view name
func (k TableKind) Title() string {
	switch k {
	case TableOptimal:
		return "Optimal FTE Input"
	case TableForecast:
		return "Forecast Tracker"
	default:
		return "Actual FTE"
	}
}

// ActualFTE is one aggregated section total
type ActualFTE struct {
	Section           string  `json:"section"`
	Rolling12MonthFTE float64 `json:"rolling_12month_fte"`
}

// OptimalFTE is a user maintained target. Either field may be missing.
type OptimalFTE struct {
	Section    Cell `json:"section"`
	OptimalFTE Cell `json:"optimal_fte"`
}

// ForecastEntry is one planned staffing change. Values are kept as entered.
type ForecastEntry struct {
	Radiologist   Cell `json:"radiologist"`
	Type          Cell `json:"type"`
	EffectiveDate Cell `json:"effective_date"`
	FTEChange     Cell `json:"fte_change"`
	Section       Cell `json:"section"`
}

// ActualTable converts aggregated records back into tabular form
func ActualTable(records []ActualFTE) Table {
	t := EmptyTable(ActualSchema)
	for _, r := range records {
		t.AppendRow(Text(r.Section), Number(r.Rolling12MonthFTE))
	}
	return t
}

// OptimalRecords reads the optimal table by column name
func OptimalRecords(t Table) []OptimalFTE {
	out := make([]OptimalFTE, 0, t.Len())
	for i := range t.Rows {
		out = append(out, OptimalFTE{
			Section:    t.Cell(i, ColSection),
			OptimalFTE: t.Cell(i, ColOptimalFTE),
		})
	}
	return out
}

// ForecastRecords reads the forecast table by column name
func ForecastRecords(t Table) []ForecastEntry {
	out := make([]ForecastEntry, 0, t.Len())
	for i := range t.Rows {
		out = append(out, ForecastEntry{
			Radiologist:   t.Cell(i, ColRadiologist),
			Type:          t.Cell(i, ColType),
			EffectiveDate: t.Cell(i, ColEffectiveDate),
			FTEChange:     t.Cell(i, ColFTEChange),
			Section:       t.Cell(i, ColSection),
		})
	}
	return out
}

// SeriesPoint is one bar in the overview chart. A nil Value means the
// section has no value for that series.
type SeriesPoint struct {
	Section string   `json:"section"`
	Series  string   `json:"series"`
	Value   *float64 `json:"value"`
}

// SeriesSet is the long-form input to the grouped bar chart
type SeriesSet struct {
	Title    string        `json:"title"`
	Sections []string      `json:"sections"`
	Series   []string      `json:"series"`
	Points   []SeriesPoint `json:"points"`
	NoData   bool          `json:"no_data"`
}

// Lookup returns the point for a section and series, if present
func (s SeriesSet) Lookup(section, series string) (SeriesPoint, bool) {
	for _, p := range s.Points {
		if p.Section == section && p.Series == series {
			return p, true
		}
	}
	return SeriesPoint{}, false
}

// MinValue returns the smallest non-nil value, or 0
func (s SeriesSet) MinValue() float64 {
	var min float64
	for _, p := range s.Points {
		if p.Value != nil && *p.Value < min {
			min = *p.Value
		}
	}
	return min
}

// MaxValue returns the largest non-nil value, or 0
func (s SeriesSet) MaxValue() float64 {
	var max float64
	for _, p := range s.Points {
		if p.Value != nil && *p.Value > max {
			max = *p.Value
		}
	}
	return max
}
