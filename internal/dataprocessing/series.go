package dataprocessing

import (
	"fteapp/pkg/contracts/domain"
)

// ChartTitle is the heading of the overview chart
const ChartTitle = "Actual vs Optimal FTE by Section"

// UploadWarning is shown on the overview when no actual data is available
const UploadWarning = "Upload 'FTE_analysis_AG.xlsx' to the /data folder."

// BuildChartSeries left-joins the aggregated actual table with the optimal
// table on Section and melts the result to long form. Each actual section
// yields an actual point then an optimal point; sections only present in
// optimal are dropped. An empty actual table sets NoData.
func BuildChartSeries(actual, optimal domain.Table) domain.SeriesSet {
	set := domain.SeriesSet{
		Title:    ChartTitle,
		Sections: []string{},
		Series:   []string{domain.SeriesActual, domain.SeriesOptimal},
		Points:   []domain.SeriesPoint{},
	}

	sectionIdx := actual.ColumnIndex(domain.ColSection)
	fteIdx := actual.ColumnIndex(domain.ColRolling12MonthFTE)
	if actual.IsEmpty() || sectionIdx < 0 || fteIdx < 0 {
		set.NoData = true
		return set
	}

	targets := optimalBySection(optimal)

	for i := range actual.Rows {
		section := actual.Cell(i, domain.ColSection).String()
		set.Sections = append(set.Sections, section)

		set.Points = append(set.Points,
			domain.SeriesPoint{Section: section, Series: domain.SeriesActual, Value: floatPtr(actual.Cell(i, domain.ColRolling12MonthFTE))},
			domain.SeriesPoint{Section: section, Series: domain.SeriesOptimal, Value: targets[section]},
		)
	}

	return set
}

// optimalBySection keeps the first optimal value seen for each section.
// A section whose value is missing or non-numeric maps to nil.
func optimalBySection(optimal domain.Table) map[string]*float64 {
	out := make(map[string]*float64)
	for _, rec := range domain.OptimalRecords(optimal) {
		if rec.Section.IsMissing() {
			continue
		}
		key := rec.Section.String()
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = floatPtr(rec.OptimalFTE)
	}
	return out
}

func floatPtr(c domain.Cell) *float64 {
	if c.IsMissing() {
		return nil
	}
	v, ok := c.Float()
	if !ok {
		return nil
	}
	return &v
}

// Column names of the long-form series table
const (
	ColFTEType  = "FTE Type"
	ColFTEValue = "FTE"
)

// SeriesTable flattens the long-form points into a table with columns
// Section, FTE Type and FTE. Absent values become missing cells.
func SeriesTable(set domain.SeriesSet) domain.Table {
	tbl := domain.EmptyTable(domain.Schema{
		Name:    "series",
		Columns: []string{domain.ColSection, ColFTEType, ColFTEValue},
	})
	for _, p := range set.Points {
		value := domain.Missing()
		if p.Value != nil {
			value = domain.Number(*p.Value)
		}
		tbl.AppendRow(domain.Text(p.Section), domain.Text(p.Series), value)
	}
	return tbl
}
