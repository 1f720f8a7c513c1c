package dataprocessing

import (
	"fmt"
	"math"
	"strconv"

	"fteapp/pkg/contracts/domain"
)

// ForecastSummary totals the planned staffing changes of the forecast table
type ForecastSummary struct {
	Entries   int
	Counted   int // entries whose FTE Change is numeric
	NetChange float64
}

// SummarizeForecast counts non-blank forecast rows and sums their numeric
// FTE changes. Rows with every cell missing are ignored.
func SummarizeForecast(tbl domain.Table) ForecastSummary {
	var s ForecastSummary
	for _, e := range domain.ForecastRecords(tbl) {
		if e.Radiologist.IsMissing() && e.Type.IsMissing() && e.EffectiveDate.IsMissing() &&
			e.FTEChange.IsMissing() && e.Section.IsMissing() {
			continue
		}
		s.Entries++
		if v, ok := e.FTEChange.Float(); ok && !math.IsInf(v, 0) {
			s.Counted++
			s.NetChange += v
		}
	}
	return s
}

// String renders the summary line shown above the forecast grid
func (s ForecastSummary) String() string {
	net := math.Round(s.NetChange*1000) / 1000
	sign := ""
	if net > 0 {
		sign = "+"
	} else if net == 0 {
		net = 0
	}
	noun := "entries"
	if s.Entries == 1 {
		noun = "entry"
	}
	return fmt.Sprintf("%d forecast %s, net FTE change %s%s", s.Entries, noun, sign,
		strconv.FormatFloat(net, 'f', -1, 64))
}
