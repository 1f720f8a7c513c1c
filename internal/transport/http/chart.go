package http

import (
	"math"
	"strconv"

	"fteapp/internal/dataprocessing"
	"fteapp/pkg/contracts/domain"
)

// Chart layout, in SVG user units
const (
	chartWidth        = 960
	chartHeight       = 480
	chartMarginLeft   = 70
	chartMarginRight  = 170
	chartMarginTop    = 50
	chartMarginBottom = 130
	chartYTicks       = 5

	// TickAngle rotates the section labels under the x axis
	TickAngle = -45
)

var seriesColors = []string{"#636efa", "#ef553b", "#00cc96", "#ab63fa"}

// Chart is the geometry of the grouped bar chart on the overview page
type Chart struct {
	Title       string
	YLabel      string
	LegendTitle string
	Width       int
	Height      int
	TickAngle   int

	PlotLeft   float64
	PlotTop    float64
	PlotRight  float64
	PlotBottom float64
	// Baseline is the y of the zero line; negative bars hang below it
	Baseline float64

	Bars   []ChartBar
	XTicks []ChartTick
	YTicks []ChartTick
	Legend []LegendEntry
	Empty  bool
}

// ChartBar is one drawn bar
type ChartBar struct {
	X, Y, Width, Height float64
	Color               string
	Section             string
	Series              string
	Value               string
}

// ChartTick is an axis label position
type ChartTick struct {
	X, Y  float64
	Label string
}

// LegendEntry is one series swatch
type LegendEntry struct {
	X, Y   float64
	Color  string
	Series string
}

// NewChart lays out set as bars grouped by section. Points with no value
// get no bar; their slot in the group stays empty.
func NewChart(set domain.SeriesSet) Chart {
	title := set.Title
	if title == "" {
		title = dataprocessing.ChartTitle
	}
	c := Chart{
		Title:       title,
		YLabel:      dataprocessing.ColFTEValue,
		LegendTitle: dataprocessing.ColFTEType,
		Width:       chartWidth,
		Height:      chartHeight,
		TickAngle:   TickAngle,
		PlotLeft:    chartMarginLeft,
		PlotTop:     chartMarginTop,
		PlotRight:   chartWidth - chartMarginRight,
		PlotBottom:  chartHeight - chartMarginBottom,
		Empty:       set.NoData || len(set.Sections) == 0,
	}

	colors := make(map[string]string, len(set.Series))
	for i, name := range set.Series {
		colors[name] = seriesColors[i%len(seriesColors)]
		c.Legend = append(c.Legend, LegendEntry{
			X:      c.PlotRight + 20,
			Y:      c.PlotTop + 24 + float64(i)*22,
			Color:  colors[name],
			Series: name,
		})
	}

	lo, hi, step := niceRange(set.MinValue(), set.MaxValue(), chartYTicks)
	plotHeight := c.PlotBottom - c.PlotTop
	yOf := func(v float64) float64 {
		return c.PlotBottom - plotHeight*(v-lo)/(hi-lo)
	}
	c.Baseline = yOf(0)
	steps := int(math.Round((hi - lo) / step))
	for i := 0; i <= steps; i++ {
		v := lo + step*float64(i)
		c.YTicks = append(c.YTicks, ChartTick{
			X:     c.PlotLeft - 8,
			Y:     yOf(v),
			Label: formatTick(v),
		})
	}

	if c.Empty {
		return c
	}

	groupWidth := (c.PlotRight - c.PlotLeft) / float64(len(set.Sections))
	seriesCount := len(set.Series)
	if seriesCount == 0 {
		seriesCount = 1
	}
	barWidth := groupWidth * 0.8 / float64(seriesCount)

	for i, section := range set.Sections {
		groupLeft := c.PlotLeft + float64(i)*groupWidth
		c.XTicks = append(c.XTicks, ChartTick{
			X:     groupLeft + groupWidth/2,
			Y:     c.PlotBottom + 14,
			Label: section,
		})

		for j, series := range set.Series {
			p, ok := set.Lookup(section, series)
			if !ok || p.Value == nil {
				continue
			}
			end := yOf(*p.Value)
			c.Bars = append(c.Bars, ChartBar{
				X:       groupLeft + groupWidth*0.1 + float64(j)*barWidth,
				Y:       math.Min(end, c.Baseline),
				Width:   barWidth,
				Height:  math.Abs(end - c.Baseline),
				Color:   colors[series],
				Section: section,
				Series:  series,
				Value:   strconv.FormatFloat(*p.Value, 'f', -1, 64),
			})
		}
	}
	return c
}

// niceScale returns an axis maximum of ticks steps of 1, 2, 2.5 or 5
// times a power of ten that covers max
func niceScale(max float64, ticks int) (top, step float64) {
	if max <= 0 || math.IsNaN(max) || math.IsInf(max, 0) {
		return float64(ticks), 1
	}
	raw := max / float64(ticks)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		step = m * mag
		if step*float64(ticks) >= max {
			break
		}
	}
	return step * float64(ticks), step
}

// niceRange widens niceScale to an axis from lo to hi that includes zero,
// with both ends on whole steps
func niceRange(min, max float64, ticks int) (lo, hi, step float64) {
	if math.IsNaN(min) || math.IsInf(min, 0) || min >= 0 {
		hi, step = niceScale(max, ticks)
		return 0, hi, step
	}
	if math.IsNaN(max) || math.IsInf(max, 0) || max <= 0 {
		lo, step = niceScale(-min, ticks)
		return -lo, 0, step
	}
	_, step = niceScale(max-min, ticks)
	return math.Floor(min/step) * step, math.Ceil(max/step) * step, step
}

func formatTick(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		r = 0 // no "-0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
