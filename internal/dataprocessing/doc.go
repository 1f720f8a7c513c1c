// Package dataprocessing turns the raw workbook tables of the FTE dashboard
// into the shapes the views need.
//
// Two transformations live here:
//
//  1. AggregateActual reduces the cumulative summary sheet to one
//     "Rolling 12month FTE" total per Section.
//  2. BuildChartSeries left-joins those totals with the optimal targets and
//     melts them into the long form used by the grouped bar chart.
//
// # Data Flow
//
//	FTE_analysis_AG.xlsx → Loader → AggregateActual ─┐
//	optimal_fte.xlsx     → Loader ───────────────────┴→ BuildChartSeries → Overview
//
// # Missing values
//
// A cell counts as missing when it has the Missing kind or is empty text.
// For the FTE column, text that does not parse as a number is also treated
// as missing, since it cannot be summed.
//
// Both functions are pure. They never fail; malformed input degrades to an
// empty result.
package dataprocessing
