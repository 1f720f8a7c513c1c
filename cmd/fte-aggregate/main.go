// Command fte-aggregate prints the per-section actual FTE totals of the
// cumulative summary workbook as CSV.
//
//	fte-aggregate [-file FTE_analysis_AG.xlsx] [-sheet NAME] [-optimal optimal_fte.xlsx] [-out totals.csv]
//	fte-aggregate -list-sheets [-file FTE_analysis_AG.xlsx]
//
// With -optimal the output is the long-form chart series instead: one row
// per section and FTE type.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"fteapp/internal/config"
	"fteapp/internal/dataprocessing"
	"fteapp/internal/exporter"
	"fteapp/internal/files"
	"fteapp/internal/infrastructure"
	"fteapp/internal/workbook"
	"fteapp/pkg/contracts"
	"fteapp/pkg/contracts/domain"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("fte-aggregate", flag.ContinueOnError)
	flags.SetOutput(stderr)
	file := flags.String("file", "", "actual FTE workbook (defaults to the configured data/FTE_analysis_AG.xlsx)")
	sheet := flags.String("sheet", "", "sheet holding the cumulative summary (defaults to the configured sheet)")
	optimal := flags.String("optimal", "", "optimal FTE workbook; when set, print the chart series instead")
	out := flags.String("out", "", "output CSV file (defaults to stdout)")
	bom := flags.Bool("bom", false, "prefix the CSV with a UTF-8 BOM for Excel")
	level := flags.String("log-level", "warn", "log level written to stderr")
	listSheets := flags.Bool("list-sheets", false, "print the workbook's sheet names and exit")
	version := flags.Bool("version", false, "print the version and exit")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *version {
		fmt.Fprintln(stdout, contracts.GetVersionString())
		return 0
	}

	// stdout carries the CSV, so logs go to stderr
	logger := infrastructure.NewLogger(stderr, *level)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("Failed to load config, using defaults", slog.String("error", err.Error()))
		cfg = config.Default()
	}
	paths, err := config.NewPaths(cfg)
	if err != nil {
		logger.Error("Failed to resolve paths", slog.String("error", err.Error()))
		return 1
	}
	if *file == "" {
		*file = paths.ActualWorkbook
	}
	if *sheet == "" {
		*sheet = paths.ActualSheet
	}

	codec := workbook.NewCodec()
	if *listSheets {
		names, err := codec.SheetNames(*file)
		if err != nil {
			infrastructure.WithError(logger, err).Error("Failed to list sheets", slog.String("path", *file))
			fmt.Fprintln(stderr, err)
			return 1
		}
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}

	loader := files.NewLoader(codec, nil, logger)

	actual := loader.Load(ctx, *file, domain.ActualSourceSchema, *sheet)
	if actual.Err != nil {
		infrastructure.WithError(logger, actual.Err).Error("Failed to read actual FTE workbook")
		fmt.Fprintln(stderr, actual.Err)
		return 1
	}
	if actual.Missing {
		logger.Warn("Actual FTE workbook not found, output is empty", slog.String("path", *file))
	}

	tbl := dataprocessing.AggregateActual(actual.Table)
	if *optimal != "" {
		targets := loader.Load(ctx, *optimal, domain.OptimalSchema, "")
		if targets.Err != nil {
			infrastructure.WithError(logger, targets.Err).Error("Failed to read optimal FTE workbook")
			fmt.Fprintln(stderr, targets.Err)
			return 1
		}
		tbl = dataprocessing.SeriesTable(dataprocessing.BuildChartSeries(tbl, targets.Table))
	}

	writer := exporter.NewCSVWriter(logger)
	opts := exporter.WriteOptions{BOMPrefix: *bom}
	if *out != "" {
		err = writer.WriteTableFile(*out, tbl, opts)
	} else {
		err = writer.WriteTable(stdout, tbl, opts)
	}
	if err != nil {
		infrastructure.WithError(logger, err).Error("Failed to write CSV")
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger.Info("Aggregation complete",
		slog.String("file", *file),
		slog.String("sheet", *sheet),
		slog.Int("rows", tbl.Len()))
	return 0
}
