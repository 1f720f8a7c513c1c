// Package config loads the dashboard configuration and resolves the
// workbook locations it reads and writes.
//
// # Configuration Sources
//
// Values are applied in this order, later sources winning:
//
//	1. Built-in defaults (Default)
//	2. config.yaml, searched in the working directory and configs/
//	3. Environment variables with the FTE_ prefix
//
// # Environment Variables
//
//	FTE_SERVER_PORT=8080
//	FTE_PATHS_DATA_DIR=/srv/fte/data
//	FTE_WORKBOOKS_ACTUAL_SHEET="FYTD 25-26- Cumulative Summary"
//	FTE_CACHE_TTL=10m
//	FTE_CACHE_INVALIDATE_ON_SAVE=true
//	FTE_LOGGING_LEVEL=debug
//
// # Path Management
//
// Paths resolves the data directory and the three workbook files against
// the base directory (the working directory unless configured):
//
//	paths, err := config.NewPaths(cfg)
//	actual := paths.ActualWorkbook
package config
