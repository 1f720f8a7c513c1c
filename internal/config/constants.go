package config

import "time"

// Application constants
const (
	AppName        = "FTE Optimization Dashboard"
	AppServiceName = "fte-dashboard"

	// Workbook names inside the data directory
	ActualWorkbookName   = "FTE_analysis_AG.xlsx"
	OptimalWorkbookName  = "optimal_fte.xlsx"
	ForecastWorkbookName = "fte_forecast.xlsx"

	// ActualSheetName is the cumulative summary sheet holding per-radiologist rolling FTE
	ActualSheetName = "FYTD 25-26- Cumulative Summary"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Request bodies carry whole tables
	DefaultMaxBodyBytes = 5 << 20

	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// File Paths (relative to the base directory)
	DefaultDataDir = "data"
	DefaultLogsDir = "logs"
)
