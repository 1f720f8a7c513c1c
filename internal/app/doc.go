// Package app wires the FTE dashboard together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, config.yaml, FTE_* environment)
//	2. Resolve paths and create the data and logs directories
//	3. Initialize logging and OpenTelemetry
//	4. Build the workbook cache, loader, websocket hub and services
//	5. Set up middleware, handlers and the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM. Stop then drains in-flight requests,
// closes websocket clients, stops the cache janitor and flushes telemetry.
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
