// Package http implements the HTTP handlers of the FTE dashboard. Handlers
// stay thin: they parse the request, call the dashboard service and format
// the response.
//
// # Routes
//
// PagesHandler serves the three HTML views from embedded templates:
//
//	GET  /              redirect to /overview
//	GET  /overview      grouped bar chart of actual vs optimal FTE
//	GET  /optimal       editable optimal FTE grid
//	POST /optimal       add_row, remove_row=<i> or save
//	GET  /forecast      editable forecast grid
//	POST /forecast      add_row, remove_row=<i> or save
//	POST /refresh       clear the cache and reload
//
// APIHandler serves the JSON API, mounted under /api:
//
//	GET  /overview
//	GET  /tables/{name}             ETag and If-None-Match
//	PUT  /tables/{name}             optimal and forecast only
//	GET  /tables/{name}/export.csv
//	GET  /cache/stats
//	POST /cache/clear
//
// # Error Handling
//
// Service errors are matched with errors.Is and converted to APIErrors, which
// the ErrorHandler renders as RFC 7807 problem details:
//
//	{
//	    "type": "/errors/table/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "table \"payroll\" not found",
//	    "instance": "/api/tables/payroll",
//	    "error_code": "TABLE_NOT_FOUND"
//	}
//
// The HTML views show load and save errors as alert banners instead and keep
// the posted grid so edits are not lost.
package http
