// Package services holds the dashboard's business logic between the HTTP
// handlers and the workbook files.
//
// DashboardService loads the three tables, derives the actual-FTE table and
// the overview chart series, and saves edited optimal and forecast tables.
// It depends on small interfaces so handlers and tests can swap the loader,
// the workbook writer and the change notifier:
//
//	svc := services.NewDashboardService(loader, codec, manager, logger,
//	    services.WithNotifier(hub),
//	    services.WithSaveObserver(metrics),
//	)
//	view, err := svc.LoadTable(ctx, domain.TableOptimal)
//
// Errors are returned as sentinels (ErrTableNotFound, ErrTableReadOnly,
// ErrInvalidTable, ErrSaveFailed) wrapped with context; transport code maps
// them with errors.Is.
//
// HealthService reports liveness, readiness and version information. The
// readiness check fails when the data directory is not writable.
package services
