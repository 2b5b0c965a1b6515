// Package services implements the dashboard use cases between the HTTP
// handlers and the core packages.
//
// DashboardService turns a Selection (week, granularity, optional month
// anchor and reference date) into KPIs, the delivery forecast series and the
// per-country map summary, reading records from the currently loaded
// register. HealthService reports liveness, readiness and build information.
//
// Services take their collaborators through small interfaces so they can be
// tested with testify mocks:
//
//	svc := services.NewDashboardService(store, catalog, tracer, metrics, logger)
//	d, err := svc.Dashboard(ctx, services.Selection{WeekIndex: services.CurrentWeek})
package services
