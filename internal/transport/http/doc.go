// Package http implements the JSON and CSV handlers of the dashboard API.
//
// Handlers stay thin: they decode and validate query parameters, call a
// service and render the result with go-chi/render. Every failure goes
// through apierrors.ErrorHandler, which answers with RFC 7807 problem
// details:
//
//	GET /api/dashboard?week=29&granularity=month&month=2025-08
//	GET /api/map?country=Brazil
//	POST /api/register/upload   (multipart field "file")
//
// Selection parameters shared by the dashboard and map endpoints:
//
//	week         catalog index; omitted means the week containing now
//	granularity  week, month or quarter (default week)
//	month        YYYY-MM anchor for the month view and month KPIs
//	now          YYYY-MM-DD reference date for days until arrival
package http
