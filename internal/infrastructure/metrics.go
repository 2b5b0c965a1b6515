package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics holds all application-specific instruments. A nil
// *BusinessMetrics is valid and records nothing.
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Register metrics
	RegisterLoadsTotal      metric.Int64Counter
	RegisterRowsLoaded      metric.Int64Counter
	RegisterUnparsableDates metric.Int64Counter
	RegisterLoadDuration    metric.Float64Histogram

	// Dashboard metrics
	DashboardComputations    metric.Int64Counter
	DashboardComputeDuration metric.Float64Histogram
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		m   BusinessMetrics
		err error
	)

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.RegisterLoadsTotal, err = meter.Int64Counter(
		"register_loads_total",
		metric.WithDescription("Container register loads by source and outcome"),
	); err != nil {
		return nil, err
	}
	if m.RegisterRowsLoaded, err = meter.Int64Counter(
		"register_rows_loaded_total",
		metric.WithDescription("Register rows read by successful loads"),
	); err != nil {
		return nil, err
	}
	if m.RegisterUnparsableDates, err = meter.Int64Counter(
		"register_unparsable_dates_total",
		metric.WithDescription("Register rows whose delivery date could not be parsed"),
	); err != nil {
		return nil, err
	}
	if m.RegisterLoadDuration, err = meter.Float64Histogram(
		"register_load_duration_seconds",
		metric.WithDescription("Time spent reading and normalising a register workbook"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.DashboardComputations, err = meter.Int64Counter(
		"dashboard_computations_total",
		metric.WithDescription("Dashboard and map computations by kind and granularity"),
	); err != nil {
		return nil, err
	}
	if m.DashboardComputeDuration, err = meter.Float64Histogram(
		"dashboard_compute_duration_seconds",
		metric.WithDescription("Dashboard computation duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

func outcome(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("status", "failure")
	}
	return attribute.String("status", "success")
}

// RecordRegisterLoad records one register load attempt
func (m *BusinessMetrics) RecordRegisterLoad(ctx context.Context, source string, rows, unparsable int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("source", source), outcome(err))
	m.RegisterLoadsTotal.Add(ctx, 1, attrs)
	m.RegisterLoadDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		return
	}
	m.RegisterRowsLoaded.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("source", source)))
	m.RegisterUnparsableDates.Add(ctx, int64(unparsable), metric.WithAttributes(attribute.String("source", source)))
}

// RecordComputation records one dashboard or map computation
func (m *BusinessMetrics) RecordComputation(ctx context.Context, kind, granularity string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("granularity", granularity),
		outcome(err),
	)
	m.DashboardComputations.Add(ctx, 1, attrs)
	m.DashboardComputeDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordHTTPRequest records a finished HTTP request
func (m *BusinessMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// TrackActiveRequest increments the in-flight gauge and returns its release
func (m *BusinessMetrics) TrackActiveRequest(ctx context.Context) func() {
	if m == nil {
		return func() {}
	}
	m.HTTPActiveRequests.Add(ctx, 1)
	return func() { m.HTTPActiveRequests.Add(ctx, -1) }
}
