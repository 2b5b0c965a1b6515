// Package app wires the dashboard server together.
//
// NewApplication loads configuration, initialises logging and OpenTelemetry,
// loads the container register from its configured source and builds the
// chi router. Run serves HTTP until the context is cancelled or the process
// receives SIGINT/SIGTERM, then shuts down gracefully.
//
// Middleware order for every request:
//
//	RequestID → RealIP → StructuredLogger → Recovery → SecurityHeaders →
//	CORS → RateLimiter → OTel → Timeout
//
// /metrics is served outside the chain when metrics are enabled.
package app
