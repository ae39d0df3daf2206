// Package observability wires OpenTelemetry tracing and metrics for the API
// client.
//
// InitTracer and InitMeter install OTLP/HTTP exporters on the global
// providers. The classifier opens one Operation per executed request; the
// operation owns a client span and reports the outcome kind to Metrics.
//
// # Configuration
//
//	observability:
//	  enabled: true
//	  endpoint: "localhost:4318"
//	  sample_rate: 1.0
package observability
