// Package otel publishes goSession engine metrics through an OpenTelemetry
// Meter. The caller owns the MeterProvider.
package otel
