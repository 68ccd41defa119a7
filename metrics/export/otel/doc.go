// Package otel publishes goGuard counters through an OpenTelemetry Meter.
//
// [NewExporter] registers an Int64ObservableCounter per counter, an
// Int64ObservableGauge per histogram bucket, and gauges for live store sizes.
// The caller owns the MeterProvider.
package otel
