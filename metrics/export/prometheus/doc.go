// Package prometheus exposes goGuard counters through client_golang.
//
// [Collector] implements prometheus.Collector; register it with any
// registry, or mount [Handler] to serve it from a private one. Counter names
// are goguard_*_total and the one histogram is goguard_sweep_latency_seconds.
// When the source is a [goGuard.Guard], live store sizes are also exported as
// gauges.
package prometheus
