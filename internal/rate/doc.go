// Package rate provides the per-client token bucket limiter used for request
// admission.
//
// # Bucket semantics
//
// Each client identity gets one bucket per [Category], keyed
// "<client>:general" or "<client>:auth". Buckets start full, refill lazily at
// Capacity/Period tokens per second, and deny immediately when short. The
// refill math is golang.org/x/time/rate; this package adds keying, path
// classification, and eviction of idle buckets.
//
// # What this package must NOT do
//
//   - Block or queue callers waiting for tokens.
//   - Start background goroutines; eviction happens in [Limiter.Sweep].
//   - Be imported outside the goGuard module.
package rate
