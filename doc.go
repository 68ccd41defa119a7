// Package goGuard provides an in-process abuse detection and admission layer
// for authentication services: per-client token bucket rate limiting,
// failed-login and registration tracking with alerts, revoked token
// blacklisting, and short-lived one-time codes for 2FA.
//
// A [Guard] is safe to call from many goroutines after [Builder.Build].
//
// # Architecture boundaries
//
// goGuard is the public surface. It exposes [Guard], [Builder], [Config] and value types
// (VerifyResult, SecurityMetrics, Alert, etc.). All stores live under internal/ and are
// never exported.
//
// # What this package must NOT do
//
//   - Perform network I/O. External delivery happens in caller-supplied audit sinks.
//   - Run background goroutines other than the audit dispatcher. Expired state is
//     removed lazily on access and by [Guard.Cleanup], which hosts call periodically.
//   - Share state across processes. Every decision uses local memory only.
//
// # Performance contract
//
// Allow and IsRevoked are the hot paths. Neither holds more than one shard lock at a
// time, and neither blocks on I/O.
package goGuard
