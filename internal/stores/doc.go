// Package stores provides sharded, in-memory, short-lived record stores for
// security-sensitive state: revoked token identifiers and one-time codes.
//
// # Design
//
// Every store is built on [Shards], a murmur3-partitioned map with one mutex
// per shard. Per-key mutations run under the owning shard's lock, so they
// are linearizable for that key and never block keys in other shards.
// Expiry is lazy: the read or write that discovers an expired record removes
// it, and Sweep removes every expired record. No store starts a goroutine or
// timer; hosts call Sweep periodically to bound memory under attack.
//
// # Architecture boundaries
//
// This package owns storage and concurrency control for transient records.
// It does NOT make admission decisions, emit audit events or log. Those
// responsibilities belong to the goGuard facade.
//
// # What this package must NOT do
//
//   - Import goGuard or the monitor, rate or audit packages.
//   - Log or expose plaintext codes.
//   - Use non-constant-time comparisons for code matching.
package stores
