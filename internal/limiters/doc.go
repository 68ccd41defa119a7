// Package limiters provides the sliding attempt window used to track failed
// logins and registrations.
//
// A [Window] counts attempts per key. A key's count survives as long as it
// keeps being recorded; once the configured window passes with no activity
// the entry is stale, is treated as absent by reads, and restarts at 1 on the
// next [Window.Record].
//
// # What this package must NOT do
//
//   - Decide what a threshold breach means. The monitor raises alerts.
//   - Run timers. Stale entries are removed on touch or by [Window.Sweep].
package limiters
