// Package security builds the read-only posture report for a configured Guard.
//
// # What this package must NOT do
//
//   - Read live counters. The report describes configuration only.
//   - Import goGuard.
package security
