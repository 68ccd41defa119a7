// Package internal contains helper utilities that are intentionally private to goGuard,
// including secure one-time code generation and identifier helpers.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - config: viper/godotenv configuration for the reference server
//   - limiters: sliding-window attempt tracking
//   - logging: zap logger construction
//   - monitor: abuse detection over failed logins and registrations
//   - rate: token bucket admission control
//   - security: configuration report assembly
//   - server: chi based reference HTTP server and credential directory
//   - stores: sharded in-memory stores (revocations, one-time codes)
//
// # What this package must NOT do
//
//   - Export types that appear in the public goGuard API.
//   - Be imported by any package outside the goGuard module.
package internal
