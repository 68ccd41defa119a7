// Package middleware exposes net/http adapters that put a [goGuard.Guard] in
// front of handlers.
//
// # Adapters
//
//   - [RateLimit]: token bucket admission per client IP; 429 on denial.
//   - [Authenticate]: bearer JWT verification plus revocation check; 401 on failure.
//   - [SecurityLog]: request IDs and security-relevant access logging via zap.
//   - [ClientIP]: client identity from forwarding headers or the connection.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Guard calls. It does NOT implement
// detection logic itself; every decision is delegated to the Guard.
//
// # What this package must NOT do
//
//   - Record login outcomes. Handlers know whether credentials matched; middleware does not.
//   - Hold state of its own beyond what is placed in the request context.
package middleware
