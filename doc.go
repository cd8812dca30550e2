// Package goSession provides a cookie-carried dual-token session core: short-lived
// HS256 access tokens, long-lived store-tracked refresh tokens, and a request gate
// that falls back from the access token to the refresh token and renews access.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config], the
// [SessionVerifier] strategy and value types (AuthResult, TokenPair, MetricsSnapshot).
// Flow orchestration, rate limiting and audit dispatch live under internal/ and are
// never exported. Token encoding lives in jwt/, refresh records in session/, and the
// HTTP adapter in middleware/.
//
// # What this package must NOT do
//
//   - Read process environment or hold global state; the secret is injected via [Config].
//   - Perform I/O outside of Engine methods (construction via Builder is allocation-only
//     until Build).
//   - Import any sub-package that re-imports goSession (no import cycles).
//
// # Performance contract
//
// Authenticate on the access path performs no store round-trip. The refresh path
// performs exactly one store lookup before decoding.
package goSession
