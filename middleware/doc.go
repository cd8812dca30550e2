// Package middleware exposes HTTP adapters for the goSession request gate.
//
// # Guards
//
//   - [Guard]: full gate: access token, refresh fallback, user lookup, renewed
//     access cookie.
//   - [RequireAccess]: stateless access-token check, no store or user lookup.
//
// Both guards read session tokens from the Cookie header with [ExtractTokens]
// and inject results into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// authentication logic itself; all decisions are delegated to the Engine.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access the refresh store (Engine handles I/O).
package middleware
