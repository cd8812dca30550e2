// Package internal groups helpers that are private to goSession.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - config: environment-driven server configuration
//   - flows: pure-function flow orchestrators for Engine operations
//   - httpapi: HTTP handlers for the reference server
//   - logging: slog logger construction
//   - migrations: embedded goose SQL migrations
//   - rate: Redis-backed login and refresh rate limits
//   - users: user model, Postgres repository and provider adapter
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSession API.
//   - Be imported by any package outside the goSession module.
package internal
