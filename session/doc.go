// Package session persists refresh tokens.
//
// A refresh token is honoured only while its [Record] exists in a
// [RefreshStore]; logout deletes the record and thereby revokes the token
// before its signed expiry. Two backends are provided: [RedisStore] (keys
// expire with the token, a per-subject set supports logout-all) and
// [PostgresStore] (the refresh_tokens table).
//
// # Architecture boundaries
//
// Records are keyed by [HashToken] of the raw token value. This package does
// NOT decode or verify tokens; signature and expiry checks belong to the jwt
// package and the engine.
//
// # What this package must NOT do
//
//   - Import goSession, jwt, or middleware (no upward imports).
//   - Write raw token values to the backend.
package session
