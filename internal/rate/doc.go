// Package rate provides Redis-backed fixed-window counters for login and
// refresh-path throttling.
//
// # Window semantics
//
// INCR + conditional EXPIRE on first hit. Key layout under the configured prefix:
//   - <prefix>:rl:login:<identifier>  failed logins per identifier
//   - <prefix>:rl:ip:<ip>             failed logins per client IP
//   - <prefix>:rl:refresh:<hash>      refresh-path authentications per token hash
//
// # What this package must NOT do
//
//   - Decide what counts as a failure (callers do).
//   - Be imported outside the goSession module.
package rate
