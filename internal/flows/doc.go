// Package flows contains pure-function orchestrators for Engine operations.
//
// Each flow function (RunIssueRefresh, RunGate, RunLogin, RunLogout) accepts a
// typed dependency struct and returns a result carrying a failure kind. The
// root engine maps failure kinds to its public sentinel errors, metrics and
// audit events.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the refresh store, token codec and rate
// limiter. They do NOT own any of these resources; ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goSession (to avoid import cycles).
//   - Perform I/O directly; all I/O is mediated through dependency interfaces.
package flows
