// Package flows contains pure-function orchestrators for every Dispatcher operation.
//
// Each flow function (RequireParameters, Enhance, RunDispatch, RunReauth)
// accepts a typed dependency struct and returns results without side-effects
// beyond those dependencies. This design enables exhaustive unit testing with
// mock dependencies and keeps the Dispatcher type thin.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the transport, the session mirror, and the
// command manifest. They do NOT own any of these resources — ownership stays
// with the Dispatcher, and queue pause/resume plus the authentication state
// machine stay in the root coordinator.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goDispatch (to avoid import cycles).
//   - Perform I/O directly — all I/O is mediated through dependency functions.
package flows
