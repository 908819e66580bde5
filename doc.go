// Package goDispatch provides the authenticated command-dispatch layer for clients
// of a jsonCode-style remote API: named commands with parameter maps, transparent
// auth-token injection, session-expiry detection (jsonCode 407), and automatic
// re-authentication with replay of the failed request.
//
// The package is designed for concurrent client workloads: Dispatcher methods are
// safe to call from multiple goroutines after initialization through [Builder.Build].
// At most one Authenticate exchange is ever in flight; concurrent expirations are
// parked on the shared request queue until the winning cycle resolves.
//
// # Architecture boundaries
//
// goDispatch is the public surface. It exposes [Dispatcher], [Builder], [Config],
// the [Transport], [RequestQueue], and [SignInRedirector] collaborator interfaces,
// and value types (Request, Response, MetricsSnapshot, etc.). All internal
// coordination — flow orchestration, parameter validation and enhancement, audit
// dispatch — lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Perform HTTP I/O itself; every network leg goes through the caller-supplied
//     [Transport] (a form-POST implementation ships in transport/).
//   - Retry the Authenticate exchange through its own expiry handling: replay and
//     the exchange use the raw send path, structurally outside the 407 interceptor.
//   - Surface raw session-expiry responses to callers; they resolve via replay,
//     queueing, or the non-retryable drop rule.
//
// # Recovery contract
//
// Dispatch is the hot path. A non-407 response is returned unchanged, success or
// application-level failure. A 407 hands the request to the reauthentication
// coordinator, which pauses the queue, performs exactly one Authenticate exchange
// with the stored credentials, merges the fresh token into the session store, and
// replays the original request. Unrecoverable authentication failure always ends
// in a sign-in redirect, never a silent failure.
package goDispatch
