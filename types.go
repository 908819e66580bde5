package goDispatch

import (
	"context"

	"github.com/MrEthical07/goDispatch/session"
)

// TransportType selects the wire method used for a command.
//
//	Docs: docs/transport.md
type TransportType uint8

const (
	// TransportPost is an exported constant or variable used by the dispatch engine.
	TransportPost TransportType = iota
	// TransportGet is an exported constant or variable used by the dispatch engine.
	TransportGet
)

// JSON codes returned in the response envelope. The server signals session
// expiry with CodeExpiredAuthToken regardless of the HTTP status line.
const (
	// CodeSuccess is an exported constant or variable used by the dispatch engine.
	CodeSuccess = 200
	// CodeExpiredAuthToken is an exported constant or variable used by the dispatch engine.
	CodeExpiredAuthToken = 407
)

// Request is one named command ready for the wire. ID is assigned at dispatch
// time and survives only inside the coordinator and queue entries; the request
// itself is not retained after its call completes.
type Request struct {
	ID         string
	Command    string
	Parameters map[string]any
	Type       TransportType
}

// Response is the envelope every transport call resolves to. JSONCode carries
// the application-level status; AuthToken is set only by the Authenticate
// exchange; command-specific fields land in Data.
type Response struct {
	JSONCode  int            `json:"jsonCode"`
	Message   string         `json:"message,omitempty"`
	AuthToken string         `json:"authToken,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Expired reports whether the response signals an expired session token.
func (r Response) Expired() bool {
	return r.JSONCode == CodeExpiredAuthToken
}

// OK reports whether the response carries an application-level success.
func (r Response) OK() bool {
	return r.JSONCode == CodeSuccess
}

// CommandSpec is the per-command manifest entry: the ordered list of required
// parameter names and the non-retryable flag honored by the reauthentication
// coordinator. Configuration data, never computed.
type CommandSpec struct {
	Required []string
	NoRetry  bool
}

// Transport performs one network call and resolves the response envelope.
// Implementations must be safe for concurrent use. Transport is always invoked
// directly — queue pause state is enforced above it, which is what lets the
// Authenticate exchange and replay bypass a paused queue.
type Transport interface {
	Send(ctx context.Context, command string, parameters map[string]any, typ TransportType) (Response, error)
}

// RequestQueue is the shared deferred-request collaborator. Pause and Resume
// are exclusively driven by the reauthentication coordinator; enqueued entries
// re-enter [Dispatcher.Dispatch] once resumed. Fail drops every pending entry
// with the given error (used when the Authenticate exchange itself fails, so
// queued callers are not left to time out).
type RequestQueue interface {
	Pause()
	Resume()
	Enqueue(req Request)
	Fail(err error)
}

// SignInRedirector is the terminal UI collaborator invoked on unrecoverable
// auth failure. Fire-and-forget from the dispatcher's perspective.
type SignInRedirector interface {
	RedirectToSignIn(reason string)
}

// SignInRedirectorFunc adapts a plain function to [SignInRedirector].
type SignInRedirectorFunc func(reason string)

// RedirectToSignIn calls f.
func (f SignInRedirectorFunc) RedirectToSignIn(reason string) { f(reason) }

// Credentials is re-exported from session for builder callers.
type Credentials = session.Credentials
