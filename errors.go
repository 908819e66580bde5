package goDispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingParameter is an exported constant or variable used by the dispatch engine.
	ErrMissingParameter = errors.New("missing required parameter")
	// ErrRecoveredViaReauth is an exported constant or variable used by the dispatch engine.
	ErrRecoveredViaReauth = errors.New("session expired; request handed to reauthentication")
	// ErrAuthenticationFailed is an exported constant or variable used by the dispatch engine.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrNoActiveSession is an exported constant or variable used by the dispatch engine.
	ErrNoActiveSession = errors.New("no active session")
	// ErrNoStoredCredentials is an exported constant or variable used by the dispatch engine.
	ErrNoStoredCredentials = errors.New("no stored credentials")
	// ErrUnknownCommand is an exported constant or variable used by the dispatch engine.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrDispatcherNotReady is an exported constant or variable used by the dispatch engine.
	ErrDispatcherNotReady = errors.New("dispatcher not initialized")
	// ErrDispatcherClosed is an exported constant or variable used by the dispatch engine.
	ErrDispatcherClosed = errors.New("dispatcher closed")
	// ErrTransportRequired is an exported constant or variable used by the dispatch engine.
	ErrTransportRequired = errors.New("transport required")
	// ErrStoreRequired is an exported constant or variable used by the dispatch engine.
	ErrStoreRequired = errors.New("session store required")
)

// MissingParameterError reports a required parameter that was absent or nil
// when a command was dispatched. Redacted carries a copy of the supplied
// parameters with sensitive values replaced by the redaction marker, safe to
// log as-is.
type MissingParameterError struct {
	Command   string
	Parameter string
	Redacted  map[string]any
}

func (e *MissingParameterError) Error() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	payload := []byte("{}")
	if err := enc.Encode(e.Redacted); err == nil {
		payload = bytes.TrimRight(buf.Bytes(), "\n")
	}
	return fmt.Sprintf("parameter %s is required for command %s, parameters: %s", e.Parameter, e.Command, payload)
}

// Is matches [ErrMissingParameter] so callers can branch with errors.Is
// without inspecting the concrete type.
func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}
