package flows

import "context"

// Envelope mirrors the transport response without importing the root package.
// The root converts to its public Response type; field layout must stay
// identical.
type Envelope struct {
	JSONCode  int
	Message   string
	AuthToken string
	Data      map[string]any
}

// SendFunc issues one raw transport call. typ carries the root TransportType
// value.
type SendFunc func(ctx context.Context, command string, parameters map[string]any, typ uint8) (Envelope, error)

// DispatchFailureKind classifies dispatch-leg failures for root-level mapping.
type DispatchFailureKind int

const (
	DispatchFailureNone DispatchFailureKind = iota
	DispatchFailureUnknownCommand
	DispatchFailureMissingParameter
	DispatchFailureNoToken
	DispatchFailureTransport
	DispatchFailureExpired
)

// DispatchResult carries either the resolved envelope or failure metadata.
type DispatchResult struct {
	Failure DispatchFailureKind
	Err     error
	Missing *MissingParameter
	// Enhanced holds the parameters actually sent, kept only so the expired
	// path can audit what went out.
	Enhanced map[string]any
	Response Envelope
}

// DispatchDeps captures dispatch flow dependencies.
type DispatchDeps struct {
	// Manifest resolves a command name to its required-parameter list. ok is
	// false for commands absent from the manifest.
	Manifest      func(command string) (required []string, ok bool)
	SensitiveKeys []string
	Marker        string
	Enhance       func(command string, parameters map[string]any) (map[string]any, EnhanceFailureKind)
	Send          SendFunc
	ExpiredCode   int
}

// RunDispatch executes one network leg: manifest check, required-parameter
// validation, enhancement, send, and expiry classification. It never recurses
// into recovery — the root coordinator owns that.
func RunDispatch(ctx context.Context, command string, parameters map[string]any, typ uint8, deps DispatchDeps) DispatchResult {
	required, ok := deps.Manifest(command)
	if !ok {
		return DispatchResult{Failure: DispatchFailureUnknownCommand}
	}

	if missing := RequireParameters(required, parameters, deps.SensitiveKeys, deps.Marker); missing != nil {
		return DispatchResult{
			Failure: DispatchFailureMissingParameter,
			Missing: missing,
		}
	}

	enhanced, failure := deps.Enhance(command, parameters)
	if failure == EnhanceFailureNoToken {
		return DispatchResult{Failure: DispatchFailureNoToken}
	}

	resp, err := deps.Send(ctx, command, enhanced, typ)
	if err != nil {
		return DispatchResult{
			Failure:  DispatchFailureTransport,
			Err:      err,
			Enhanced: enhanced,
		}
	}

	if resp.JSONCode == deps.ExpiredCode {
		return DispatchResult{
			Failure:  DispatchFailureExpired,
			Enhanced: enhanced,
			Response: resp,
		}
	}

	return DispatchResult{
		Enhanced: enhanced,
		Response: resp,
	}
}
