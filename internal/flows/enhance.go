package flows

// Parameter keys the enhancer owns.
const (
	// ParamAuthToken is the injected session token key.
	ParamAuthToken = "authToken"
	// ParamSetCookie disables server-side cookie issuance on every request.
	ParamSetCookie = "api_setCookie"
)

// EnhanceFailureKind classifies enhancement failures for root-level mapping.
type EnhanceFailureKind int

const (
	EnhanceFailureNone EnhanceFailureKind = iota
	// EnhanceFailureNoToken: a non-exempt command was attempted before any
	// session exists. Hard ordering violation, not a transient condition.
	EnhanceFailureNoToken
)

// EnhanceDeps captures enhancer dependencies.
type EnhanceDeps struct {
	TokenExempt func(command string) bool
	AuthToken   func() (string, bool)
}

// Enhance returns a copy of parameters ready for the wire: the cookie flag is
// always forced off, and non-exempt commands receive the current session token
// unless the caller already supplied one. The input map is never mutated.
func Enhance(command string, parameters map[string]any, deps EnhanceDeps) (map[string]any, EnhanceFailureKind) {
	out := make(map[string]any, len(parameters)+2)
	for k, v := range parameters {
		out[k] = v
	}
	out[ParamSetCookie] = false

	if deps.TokenExempt != nil && deps.TokenExempt(command) {
		return out, EnhanceFailureNone
	}

	if supplied, ok := out[ParamAuthToken]; ok && supplied != nil {
		return out, EnhanceFailureNone
	}

	token, ok := deps.AuthToken()
	if !ok {
		return nil, EnhanceFailureNoToken
	}
	out[ParamAuthToken] = token

	return out, EnhanceFailureNone
}
