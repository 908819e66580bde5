package flows

// MissingParameter reports the first required parameter that was absent or
// nil, along with a redacted copy of the supplied parameters safe for error
// payloads and logs.
type MissingParameter struct {
	Parameter string
	Redacted  map[string]any
}

// RequireParameters checks each name in order against parameters and returns
// the first miss, or nil when all are present. A parameter is missing when the
// key is absent or its value is nil. Pure function; must run before any
// network I/O for a command.
func RequireParameters(names []string, parameters map[string]any, sensitive []string, marker string) *MissingParameter {
	for _, name := range names {
		value, ok := parameters[name]
		if ok && value != nil {
			continue
		}
		return &MissingParameter{
			Parameter: name,
			Redacted:  Redact(parameters, sensitive, marker),
		}
	}
	return nil
}

// Redact copies parameters with every sensitive key's value replaced by
// marker. Keys absent from parameters are not added.
func Redact(parameters map[string]any, sensitive []string, marker string) map[string]any {
	out := make(map[string]any, len(parameters))
	for k, v := range parameters {
		out[k] = v
	}
	for _, key := range sensitive {
		if _, ok := out[key]; ok {
			out[key] = marker
		}
	}
	return out
}
