package internaldefs

import (
	goDispatch "github.com/MrEthical07/goDispatch"
)

// CounterDef defines a public type used by goDispatch APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goDispatch.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goDispatch APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goDispatch.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the dispatch engine.
var CounterDefs = []CounterDef{
	{ID: goDispatch.MetricDispatchSuccess, Name: "godispatch_dispatch_success_total", Help: "Commands resolved with a success code."},
	{ID: goDispatch.MetricDispatchFailure, Name: "godispatch_dispatch_failure_total", Help: "Commands resolved with a transport error or application failure code."},
	{ID: goDispatch.MetricValidationFailure, Name: "godispatch_validation_failure_total", Help: "Commands rejected pre-flight for missing required parameters."},
	{ID: goDispatch.MetricSessionExpired, Name: "godispatch_session_expired_total", Help: "Responses carrying the session-expiry code."},
	{ID: goDispatch.MetricProactiveExpiry, Name: "godispatch_proactive_expiry_total", Help: "Requests short-circuited by the proactive token expiry check."},
	{ID: goDispatch.MetricPreconditionViolation, Name: "godispatch_precondition_violation_total", Help: "Requests attempted before any session existed."},
	{ID: goDispatch.MetricRequestQueued, Name: "godispatch_request_queued_total", Help: "Requests parked on the queue during an in-flight authentication cycle."},
	{ID: goDispatch.MetricRequestDropped, Name: "godispatch_request_dropped_total", Help: "Non-retryable requests dropped on session expiry."},
	{ID: goDispatch.MetricReauthSuccess, Name: "godispatch_reauth_success_total", Help: "Successful Authenticate exchanges."},
	{ID: goDispatch.MetricReauthFailure, Name: "godispatch_reauth_failure_total", Help: "Failed Authenticate exchanges."},
	{ID: goDispatch.MetricReplaySuccess, Name: "godispatch_replay_success_total", Help: "Replays resolved with a success code."},
	{ID: goDispatch.MetricReplayFailure, Name: "godispatch_replay_failure_total", Help: "Replays resolved with an error or failure code."},
	{ID: goDispatch.MetricSignInRedirect, Name: "godispatch_signin_redirect_total", Help: "Sign-in redirects invoked on unrecoverable auth failure."},
}

// HistogramDefs is an exported constant or variable used by the dispatch engine.
var HistogramDefs = []HistogramDef{
	{ID: goDispatch.MetricDispatchLatency, Name: "godispatch_dispatch_latency_seconds", Help: "Dispatch latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the dispatch engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the dispatch engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
