package goDispatch

import (
	"io"

	"github.com/MrEthical07/goDispatch/internal/audit"
)

// AuditEvent is the structured record emitted for dispatch and recovery
// operations. Parameter payloads referenced from Metadata are already
// redacted.
type AuditEvent = audit.Event

// AuditSink receives emitted audit events.
type AuditSink = audit.Sink

// NoOpSink drops audit events.
type NoOpSink = audit.NoOpSink

// ChannelSink writes audit events into a buffered channel.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = audit.JSONWriterSink

// NewChannelSink describes the newchannelsink operation and its observable behavior.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink describes the newjsonwritersink operation and its observable behavior.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// Audit event types emitted by the dispatcher and the reauthentication
// coordinator.
const (
	auditEventDispatchSuccess    = "dispatch.success"
	auditEventDispatchFailure    = "dispatch.failure"
	auditEventValidationFailure  = "dispatch.validation_failure"
	auditEventSessionExpired     = "dispatch.session_expired"
	auditEventPrecondition       = "dispatch.no_active_session"
	auditEventRequestQueued      = "reauth.request_queued"
	auditEventRequestDropped     = "reauth.request_dropped"
	auditEventReauthStarted      = "reauth.started"
	auditEventReauthSuccess      = "reauth.success"
	auditEventReauthFailure      = "reauth.failure"
	auditEventReplaySuccess      = "reauth.replay_success"
	auditEventReplayFailure      = "reauth.replay_failure"
	auditEventSignInRedirect     = "reauth.signin_redirect"
	auditEventQueueEntriesFailed = "reauth.queue_entries_failed"
)
