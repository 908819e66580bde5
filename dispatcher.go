package goDispatch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goDispatch/internal/flows"
	"github.com/MrEthical07/goDispatch/session"
	"github.com/MrEthical07/goDispatch/token"
	"github.com/google/uuid"
)

// Dispatcher defines a public type used by goDispatch APIs.
//
// Dispatcher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Dispatcher struct {
	config     Config
	transport  Transport
	store      session.Store
	mirror     *session.Mirror
	queue      RequestQueue
	redirector SignInRedirector
	audit      *auditDispatcher
	metrics    *Metrics
	coord      *coordinator
	flowDeps   flows.Deps
	closed     atomic.Bool
	ownsStore  bool
}

// Close releases the audit relay and the session mirror. A Dispatcher built
// over a builder-owned Redis store also closes that store.
func (d *Dispatcher) Close() {
	if d == nil || !d.closed.CompareAndSwap(false, true) {
		return
	}
	if d.audit != nil {
		d.audit.Close()
	}
	if d.mirror != nil {
		d.mirror.Close()
	}
	if d.ownsStore && d.store != nil {
		_ = d.store.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
func (d *Dispatcher) AuditDropped() uint64 {
	if d == nil || d.audit == nil {
		return 0
	}
	return d.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
func (d *Dispatcher) MetricsSnapshot() MetricsSnapshot {
	if d == nil || d.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return d.metrics.Snapshot()
}

// AuthState reports the coordinator state (AuthIdle or AuthAuthenticating).
func (d *Dispatcher) AuthState() AuthState {
	if d == nil || d.coord == nil {
		return AuthIdle
	}
	return d.coord.currentState()
}

func (d *Dispatcher) metricInc(id MetricID) {
	if d == nil || d.metrics == nil {
		return
	}
	d.metrics.Inc(id)
}

// Dispatch issues one named command. Non-expiry responses are returned
// unchanged, success or application-level failure. A session-expiry response
// is never surfaced: the request is handed to the reauthentication
// coordinator, which either replays it with a fresh token (the returned
// Response is then the replay's) or resolves with [ErrRecoveredViaReauth] /
// [ErrAuthenticationFailed].
//
//	Docs: docs/dispatch.md
func (d *Dispatcher) Dispatch(ctx context.Context, command string, parameters map[string]any, typ TransportType) (Response, error) {
	if d == nil || d.transport == nil {
		return Response{}, ErrDispatcherNotReady
	}
	if d.closed.Load() {
		return Response{}, ErrDispatcherClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	req := Request{
		ID:         uuid.NewString(),
		Command:    command,
		Parameters: parameters,
		Type:       typ,
	}

	if d.proactivelyExpired(command, parameters) {
		// Same pre-flight contract as the network path: never skip validation.
		required, ok := d.flowDeps.Dispatch.Manifest(command)
		if !ok {
			return Response{}, ErrUnknownCommand
		}
		if missing := flows.RequireParameters(required, parameters, d.config.Redaction.SensitiveKeys, d.config.Redaction.Marker); missing != nil {
			return d.failValidation(ctx, req, missing)
		}
		d.metricInc(MetricProactiveExpiry)
		d.emitAudit(ctx, AuditEvent{
			EventType: auditEventSessionExpired,
			Command:   command,
			RequestID: req.ID,
			Metadata:  map[string]string{"trigger": "proactive"},
		})
		return d.coord.handleExpiry(ctx, req)
	}

	result := flows.RunDispatch(ctx, command, parameters, uint8(typ), d.flowDeps.Dispatch)

	switch result.Failure {
	case flows.DispatchFailureUnknownCommand:
		return Response{}, ErrUnknownCommand

	case flows.DispatchFailureMissingParameter:
		return d.failValidation(ctx, req, result.Missing)

	case flows.DispatchFailureNoToken:
		// State corruption, not a transient condition: abort, defensively
		// unpause the queue, and send the user back to sign-in.
		d.metricInc(MetricPreconditionViolation)
		if d.queue != nil {
			d.queue.Resume()
		}
		d.redirect(ctx, "no active session")
		d.emitAudit(ctx, AuditEvent{
			EventType: auditEventPrecondition,
			Command:   command,
			RequestID: req.ID,
			Error:     ErrNoActiveSession.Error(),
		})
		return Response{}, ErrNoActiveSession

	case flows.DispatchFailureTransport:
		d.metricInc(MetricDispatchFailure)
		d.emitAudit(ctx, AuditEvent{
			EventType: auditEventDispatchFailure,
			Command:   command,
			RequestID: req.ID,
			Error:     result.Err.Error(),
		})
		return Response{}, result.Err

	case flows.DispatchFailureExpired:
		d.metricInc(MetricSessionExpired)
		d.emitAudit(ctx, AuditEvent{
			EventType: auditEventSessionExpired,
			Command:   command,
			RequestID: req.ID,
			JSONCode:  result.Response.JSONCode,
		})
		return d.coord.handleExpiry(ctx, req)
	}

	resp := Response(result.Response)
	if resp.OK() {
		d.metricInc(MetricDispatchSuccess)
	} else {
		d.metricInc(MetricDispatchFailure)
	}
	if d.metrics.LatencyEnabled() {
		d.metrics.Observe(MetricDispatchLatency, time.Since(start))
	}
	d.emitAudit(ctx, AuditEvent{
		EventType: auditEventDispatchSuccess,
		Command:   command,
		RequestID: req.ID,
		JSONCode:  resp.JSONCode,
		Success:   resp.OK(),
	})
	return resp, nil
}

func (d *Dispatcher) failValidation(ctx context.Context, req Request, missing *flows.MissingParameter) (Response, error) {
	d.metricInc(MetricValidationFailure)
	err := &MissingParameterError{
		Command:   req.Command,
		Parameter: missing.Parameter,
		Redacted:  missing.Redacted,
	}
	d.emitAudit(ctx, AuditEvent{
		EventType: auditEventValidationFailure,
		Command:   req.Command,
		RequestID: req.ID,
		Error:     err.Error(),
	})
	return Response{}, err
}

// proactivelyExpired reports whether the stored token is a JWT that is already
// past exp. Only meaningful for commands that would have the token injected.
func (d *Dispatcher) proactivelyExpired(command string, parameters map[string]any) bool {
	if !d.config.Reauth.Proactive {
		return false
	}
	if d.flowDeps.Enhance.TokenExempt(command) {
		return false
	}
	if supplied, ok := parameters[paramAuthToken]; ok && supplied != nil {
		return false
	}
	tok, ok := d.mirror.AuthToken()
	if !ok {
		return false
	}
	return token.Expired(tok, d.config.Reauth.ClockSkew)
}

// rawSend is the loop-breaking path: straight to the transport, no expiry
// interception. Used for the Authenticate exchange and for replay.
func (d *Dispatcher) rawSend(ctx context.Context, command string, parameters map[string]any, typ uint8) (flows.Envelope, error) {
	resp, err := d.transport.Send(ctx, command, parameters, TransportType(typ))
	if err != nil {
		return flows.Envelope{}, err
	}
	return flows.Envelope(resp), nil
}

func (d *Dispatcher) emitAudit(ctx context.Context, event AuditEvent) {
	if d == nil || d.audit == nil {
		return
	}
	d.audit.Emit(ctx, event)
}

func (d *Dispatcher) redirect(ctx context.Context, reason string) {
	if d == nil {
		return
	}
	d.metricInc(MetricSignInRedirect)
	d.emitAudit(ctx, AuditEvent{
		EventType: auditEventSignInRedirect,
		Error:     reason,
	})
	if d.redirector != nil {
		d.redirector.RedirectToSignIn(reason)
	}
}
