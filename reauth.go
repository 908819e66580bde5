package goDispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrEthical07/goDispatch/internal/flows"
	"github.com/google/uuid"
)

// AuthState is the reauthentication coordinator's state machine. The
// queue-vs-authenticate branch is enum-guarded rather than an ad-hoc boolean
// so the mutual-exclusion invariant stays auditable.
type AuthState uint8

const (
	// AuthIdle is an exported constant or variable used by the dispatch engine.
	AuthIdle AuthState = iota
	// AuthAuthenticating is an exported constant or variable used by the dispatch engine.
	AuthAuthenticating
)

// String describes the string operation and its observable behavior.
func (s AuthState) String() string {
	switch s {
	case AuthIdle:
		return "idle"
	case AuthAuthenticating:
		return "authenticating"
	default:
		return "unknown"
	}
}

// coordinator owns the authentication state and the queue's pause/resume
// lifecycle. At most one Authenticate exchange is in flight at any time: the
// state flip and the queue pause happen in one critical section before any
// blocking call, so two concurrent expirations can never both observe
// AuthIdle.
type coordinator struct {
	d *Dispatcher

	mu    sync.Mutex
	state AuthState
}

func newCoordinator(d *Dispatcher) *coordinator {
	return &coordinator{d: d}
}

func (c *coordinator) currentState() AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// begin attempts the Idle -> Authenticating transition. When it wins it pauses
// the queue inside the same critical section and returns a cycle ID; when the
// cycle is already owned elsewhere it returns false.
func (c *coordinator) begin() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == AuthAuthenticating {
		return "", false
	}

	c.state = AuthAuthenticating
	if c.d.queue != nil {
		c.d.queue.Pause()
	}
	return uuid.NewString(), true
}

// settle returns to Idle. resume also unpauses the queue; failAll drops every
// queued entry with err first, so Fail happens strictly before Resume and no
// abandoned entry is ever dispatched.
func (c *coordinator) settle(failAll error, resume bool) {
	c.mu.Lock()
	c.state = AuthIdle
	c.mu.Unlock()

	if c.d.queue == nil {
		return
	}
	if failAll != nil {
		c.d.queue.Fail(failAll)
	}
	if resume {
		c.d.queue.Resume()
	}
}

// handleExpiry drives one recovery attempt for req, which has already been
// validated and has already produced a session-expiry response (or a proactive
// expiry decision).
func (c *coordinator) handleExpiry(ctx context.Context, req Request) (Response, error) {
	d := c.d

	// Non-retryable commands are dropped outright: no recovery, no replay.
	if spec, ok := d.config.Commands[req.Command]; ok && spec.NoRetry {
		d.metricInc(MetricRequestDropped)
		d.emitAudit(ctx, AuditEvent{
			EventType: auditEventRequestDropped,
			Command:   req.Command,
			RequestID: req.ID,
		})
		return Response{}, ErrRecoveredViaReauth
	}

	cycleID, won := c.begin()
	if !won {
		// A cycle is already in flight; park the request for replay once the
		// queue resumes. FIFO fairness across the recovery window is the
		// queue's contract.
		d.metricInc(MetricRequestQueued)
		if d.queue != nil {
			d.queue.Enqueue(req)
		}
		d.emitAudit(ctx, AuditEvent{
			EventType: auditEventRequestQueued,
			Command:   req.Command,
			RequestID: req.ID,
		})
		return Response{}, ErrRecoveredViaReauth
	}

	d.emitAudit(ctx, AuditEvent{
		EventType: auditEventReauthStarted,
		Command:   req.Command,
		RequestID: req.ID,
		CycleID:   cycleID,
	})

	result := flows.RunReauth(ctx, d.flowDeps.Reauth)

	switch result.Failure {
	case flows.ReauthFailureTransport:
		// Network failure, not an auth rejection: no redirect. Queued entries
		// stay queued and will trigger a fresh cycle after resume.
		d.metricInc(MetricReauthFailure)
		c.settle(nil, true)
		d.emitAudit(ctx, AuditEvent{
			EventType: auditEventReauthFailure,
			CycleID:   cycleID,
			Error:     result.Err.Error(),
		})
		return Response{}, fmt.Errorf("authenticate exchange: %w", result.Err)

	case flows.ReauthFailureNoCredentials:
		d.metricInc(MetricReauthFailure)
		c.failCycle(ctx, cycleID, ErrNoStoredCredentials.Error())
		return Response{}, fmt.Errorf("%w: %s", ErrAuthenticationFailed, ErrNoStoredCredentials.Error())

	case flows.ReauthFailureRejected, flows.ReauthFailureEmptyToken:
		d.metricInc(MetricReauthFailure)
		c.failCycle(ctx, cycleID, result.Message)
		return Response{}, fmt.Errorf("%w: %s", ErrAuthenticationFailed, result.Message)
	}

	// Merge the fresh token before anything resumes; the session mirror sees
	// it synchronously, so the replay below always carries the new token.
	if err := d.store.MergeAuthToken(ctx, result.AuthToken); err != nil {
		d.metricInc(MetricReauthFailure)
		c.settle(nil, true)
		d.emitAudit(ctx, AuditEvent{
			EventType: auditEventReauthFailure,
			CycleID:   cycleID,
			Error:     err.Error(),
		})
		return Response{}, fmt.Errorf("merge auth token: %w", err)
	}

	d.metricInc(MetricReauthSuccess)
	c.settle(nil, true)
	d.emitAudit(ctx, AuditEvent{
		EventType: auditEventReauthSuccess,
		CycleID:   cycleID,
		Success:   true,
	})

	return c.replay(ctx, cycleID, req)
}

// failCycle ends a cycle on an authentication rejection: queued entries are
// explicitly failed, the queue resumes, and the user is redirected to sign-in
// exactly once with the failure reason.
func (c *coordinator) failCycle(ctx context.Context, cycleID, reason string) {
	d := c.d

	c.settle(fmt.Errorf("%w: %s", ErrAuthenticationFailed, reason), true)
	d.emitAudit(ctx, AuditEvent{
		EventType: auditEventReauthFailure,
		CycleID:   cycleID,
		Error:     reason,
	})
	d.emitAudit(ctx, AuditEvent{
		EventType: auditEventQueueEntriesFailed,
		CycleID:   cycleID,
		Error:     reason,
	})
	d.redirect(ctx, reason)
}

// replay re-issues exactly the request that triggered the cycle, re-enhanced
// with the fresh token, through the raw send path. The expiry interceptor is
// structurally out of the picture here: even a second 407 is returned as-is,
// never recursed on.
func (c *coordinator) replay(ctx context.Context, cycleID string, req Request) (Response, error) {
	d := c.d

	enhanced, failure := flows.Enhance(req.Command, req.Parameters, d.flowDeps.Enhance)
	if failure != flows.EnhanceFailureNone {
		// Cannot happen after a successful merge; treat as the precondition
		// path to stay safe.
		return Response{}, ErrNoActiveSession
	}

	env, err := d.rawSend(ctx, req.Command, enhanced, uint8(req.Type))
	if err != nil {
		d.metricInc(MetricReplayFailure)
		d.emitAudit(ctx, AuditEvent{
			EventType: auditEventReplayFailure,
			Command:   req.Command,
			RequestID: req.ID,
			CycleID:   cycleID,
			Error:     err.Error(),
		})
		return Response{}, err
	}

	resp := Response(env)
	if resp.OK() {
		d.metricInc(MetricReplaySuccess)
	} else {
		d.metricInc(MetricReplayFailure)
	}
	d.emitAudit(ctx, AuditEvent{
		EventType: auditEventReplaySuccess,
		Command:   req.Command,
		RequestID: req.ID,
		CycleID:   cycleID,
		JSONCode:  resp.JSONCode,
		Success:   resp.OK(),
	})
	return resp, nil
}
