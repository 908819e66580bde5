package goDispatch

import (
	"context"
	"time"

	"github.com/MrEthical07/goDispatch/internal/audit"
)

// auditDispatcher bridges the root AuditConfig to the internal async relay.
// nil when audit is disabled; every method is nil-safe.
type auditDispatcher struct {
	inner *audit.Dispatcher
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	inner := audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, sink)
	if inner == nil {
		return nil
	}
	return &auditDispatcher{inner: inner}
}

func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	d.inner.Emit(ctx, event)
}

func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.inner.Close()
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.inner.Dropped()
}
