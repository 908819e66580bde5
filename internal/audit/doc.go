// Package audit implements async event dispatching for dispatch- and
// recovery-relevant operations.
//
// # Components
//
//   - [Sink] — interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher] — buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event] — structured record with timestamp, type, command, request and
//     cycle identifiers, and metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which
// events to emit — that responsibility belongs to the Dispatcher and flow
// functions. Event payloads must already be redacted by the caller; this
// package never inspects parameter values.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import goDispatch or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
