// Package queue provides the default in-process request queue used by
// goDispatch during reauthentication: a pausable FIFO whose entries re-enter
// the dispatcher once the queue resumes.
//
// Pause and Resume are exclusively driven by the reauthentication
// coordinator. While paused, nothing is drained; Fail drops every pending
// entry with a terminal error so queued callers are not left hanging after an
// authentication rejection.
//
// # What this package must NOT do
//
//   - Import goDispatch (the handler closure is supplied by the builder).
//   - Decide replay semantics — it redelivers entries in FIFO order and
//     nothing more.
package queue
