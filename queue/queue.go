package queue

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Entry is one deferred request. Type carries the dispatcher's transport type
// value. OnFail, when set, is invoked if the entry is dropped by [Queue.Fail].
type Entry struct {
	ID         string
	Command    string
	Parameters map[string]any
	Type       uint8
	OnFail     func(error)
}

// Handler redelivers one drained entry. Called from the drain goroutine, one
// entry at a time.
type Handler func(ctx context.Context, entry Entry)

// Queue is a pausable FIFO of deferred requests.
type Queue struct {
	handler Handler

	mu       sync.Mutex
	paused   bool
	draining bool
	entries  []Entry
}

// New describes the new operation and its observable behavior.
func New(handler Handler) *Queue {
	if handler == nil {
		handler = func(context.Context, Entry) {}
	}
	return &Queue{handler: handler}
}

// Pause stops draining. Entries may still be enqueued while paused.
func (q *Queue) Pause() {
	q.mu.Lock()
	q.paused = true
	q.mu.Unlock()
}

// Resume restarts draining of pending entries in FIFO order.
func (q *Queue) Resume() {
	q.mu.Lock()
	q.paused = false
	start := !q.draining && len(q.entries) > 0
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
}

// Paused reports the current pause flag.
func (q *Queue) Paused() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.paused
}

// Len reports the number of pending entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Enqueue appends entry. An empty ID is assigned. When the queue is not
// paused, draining starts immediately.
func (q *Queue) Enqueue(entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	q.mu.Lock()
	q.entries = append(q.entries, entry)
	start := !q.paused && !q.draining
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
}

// Fail drops every pending entry, invoking each entry's OnFail with err.
func (q *Queue) Fail(err error) {
	q.mu.Lock()
	dropped := q.entries
	q.entries = nil
	q.mu.Unlock()

	for _, entry := range dropped {
		if entry.OnFail != nil {
			entry.OnFail(err)
		}
	}
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if q.paused || len(q.entries) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		entry := q.entries[0]
		q.entries = q.entries[1:]
		q.mu.Unlock()

		q.handler(context.Background(), entry)
	}
}
