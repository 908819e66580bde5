package session

import (
	"context"
	"sync"
)

// Mirror keeps read-only copies of the credentials and auth token, fed by a
// [Store] subscription. The dispatcher reads the mirror on every outgoing
// request instead of hitting the store, so token reads never add a store
// round-trip to the hot path.
type Mirror struct {
	mu       sync.RWMutex
	creds    Credentials
	hasCreds bool
	token    string
	hasToken bool

	cancel func()
}

// NewMirror seeds the mirror from store and subscribes for changes. Because
// local store writes notify synchronously, a token merged by the coordinator
// is visible here before MergeAuthToken returns.
func NewMirror(ctx context.Context, store Store) (*Mirror, error) {
	m := &Mirror{}

	m.cancel = store.Subscribe(m.apply)

	creds, hasCreds, err := store.Credentials(ctx)
	if err != nil {
		m.cancel()
		return nil, err
	}
	token, hasToken, err := store.AuthToken(ctx)
	if err != nil {
		m.cancel()
		return nil, err
	}

	m.mu.Lock()
	if !m.hasCreds && hasCreds {
		m.creds = creds
		m.hasCreds = true
	}
	if !m.hasToken && hasToken {
		m.token = token
		m.hasToken = true
	}
	m.mu.Unlock()

	return m, nil
}

func (m *Mirror) apply(change Change) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch change.Kind {
	case ChangeAuthToken:
		m.token = change.AuthToken
		m.hasToken = true
	case ChangeCredentials:
		m.creds = change.Credentials
		m.hasCreds = true
	}
}

// AuthToken returns the latest observed token. ok is false before any session
// exists.
func (m *Mirror) AuthToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.hasToken
}

// Credentials returns the latest observed credentials snapshot.
func (m *Mirror) Credentials() (Credentials, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds, m.hasCreds
}

// Close cancels the store subscription.
func (m *Mirror) Close() {
	if m == nil || m.cancel == nil {
		return
	}
	m.cancel()
	m.cancel = nil
}
