package session

import (
	"context"
	"sync"
)

// MemoryStore is the in-process [Store]. Zero value is not usable; construct
// with [NewMemoryStore].
type MemoryStore struct {
	mu          sync.RWMutex
	creds       Credentials
	hasCreds    bool
	token       string
	hasToken    bool
	subscribers map[uint64]func(Change)
	nextSub     uint64
}

// NewMemoryStore describes the newmemorystore operation and its observable behavior.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers: make(map[uint64]func(Change)),
	}
}

// Credentials describes the credentials operation and its observable behavior.
func (s *MemoryStore) Credentials(context.Context) (Credentials, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, s.hasCreds, nil
}

// AuthToken describes the authtoken operation and its observable behavior.
func (s *MemoryStore) AuthToken(context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.hasToken, nil
}

// SetCredentials describes the setcredentials operation and its observable behavior.
func (s *MemoryStore) SetCredentials(_ context.Context, creds Credentials) error {
	s.mu.Lock()
	s.creds = creds
	s.hasCreds = true
	fns := s.snapshotSubscribers()
	s.mu.Unlock()

	notify(fns, Change{Kind: ChangeCredentials, Credentials: creds})
	return nil
}

// MergeAuthToken describes the mergeauthtoken operation and its observable behavior.
func (s *MemoryStore) MergeAuthToken(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.hasToken = true
	fns := s.snapshotSubscribers()
	s.mu.Unlock()

	notify(fns, Change{Kind: ChangeAuthToken, AuthToken: token})
	return nil
}

// Subscribe describes the subscribe operation and its observable behavior.
func (s *MemoryStore) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Close describes the close operation and its observable behavior.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.subscribers = make(map[uint64]func(Change))
	s.mu.Unlock()
	return nil
}

// snapshotSubscribers must be called with mu held.
func (s *MemoryStore) snapshotSubscribers() []func(Change) {
	fns := make([]func(Change), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(Change), change Change) {
	for _, fn := range fns {
		fn(change)
	}
}
