package session

import (
	"context"
	"testing"
)

func TestMirrorSeedsFromStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.SetCredentials(ctx, Credentials{Login: "a@b.c", Password: "secret"})
	_ = s.MergeAuthToken(ctx, "tok-1")

	m, err := NewMirror(ctx, s)
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	defer m.Close()

	if token, ok := m.AuthToken(); !ok || token != "tok-1" {
		t.Fatalf("seeded token wrong: %q ok=%v", token, ok)
	}
	if creds, ok := m.Credentials(); !ok || creds.Login != "a@b.c" {
		t.Fatalf("seeded credentials wrong: %+v ok=%v", creds, ok)
	}
}

func TestMirrorEmptyStore(t *testing.T) {
	m, err := NewMirror(context.Background(), NewMemoryStore())
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	defer m.Close()

	if _, ok := m.AuthToken(); ok {
		t.Fatal("empty mirror must report no token")
	}
	if _, ok := m.Credentials(); ok {
		t.Fatal("empty mirror must report no credentials")
	}
}

func TestMirrorTracksWrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	m, err := NewMirror(ctx, s)
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	defer m.Close()

	if err := s.MergeAuthToken(ctx, "tok-1"); err != nil {
		t.Fatalf("MergeAuthToken: %v", err)
	}

	// Local writes notify synchronously, so the mirror is fresh immediately.
	if token, ok := m.AuthToken(); !ok || token != "tok-1" {
		t.Fatalf("mirror stale after merge: %q ok=%v", token, ok)
	}

	_ = s.SetCredentials(ctx, Credentials{Login: "b@c.d", Password: "s2"})
	if creds, ok := m.Credentials(); !ok || creds.Login != "b@c.d" {
		t.Fatalf("mirror stale after credentials write: %+v ok=%v", creds, ok)
	}
}

func TestMirrorCloseStopsTracking(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.MergeAuthToken(ctx, "tok-1")

	m, err := NewMirror(ctx, s)
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	m.Close()
	m.Close() // idempotent

	_ = s.MergeAuthToken(ctx, "tok-2")
	if token, _ := m.AuthToken(); token != "tok-1" {
		t.Fatalf("closed mirror still tracking: %q", token)
	}
}
