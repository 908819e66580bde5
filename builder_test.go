package goDispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/goDispatch/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestBuildRequiresTransport(t *testing.T) {
	_, err := New().
		WithPartner("p", "pp").
		WithSessionStore(session.NewMemoryStore()).
		Build()
	if !errors.Is(err, ErrTransportRequired) {
		t.Fatalf("expected ErrTransportRequired, got %v", err)
	}
}

func TestBuildRequiresStore(t *testing.T) {
	_, err := New().
		WithPartner("p", "pp").
		WithTransport(&fakeTransport{}).
		Build()
	if !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}

func TestBuildRequiresPartner(t *testing.T) {
	_, err := New().
		WithTransport(&fakeTransport{}).
		WithSessionStore(session.NewMemoryStore()).
		Build()
	if err == nil {
		t.Fatal("expected a validation error for the missing partner identity")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().
		WithPartner("p", "pp").
		WithTransport(&fakeTransport{}).
		WithSessionStore(session.NewMemoryStore())

	d, err := b.Build()
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	defer d.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuildWithRedisOwnsStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	d, err := New().
		WithPartner("p", "pp").
		WithTransport(&fakeTransport{}).
		WithRedis(client).
		Build()
	if err != nil {
		t.Fatalf("build with redis failed: %v", err)
	}

	if err := d.store.SetCredentials(context.Background(), Credentials{Login: "a@b.c", Password: "s"}); err != nil {
		t.Fatalf("store write through dispatcher-owned store: %v", err)
	}

	d.Close()
	// Close is idempotent.
	d.Close()
}

func TestDispatchOnClosedDispatcher(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, ft, newTestStore(t, "token-1"))
	d.Close()

	_, err := d.Dispatch(context.Background(), CommandGet, map[string]any{"returnValueList": "x"}, TransportPost)
	if !errors.Is(err, ErrDispatcherClosed) {
		t.Fatalf("expected ErrDispatcherClosed, got %v", err)
	}
}

func TestNilDispatcherSafe(t *testing.T) {
	var d *Dispatcher
	d.Close()
	if _, err := d.Dispatch(context.Background(), CommandGet, nil, TransportPost); !errors.Is(err, ErrDispatcherNotReady) {
		t.Fatalf("expected ErrDispatcherNotReady, got %v", err)
	}
	if got := d.AuthState(); got != AuthIdle {
		t.Fatalf("expected AuthIdle from nil dispatcher, got %v", got)
	}
	if got := d.AuditDropped(); got != 0 {
		t.Fatalf("expected 0 dropped from nil dispatcher, got %d", got)
	}
}
