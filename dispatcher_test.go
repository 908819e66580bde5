package goDispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goDispatch/session"
	"github.com/golang-jwt/jwt/v5"
)

// signedToken builds a real JWT with the given expiry so the proactive check
// has something to inspect. The signing key is irrelevant; exp is read without
// verification.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice@example.com",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

type transportCall struct {
	Command    string
	Parameters map[string]any
	Type       TransportType
}

type fakeTransport struct {
	mu      sync.Mutex
	calls   []transportCall
	handler func(command string, parameters map[string]any) (Response, error)
}

func (f *fakeTransport) Send(_ context.Context, command string, parameters map[string]any, typ TransportType) (Response, error) {
	copied := make(map[string]any, len(parameters))
	for k, v := range parameters {
		copied[k] = v
	}

	f.mu.Lock()
	f.calls = append(f.calls, transportCall{Command: command, Parameters: copied, Type: typ})
	f.mu.Unlock()

	if f.handler == nil {
		return Response{JSONCode: CodeSuccess}, nil
	}
	return f.handler(command, parameters)
}

func (f *fakeTransport) callCount(command string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Command == command {
			n++
		}
	}
	return n
}

func (f *fakeTransport) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransport) lastCall(t *testing.T) transportCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("no transport calls recorded")
	}
	return f.calls[len(f.calls)-1]
}

type recordingRedirector struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingRedirector) RedirectToSignIn(reason string) {
	r.mu.Lock()
	r.reasons = append(r.reasons, reason)
	r.mu.Unlock()
}

func (r *recordingRedirector) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reasons)
}

func newTestStore(t *testing.T, token string) *session.MemoryStore {
	t.Helper()
	store := session.NewMemoryStore()
	ctx := context.Background()
	if err := store.SetCredentials(ctx, Credentials{Login: "alice@example.com", Password: "user-secret-1"}); err != nil {
		t.Fatalf("seed credentials: %v", err)
	}
	if token != "" {
		if err := store.MergeAuthToken(ctx, token); err != nil {
			t.Fatalf("seed token: %v", err)
		}
	}
	return store
}

func newTestDispatcher(t *testing.T, transport Transport, store session.Store, opts ...func(*Builder)) *Dispatcher {
	t.Helper()

	b := New().
		WithPartner("chat-expensify-com", "partner-pass-1").
		WithTransport(transport).
		WithSessionStore(store)
	for _, opt := range opts {
		opt(b)
	}

	d, err := b.Build()
	if err != nil {
		t.Fatalf("build dispatcher: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func TestDispatchSuccessPassthrough(t *testing.T) {
	ft := &fakeTransport{handler: func(command string, _ map[string]any) (Response, error) {
		return Response{JSONCode: CodeSuccess, Data: map[string]any{"value": "ok"}}, nil
	}}
	d := newTestDispatcher(t, ft, newTestStore(t, "token-1"))

	resp, err := d.Dispatch(context.Background(), CommandGet, map[string]any{"returnValueList": "personalDetails"}, TransportPost)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !resp.OK() {
		t.Fatalf("expected success code, got %d", resp.JSONCode)
	}
	if resp.Data["value"] != "ok" {
		t.Fatalf("unexpected payload: %v", resp.Data)
	}

	call := ft.lastCall(t)
	if call.Parameters["authToken"] != "token-1" {
		t.Fatalf("expected injected token, got %v", call.Parameters["authToken"])
	}
	if call.Parameters["api_setCookie"] != false {
		t.Fatalf("expected api_setCookie=false, got %v", call.Parameters["api_setCookie"])
	}
}

func TestDispatchApplicationFailurePassthrough(t *testing.T) {
	ft := &fakeTransport{handler: func(string, map[string]any) (Response, error) {
		return Response{JSONCode: 402, Message: "insufficient privileges"}, nil
	}}
	d := newTestDispatcher(t, ft, newTestStore(t, "token-1"))

	resp, err := d.Dispatch(context.Background(), CommandGet, map[string]any{"returnValueList": "x"}, TransportPost)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if resp.JSONCode != 402 || resp.Message != "insufficient privileges" {
		t.Fatalf("expected app failure passthrough, got %+v", resp)
	}
}

func TestDispatchMissingParameterNoNetwork(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, ft, newTestStore(t, "token-1"))

	_, err := d.Dispatch(context.Background(), CommandGet, map[string]any{}, TransportPost)
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}

	var missing *MissingParameterError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingParameterError, got %T", err)
	}
	if missing.Parameter != "returnValueList" || missing.Command != CommandGet {
		t.Fatalf("unexpected error fields: %+v", missing)
	}

	if ft.totalCalls() != 0 {
		t.Fatalf("expected zero transport calls, got %d", ft.totalCalls())
	}
}

func TestMissingParameterRedaction(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, ft, newTestStore(t, "token-1"))

	params := map[string]any{
		paramAuthToken:      "secret-token-value",
		"password":          "hunter2-secret",
		"twoFactorAuthCode": "123456",
		// partnerUserID is the missing required parameter.
		paramPartnerName:       "p",
		paramPartnerPassword:   "partner-secret-value",
		paramPartnerUserSecret: "user-secret-value",
	}

	_, err := d.Dispatch(context.Background(), CommandDeleteLogin, params, TransportPost)
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}

	msg := err.Error()
	for _, literal := range []string{"secret-token-value", "hunter2-secret", "user-secret-value", "123456"} {
		if strings.Contains(msg, literal) {
			t.Fatalf("error payload leaked sensitive value %q: %s", literal, msg)
		}
	}
	if !strings.Contains(msg, "<redacted>") {
		t.Fatalf("expected redaction marker in error payload: %s", msg)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, ft, newTestStore(t, "token-1"))

	_, err := d.Dispatch(context.Background(), "NoSuchCommand", nil, TransportPost)
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	if ft.totalCalls() != 0 {
		t.Fatalf("expected zero transport calls, got %d", ft.totalCalls())
	}
}

func TestTokenExemptCommandNotEnhanced(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, ft, newTestStore(t, "token-1"))

	_, err := d.Dispatch(context.Background(), CommandLog, map[string]any{"message": "boot"}, TransportPost)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	call := ft.lastCall(t)
	if _, ok := call.Parameters["authToken"]; ok {
		t.Fatal("token-exempt command received an injected token")
	}
	if call.Parameters["api_setCookie"] != false {
		t.Fatal("expected api_setCookie=false on exempt command")
	}
}

func TestPreconditionViolationNoSession(t *testing.T) {
	ft := &fakeTransport{}
	rd := &recordingRedirector{}
	store := session.NewMemoryStore() // no credentials, no token
	d := newTestDispatcher(t, ft, store, func(b *Builder) {
		b.WithSignInRedirector(rd)
	})

	_, err := d.Dispatch(context.Background(), CommandGet, map[string]any{"returnValueList": "x"}, TransportPost)
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	if ft.totalCalls() != 0 {
		t.Fatalf("expected zero transport calls, got %d", ft.totalCalls())
	}
	if rd.count() != 1 {
		t.Fatalf("expected exactly one sign-in redirect, got %d", rd.count())
	}
}

func TestCallerSuppliedTokenWins(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, ft, newTestStore(t, "stored-token"))

	_, err := d.Dispatch(context.Background(), CommandGet, map[string]any{
		"returnValueList": "x",
		paramAuthToken:    "explicit-token",
	}, TransportPost)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	call := ft.lastCall(t)
	if call.Parameters["authToken"] != "explicit-token" {
		t.Fatalf("expected caller token to survive, got %v", call.Parameters["authToken"])
	}
}
