package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	goDispatch "github.com/MrEthical07/goDispatch"
)

func TestNewRequiresEndpoint(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrEndpointRequired) {
		t.Fatalf("expected ErrEndpointRequired, got %v", err)
	}
}

func TestSendPostForm(t *testing.T) {
	var gotMethod, gotContentType, gotUserAgent string
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		_, _ = w.Write([]byte(`{"jsonCode":200,"message":"ok","accountID":12345}`))
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL, UserAgent: "godispatch-test/1.0"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := c.Send(context.Background(), "Get", map[string]any{
		"returnValueList": "personalDetails",
		"authToken":       "tok-1",
		"api_setCookie":   false,
		"limit":           25,
	}, goDispatch.TransportPost)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Fatalf("method = %s", gotMethod)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Fatalf("content type = %s", gotContentType)
	}
	if gotUserAgent != "godispatch-test/1.0" {
		t.Fatalf("user agent = %s", gotUserAgent)
	}
	if gotForm["command"] != "Get" || gotForm["authToken"] != "tok-1" {
		t.Fatalf("form = %v", gotForm)
	}
	if gotForm["api_setCookie"] != "false" || gotForm["limit"] != "25" {
		t.Fatalf("scalar encoding wrong: %v", gotForm)
	}

	if resp.JSONCode != 200 || resp.Message != "ok" {
		t.Fatalf("envelope wrong: %+v", resp)
	}
	if resp.Data["accountID"] != float64(12345) {
		t.Fatalf("extra fields not preserved: %v", resp.Data)
	}
	if _, ok := resp.Data["jsonCode"]; ok {
		t.Fatal("envelope fields must be lifted out of Data")
	}
}

func TestSendGetQuery(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(`{"jsonCode":200}`))
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.Send(context.Background(), "Get", map[string]any{"returnValueList": "x"}, goDispatch.TransportGet); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotQuery["command"] != "Get" || gotQuery["returnValueList"] != "x" {
		t.Fatalf("query = %v", gotQuery)
	}
}

func TestSendStructuredParameterAsJSON(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		got = r.PostForm.Get("reportIDList")
		_, _ = w.Write([]byte(`{"jsonCode":200}`))
	}))
	defer srv.Close()

	c, _ := New(Config{Endpoint: srv.URL})
	if _, err := c.Send(context.Background(), "Get", map[string]any{
		"reportIDList": []int{1, 2, 3},
	}, goDispatch.TransportPost); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got != "[1,2,3]" {
		t.Fatalf("structured parameter = %q", got)
	}
}

func TestSendExpiredEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonCode":407,"message":"Auth token expired"}`))
	}))
	defer srv.Close()

	c, _ := New(Config{Endpoint: srv.URL})
	resp, err := c.Send(context.Background(), "Get", nil, goDispatch.TransportPost)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !resp.Expired() {
		t.Fatalf("expected expired envelope, got %+v", resp)
	}
}

func TestSendMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	c, _ := New(Config{Endpoint: srv.URL})
	if _, err := c.Send(context.Background(), "Get", nil, goDispatch.TransportPost); err == nil {
		t.Fatal("expected decode error for non-JSON body")
	}
}

func TestSendContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, _ := New(Config{Endpoint: srv.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Send(ctx, "Get", nil, goDispatch.TransportPost); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
