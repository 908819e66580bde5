package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goDispatch "github.com/MrEthical07/goDispatch"
)

// DefaultTimeout bounds one request round-trip when no client is supplied.
const DefaultTimeout = 30 * time.Second

// ErrEndpointRequired is an exported constant or variable used by the HTTP transport.
var ErrEndpointRequired = errors.New("endpoint required")

// Config configures [HTTPClient].
type Config struct {
	// Endpoint is the single API URL every command is POSTed to.
	Endpoint string
	// Client overrides the default http.Client.
	Client *http.Client
	// UserAgent is sent verbatim when non-empty.
	UserAgent string
}

// HTTPClient implements goDispatch.Transport over form-encoded HTTP.
type HTTPClient struct {
	endpoint  string
	client    *http.Client
	userAgent string
}

// New describes the new operation and its observable behavior.
func New(cfg Config) (*HTTPClient, error) {
	if cfg.Endpoint == "" {
		return nil, ErrEndpointRequired
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &HTTPClient{
		endpoint:  cfg.Endpoint,
		client:    client,
		userAgent: cfg.UserAgent,
	}, nil
}

// Send issues one command and decodes the jsonCode envelope. Non-envelope
// response fields are preserved in Response.Data.
func (c *HTTPClient) Send(ctx context.Context, command string, parameters map[string]any, typ goDispatch.TransportType) (goDispatch.Response, error) {
	form, err := encodeForm(command, parameters)
	if err != nil {
		return goDispatch.Response{}, err
	}

	var req *http.Request
	switch typ {
	case goDispatch.TransportGet:
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+form.Encode(), nil)
	default:
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return goDispatch.Response{}, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		return goDispatch.Response{}, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 16<<20))
	if err != nil {
		return goDispatch.Response{}, fmt.Errorf("read response: %w", err)
	}

	return decodeEnvelope(body)
}

func encodeForm(command string, parameters map[string]any) (url.Values, error) {
	form := url.Values{}
	form.Set("command", command)

	for key, value := range parameters {
		switch v := value.(type) {
		case nil:
			form.Set(key, "")
		case string:
			form.Set(key, v)
		case bool:
			if v {
				form.Set(key, "true")
			} else {
				form.Set(key, "false")
			}
		case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			form.Set(key, fmt.Sprint(v))
		default:
			// Structured values go over the wire as JSON.
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode parameter %s: %w", key, err)
			}
			form.Set(key, string(encoded))
		}
	}

	return form, nil
}

func decodeEnvelope(body []byte) (goDispatch.Response, error) {
	raw := map[string]any{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return goDispatch.Response{}, fmt.Errorf("decode envelope: %w", err)
	}

	resp := goDispatch.Response{Data: raw}

	if code, ok := raw["jsonCode"].(float64); ok {
		resp.JSONCode = int(code)
		delete(raw, "jsonCode")
	}
	if msg, ok := raw["message"].(string); ok {
		resp.Message = msg
		delete(raw, "message")
	}
	if tok, ok := raw["authToken"].(string); ok {
		resp.AuthToken = tok
		delete(raw, "authToken")
	}

	return resp, nil
}
