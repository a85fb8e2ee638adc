package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// AuthMode controls whether a request needs the session bearer token.
type AuthMode int

const (
	// AuthOptional attaches the token when the session has one.
	AuthOptional AuthMode = iota
	// AuthRequired fails with ErrAuthRequired before dispatch when the
	// session has no token.
	AuthRequired
)

// TokenSource yields the current session bearer token, or "" when the
// session is unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// RequestOptions describe one call to the backend. Method defaults to
// GET, Body is JSON-encoded when present, Headers may be an
// http.Header, a map[string]string or ordered [key, value] pairs.
type RequestOptions struct {
	Method  string
	Body    any
	Headers any
	Auth    AuthMode
}

type httpResult struct {
	status int
	header http.Header
	body   []byte
}

// Client talks to the storefront backend. It owns a cookie jar so the
// backend's anonymous session identity survives across calls, and a
// circuit breaker so a dead backend fails fast instead of piling up
// timeouts.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	breaker *gobreaker.CircuitBreaker[*httpResult]
}

type Option func(*Client)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout on the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http: &http.Client{
			Timeout:   10 * time.Second,
			Jar:       jar,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	c.breaker = gobreaker.NewCircuitBreaker[*httpResult](gobreaker.Settings{
		Name: "storefront-backend",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		Timeout: 30 * time.Second,
	})

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do performs one round trip against the backend and decodes the JSON
// response into out (skipped when out is nil or the body is empty).
// Failures are normalized: transport problems wrap ErrNetwork, non-2xx
// responses become *HTTPError.
func (c *Client) Do(ctx context.Context, path string, opts RequestOptions, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token := ""
	if c.tokens != nil {
		token, err = c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("read session token: %w", err)
		}
	}
	if token == "" && opts.Auth == AuthRequired {
		return ErrAuthRequired
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	extra, err := normalizeHeaders(opts.Headers)
	if err != nil {
		return err
	}
	for k, vals := range extra {
		req.Header[http.CanonicalHeaderKey(k)] = vals
	}

	res, err := c.breaker.Execute(func() (*httpResult, error) {
		resp, doErr := c.http.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		defer resp.Body.Close()
		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}
		return &httpResult{status: resp.StatusCode, header: resp.Header, body: data}, nil
	})
	if err != nil {
		// Breaker-open and transport failures both mean no response
		// was received.
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if res.status < 200 || res.status > 299 {
		return decodeError(res.status, res.body)
	}

	if out != nil && len(res.body) > 0 {
		if err := json.Unmarshal(res.body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeError extracts a human-readable detail from an error body:
// JSON "detail" or "error" field first, then the raw text, then just
// the status code.
func decodeError(status int, body []byte) *HTTPError {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		if detail, ok := payload["detail"].(string); ok && detail != "" {
			return &HTTPError{Status: status, Detail: detail}
		}
		if msg, ok := payload["error"].(string); ok && msg != "" {
			return &HTTPError{Status: status, Detail: msg}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !json.Valid(body) {
		return &HTTPError{Status: status, Detail: text}
	}
	return &HTTPError{Status: status}
}
