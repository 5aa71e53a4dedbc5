package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/innovo-consulting/funding-console/internal/logging"
	"github.com/innovo-consulting/funding-console/internal/metrics"
	"golang.org/x/oauth2"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultUploadTimeout = 3 * time.Minute

	maxErrorBody = 64 << 10
)

// TokenSource supplies the bearer token for outgoing requests. A session
// satisfies it.
type TokenSource interface {
	Token() string
}

// UnauthorizedFunc is called for every 401 before the error is returned.
type UnauthorizedFunc func(ctx context.Context, err *HTTPError)

// Client talks to the funding backend. It injects the bearer token, decodes
// response bodies and turns non-2xx answers into *HTTPError.
type Client struct {
	baseURL       string
	defaultClient *http.Client
	uploadClient  *http.Client // multipart uploads get a longer timeout
	tokens        TokenSource

	hooks *hooks
}

type hooks struct {
	mu             sync.RWMutex
	onUnauthorized []UnauthorizedFunc
}

type Option func(*Client)

// WithHTTPClient replaces the transport used for regular calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.defaultClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultClient.Timeout = d }
}

func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) { c.uploadClient.Timeout = d }
}

// New creates a client for baseURL. tokens may be nil for anonymous use.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		defaultClient: &http.Client{Timeout: DefaultTimeout},
		uploadClient:  &http.Client{Timeout: DefaultUploadTimeout},
		tokens:        tokens,
		hooks:         &hooks{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.uploadClient.Transport == nil {
		c.uploadClient.Transport = c.defaultClient.Transport
	}
	return c
}

// WithTokens returns a client sharing transports and hooks with c but
// reading tokens from ts. The web console derives one per request.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

func (c *Client) BaseURL() string { return c.baseURL }

// OnUnauthorized registers fn to run on every 401 response.
func (c *Client) OnUnauthorized(fn UnauthorizedFunc) {
	c.hooks.mu.Lock()
	c.hooks.onUnauthorized = append(c.hooks.onUnauthorized, fn)
	c.hooks.mu.Unlock()
}

func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if tok := c.tokens.Token(); tok != "" {
		(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(req)
	}
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body io.Reader, contentType string, out any) error {
	logger := logging.NewLogger(ctx)
	route := routeOf(path)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if rid := logging.RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}
	c.authorize(req)

	resp, err := hc.Do(req)
	if err != nil {
		metrics.RecordBackendCall(method, route, 0, time.Since(start))
		logger.LogWarnf("backend_call", "%s %s failed: %v", method, route, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	metrics.RecordBackendCall(method, route, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		he := &HTTPError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: messageFrom(raw),
			Body:    raw,
		}
		logger.LogWarnf("backend_call", "%s %s returned status %d", method, route, resp.StatusCode)
		if resp.StatusCode == http.StatusUnauthorized {
			c.hooks.mu.RLock()
			fns := append([]UnauthorizedFunc(nil), c.hooks.onUnauthorized...)
			c.hooks.mu.RUnlock()
			for _, fn := range fns {
				fn(ctx, he)
			}
		}
		return he
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode JSON: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, c.defaultClient, method, path, body, contentType, out)
}

// Get issues GET path and decodes the body into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.send(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Post issues POST path with body encoded as JSON.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.send(ctx, http.MethodPost, path, body, &out)
	return out, err
}

// Put issues PUT path with body encoded as JSON.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.send(ctx, http.MethodPut, path, body, &out)
	return out, err
}

// Delete issues DELETE path.
func Delete[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.send(ctx, http.MethodDelete, path, nil, &out)
	return out, err
}

// routeOf collapses numeric ids so metrics stay low-cardinality.
func routeOf(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		if isNumeric(seg) {
			segs[i] = ":id"
		}
	}
	return strings.Join(segs, "/")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
