package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blockprint/blockprint/pkg/httputil"
	"github.com/blockprint/blockprint/pkg/observability"
)

// Client provides shared HTTP functionality for remote service clients.
// It applies default headers, reports every call to the registered
// [observability.HTTPHooks], and retries transient failures of idempotent
// requests.
type Client struct {
	http     *http.Client
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient uses a copy of h as the underlying *http.Client, so later
// options never change the caller's client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		cp := *h
		c.http = &cp
	}
}

// WithTimeout sets the overall timeout of a single request. Zero disables it,
// which streaming callers need.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetry sets how often [Client.Get] attempts a request and the initial
// backoff delay.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// NewClient creates a Client with the given default headers.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string, opts ...ClientOption) *Client {
	c := &Client{
		http:     NewHTTPClient(),
		headers:  headers,
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// Network failures and 5xx responses are retried.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return httputil.Retry(ctx, c.attempts, c.delay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := c.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		return json.NewDecoder(resp.Body).Decode(v)
	})
}

// PostJSON sends body as JSON and returns the response for the caller to
// read. It is not retried.
func (c *Client) PostJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.Do(req)
}

// Do sends req with the default headers applied. A non-2xx response is
// closed and returned as a *StatusError; the caller must close the body of
// a successful one.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	for k, v := range c.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	ctx := req.Context()
	hooks := observability.HTTP()
	method, host, path := req.Method, req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, method, host, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	err := &StatusError{Code: code, Detail: readDetail(resp.Body)}
	if code >= 500 {
		return &httputil.RetryableError{Err: err}
	}
	return err
}

// readDetail extracts the "detail" string of an error body, or "".
func readDetail(r io.Reader) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil {
		return ""
	}
	s, _ := body.Detail.(string)
	return s
}
