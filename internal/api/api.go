// Package api is the HTTP client used to reach the farm web application.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"farm-yield/internal/logger"

	"golang.org/x/time/rate"
)

// StatusError is returned for HTTP responses with a status of 400 or above
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the farm API may answer differently next time
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client sends read requests to the farm API with shared headers, an
// optional rate limit and optional request logging
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	limiter    *rate.Limiter
	useLogging bool
}

// ClientOption configures the API client
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithBaseURL sets the prefix joined to every request path
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHeader sets a header sent with every request, e.g. a farm API key
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		if key != "" {
			c.headers[key] = value
		}
	}
}

// WithBearerToken sets the Authorization header when token is not empty
func WithBearerToken(token string) ClientOption {
	return func(c *Client) {
		if token != "" {
			c.headers["Authorization"] = "Bearer " + token
		}
	}
}

// WithRateLimit limits outgoing requests; a non-positive rps disables it
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithLogging enables request logging at debug and failures at warn/error
func WithLogging(enabled bool) ClientOption {
	return func(c *Client) {
		c.useLogging = enabled
	}
}

// NewClient creates a client that asks for JSON
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		headers:    map[string]string{"Accept": "application/json"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) log(ctx context.Context, level string, msg string, args ...any) {
	if !c.useLogging {
		return
	}
	switch level {
	case "debug":
		logger.Debug(ctx, msg, args...)
	case "warn":
		logger.Warn(ctx, msg, args...)
	default:
		logger.Error(ctx, msg, args...)
	}
}

// Request is a single call against the farm API
type Request struct {
	Method string
	Path   string
	ctx    context.Context
}

// NewRequest creates a request for path, relative to the base URL
func NewRequest(method, path string) *Request {
	return &Request{Method: method, Path: path, ctx: context.Background()}
}

// WithContext binds the request to ctx for cancellation and rate limiting
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// Response is a fully read 2xx/3xx response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// ParseJSON decodes the body into v
func (r *Response) ParseJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

// Do sends req once. Responses with status 400 or above become a
// *StatusError carrying the body.
func (c *Client) Do(req *Request) (*Response, error) {
	ctx := req.ctx
	url := c.baseURL + req.Path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, nil)
	if err != nil {
		c.log(ctx, "error", "Failed to create HTTP request", "url", url, "error", err)
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	c.log(ctx, "debug", "HTTP Request", "method", req.Method, "url", url)
	started := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log(ctx, "error", "HTTP request failed", "method", req.Method, "url", url, "error", err)
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	c.log(ctx, "debug", "HTTP Response",
		"url", url,
		"status", httpResp.StatusCode,
		"duration", time.Since(started),
		"bodySize", len(body))

	if httpResp.StatusCode >= 400 {
		c.log(ctx, "warn", "HTTP error response", "url", url, "status", httpResp.StatusCode)
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: string(body)}
	}
	return &Response{StatusCode: httpResp.StatusCode, Body: body, Headers: httpResp.Header}, nil
}

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
}

// DefaultRetryConfig returns three attempts with 1s doubling up to 5s
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Second,
		MaxWait:     5 * time.Second,
	}
}

// DoWithRetry sends req until it succeeds or attempts run out, doubling the
// wait between attempts. Client errors other than 429 are returned at once.
func (c *Client) DoWithRetry(req *Request, cfg *RetryConfig) (*Response, error) {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	attempts := max(cfg.MaxAttempts, 1)
	wait := cfg.InitialWait

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return nil, err
		}
		if req.ctx.Err() != nil || attempt == attempts {
			break
		}

		c.log(req.ctx, "warn", "Request failed, retrying", "attempt", attempt, "error", err, "waitTime", wait)
		select {
		case <-time.After(wait):
		case <-req.ctx.Done():
			return nil, fmt.Errorf("retry aborted: %w", req.ctx.Err())
		}
		wait = min(wait*2, cfg.MaxWait)
	}

	c.log(req.ctx, "error", "All retry attempts failed", "maxAttempts", attempts, "error", lastErr)
	return nil, fmt.Errorf("all %d retry attempts failed: %w", attempts, lastErr)
}
