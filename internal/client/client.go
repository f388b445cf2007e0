// Package client provides REST clients for the YM Factory backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/raphaelgruber/ymfactory/internal/metrics"
)

// DefaultBaseURL is the backend API root used when nothing else is configured.
const DefaultBaseURL = "http://localhost:8000/api"

// RequestIDHeader carries a per-request id for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// DefaultSlowRequestThreshold is the duration above which requests are logged at WARN level.
const DefaultSlowRequestThreshold = 500 * time.Millisecond

var (
	// ErrNotFound indicates the backend does not know the requested job.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest indicates a request was rejected before being sent.
	ErrInvalidRequest = errors.New("invalid request")
)

// APIError is returned for any non-2xx backend response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Detail)
}

// Is makes 404 responses match ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to the backend over JSON/HTTP.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Collector
	slow       time.Duration
	validate   *validator.Validate
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is
// wrapped for request logging; the passed client itself is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.httpClient = &cp
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics records per-operation timings into m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithSlowRequestThreshold sets the duration above which requests log at WARN.
func WithSlowRequestThreshold(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.slow = d
		}
	}
}

// New creates a new client.
// If baseURL is empty, uses YMF_API_URL env var or defaults to localhost:8000/api.
// Timeout can be configured via YMF_CLIENT_TIMEOUT env var (default 30s).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("YMF_API_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := 30 * time.Second
	if t := os.Getenv("YMF_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		slow:       DefaultSlowRequestThreshold,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	next := c.httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	c.httpClient.Transport = &loggingTransport{next: next, logger: c.logger, slow: c.slow}

	return c
}

// BaseURL returns the API root this client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Research returns the client for the research resource family.
func (c *Client) Research() *ResearchClient {
	return &ResearchClient{c: c, base: "/research"}
}

// Curation returns the client for the curation resource family.
func (c *Client) Curation() *CurationClient {
	return &CurationClient{c: c, base: "/curation"}
}

// Production returns the client for the production resource family.
func (c *Client) Production() *ProductionClient {
	return &ProductionClient{c: c, base: "/production"}
}

// check validates a request body against its struct tags.
func (c *Client) check(req any) error {
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}
	return nil
}

// do sends one request and decodes the JSON response into out.
// Every call is timed under op in the metrics collector.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordRequest(op, time.Since(start), err)
	}()

	var reader io.Reader
	if body != nil {
		payload, merr := json.Marshal(body)
		if merr != nil {
			return fmt.Errorf("marshal request: %w", merr)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(data),
		}
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// errorDetail extracts FastAPI's {"detail": ...} message, falling back to the raw body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		return string(payload.Detail)
	}
	return truncate(strings.TrimSpace(string(body)), maxDetailLen)
}

// jobPath joins a resource base with an escaped id.
func jobPath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}
