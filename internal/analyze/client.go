package analyze

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
	"time"

	"github.com/nao1215/harvest/internal/config"
	"github.com/nao1215/harvest/internal/model"
)

const (
	// defaultMaxTextBytes caps the text submitted for analysis.
	defaultMaxTextBytes = 8 * 1024

	// maxResponseBytes caps how much of the service's answer is read.
	maxResponseBytes = 1 * 1024 * 1024
)

// ErrInvalidEndpoint is returned when the analyzer endpoint is not an
// absolute http or https URL.
var ErrInvalidEndpoint = errors.New("analyzer endpoint must be an absolute http or https URL")

// ServiceError describes a failed call to the analysis service.
type ServiceError struct {
	// Endpoint is the analyzer URL that was called.
	Endpoint string

	// StatusCode is the HTTP status, zero when no response arrived.
	StatusCode int

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("analyze %s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("analyze %s: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error { return e.Err }

// Client calls an external content analysis service over HTTP.
//
// Design decision: We keep the client deliberately thin because:
//  1. The service contract is one POST with a JSON body either way
//  2. Retrying is pointless for a best-effort advisory step
//  3. The crawler isolates analyzer failures, so errors just need to
//     carry enough context to log
type Client struct {
	// endpoint is the analysis service URL.
	endpoint string

	// httpClient performs the request. Tests inject one bound to an
	// httptest server.
	httpClient *http.Client

	// maxTextBytes caps the submitted text size.
	maxTextBytes int

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMaxTextBytes caps the text submitted for analysis. Values below one
// are ignored.
func WithMaxTextBytes(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTextBytes = n
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the analysis service at endpoint.
// The endpoint must be an absolute http or https URL; the client does not
// probe it, so a dead service surfaces on the first Analyze call.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidEndpoint
	}

	c := &Client{
		endpoint:     endpoint,
		httpClient:   &http.Client{Timeout: config.DefaultAnalyzerTimeout},
		maxTextBytes: defaultMaxTextBytes,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// Analyze submits the page text and returns the service's report.
// The input text is truncated near the configured byte budget before
// submission. All failures come back as a *ServiceError.
func (c *Client) Analyze(ctx context.Context, input model.AnalysisInput) (*model.AnalysisReport, error) {
	input.Text = truncateText(input.Text, c.maxTextBytes)

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, &ServiceError{Endpoint: c.endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &ServiceError{Endpoint: c.endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", config.AppName)

	c.logger.Debug("requesting content analysis",
		"endpoint", c.endpoint,
		"url", input.URL,
		"text_bytes", len(input.Text),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ServiceError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ServiceError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &ServiceError{
			Endpoint:   c.endpoint,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	var report model.AnalysisReport
	if err := json.Unmarshal(stripFence(body), &report); err != nil {
		return nil, &ServiceError{
			Endpoint:   c.endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("malformed report: %w", err),
		}
	}

	return &report, nil
}
