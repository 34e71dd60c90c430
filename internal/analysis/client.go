package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RequestIDHeader carries the per-submission id to the service.
const RequestIDHeader = "X-Request-ID"

const maxResponseBytes = 8 << 20

// Client posts analysis requests to the service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds each call. Zero keeps the default of waiting until the transport settles.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient constructs a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string { return c.baseURL }

// Analyze issues exactly one POST and returns the insight. A success body without a result
// field yields "". Every failure is a *ServiceError.
func (c *Client) Analyze(ctx context.Context, req Request, requestID string) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, Path)
	if err != nil {
		return "", &ServiceError{Message: fmt.Sprintf("build url: %v", err), Err: err}
	}
	encoded, err := json.Marshal(req)
	if err != nil {
		return "", &ServiceError{Message: fmt.Sprintf("encode request: %v", err), Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", &ServiceError{Message: fmt.Sprintf("new request: %v", err), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if requestID != "" {
		httpReq.Header.Set(RequestIDHeader, requestID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &ServiceError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &ServiceError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("read response: %v", err), Err: err}
	}

	var envelope responseEnvelope
	decodeErr := json.Unmarshal(body, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && envelope.Error != nil && strings.TrimSpace(*envelope.Error) != "" {
			return "", &ServiceError{StatusCode: resp.StatusCode, Message: *envelope.Error}
		}
		message := http.StatusText(resp.StatusCode)
		if s := snippet(body); s != "" {
			message = s
		}
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return "", &ServiceError{StatusCode: resp.StatusCode, Message: message}
	}

	if decodeErr != nil {
		return "", &ServiceError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("decode response: %v", decodeErr),
			Err:        decodeErr,
		}
	}
	if envelope.Result == nil {
		return "", nil
	}
	return *envelope.Result, nil
}

// Health probes GET /healthz on the service.
func (c *Client) Health(ctx context.Context) error {
	endpoint, err := url.JoinPath(c.baseURL, "/healthz")
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New("health check returned " + resp.Status)
	}
	return nil
}
