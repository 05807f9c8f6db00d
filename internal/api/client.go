// Package api is a small client for the remote context API. Documents are
// fetched as raw text with GET and stored with a JSON encoded PUT, both
// authenticated with a bearer token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 4 << 10

// Remote is the subset of the API used by the sync engine
type Remote interface {
	// Fetch returns the raw content stored at endpoint
	Fetch(ctx context.Context, endpoint string) (string, error)
	// Store replaces the content stored at endpoint
	Store(ctx context.Context, endpoint, content string) error
}

// StatusError is returned when the API answers with a non-2xx status
type StatusError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d - %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

// Client implements Remote over HTTP
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	userAgent  string
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithVersion sets the version reported in the User-Agent header.
func WithVersion(version string) ClientOption {
	return func(c *Client) { c.userAgent = "paihooks/" + version }
}

// NewClient creates a client for the API at baseURL
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: http.DefaultClient,
		userAgent:  "paihooks",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs an authenticated GET and returns the body as text
func (c *Client) Fetch(ctx context.Context, endpoint string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := checkStatus(resp, http.MethodGet, endpoint); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("GET %s: failed to read body: %w", endpoint, err)
	}
	return string(body), nil
}

// storeRequest is the PUT payload
type storeRequest struct {
	Content string `json:"content"`
}

// Store performs an authenticated PUT of {"content": content}
func (c *Client) Store(ctx context.Context, endpoint, content string) error {
	payload, err := json.Marshal(storeRequest{Content: content})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("PUT %s: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := checkStatus(resp, http.MethodPut, endpoint); err != nil {
		return err
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request for %s: %w", method, endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

func checkStatus(resp *http.Response, method, endpoint string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
