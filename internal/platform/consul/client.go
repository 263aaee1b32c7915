package consul

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// TokenHeader carries the Consul ACL token.
const TokenHeader = "X-Consul-Token"

// Snapshot is a buffered snapshot response.
type Snapshot struct {
	// Data is the response body, byte for byte.
	Data []byte

	// StatusCode is the HTTP status Consul answered with. It is not checked
	// unless the client was created with WithFailOnHTTPError.
	StatusCode int

	ContentType string

	// Index is the X-Consul-Index of the snapshot, when present.
	Index string
}

// Successful reports whether Consul answered with a 2xx status.
func (s *Snapshot) Successful() bool {
	return s.StatusCode >= 200 && s.StatusCode < 300
}

// StatusError is returned for non-2xx responses when the client fails on HTTP errors.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("consul answered with %s", e.Status)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithFailOnHTTPError makes Snapshot return a *StatusError for non-2xx responses.
func WithFailOnHTTPError(fail bool) Option {
	return func(c *Client) {
		c.failOnHTTPError = fail
	}
}

// Client reads snapshots from one Consul endpoint.
type Client struct {
	http            *http.Client
	endpoint        string
	token           string
	failOnHTTPError bool
}

// NewClient creates a client for the snapshot endpoint, authenticating with token.
func NewClient(endpoint, token string, opts ...Option) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// The archive must reach the store byte for byte.
	transport.DisableCompression = true

	c := &Client{
		http:     &http.Client{Transport: transport},
		endpoint: endpoint,
		token:    token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot performs a single GET against the snapshot endpoint and buffers
// the full body. Transport failures and truncated bodies are returned as
// errors; partial reads are never retried.
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot request: %w", err)
	}
	req.Header.Set(TokenHeader, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send snapshot request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %w", err)
	}

	snap := &Snapshot{
		Data:        data,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Index:       resp.Header.Get("X-Consul-Index"),
	}
	if c.failOnHTTPError && !snap.Successful() {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return snap, nil
}
