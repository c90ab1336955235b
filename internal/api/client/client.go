// Package client provides a client for a running dotcfg API server.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/nauticalab/dotcfg/internal/api"
)

const (
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
)

// Client represents an HTTP client for the dotcfg API
type Client struct {
	// baseURL is the base URL of the API server
	baseURL string
	// httpClient is the underlying HTTP client
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// NewClientWithHTTPClient creates a client using httpClient for transport.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	c := NewClient(baseURL)
	c.httpClient = httpClient
	return c
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// parseResponse parses the HTTP response into the target structure
func parseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
		}
		return &APIError{Code: errResp.Code, Message: errResp.Message}
	}

	if target != nil {
		if err := json.Unmarshal(bodyBytes, target); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// APIError is an error response returned by the server.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s (code: %d)", e.Message, e.Code)
}

func (c *Client) get(ctx context.Context, method, path string, target any) error {
	resp, err := c.doRequest(ctx, method, path)
	if err != nil {
		return err
	}
	return parseResponse(resp, target)
}

// Health checks the health of the API server
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var health api.HealthResponse
	if err := c.get(ctx, http.MethodGet, "/api/v1/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Version retrieves version information from the API server
func (c *Client) Version(ctx context.Context) (*api.VersionResponse, error) {
	var version api.VersionResponse
	if err := c.get(ctx, http.MethodGet, "/api/v1/version", &version); err != nil {
		return nil, err
	}
	return &version, nil
}

// ConfigResponse mirrors api.ConfigResponse with the configuration decoded
// as a plain map.
type ConfigResponse struct {
	Config   map[string]any `json:"config"`
	Keys     int            `json:"keys"`
	LoadedAt time.Time      `json:"loadedAt"`
}

// Config retrieves the whole served configuration
func (c *Client) Config(ctx context.Context) (*ConfigResponse, error) {
	var resp ConfigResponse
	if err := c.get(ctx, http.MethodGet, "/api/v1/config", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Value retrieves the value at a dotted path
func (c *Client) Value(ctx context.Context, path string) (*api.ValueResponse, error) {
	var resp api.ValueResponse
	if err := c.get(ctx, http.MethodGet, "/api/v1/config/"+url.PathEscape(path), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reload asks the server to re-read its sources
func (c *Client) Reload(ctx context.Context) (*api.ReloadResponse, error) {
	var resp api.ReloadResponse
	if err := c.get(ctx, http.MethodPost, "/api/v1/reload", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
