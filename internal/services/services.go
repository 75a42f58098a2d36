// HTTP plumbing shared by the catalog and artwork collaborators
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/shelf/internal/shared"
)

const (
	defaultUserAgent = "shelf/0.3.0 (local)"
	maxBodySize      = 4 << 20
)

// Client is the HTTP client every collaborator shares. It stamps the User-Agent the catalogs ask for.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a Client. A nil httpClient gets one with the given timeout.
func NewClient(httpClient *http.Client, userAgent string, timeout time.Duration) *Client {
	if httpClient == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{httpClient: httpClient, userAgent: userAgent}
}

// HTTPClient returns the underlying [http.Client].
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// doRequest sends req and fails on any non-2xx status.
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %s returned status %d", shared.ErrServiceUnavailable, req.URL.Host, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s returned status %d", shared.ErrAPIRequest, req.URL.Host, resp.StatusCode)
	}
	return resp, nil
}

// getJSON performs a GET and decodes the JSON body into result.
func (c *Client) getJSON(ctx context.Context, rawURL string, result any) error {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// getText performs a GET and returns the body.
func (c *Client) getText(ctx context.Context, rawURL string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.doRequest(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}
