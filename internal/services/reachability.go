package services

import (
	"context"
	"net/http"
)

// Reachability confirms a candidate image URL resolves without downloading it.
type Reachability struct {
	client *Client
}

// NewReachability creates a HEAD-based reachability checker.
func NewReachability(client *Client) *Reachability {
	return &Reachability{client: client}
}

// Check reports whether a HEAD request for rawURL ends in a 2xx response. Redirects are followed.
func (r *Reachability) Check(ctx context.Context, rawURL string) bool {
	req, err := r.client.newRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return false
	}

	resp, err := r.client.doRequest(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
