// Package upstream holds the HTTP plumbing shared by the API clients.
package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "kasuki-bot (https://github.com/ValgulNecron/kasuki)"

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 8 << 20

var (
	// ErrNotFound is returned when the upstream reports a missing resource.
	ErrNotFound = errors.New("resource not found")
	// ErrUnexpectedStatus is returned for any other non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrRateLimited is returned on HTTP 429.
	ErrRateLimited = errors.New("rate limited by upstream")
)

// NewHTTPClient returns an http.Client with the given request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Get performs a GET request and returns the response body.
func Get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return do(client, req)
}

// PostJSON performs a POST request with a JSON body and returns the response body.
func PostJSON(ctx context.Context, client *http.Client, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return do(client, req)
}

func do(client *http.Client, req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", req.URL.Host, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return body, fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)
	case resp.StatusCode == http.StatusTooManyRequests:
		return body, fmt.Errorf("%w: %s", ErrRateLimited, req.URL.Host)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return body, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, req.URL.Host)
	}

	return body, nil
}
