package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsradar/internal/ports"
)

// Fetcher retrieves raw feed documents over HTTP with a bounded timeout.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

var _ ports.FeedFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; a nil client gets an 8s timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}
	return &Fetcher{client: client, userAgent: "newsradar/1.0"}
}

// Fetch issues a GET and returns the response body. Non-2xx statuses
// are errors; the caller decides whether the run continues.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read feed body: %w", err)
	}

	return string(body), nil
}
