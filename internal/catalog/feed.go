package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SourceFetchError reports a failed product feed load. It is fatal to that
// load and never retried automatically; the render surface shows it inline.
type SourceFetchError struct {
	URL    string
	Status int   // HTTP status when the response was non-success, 0 otherwise
	Err    error // transport error when the request never completed
}

func (e *SourceFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog feed %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("catalog feed %s: unexpected status %d", e.URL, e.Status)
}

func (e *SourceFetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the raw product feed over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch loads the feed text at url, bypassing any caching layer so every
// page load sees fresh data. Any transport failure or non-2xx status is
// returned as a *SourceFetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &SourceFetchError{URL: url, Err: err}
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &SourceFetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &SourceFetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &SourceFetchError{URL: url, Err: err}
	}

	return string(body), nil
}
