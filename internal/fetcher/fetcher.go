// Package fetcher downloads compressor binaries over HTTP. It is the
// only component that touches the network.
package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher retrieves the contents of a URL. The executable resolver is the
// sole consumer; tests substitute a stub to count and fail downloads.
type Fetcher interface {
	Get(url string) ([]byte, error)
}

// HTTPFetcher is the production Fetcher backed by net/http.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher with a bounded request timeout.
// Compressor binaries are a few MB at most; two minutes is generous.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Get fetches url and returns the response body. Any non-200 status is
// an error; the resolver decides whether to fall back to another URL.
func (f *HTTPFetcher) Get(url string) ([]byte, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", url, err)
	}
	return body, nil
}
