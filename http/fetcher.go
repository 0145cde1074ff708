// Package http provides a brawl.LinkFetcher for static sites that don't
// require JavaScript rendering.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/brawl"
	"github.com/fwojciec/brawl/goquery"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "brawl/1.0"

// Ensure Fetcher implements brawl.LinkFetcher at compile time.
var _ brawl.LinkFetcher = (*Fetcher)(nil)

// Fetcher retrieves pages with plain HTTP GET requests and extracts their
// anchors. Unlike rod.Fetcher, it does not execute JavaScript.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// FetchLinks downloads url and returns the hrefs of its anchors, resolved
// against the final URL after redirects.
func (f *Fetcher) FetchLinks(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, brawl.Errorf(brawl.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, brawl.Errorf(brawl.EFETCH, "request %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, brawl.Errorf(brawl.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, brawl.Errorf(brawl.EFETCH, "decode %s: %v", url, err)
	}

	base := url
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL.String()
	}

	links, err := goquery.ExtractHrefs(body, base)
	if err != nil {
		return nil, brawl.Errorf(brawl.EFETCH, "extract links from %s: %s", url, brawl.ErrorMessage(err))
	}
	return links, nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
