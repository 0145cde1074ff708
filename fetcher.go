package brawl

import "context"

// LinkFetcher expands a page: it loads the URL and returns the raw href
// targets of every anchor on it.
type LinkFetcher interface {
	// FetchLinks loads the page at url and returns the href of each anchor
	// element in document order. Values are returned as found, without
	// filtering or deduplication.
	// The context controls timeout and cancellation.
	FetchLinks(ctx context.Context, url string) ([]string, error)

	// Close releases any resources held by the fetcher.
	Close() error
}
