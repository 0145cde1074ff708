package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/brawl"
)

// FetchFunc is the signature for a link fetch function.
type FetchFunc func(ctx context.Context, url string) ([]string, error)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// RetryDelays returns n exponential backoff delays starting at base.
func RetryDelays(n int, base time.Duration) []time.Duration {
	delays := make([]time.Duration, 0, n)
	d := base
	for range n {
		delays = append(delays, d)
		d *= 2
	}
	return delays
}

// FetchWithRetryDelays calls fetch until it succeeds or len(delays) retries
// have been spent, sleeping delays[i] before retry i.
// The logger, if non-nil, receives one record per retry.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, logger *slog.Logger, delays []time.Duration) ([]string, error) {
	maxAttempts := len(delays) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		links, err := fetch(ctx, url)
		if err == nil {
			return links, nil
		}
		lastErr = err

		// Don't retry after the last attempt
		if attempt >= maxAttempts-1 {
			break
		}

		// Check context before sleeping
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if logger != nil {
			logger.Debug("retry", "url", url, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}

// Ensure RetryFetcher implements brawl.LinkFetcher at compile time.
var _ brawl.LinkFetcher = (*RetryFetcher)(nil)

// RetryFetcher retries failed fetches of the wrapped fetcher with backoff.
// From the caller's point of view it is still a single fetch per URL.
type RetryFetcher struct {
	next   brawl.LinkFetcher
	delays []time.Duration
	logger *slog.Logger
}

// NewRetryFetcher wraps next. A nil delays slice means DefaultRetryDelays.
// logger may be nil.
func NewRetryFetcher(next brawl.LinkFetcher, delays []time.Duration, logger *slog.Logger) *RetryFetcher {
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return &RetryFetcher{next: next, delays: delays, logger: logger}
}

// FetchLinks implements brawl.LinkFetcher.
func (f *RetryFetcher) FetchLinks(ctx context.Context, url string) ([]string, error) {
	return FetchWithRetryDelays(ctx, url, f.next.FetchLinks, f.logger, f.delays)
}

// Close delegates to the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.next.Close()
}
