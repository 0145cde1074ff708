// Package rod provides a browser-backed brawl.LinkFetcher. Pages are loaded
// in headless Chrome so anchors receive the same resolved href a user agent
// would follow.
package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/brawl"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page load when the caller's context has
// no earlier deadline.
const DefaultFetchTimeout = 10 * time.Second

// anchorsJS returns the resolved href of every anchor carrying an href
// attribute, in document order. SVG anchors expose an object instead of a
// string and fall back to the raw attribute.
const anchorsJS = `() => Array.from(document.querySelectorAll("a[href]"), a => typeof a.href === "string" ? a.href : a.getAttribute("href"))`

// Ensure Fetcher implements brawl.LinkFetcher at compile time.
var _ brawl.LinkFetcher = (*Fetcher)(nil)

// Fetcher loads pages in a managed headless Chrome and returns their links.
// Fetcher is safe for concurrent use by multiple goroutines; each call opens
// its own tab.
type Fetcher struct {
	manager     *BrowserManager
	timeout     time.Duration
	managerOpts []ManagerOption
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page load timeout.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithManagerOptions passes options to the underlying BrowserManager.
func WithManagerOptions(opts ...ManagerOption) Option {
	return func(f *Fetcher) {
		f.managerOpts = append(f.managerOpts, opts...)
	}
}

// NewFetcher launches a headless Chrome and returns a Fetcher using it.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(f.managerOpts...)
	if err != nil {
		return nil, err
	}
	f.manager = manager
	return f, nil
}

// FetchLinks navigates to url, waits for the load event and returns the href
// of each anchor.
func (f *Fetcher) FetchLinks(ctx context.Context, url string) ([]string, error) {
	// Check context before starting
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.manager.closed.Load() {
		return nil, brawl.Errorf(brawl.EINVALID, "fetcher is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser, release, err := f.manager.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening tab: %w", err)
	}
	// The tab is closed even when ctx has expired.
	defer func() { _ = page.Context(context.WithoutCancel(ctx)).Close() }()

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", url, err)
	}

	res, err := page.Eval(anchorsJS)
	if err != nil {
		return nil, fmt.Errorf("reading anchors of %s: %w", url, err)
	}
	f.manager.IncrementPageCount()

	values := res.Value.Arr()
	links := make([]string, 0, len(values))
	for _, v := range values {
		links = append(links, v.Str())
	}
	return links, nil
}

// LauncherPID returns the process ID of the current browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// Close shuts down the browser.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
