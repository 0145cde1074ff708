// Package crawl implements breadth-first traversal of a site's HTML pages.
// It owns the frontier and visited set of a traversal and coordinates a pool
// of workers that expand pages through a brawl.LinkFetcher.
package crawl

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/brawl"
	"golang.org/x/sync/errgroup"
)

// Crawler defaults.
const (
	// DefaultConcurrency expands one page at a time, which yields strict BFS order.
	DefaultConcurrency = 1
	// DefaultFetchTimeout bounds a single fetch call.
	DefaultFetchTimeout = 10 * time.Second
)

// Phase is the lifecycle stage of a traversal.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseDraining
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Crawler drives a breadth-first traversal from a seed URL.
// A Crawler runs one traversal at a time.
type Crawler struct {
	Fetcher      brawl.LinkFetcher
	Filter       brawl.LinkFilter
	Concurrency  int
	FetchTimeout time.Duration
	Logger       *slog.Logger

	phase atomic.Int32
}

// Result holds the outcome of a traversal.
type Result struct {
	// URLs lists every admitted URL in admission order, seed first.
	URLs []string
	// Fetched counts successful expansions.
	Fetched int
	// Failed counts expansions whose fetch returned an error.
	Failed int
	// Interrupted counts fetches that ended in error after the traversal was
	// canceled. They are not included in Failed.
	Interrupted int
	// Canceled is true if the traversal was stopped before the frontier emptied.
	Canceled bool
}

// ProgressEvent reports progress during a traversal.
type ProgressEvent struct {
	Type    ProgressType
	URL     string
	Visited int
	Pending int
	Error   error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressAdmitted
	ProgressFetched
	ProgressFailed
	ProgressFinished
	ProgressInterrupted
)

// ProgressFunc is a callback for reporting traversal progress.
// It is always called from the coordinating goroutine.
type ProgressFunc func(event ProgressEvent)

// fetchResult holds the outcome of expanding a single URL.
type fetchResult struct {
	url   string
	links []string
	err   error
}

// Phase returns the lifecycle stage of the current or last traversal.
func (c *Crawler) Phase() Phase {
	return Phase(c.phase.Load())
}

// Crawl walks the site reachable from seed and returns every admitted URL.
//
// The seed is admitted without filtering. Each dequeued URL is fetched exactly
// once; its links pass through Filter and are admitted if not seen before.
// A failed fetch is counted and reported, never fatal.
//
// Canceling ctx stops dispatch of new fetches. In-flight fetches are awaited
// but their links are discarded, and the URLs admitted so far are returned
// with Result.Canceled set. The returned error is non-nil only for invalid
// input.
func (c *Crawler) Crawl(ctx context.Context, seed string, progress ProgressFunc) (*Result, error) {
	if seed == "" {
		return nil, brawl.Errorf(brawl.EINVALID, "seed URL required")
	}
	if c.Fetcher == nil {
		return nil, brawl.Errorf(brawl.EINVALID, "fetcher required")
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	timeout := c.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	emit := func(event ProgressEvent) {
		if progress != nil {
			progress(event)
		}
	}

	c.phase.Store(int32(PhaseIdle))
	state := NewState()
	state.Admit(seed)
	emit(ProgressEvent{Type: ProgressStarted, URL: seed, Visited: 1, Pending: 1})
	emit(ProgressEvent{Type: ProgressAdmitted, URL: seed, Visited: 1, Pending: 1})

	// Channels for worker coordination
	workCh := make(chan string)
	resultCh := make(chan fetchResult)

	var g errgroup.Group
	for range concurrency {
		g.Go(func() error {
			for url := range workCh {
				resultCh <- c.expand(ctx, url, timeout)
			}
			return nil
		})
	}

	// Close result channel when all workers are done
	go func() {
		_ = g.Wait()
		close(resultCh)
	}()

	var result Result
	// live is false once ctx is done; links of such results are discarded and
	// their errors are interruptions, not fetch failures.
	handle := func(res fetchResult, live bool) {
		if res.err != nil && !live {
			result.Interrupted++
			logger.Debug("fetch interrupted", "url", res.url, "err", res.err)
			emit(ProgressEvent{
				Type:    ProgressInterrupted,
				URL:     res.url,
				Visited: state.VisitedLen(),
				Pending: state.Pending(),
				Error:   res.err,
			})
			return
		}
		if res.err != nil {
			result.Failed++
			logger.Debug("fetch failed", "url", res.url, "err", res.err)
			emit(ProgressEvent{
				Type:    ProgressFailed,
				URL:     res.url,
				Visited: state.VisitedLen(),
				Pending: state.Pending(),
				Error:   res.err,
			})
			return
		}

		result.Fetched++
		if live {
			for _, link := range c.Filter.Filter(res.links) {
				if state.Admit(link) {
					emit(ProgressEvent{
						Type:    ProgressAdmitted,
						URL:     link,
						Visited: state.VisitedLen(),
						Pending: state.Pending(),
					})
				}
			}
		}
		emit(ProgressEvent{
			Type:    ProgressFetched,
			URL:     res.url,
			Visited: state.VisitedLen(),
			Pending: state.Pending(),
		})
	}

	// Coordinator loop: the only goroutine that mutates state
	c.phase.Store(int32(PhaseRunning))
	logger.Debug("crawl started", "seed", seed, "concurrency", concurrency)

	pending := 0 // URLs currently being fetched
	next, hasNext := state.Next()

coordinatorLoop:
	for hasNext || pending > 0 {
		if ctx.Err() != nil {
			result.Canceled = true
			break coordinatorLoop
		}

		// A nil channel blocks forever, disabling dispatch when nothing is queued
		var work chan<- string
		if hasNext {
			work = workCh
		}

		select {
		case <-ctx.Done():
			result.Canceled = true
			break coordinatorLoop
		case work <- next:
			pending++
			hasNext = false
		case res := <-resultCh:
			pending--
			handle(res, ctx.Err() == nil)
		}

		if !hasNext {
			next, hasNext = state.Next()
		}
	}

	// Stop dispatching and wait for in-flight fetches
	c.phase.Store(int32(PhaseDraining))
	close(workCh)
	for res := range resultCh {
		handle(res, !result.Canceled && ctx.Err() == nil)
	}

	result.URLs = state.Visited()
	c.phase.Store(int32(PhaseDone))

	logger.Info("crawl finished",
		"seed", seed,
		"visited", len(result.URLs),
		"fetched", result.Fetched,
		"failed", result.Failed,
		"interrupted", result.Interrupted,
		"canceled", result.Canceled,
	)
	emit(ProgressEvent{Type: ProgressFinished, Visited: len(result.URLs)})

	return &result, nil
}

// expand fetches the links of a single page under the per-call timeout.
func (c *Crawler) expand(ctx context.Context, url string, timeout time.Duration) fetchResult {
	if err := ctx.Err(); err != nil {
		return fetchResult{url: url, err: err}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	links, err := c.Fetcher.FetchLinks(fetchCtx, url)
	return fetchResult{url: url, links: links, err: err}
}
