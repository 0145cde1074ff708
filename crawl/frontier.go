package crawl

import (
	"sync"

	"github.com/fwojciec/brawl"
)

// Compile-time interface verification.
var _ brawl.Frontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO queue of URLs awaiting expansion.
// A URL is queued at most once at a time.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu     sync.Mutex
	queue  []string
	head   int
	queued map[string]struct{}
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		queued: make(map[string]struct{}),
	}
}

// Push appends url to the tail.
// Returns false if the URL is already queued.
func (f *Frontier) Push(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.queued[url]; ok {
		return false
	}
	f.queued[url] = struct{}{}
	f.queue = append(f.queue, url)
	return true
}

// Pop removes and returns the head.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.head == len(f.queue) {
		return "", false
	}
	url := f.queue[f.head]
	f.queue[f.head] = ""
	f.head++
	delete(f.queued, url)

	// Reclaim the consumed prefix once it dominates the backing array
	if f.head > 1024 && f.head*2 >= len(f.queue) {
		f.queue = append([]string(nil), f.queue[f.head:]...)
		f.head = 0
	}
	return url, true
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) - f.head
}

// IsEmpty reports whether no URLs are queued.
func (f *Frontier) IsEmpty() bool {
	return f.Len() == 0
}
