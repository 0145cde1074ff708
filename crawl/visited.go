package crawl

import (
	"sync"

	"github.com/fwojciec/brawl"
	"github.com/fwojciec/brawl/bloom"
)

// Visited set sizing for the bloom prefilter.
const (
	// visitedExpectedURLs is the expected number of URLs for Bloom filter sizing.
	visitedExpectedURLs = 10000
	// visitedFalsePositiveRate is the acceptable false positive rate of the prefilter.
	visitedFalsePositiveRate = 0.01
)

// Compile-time interface verification.
var _ brawl.VisitedSet = (*VisitedSet)(nil)

// VisitedSet is an insertion-ordered, grow-only set of URLs.
// A Bloom filter answers most negative lookups; the exact map is consulted
// only when the filter reports a possible hit.
// It is safe for concurrent use by multiple goroutines.
type VisitedSet struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	index map[string]struct{}
	order []string
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{
		seen:  bloom.NewFilter(visitedExpectedURLs, visitedFalsePositiveRate),
		index: make(map[string]struct{}),
	}
}

// Add inserts url and reports whether it was newly added.
// Test and insert happen under one lock.
func (v *VisitedSet) Add(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.contains(url) {
		return false
	}
	v.seen.Add(url)
	v.index[url] = struct{}{}
	v.order = append(v.order, url)
	return true
}

// Contains reports whether url has been added.
func (v *VisitedSet) Contains(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.contains(url)
}

// contains must be called with mu held.
func (v *VisitedSet) contains(url string) bool {
	if !v.seen.Test(url) {
		return false
	}
	_, ok := v.index[url]
	return ok
}

// Snapshot returns a copy of the URLs in insertion order.
func (v *VisitedSet) Snapshot() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.order...)
}

// Len returns the number of URLs added.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.order)
}
