package crawl

import "sync"

// State is the complete mutable state of one traversal: the frontier of URLs
// awaiting expansion and the set of every URL admitted so far.
//
// A URL is recorded as visited at admission time, when it is queued, not when
// it is expanded. Every URL returned by Next is therefore already visited,
// and no URL can be queued twice.
type State struct {
	mu       sync.Mutex
	frontier *Frontier
	visited  *VisitedSet
}

// NewState creates an empty State.
func NewState() *State {
	return &State{
		frontier: NewFrontier(),
		visited:  NewVisitedSet(),
	}
}

// Admit records url as visited and queues it for expansion.
// Returns false, changing nothing, if url was admitted before.
func (s *State) Admit(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.visited.Add(url) {
		return false
	}
	s.frontier.Push(url)
	return true
}

// Next removes and returns the next URL to expand.
// The bool result is false if nothing is queued.
func (s *State) Next() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frontier.Pop()
}

// Pending returns the number of URLs queued for expansion.
func (s *State) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frontier.Len()
}

// Visited returns every admitted URL in admission order.
func (s *State) Visited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visited.Snapshot()
}

// VisitedLen returns the number of admitted URLs.
func (s *State) VisitedLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visited.Len()
}
