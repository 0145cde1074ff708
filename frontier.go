package brawl

// Frontier is the FIFO queue of URLs awaiting expansion.
type Frontier interface {
	// Push appends url to the tail.
	// Returns false if the URL is already queued.
	Push(url string) bool

	// Pop removes and returns the head.
	// Returns false if the frontier is empty.
	Pop() (string, bool)

	// Len returns the number of queued URLs.
	Len() int

	// IsEmpty reports whether no URLs are queued.
	IsEmpty() bool
}

// VisitedSet records every URL ever admitted to a traversal.
// URLs are never removed once added.
type VisitedSet interface {
	// Add inserts url and reports whether it was newly added.
	Add(url string) bool

	// Contains reports whether url has been added.
	Contains(url string) bool

	// Snapshot returns the URLs in insertion order.
	Snapshot() []string

	// Len returns the number of URLs added.
	Len() int
}
