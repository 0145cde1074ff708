package mock

import "github.com/fwojciec/brawl"

var _ brawl.Frontier = (*Frontier)(nil)

// Frontier is a mock implementation of brawl.Frontier.
type Frontier struct {
	PushFn    func(url string) bool
	PopFn     func() (string, bool)
	LenFn     func() int
	IsEmptyFn func() bool
}

func (f *Frontier) Push(url string) bool {
	return f.PushFn(url)
}

func (f *Frontier) Pop() (string, bool) {
	return f.PopFn()
}

func (f *Frontier) Len() int {
	return f.LenFn()
}

func (f *Frontier) IsEmpty() bool {
	return f.IsEmptyFn()
}

var _ brawl.VisitedSet = (*VisitedSet)(nil)

// VisitedSet is a mock implementation of brawl.VisitedSet.
type VisitedSet struct {
	AddFn      func(url string) bool
	ContainsFn func(url string) bool
	SnapshotFn func() []string
	LenFn      func() int
}

func (v *VisitedSet) Add(url string) bool {
	return v.AddFn(url)
}

func (v *VisitedSet) Contains(url string) bool {
	return v.ContainsFn(url)
}

func (v *VisitedSet) Snapshot() []string {
	return v.SnapshotFn()
}

func (v *VisitedSet) Len() int {
	return v.LenFn()
}
