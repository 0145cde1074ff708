package mock

import (
	"context"

	"github.com/fwojciec/brawl"
)

var _ brawl.LinkFetcher = (*LinkFetcher)(nil)

// LinkFetcher is a mock implementation of brawl.LinkFetcher.
type LinkFetcher struct {
	FetchLinksFn func(ctx context.Context, url string) ([]string, error)
	CloseFn      func() error
}

func (f *LinkFetcher) FetchLinks(ctx context.Context, url string) ([]string, error) {
	return f.FetchLinksFn(ctx, url)
}

func (f *LinkFetcher) Close() error {
	return f.CloseFn()
}
