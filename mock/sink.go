package mock

import (
	"context"

	"github.com/fwojciec/brawl"
)

var _ brawl.ResultSink = (*ResultSink)(nil)

// ResultSink is a mock implementation of brawl.ResultSink.
type ResultSink struct {
	WriteURLsFn func(ctx context.Context, urls []string) error
}

func (s *ResultSink) WriteURLs(ctx context.Context, urls []string) error {
	return s.WriteURLsFn(ctx, urls)
}
