package brawl

import "context"

// ResultSink receives the final visited URLs of a traversal.
type ResultSink interface {
	// WriteURLs persists urls in the given order.
	WriteURLs(ctx context.Context, urls []string) error
}

// Ensure MultiSink implements ResultSink at compile time.
var _ ResultSink = MultiSink(nil)

// MultiSink writes to each sink in order and stops at the first error.
type MultiSink []ResultSink

// WriteURLs implements ResultSink.
func (m MultiSink) WriteURLs(ctx context.Context, urls []string) error {
	for _, s := range m {
		if err := s.WriteURLs(ctx, urls); err != nil {
			return err
		}
	}
	return nil
}

// Ensure HistorySink implements ResultSink at compile time.
var _ ResultSink = (*HistorySink)(nil)

// HistorySink records the visited URLs as one crawl run in a CrawlService.
// Record is filled in by the caller before WriteURLs and updated with the
// stored ID, count and digest afterwards.
type HistorySink struct {
	Service CrawlService
	Record  *CrawlRecord
}

// WriteURLs implements ResultSink.
func (s *HistorySink) WriteURLs(ctx context.Context, urls []string) error {
	if s.Record == nil {
		return Errorf(EINVALID, "crawl record required")
	}
	return s.Service.CreateCrawl(ctx, s.Record, urls)
}
