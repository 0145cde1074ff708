package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/brawl"
)

// historyRecorder stores the run in the crawl history and compares it with
// the previous run from the same seed.
type historyRecorder struct {
	service  brawl.CrawlService
	record   *brawl.CrawlRecord
	previous *brawl.CrawlRecord
}

func newHistoryRecorder(ctx context.Context, service brawl.CrawlService, seed string, startedAt time.Time) (*historyRecorder, error) {
	previous, err := service.FindCrawls(ctx, brawl.CrawlFilter{Seed: &seed, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to read crawl history: %w", err)
	}

	h := &historyRecorder{
		service: service,
		record:  &brawl.CrawlRecord{Seed: seed, StartedAt: startedAt},
	}
	if len(previous) > 0 {
		h.previous = previous[0]
	}
	return h, nil
}

func (h *historyRecorder) sink() brawl.ResultSink {
	return &brawl.HistorySink{Service: h.service, Record: h.record}
}

// report prints the stored crawl ID and whether the URL list changed since
// the previous run.
func (h *historyRecorder) report(w io.Writer) {
	fmt.Fprintf(w, "Recorded crawl %s (digest %s)\n", h.record.ID, h.record.Digest)
	if h.previous == nil {
		return
	}
	if h.previous.Digest == h.record.Digest {
		fmt.Fprintf(w, "Unchanged since crawl %s\n", h.previous.ID)
		return
	}
	fmt.Fprintf(w, "Changed since crawl %s (%d -> %d URLs)\n", h.previous.ID, h.previous.URLCount, h.record.URLCount)
}
