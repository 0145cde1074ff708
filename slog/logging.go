// Package slog provides log/slog decorators for brawl services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/brawl"
)

// Ensure LoggingFetcher implements brawl.LinkFetcher.
var _ brawl.LinkFetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a LinkFetcher with debug logging.
type LoggingFetcher struct {
	next   brawl.LinkFetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next brawl.LinkFetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// FetchLinks delegates to the wrapped fetcher and logs the call.
func (f *LoggingFetcher) FetchLinks(ctx context.Context, url string) (links []string, err error) {
	defer func(begin time.Time) {
		f.logger.DebugContext(ctx, "fetch",
			"url", url,
			"links", len(links),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchLinks(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// Ensure LoggingSink implements brawl.ResultSink.
var _ brawl.ResultSink = (*LoggingSink)(nil)

// LoggingSink wraps a ResultSink with logging. Name distinguishes sinks
// in the log output.
type LoggingSink struct {
	next   brawl.ResultSink
	name   string
	logger *slog.Logger
}

// NewLoggingSink creates a new LoggingSink.
func NewLoggingSink(next brawl.ResultSink, name string, logger *slog.Logger) *LoggingSink {
	return &LoggingSink{next: next, name: name, logger: logger}
}

// WriteURLs delegates to the wrapped sink and logs the write.
func (s *LoggingSink) WriteURLs(ctx context.Context, urls []string) (err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "write results",
			"sink", s.name,
			"count", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.WriteURLs(ctx, urls)
}
