package brawl

import (
	"context"
	"time"
)

// CrawlRecord is the stored summary of one completed crawl.
type CrawlRecord struct {
	ID         string    `json:"id"`
	Seed       string    `json:"seed"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	URLCount   int       `json:"urlCount"`
	Fetched    int       `json:"fetched"`
	Failed     int       `json:"failed"`
	Canceled   bool      `json:"canceled"`

	// Digest identifies the visited URL list, so two runs with equal digests
	// produced the same output.
	Digest string `json:"digest"`
}

// Validate returns an error if the record contains invalid fields.
func (r *CrawlRecord) Validate() error {
	if r.Seed == "" {
		return Errorf(EINVALID, "crawl seed required")
	}
	if r.StartedAt.IsZero() {
		return Errorf(EINVALID, "crawl start time required")
	}
	if r.FinishedAt.Before(r.StartedAt) {
		return Errorf(EINVALID, "crawl finished before it started")
	}
	return nil
}

// CrawlService represents a service for recording crawl history.
type CrawlService interface {
	// CreateCrawl stores a crawl record together with its visited URLs in
	// insertion order. ID and URLCount are set on the record.
	CreateCrawl(ctx context.Context, record *CrawlRecord, urls []string) error

	// FindCrawlByID retrieves a crawl record by ID.
	// Returns ENOTFOUND if the crawl does not exist.
	FindCrawlByID(ctx context.Context, id string) (*CrawlRecord, error)

	// FindCrawls retrieves crawl records matching the filter, newest first.
	FindCrawls(ctx context.Context, filter CrawlFilter) ([]*CrawlRecord, error)

	// FindCrawlURLs returns the visited URLs of a crawl in insertion order.
	// Returns ENOTFOUND if the crawl does not exist.
	FindCrawlURLs(ctx context.Context, id string) ([]string, error)

	// DeleteCrawl permanently removes a crawl and its URLs.
	// Returns ENOTFOUND if the crawl does not exist.
	DeleteCrawl(ctx context.Context, id string) error
}

// CrawlFilter represents a filter for FindCrawls.
type CrawlFilter struct {
	ID     *string `json:"id"`
	Seed   *string `json:"seed"`
	Digest *string `json:"digest"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
