package mock

import (
	"context"

	"github.com/fwojciec/brawl"
)

var _ brawl.CrawlService = (*CrawlService)(nil)

// CrawlService is a mock implementation of brawl.CrawlService.
type CrawlService struct {
	CreateCrawlFn   func(ctx context.Context, record *brawl.CrawlRecord, urls []string) error
	FindCrawlByIDFn func(ctx context.Context, id string) (*brawl.CrawlRecord, error)
	FindCrawlsFn    func(ctx context.Context, filter brawl.CrawlFilter) ([]*brawl.CrawlRecord, error)
	FindCrawlURLsFn func(ctx context.Context, id string) ([]string, error)
	DeleteCrawlFn   func(ctx context.Context, id string) error
}

func (s *CrawlService) CreateCrawl(ctx context.Context, record *brawl.CrawlRecord, urls []string) error {
	return s.CreateCrawlFn(ctx, record, urls)
}

func (s *CrawlService) FindCrawlByID(ctx context.Context, id string) (*brawl.CrawlRecord, error) {
	return s.FindCrawlByIDFn(ctx, id)
}

func (s *CrawlService) FindCrawls(ctx context.Context, filter brawl.CrawlFilter) ([]*brawl.CrawlRecord, error) {
	return s.FindCrawlsFn(ctx, filter)
}

func (s *CrawlService) FindCrawlURLs(ctx context.Context, id string) ([]string, error) {
	return s.FindCrawlURLsFn(ctx, id)
}

func (s *CrawlService) DeleteCrawl(ctx context.Context, id string) error {
	return s.DeleteCrawlFn(ctx, id)
}
