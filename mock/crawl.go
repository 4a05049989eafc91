package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.CrawlService = (*CrawlService)(nil)

// CrawlService is a mock implementation of docdex.CrawlService.
type CrawlService struct {
	RunFn func(ctx context.Context, source *docdex.Source) (*docdex.RunSummary, error)
}

func (s *CrawlService) Run(ctx context.Context, source *docdex.Source) (*docdex.RunSummary, error) {
	return s.RunFn(ctx, source)
}
