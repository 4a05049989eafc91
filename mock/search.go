package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.SearchService = (*SearchService)(nil)

// SearchService is a mock implementation of docdex.SearchService.
type SearchService struct {
	SearchFn func(ctx context.Context, query string, opts docdex.SearchOptions) ([]docdex.SearchResult, error)
}

func (s *SearchService) Search(ctx context.Context, query string, opts docdex.SearchOptions) ([]docdex.SearchResult, error) {
	return s.SearchFn(ctx, query, opts)
}

var _ docdex.Asker = (*Asker)(nil)

// Asker is a mock implementation of docdex.Asker.
type Asker struct {
	AskFn func(ctx context.Context, question string, opts docdex.SearchOptions) (string, error)
}

func (a *Asker) Ask(ctx context.Context, question string, opts docdex.SearchOptions) (string, error) {
	return a.AskFn(ctx, question, opts)
}
