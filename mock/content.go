package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docdex.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*docdex.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*docdex.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ docdex.Converter = (*Converter)(nil)

// Converter is a mock implementation of docdex.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ docdex.Chunker = (*Chunker)(nil)

// Chunker is a mock implementation of docdex.Chunker.
type Chunker struct {
	ChunkFn func(unit *docdex.ContentUnit) []docdex.Chunk
}

func (c *Chunker) Chunk(unit *docdex.ContentUnit) []docdex.Chunk {
	return c.ChunkFn(unit)
}

var _ docdex.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of docdex.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *docdex.LocatorFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *docdex.LocatorFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
