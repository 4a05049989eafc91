package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.VectorStore = (*VectorStore)(nil)

// VectorStore is a mock implementation of docdex.VectorStore.
type VectorStore struct {
	UpsertFn         func(ctx context.Context, records []*docdex.IndexedRecord) (*docdex.BulkResult, error)
	DeleteFn         func(ctx context.Context, ids []string) (*docdex.BulkResult, error)
	DeleteBySourceFn func(ctx context.Context, sourceID string) error
	FetchIndexedFn   func(ctx context.Context, sourceID string) ([]docdex.IndexedChunk, error)
	QueryFn          func(ctx context.Context, embedding []float32, opts docdex.QueryOptions) ([]docdex.QueryMatch, error)
	KeywordQueryFn   func(ctx context.Context, text string, opts docdex.QueryOptions) ([]docdex.QueryMatch, error)
	CountBySourceFn  func(ctx context.Context, sourceID string) (int, error)

	EmbeddingDimensionFn func(ctx context.Context) (int, error)
}

func (s *VectorStore) Upsert(ctx context.Context, records []*docdex.IndexedRecord) (*docdex.BulkResult, error) {
	return s.UpsertFn(ctx, records)
}

func (s *VectorStore) Delete(ctx context.Context, ids []string) (*docdex.BulkResult, error) {
	return s.DeleteFn(ctx, ids)
}

func (s *VectorStore) DeleteBySource(ctx context.Context, sourceID string) error {
	return s.DeleteBySourceFn(ctx, sourceID)
}

func (s *VectorStore) FetchIndexed(ctx context.Context, sourceID string) ([]docdex.IndexedChunk, error) {
	return s.FetchIndexedFn(ctx, sourceID)
}

func (s *VectorStore) Query(ctx context.Context, embedding []float32, opts docdex.QueryOptions) ([]docdex.QueryMatch, error) {
	return s.QueryFn(ctx, embedding, opts)
}

func (s *VectorStore) KeywordQuery(ctx context.Context, text string, opts docdex.QueryOptions) ([]docdex.QueryMatch, error) {
	return s.KeywordQueryFn(ctx, text, opts)
}

func (s *VectorStore) CountBySource(ctx context.Context, sourceID string) (int, error) {
	return s.CountBySourceFn(ctx, sourceID)
}

func (s *VectorStore) EmbeddingDimension(ctx context.Context) (int, error) {
	return s.EmbeddingDimensionFn(ctx)
}
