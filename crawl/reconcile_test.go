package crawl_test

import (
	"context"
	"sync"
	"testing"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/crawl"
	"github.com/docdex/docdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore tracks upserts and deletes while serving a fixed inventory.
type memStore struct {
	mock.VectorStore

	mu       sync.Mutex
	existing []docdex.IndexedChunk
	upserted []*docdex.IndexedRecord
	deleted  []string
}

func newMemStore(existing []docdex.IndexedChunk) *memStore {
	s := &memStore{existing: existing}
	s.FetchIndexedFn = func(ctx context.Context, sourceID string) ([]docdex.IndexedChunk, error) {
		return s.existing, nil
	}
	s.UpsertFn = func(ctx context.Context, records []*docdex.IndexedRecord) (*docdex.BulkResult, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		result := &docdex.BulkResult{Failed: map[string]error{}}
		for _, r := range records {
			s.upserted = append(s.upserted, r)
			result.Succeeded = append(result.Succeeded, r.ID)
		}
		return result, nil
	}
	s.DeleteFn = func(ctx context.Context, ids []string) (*docdex.BulkResult, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		result := &docdex.BulkResult{Failed: map[string]error{}}
		s.deleted = append(s.deleted, ids...)
		result.Succeeded = append(result.Succeeded, ids...)
		return result, nil
	}
	return s
}

func countingEmbedder(batches *int) *mock.Embedder {
	return &mock.Embedder{
		EmbedBatchFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			if batches != nil {
				*batches++
			}
			vecs := make([][]float32, len(texts))
			for i := range vecs {
				vecs[i] = []float32{1, 0, 0}
			}
			return vecs, nil
		},
	}
}

func testChunk(locator, text string, index int) docdex.Chunk {
	return docdex.Chunk{
		Identity: docdex.Identity(locator),
		Index:    index,
		SourceID: "src-1",
		Locator:  locator,
		Text:     text,
		Hash:     docdex.HashText(text),
	}
}

func TestReconciliation_UnchangedChunkIsNoOp(t *testing.T) {
	t.Parallel()

	chunk := testChunk("https://example.com/a", "stable text", 0)
	store := newMemStore([]docdex.IndexedChunk{
		{ID: chunk.ID(), Locator: chunk.Locator, Hash: chunk.Hash},
	})

	embeds := 0
	r := &crawl.Reconciler{Store: store, Embedder: countingEmbedder(&embeds), BatchSize: 10}
	rec, err := r.Begin(context.Background(), "src-1")
	require.NoError(t, err)

	run := &docdex.CrawlRun{ID: "run-1", SourceID: "src-1"}
	require.NoError(t, rec.Process(context.Background(), run, []docdex.Chunk{chunk}))
	require.NoError(t, rec.Flush(context.Background(), run))
	require.NoError(t, rec.Retire(context.Background(), run))

	assert.Zero(t, embeds, "unchanged content must not be re-embedded")
	assert.Empty(t, store.upserted)
	assert.Empty(t, store.deleted, "touched records must not be retired")
}

func TestReconciliation_ChangedChunkIsReindexed(t *testing.T) {
	t.Parallel()

	old := testChunk("https://example.com/a", "old text", 0)
	updated := testChunk("https://example.com/a", "new text", 0)
	store := newMemStore([]docdex.IndexedChunk{
		{ID: old.ID(), Locator: old.Locator, Hash: old.Hash},
	})

	r := &crawl.Reconciler{Store: store, Embedder: countingEmbedder(nil), BatchSize: 10}
	rec, err := r.Begin(context.Background(), "src-1")
	require.NoError(t, err)

	run := &docdex.CrawlRun{ID: "run-2", SourceID: "src-1"}
	require.NoError(t, rec.Process(context.Background(), run, []docdex.Chunk{updated}))
	require.NoError(t, rec.Flush(context.Background(), run))
	require.NoError(t, rec.Retire(context.Background(), run))

	require.Len(t, store.upserted, 1)
	assert.Equal(t, updated.ID(), store.upserted[0].ID)
	assert.Equal(t, updated.Hash, store.upserted[0].Hash)
	assert.Equal(t, "run-2", store.upserted[0].RunID)
	assert.Empty(t, store.deleted, "same identity replaces in place, never delete+insert")
}

func TestReconciliation_RetiresDisappearedChunks(t *testing.T) {
	t.Parallel()

	kept := testChunk("https://example.com/a", "kept", 0)
	gone := testChunk("https://example.com/gone", "gone", 0)
	store := newMemStore([]docdex.IndexedChunk{
		{ID: kept.ID(), Locator: kept.Locator, Hash: kept.Hash},
		{ID: gone.ID(), Locator: gone.Locator, Hash: gone.Hash},
	})

	r := &crawl.Reconciler{Store: store, Embedder: countingEmbedder(nil), BatchSize: 10}
	rec, err := r.Begin(context.Background(), "src-1")
	require.NoError(t, err)

	run := &docdex.CrawlRun{ID: "run-3", SourceID: "src-1"}
	require.NoError(t, rec.Process(context.Background(), run, []docdex.Chunk{kept}))
	require.NoError(t, rec.Flush(context.Background(), run))
	require.NoError(t, rec.Retire(context.Background(), run))

	assert.Equal(t, []string{gone.ID()}, store.deleted)
	assert.EqualValues(t, 1, run.Retired.Load())
}

func TestReconciliation_FailedLocatorIsNotRetired(t *testing.T) {
	t.Parallel()

	failed := testChunk("https://example.com/flaky", "flaky", 0)
	store := newMemStore([]docdex.IndexedChunk{
		{ID: failed.ID(), Locator: failed.Locator, Hash: failed.Hash},
	})

	r := &crawl.Reconciler{Store: store, Embedder: countingEmbedder(nil), BatchSize: 10}
	rec, err := r.Begin(context.Background(), "src-1")
	require.NoError(t, err)

	run := &docdex.CrawlRun{ID: "run-4", SourceID: "src-1"}
	rec.FailLocator("https://example.com/flaky")
	require.NoError(t, rec.Retire(context.Background(), run))

	assert.Empty(t, store.deleted, "failure must degrade freshness, not completeness")
}

func TestReconciliation_FlushesInBatches(t *testing.T) {
	t.Parallel()

	store := newMemStore(nil)
	batches := 0
	r := &crawl.Reconciler{Store: store, Embedder: countingEmbedder(&batches), BatchSize: 2}
	rec, err := r.Begin(context.Background(), "src-1")
	require.NoError(t, err)

	run := &docdex.CrawlRun{ID: "run-5", SourceID: "src-1"}
	chunks := []docdex.Chunk{
		testChunk("https://example.com/a", "a", 0),
		testChunk("https://example.com/a", "b", 1),
		testChunk("https://example.com/b", "c", 0),
	}
	require.NoError(t, rec.Process(context.Background(), run, chunks))
	require.NoError(t, rec.Flush(context.Background(), run))

	assert.Equal(t, 2, batches)
	assert.Len(t, store.upserted, 3)
	assert.EqualValues(t, 3, run.Embedded.Load())
	assert.EqualValues(t, 3, run.Upserted.Load())
}

func TestReconciliation_BatchFailureIsolatesPerChunk(t *testing.T) {
	t.Parallel()

	store := newMemStore(nil)
	embedder := &mock.Embedder{
		EmbedBatchFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			if len(texts) > 1 {
				return nil, docdex.Errorf(docdex.EUNAVAILABLE, "batch too hot")
			}
			if texts[0] == "poison" {
				return nil, docdex.Errorf(docdex.EINVALID, "cannot embed")
			}
			return [][]float32{{1, 0}}, nil
		},
	}

	r := &crawl.Reconciler{Store: store, Embedder: embedder, BatchSize: 2}
	rec, err := r.Begin(context.Background(), "src-1")
	require.NoError(t, err)

	run := &docdex.CrawlRun{ID: "run-6", SourceID: "src-1"}
	chunks := []docdex.Chunk{
		testChunk("https://example.com/a", "fine", 0),
		testChunk("https://example.com/a", "poison", 1),
	}
	require.NoError(t, rec.Process(context.Background(), run, chunks))
	require.NoError(t, rec.Flush(context.Background(), run))

	require.Len(t, store.upserted, 1, "good chunk survives its poisoned batch mate")
	assert.Equal(t, "fine", store.upserted[0].Text)
	assert.Len(t, run.Warnings(), 1)
}
