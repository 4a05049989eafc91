package crawl

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/docdex/docdex"
)

// Reconciler keeps a source's indexed records in sync with the chunk set
// produced by a crawl run: unchanged chunks are no-ops, changed or new
// chunks are embedded and upserted, and records whose parent content
// disappeared are retired. Retirement never fires for locators that
// failed this run, so partial failures degrade freshness, never
// completeness.
type Reconciler struct {
	Store     docdex.VectorStore
	Embedder  docdex.Embedder
	BatchSize int
	Retry     docdex.RetryPolicy

	// Concurrency bounds in-flight embed batches across all fetch
	// workers. Zero means one batch at a time.
	Concurrency int
}

// Begin loads the source's existing index inventory and returns a
// Reconciliation scoped to one run of one source. It is safe for
// concurrent use by the run's fetch workers.
func (r *Reconciler) Begin(ctx context.Context, sourceID string) (*Reconciliation, error) {
	existing, err := r.Store.FetchIndexed(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("load index inventory: %w", err)
	}

	inventory := make(map[string]docdex.IndexedChunk, len(existing))
	for _, rec := range existing {
		inventory[rec.ID] = rec
	}

	workers := int64(r.Concurrency)
	if workers <= 0 {
		workers = 1
	}

	return &Reconciliation{
		r:         r,
		sourceID:  sourceID,
		sem:       semaphore.NewWeighted(workers),
		inventory: inventory,
		touched:   make(map[string]bool),
		failed:    make(map[string]bool),
	}, nil
}

// Reconciliation is the per-source, per-run synchronization state.
type Reconciliation struct {
	r        *Reconciler
	sourceID string
	sem      *semaphore.Weighted

	mu        sync.Mutex
	inventory map[string]docdex.IndexedChunk // chunk ID -> existing record
	touched   map[string]bool                // chunk IDs seen this run
	failed    map[string]bool                // canonical locators that failed
	pending   []docdex.Chunk                 // changed chunks awaiting embed+upsert
}

// Process accepts the chunks derived from one fetched content unit.
// Unchanged chunks are marked touched and skipped; changed or new chunks
// are queued and flushed in batches, blocking the caller while a batch
// embeds (backpressure against the embedding service).
func (rec *Reconciliation) Process(ctx context.Context, run *docdex.CrawlRun, chunks []docdex.Chunk) error {
	rec.mu.Lock()
	for _, chunk := range chunks {
		id := chunk.ID()
		rec.touched[id] = true
		if existing, ok := rec.inventory[id]; ok && existing.Hash == chunk.Hash {
			continue // idempotent no-op
		}
		rec.pending = append(rec.pending, chunk)
	}
	var batch []docdex.Chunk
	if len(rec.pending) >= rec.r.BatchSize {
		batch = rec.pending
		rec.pending = nil
	}
	rec.mu.Unlock()

	if batch == nil {
		return nil
	}
	return rec.flush(ctx, run, batch)
}

// FailLocator records a locator whose fetch or processing failed this
// run. Its previously indexed records are protected from retirement.
func (rec *Reconciliation) FailLocator(locator string) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.failed[docdex.CanonicalLocator(locator)] = true
}

// Flush embeds and upserts any chunks still pending.
func (rec *Reconciliation) Flush(ctx context.Context, run *docdex.CrawlRun) error {
	rec.mu.Lock()
	batch := rec.pending
	rec.pending = nil
	rec.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return rec.flush(ctx, run, batch)
}

// flush embeds the given chunks batch by batch and upserts the
// successful vectors, leaving any previously indexed version of a
// failed chunk untouched.
func (rec *Reconciliation) flush(ctx context.Context, run *docdex.CrawlRun, batch []docdex.Chunk) error {
	for start := 0; start < len(batch); start += rec.r.BatchSize {
		end := min(start+rec.r.BatchSize, len(batch))
		if err := rec.flushBatch(ctx, run, batch[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (rec *Reconciliation) flushBatch(ctx context.Context, run *docdex.CrawlRun, batch []docdex.Chunk) error {
	if err := rec.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	records, err := rec.embed(ctx, run, batch)
	rec.sem.Release(1)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return nil
	}
	return rec.upsert(ctx, run, records)
}

// embed vectorizes a batch. Batch-level failures fall back to per-chunk
// isolation; chunk-level failures become run warnings.
func (rec *Reconciliation) embed(ctx context.Context, run *docdex.CrawlRun, batch []docdex.Chunk) ([]*docdex.IndexedRecord, error) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	var vectors [][]float32
	err := rec.r.Retry.Do(ctx, func(ctx context.Context) error {
		var embedErr error
		vectors, embedErr = rec.r.Embedder.EmbedBatch(ctx, texts)
		return embedErr
	})

	var records []*docdex.IndexedRecord
	if err == nil {
		for i := range batch {
			records = append(records, record(&batch[i], vectors[i], run.ID))
		}
		run.Embedded.Add(int64(len(batch)))
	} else {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Batch failed after retries: isolate the failing chunk(s) by
		// embedding each chunk individually.
		for i := range batch {
			c := &batch[i]
			var vecs [][]float32
			itemErr := rec.r.Retry.Do(ctx, func(ctx context.Context) error {
				var e error
				vecs, e = rec.r.Embedder.EmbedBatch(ctx, []string{c.Text})
				return e
			})
			if itemErr != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				run.Warn(fmt.Sprintf("embed failed for %s (chunk %d): %v", c.Locator, c.Index, itemErr))
				continue
			}
			records = append(records, record(c, vecs[0], run.ID))
			run.Embedded.Add(1)
		}
	}

	return records, nil
}

// upsert writes records in bulk; failed items are retried once
// individually, then surfaced as run warnings without aborting the run.
func (rec *Reconciliation) upsert(ctx context.Context, run *docdex.CrawlRun, records []*docdex.IndexedRecord) error {
	result, err := rec.r.Store.Upsert(ctx, records)
	if err != nil {
		return fmt.Errorf("bulk upsert: %w", err)
	}
	run.Upserted.Add(int64(len(result.Succeeded)))

	if result.Ok() {
		return nil
	}

	byID := make(map[string]*docdex.IndexedRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	for id, cause := range result.Failed {
		retryResult, retryErr := rec.r.Store.Upsert(ctx, []*docdex.IndexedRecord{byID[id]})
		if retryErr == nil && retryResult.Ok() {
			run.Upserted.Add(1)
			continue
		}
		run.Warn(fmt.Sprintf("upsert failed for %s: %v", id, cause))
	}
	return nil
}

// Retire deletes records for this source that no surviving chunk touched
// and that do not belong to a failed locator. It must run only after all
// upserts for the source have been attempted, and never for aborted or
// canceled runs.
func (rec *Reconciliation) Retire(ctx context.Context, run *docdex.CrawlRun) error {
	rec.mu.Lock()
	var candidates []string
	for id, existing := range rec.inventory {
		if rec.touched[id] {
			continue
		}
		if rec.failed[docdex.CanonicalLocator(existing.Locator)] {
			continue
		}
		candidates = append(candidates, id)
	}
	rec.mu.Unlock()

	if len(candidates) == 0 {
		return nil
	}

	result, err := rec.r.Store.Delete(ctx, candidates)
	if err != nil {
		return fmt.Errorf("retirement delete: %w", err)
	}
	run.Retired.Add(int64(len(result.Succeeded)))

	for id, cause := range result.Failed {
		retryResult, retryErr := rec.r.Store.Delete(ctx, []string{id})
		if retryErr == nil && retryResult.Ok() {
			run.Retired.Add(1)
			continue
		}
		run.Warn(fmt.Sprintf("retire failed for %s: %v", id, cause))
	}
	return nil
}

func record(c *docdex.Chunk, vector []float32, runID string) *docdex.IndexedRecord {
	return &docdex.IndexedRecord{
		ID:        c.ID(),
		Identity:  c.Identity,
		Index:     c.Index,
		SourceID:  c.SourceID,
		Locator:   c.Locator,
		Text:      c.Text,
		Hash:      c.Hash,
		Embedding: vector,
		Metadata:  c.Metadata,
		RunID:     runID,
	}
}
