package docdex

import "context"

// IndexedRecord is the durable representation of a chunk in the vector
// store. For a given chunk identity there is at most one record, and its
// hash always matches the most recently embedded text for that chunk.
type IndexedRecord struct {
	ID        string          `json:"id"` // ChunkID(Identity, Index)
	Identity  ContentIdentity `json:"identity"`
	Index     int             `json:"index"`
	SourceID  string          `json:"sourceId"`
	Locator   string          `json:"locator"`
	Text      string          `json:"text"`
	Hash      ContentHash     `json:"hash"`
	Embedding []float32       `json:"embedding,omitempty"`
	Metadata  ChunkMetadata   `json:"metadata"`
	RunID     string          `json:"runId"` // last run that touched the record
}

// IndexedChunk summarizes an existing record for reconciliation: enough
// to decide whether a chunk changed without loading text or vectors.
type IndexedChunk struct {
	ID      string
	Locator string
	Hash    ContentHash
}

// BulkResult reports per-item outcomes of a bulk store operation.
// Succeeded items are committed regardless of failures elsewhere in the
// batch.
type BulkResult struct {
	Succeeded []string         // record IDs
	Failed    map[string]error // record ID -> cause
}

// Ok reports whether every item in the bulk operation succeeded.
func (r *BulkResult) Ok() bool {
	return len(r.Failed) == 0
}

// QueryOptions configures a store query.
type QueryOptions struct {
	// SourceIDs restricts matches to the given sources. Empty means all.
	SourceIDs []string

	// Limit is the maximum number of matches to return.
	Limit int
}

// QueryMatch is one ranked store match.
type QueryMatch struct {
	Record *IndexedRecord
	Score  float32
}

// VectorStore is the client contract for the backing index service.
// All operations are idempotent by record identity.
type VectorStore interface {
	// Upsert inserts or replaces records by identity.
	// Partial failures are reported per item, not as an error.
	Upsert(ctx context.Context, records []*IndexedRecord) (*BulkResult, error)

	// Delete removes records by identity. Missing identities are not an
	// error.
	Delete(ctx context.Context, ids []string) (*BulkResult, error)

	// DeleteBySource removes all records belonging to a source.
	DeleteBySource(ctx context.Context, sourceID string) error

	// FetchIndexed returns the identity/hash inventory of a source's
	// records, used by reconciliation to detect change and retirement.
	FetchIndexed(ctx context.Context, sourceID string) ([]IndexedChunk, error)

	// Query returns records ranked by vector similarity to the given
	// embedding.
	Query(ctx context.Context, embedding []float32, opts QueryOptions) ([]QueryMatch, error)

	// KeywordQuery returns records ranked by keyword relevance to the
	// given text.
	KeywordQuery(ctx context.Context, text string, opts QueryOptions) ([]QueryMatch, error)

	// CountBySource returns the number of records indexed for a source.
	CountBySource(ctx context.Context, sourceID string) (int, error)

	// EmbeddingDimension returns the dimension of the stored embeddings,
	// or zero when no embeddings exist yet. Callers use it to detect a
	// configured dimension that no longer matches the index.
	EmbeddingDimension(ctx context.Context) (int, error)
}
