package docdex

import "context"

// Embedder turns batches of chunk texts into fixed-dimension vectors.
type Embedder interface {
	// EmbedBatch returns one vector per input text, aligned by index.
	// Implementations batch internally and retry transient failures; a
	// returned error means the whole batch failed after retries and
	// callers should fall back to per-item isolation.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector dimensionality this embedder
	// produces. It must match the store's configured dimension; the
	// mismatch is a startup configuration error, never a call-time one.
	Dimension() int
}
