package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of docdex.Embedder.
type Embedder struct {
	EmbedBatchFn func(ctx context.Context, texts []string) ([][]float32, error)
	DimensionFn  func() int
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedBatchFn(ctx, texts)
}

func (e *Embedder) Dimension() int {
	if e.DimensionFn == nil {
		return 768
	}
	return e.DimensionFn()
}
