// Package gemini implements docdex.Embedder and docdex.Asker using the
// Google Gemini API.
package gemini

import (
	"context"

	"github.com/docdex/docdex"
	"google.golang.org/genai"
)

const (
	embeddingModel   = "gemini-embedding-001"
	generationModel  = "gemini-2.5-flash"
	defaultDimension = 768
)

// Ensure Embedder implements docdex.Embedder at compile time.
var _ docdex.Embedder = (*Embedder)(nil)

// Embedder produces dense vectors for chunk and query text via the
// Gemini embedding API.
type Embedder struct {
	client    *genai.Client
	dimension int
}

// NewEmbedder creates an Embedder. dimension selects the output vector
// size; zero means defaultDimension. All records in one index must use
// the same dimension.
func NewEmbedder(client *genai.Client, dimension int) *Embedder {
	if dimension <= 0 {
		dimension = defaultDimension
	}
	return &Embedder{client: client, dimension: dimension}
}

// Dimension returns the embedding vector size.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// EmbedBatch embeds texts in one API call, preserving input order.
// API failures surface as EUNAVAILABLE so callers can retry.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	dim := int32(e.dimension)
	result, err := e.client.Models.EmbedContent(ctx, embeddingModel, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "embedding request failed: %v", err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, docdex.Errorf(docdex.EINTERNAL, "embedding count mismatch: want %d", len(texts))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		if len(emb.Values) != e.dimension {
			return nil, docdex.Errorf(docdex.EINTERNAL, "embedding dimension mismatch: got %d, want %d", len(emb.Values), e.dimension)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}
