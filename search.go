package docdex

import "context"

// SearchService turns a natural-language query into ranked, cited
// passages.
type SearchService interface {
	// Search embeds the query, runs vector and keyword queries, merges
	// and re-ranks the results. Ordering is deterministic for identical
	// inputs and index state: non-increasing combined score, ties broken
	// by chunk identity.
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
}

// SearchOptions configures search behavior.
type SearchOptions struct {
	// SourceIDs restricts results to specific sources.
	SourceIDs []string `json:"sourceIds,omitempty"`

	// Limit is the maximum number of results to return (top-k).
	Limit int `json:"limit,omitempty"`

	// MinScore drops results below the combined score threshold.
	MinScore float32 `json:"minScore,omitempty"`
}

// SearchResult is one ranked match with citation metadata.
type SearchResult struct {
	ID       string        `json:"id"`
	SourceID string        `json:"sourceId"`
	Locator  string        `json:"locator"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
	Score    float32       `json:"score"`
}

// Citation renders the result's provenance as locator plus heading path.
func (r *SearchResult) Citation() string {
	if len(r.Metadata.HeadingPath) == 0 {
		return r.Locator
	}
	s := r.Locator
	for _, h := range r.Metadata.HeadingPath {
		s += " > " + h
	}
	return s
}

// Asker provides natural language question answering grounded in
// retrieved passages.
type Asker interface {
	// Ask answers a question using the top passages retrieved for it,
	// citing their locators. Returns ENOTFOUND if nothing relevant is
	// indexed.
	Ask(ctx context.Context, question string, opts SearchOptions) (string, error)
}
