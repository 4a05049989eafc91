package crawl

import (
	"context"
	"sort"

	"github.com/docdex/docdex"
)

// Compile-time interface verification.
var _ docdex.SearchService = (*Searcher)(nil)

// Searcher is the query planner: it embeds the query text, issues vector
// and keyword queries against the store, merges the matches by chunk
// identity, and re-ranks them by a combined score.
//
// The combined score is VectorWeight*vector + KeywordWeight*keyword with
// keyword scores normalized into [0, 1] against the best keyword match.
// Vector similarity is primary; keyword relevance is a secondary boost.
// Ties break by chunk identity so identical queries against an unchanged
// index return identical ordered results.
type Searcher struct {
	Embedder      docdex.Embedder
	Store         docdex.VectorStore
	VectorWeight  float32
	KeywordWeight float32
}

// DefaultSearchLimit is the top-k used when the caller does not set one.
const DefaultSearchLimit = 10

// overfetchFactor widens both store queries so the merge has enough
// candidates to re-rank before truncating to the caller's limit.
const overfetchFactor = 3

// Search retrieves ranked, cited passages for a natural-language query.
func (s *Searcher) Search(ctx context.Context, query string, opts docdex.SearchOptions) ([]docdex.SearchResult, error) {
	if query == "" {
		return nil, docdex.Errorf(docdex.EINVALID, "query text required")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	vectors, err := s.Embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	storeOpts := docdex.QueryOptions{
		SourceIDs: opts.SourceIDs,
		Limit:     limit * overfetchFactor,
	}

	vectorMatches, err := s.Store.Query(ctx, vectors[0], storeOpts)
	if err != nil {
		return nil, err
	}
	keywordMatches, err := s.Store.KeywordQuery(ctx, query, storeOpts)
	if err != nil {
		return nil, err
	}

	merged := s.merge(vectorMatches, keywordMatches)

	results := make([]docdex.SearchResult, 0, len(merged))
	for _, m := range merged {
		if m.score < opts.MinScore {
			continue
		}
		results = append(results, docdex.SearchResult{
			ID:       m.record.ID,
			SourceID: m.record.SourceID,
			Locator:  m.record.Locator,
			Text:     m.record.Text,
			Metadata: m.record.Metadata,
			Score:    m.score,
		})
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

type candidate struct {
	record  *docdex.IndexedRecord
	score   float32
	vector  float32
	keyword float32
}

func (s *Searcher) merge(vectorMatches, keywordMatches []docdex.QueryMatch) []candidate {
	byID := make(map[string]*candidate)
	order := make([]string, 0, len(vectorMatches)+len(keywordMatches))

	add := func(m docdex.QueryMatch) *candidate {
		c, ok := byID[m.Record.ID]
		if !ok {
			c = &candidate{record: m.Record}
			byID[m.Record.ID] = c
			order = append(order, m.Record.ID)
		}
		return c
	}

	for _, m := range vectorMatches {
		add(m).vector = m.Score
	}

	// Normalize keyword scores against the best keyword match: store
	// keyword relevance scales are unbounded and engine-specific.
	var maxKeyword float32
	for _, m := range keywordMatches {
		if m.Score > maxKeyword {
			maxKeyword = m.Score
		}
	}
	for _, m := range keywordMatches {
		c := add(m)
		if maxKeyword > 0 {
			c.keyword = m.Score / maxKeyword
		}
	}

	out := make([]candidate, 0, len(order))
	for _, id := range order {
		c := byID[id]
		c.score = s.VectorWeight*c.vector + s.KeywordWeight*c.keyword
		out = append(out, *c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].record.ID < out[j].record.ID
	})
	return out
}
