package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, sourceID, text string, embedding []float32) *docdex.IndexedRecord {
	locator := "https://example.com/docs/" + id
	return &docdex.IndexedRecord{
		ID:        id,
		Identity:  docdex.Identity(locator),
		SourceID:  sourceID,
		Locator:   locator,
		Text:      text,
		Hash:      docdex.HashText(text),
		Embedding: embedding,
		Metadata: docdex.ChunkMetadata{
			Title:       "Title " + id,
			HeadingPath: []string{"Guide", "Section"},
			StartOffset: 0,
			EndOffset:   len(text),
		},
		RunID: "run-1",
	}
}

func mustUpsert(t *testing.T, s *sqlite.VectorStore, records ...*docdex.IndexedRecord) {
	t.Helper()
	result, err := s.Upsert(context.Background(), records)
	require.NoError(t, err)
	require.True(t, result.Ok(), "upsert failures: %v", result.Failed)
}

func TestVectorStore_UpsertAndFetchIndexed(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	mustUpsert(t, s,
		record("a:0", "src-1", "alpha text", []float32{1, 0}),
		record("b:0", "src-1", "beta text", []float32{0, 1}),
		record("c:0", "src-2", "other source", []float32{1, 1}),
	)

	chunks, err := s.FetchIndexed(context.Background(), "src-1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	byID := map[string]docdex.IndexedChunk{}
	for _, c := range chunks {
		byID[c.ID] = c
	}
	assert.Equal(t, docdex.HashText("alpha text"), byID["a:0"].Hash)
	assert.Equal(t, "https://example.com/docs/a:0", byID["a:0"].Locator)
}

func TestVectorStore_EmbeddingDimension(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))

	dim, err := s.EmbeddingDimension(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, dim, "empty index has no dimension")

	mustUpsert(t, s, record("a:0", "src-1", "no vector yet", nil))
	dim, err = s.EmbeddingDimension(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, dim, "records without embeddings do not count")

	mustUpsert(t, s, record("b:0", "src-1", "embedded", []float32{1, 0, 0.5}))
	dim, err = s.EmbeddingDimension(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, dim)
}

func TestVectorStore_UpsertReplacesByID(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	mustUpsert(t, s, record("a:0", "src-1", "old text", []float32{1, 0}))
	mustUpsert(t, s, record("a:0", "src-1", "new text", []float32{0, 1}))

	n, err := s.CountBySource(context.Background(), "src-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	chunks, err := s.FetchIndexed(context.Background(), "src-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, docdex.HashText("new text"), chunks[0].Hash)
}

func TestVectorStore_UpsertRejectsMissingID(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	rec := record("", "src-1", "text", nil)
	result, err := s.Upsert(context.Background(), []*docdex.IndexedRecord{rec})
	require.NoError(t, err)

	assert.False(t, result.Ok())
	assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(result.Failed[""]))
}

func TestVectorStore_Query(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	mustUpsert(t, s,
		record("exact:0", "src-1", "exact match", []float32{1, 0}),
		record("near:0", "src-1", "near match", []float32{1, 1}),
		record("far:0", "src-1", "far match", []float32{0, 1}),
	)

	matches, err := s.Query(context.Background(), []float32{1, 0}, docdex.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "exact:0", matches[0].Record.ID)
	assert.Equal(t, "near:0", matches[1].Record.ID)
	assert.Equal(t, "far:0", matches[2].Record.ID)
	assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-5)
	assert.InDelta(t, 0.0, float64(matches[2].Score), 1e-5)

	// Round-trips the full record, not just the scoring fields.
	assert.Equal(t, []string{"Guide", "Section"}, matches[0].Record.Metadata.HeadingPath)
	assert.Equal(t, "Title exact:0", matches[0].Record.Metadata.Title)
	assert.Equal(t, []float32{1, 0}, matches[0].Record.Embedding)
	assert.Equal(t, "run-1", matches[0].Record.RunID)
}

func TestVectorStore_QueryFiltersBySource(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	mustUpsert(t, s,
		record("a:0", "src-1", "one", []float32{1, 0}),
		record("b:0", "src-2", "two", []float32{1, 0}),
	)

	matches, err := s.Query(context.Background(), []float32{1, 0}, docdex.QueryOptions{
		SourceIDs: []string{"src-2"},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b:0", matches[0].Record.ID)
}

func TestVectorStore_QueryLimit(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	var records []*docdex.IndexedRecord
	for i := 0; i < 5; i++ {
		records = append(records, record(fmt.Sprintf("r%d:0", i), "src-1", fmt.Sprintf("text %d", i), []float32{1, float32(i)}))
	}
	mustUpsert(t, s, records...)

	matches, err := s.Query(context.Background(), []float32{1, 0}, docdex.QueryOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestVectorStore_QueryRequiresEmbedding(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	_, err := s.Query(context.Background(), nil, docdex.QueryOptions{})
	assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
}

func TestVectorStore_QuerySkipsRecordsWithoutEmbeddings(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	mustUpsert(t, s,
		record("with:0", "src-1", "embedded", []float32{1, 0}),
		record("without:0", "src-1", "not embedded", nil),
	)

	matches, err := s.Query(context.Background(), []float32{1, 0}, docdex.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "with:0", matches[0].Record.ID)
}

func TestVectorStore_KeywordQuery(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	mustUpsert(t, s,
		record("auth:0", "src-1", "authentication tokens and refresh flows", []float32{1, 0}),
		record("install:0", "src-1", "installation guide for the CLI", []float32{0, 1}),
	)

	matches, err := s.KeywordQuery(context.Background(), "authentication tokens", docdex.QueryOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	assert.Equal(t, "auth:0", matches[0].Record.ID)
	assert.Greater(t, matches[0].Score, float32(0), "bm25 rank is negated so higher is better")
}

func TestVectorStore_KeywordQueryEmptyText(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	matches, err := s.KeywordQuery(context.Background(), "   ", docdex.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestVectorStore_KeywordQuerySpecialCharacters(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	mustUpsert(t, s, record("a:0", "src-1", "configure the client", []float32{1, 0}))

	// FTS5 operators in user queries must not produce syntax errors.
	matches, err := s.KeywordQuery(context.Background(), `configure AND ("client" OR -flag*)`, docdex.QueryOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}

func TestVectorStore_Delete(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	mustUpsert(t, s,
		record("a:0", "src-1", "one", []float32{1, 0}),
		record("b:0", "src-1", "two", []float32{0, 1}),
	)

	result, err := s.Delete(context.Background(), []string{"a:0", "missing:0"})
	require.NoError(t, err)
	assert.True(t, result.Ok(), "deleting a missing id is not an error")

	n, err := s.CountBySource(context.Background(), "src-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestVectorStore_DeleteBySource(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	mustUpsert(t, s,
		record("a:0", "src-1", "one", []float32{1, 0}),
		record("b:0", "src-1", "two", []float32{0, 1}),
		record("c:0", "src-2", "keep", []float32{1, 1}),
	)

	require.NoError(t, s.DeleteBySource(context.Background(), "src-1"))

	n, err := s.CountBySource(context.Background(), "src-1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = s.CountBySource(context.Background(), "src-2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestVectorStore_DeletedRecordsLeaveKeywordIndex(t *testing.T) {
	t.Parallel()

	s := sqlite.NewVectorStore(MustOpenDB(t))
	mustUpsert(t, s, record("a:0", "src-1", "ephemeral content", []float32{1, 0}))

	result, err := s.Delete(context.Background(), []string{"a:0"})
	require.NoError(t, err)
	require.True(t, result.Ok())

	matches, err := s.KeywordQuery(context.Background(), "ephemeral", docdex.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, matches, "FTS triggers must keep the index in sync")
}
