package crawl_test

import (
	"strings"
	"testing"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit(text string) *docdex.ContentUnit {
	return &docdex.ContentUnit{
		SourceID: "src-1",
		Locator:  "https://example.com/docs/page",
		Title:    "Page",
		Text:     text,
	}
}

func TestChunker_EmptyTextYieldsNoChunks(t *testing.T) {
	t.Parallel()

	c := crawl.NewChunker(docdex.ChunkConfig{Size: 100, Overlap: 10})
	assert.Empty(t, c.Chunk(unit("")))
	assert.Empty(t, c.Chunk(unit("   \n\n  ")))
}

func TestChunker_ShortTextYieldsOneChunk(t *testing.T) {
	t.Parallel()

	c := crawl.NewChunker(docdex.ChunkConfig{Size: 100, Overlap: 10})
	chunks := c.Chunk(unit("short content"))

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "short content", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Metadata.StartOffset)
	assert.Equal(t, len("short content"), chunks[0].Metadata.EndOffset)
}

func TestChunker_CoversFullTextWithOverlap(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("lorem ipsum dolor sit amet. ", 50)
	c := crawl.NewChunker(docdex.ChunkConfig{Size: 200, Overlap: 40})
	chunks := c.Chunk(unit(text))

	require.Greater(t, len(chunks), 1)

	// Chunks cover the text with no gaps: each chunk starts at or
	// before the previous one's end.
	assert.Equal(t, 0, chunks[0].Metadata.StartOffset)
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i].Metadata.StartOffset, chunks[i-1].Metadata.EndOffset)
		assert.Greater(t, chunks[i].Metadata.EndOffset, chunks[i-1].Metadata.EndOffset)
	}
	assert.Equal(t, len(text), chunks[len(chunks)-1].Metadata.EndOffset)

	// Chunk text matches its recorded offsets.
	for _, chunk := range chunks {
		assert.Equal(t, text[chunk.Metadata.StartOffset:chunk.Metadata.EndOffset], chunk.Text)
	}
}

func TestChunker_Deterministic(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("some documentation text with words. ", 40)
	c := crawl.NewChunker(docdex.ChunkConfig{Size: 150, Overlap: 30})

	first := c.Chunk(unit(text))
	second := c.Chunk(unit(text))
	assert.Equal(t, first, second)
}

func TestChunker_BreaksAtParagraphBoundary(t *testing.T) {
	t.Parallel()

	para1 := strings.Repeat("first paragraph text. ", 6)
	para2 := strings.Repeat("second paragraph text. ", 6)
	text := para1 + "\n\n" + para2

	c := crawl.NewChunker(docdex.ChunkConfig{Size: len(para1) + 20, Overlap: 0})
	chunks := c.Chunk(unit(text))

	require.Greater(t, len(chunks), 1)
	// First break lands right after the blank line, not mid-sentence.
	assert.Equal(t, len(para1)+2, chunks[0].Metadata.EndOffset)
}

func TestChunker_HeadingPathMetadata(t *testing.T) {
	t.Parallel()

	text := "# API\n\nintro text\n\n## Authentication\n\n" +
		strings.Repeat("auth details. ", 30) +
		"\n\n## Errors\n\n" +
		strings.Repeat("error details. ", 30)

	c := crawl.NewChunker(docdex.ChunkConfig{Size: 200, Overlap: 20})
	chunks := c.Chunk(unit(text))
	require.Greater(t, len(chunks), 1)

	assert.Equal(t, []string{"API"}, chunks[0].Metadata.HeadingPath)

	last := chunks[len(chunks)-1]
	assert.Equal(t, []string{"API", "Errors"}, last.Metadata.HeadingPath)
}

func TestChunker_ChunkIdentityDerivedFromLocator(t *testing.T) {
	t.Parallel()

	c := crawl.NewChunker(docdex.ChunkConfig{Size: 100, Overlap: 10})
	chunks := c.Chunk(unit("content"))

	require.Len(t, chunks, 1)
	assert.Equal(t, docdex.Identity("https://example.com/docs/page"), chunks[0].Identity)
	assert.Equal(t, docdex.ChunkID(chunks[0].Identity, 0), chunks[0].ID())
	assert.Equal(t, docdex.HashText("content"), chunks[0].Hash)
}
