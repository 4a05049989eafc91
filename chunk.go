package docdex

// Chunk is the unit of indexing and retrieval: a bounded span of a
// content unit's normalized text. Its identity is (parent content
// identity, index within parent), stable across runs as long as the
// locator is stable.
type Chunk struct {
	Identity ContentIdentity `json:"identity"` // parent content identity
	Index    int             `json:"index"`
	SourceID string          `json:"sourceId"`
	Locator  string          `json:"locator"`
	Text     string          `json:"text"`
	Hash     ContentHash     `json:"hash"`
	Metadata ChunkMetadata   `json:"metadata"`
}

// ChunkMetadata carries enough positional information to reconstruct a
// citation: source locator plus heading path plus character offsets into
// the normalized text.
type ChunkMetadata struct {
	Title       string   `json:"title,omitempty"`
	HeadingPath []string `json:"headingPath,omitempty"`
	StartOffset int      `json:"startOffset"`
	EndOffset   int      `json:"endOffset"`
}

// ID returns the durable chunk identity.
func (c *Chunk) ID() string {
	return ChunkID(c.Identity, c.Index)
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.Identity == "" {
		return Errorf(EINVALID, "chunk identity required")
	}
	if c.SourceID == "" {
		return Errorf(EINVALID, "chunk source ID required")
	}
	if c.Text == "" {
		return Errorf(EINVALID, "chunk text required")
	}
	return nil
}

// ChunkConfig controls how normalized text is split into chunks.
type ChunkConfig struct {
	// Size is the target chunk length in characters.
	Size int

	// Overlap is the number of characters repeated between adjacent
	// chunks. Must be smaller than Size.
	Overlap int
}

// Chunker splits a content unit into an ordered sequence of chunks.
// Chunking is deterministic for the same text and configuration: chunks
// cover the full text with no gaps, breaks prefer structural boundaries
// (headings, paragraphs) over mid-sentence splits, and content shorter
// than the target yields exactly one chunk. Empty text yields no chunks.
type Chunker interface {
	Chunk(unit *ContentUnit) []Chunk
}
