package crawl

import (
	"regexp"
	"sort"
	"strings"

	"github.com/docdex/docdex"
)

// Compile-time interface verification.
var _ docdex.Chunker = (*Chunker)(nil)

// Chunker splits normalized markdown into overlapping, boundary-aligned
// chunks. Chunking is deterministic for the same text and configuration.
type Chunker struct {
	cfg docdex.ChunkConfig
}

// NewChunker creates a Chunker with the given configuration.
// The configuration is assumed validated (overlap < size).
func NewChunker(cfg docdex.ChunkConfig) *Chunker {
	return &Chunker{cfg: cfg}
}

var headingRe = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

type heading struct {
	offset int
	level  int
	title  string
}

// Chunk splits a content unit into an ordered sequence of chunks.
// Every character of the text is covered by at least one chunk; breaks
// prefer heading and paragraph boundaries over mid-sentence cuts. Text
// shorter than the target size yields exactly one chunk; empty text
// yields none.
func (c *Chunker) Chunk(unit *docdex.ContentUnit) []docdex.Chunk {
	text := unit.Text
	if strings.TrimSpace(text) == "" {
		return nil
	}

	identity := docdex.Identity(unit.Locator)
	headings := scanHeadings(text)

	build := func(index, start, end int) docdex.Chunk {
		chunkText := text[start:end]
		return docdex.Chunk{
			Identity: identity,
			Index:    index,
			SourceID: unit.SourceID,
			Locator:  unit.Locator,
			Text:     chunkText,
			Hash:     docdex.HashText(chunkText),
			Metadata: docdex.ChunkMetadata{
				Title:       unit.Title,
				HeadingPath: headingPathAt(headings, start),
				StartOffset: start,
				EndOffset:   end,
			},
		}
	}

	if len(text) <= c.cfg.Size {
		return []docdex.Chunk{build(0, 0, len(text))}
	}

	boundaries := scanBoundaries(text)

	var chunks []docdex.Chunk
	start := 0
	for {
		end := start + c.cfg.Size
		if end >= len(text) {
			chunks = append(chunks, build(len(chunks), start, len(text)))
			break
		}

		// Prefer the furthest structural boundary in the second half of
		// the window; fall back to a hard cut at the size limit.
		if b := lastBoundaryIn(boundaries, start+c.cfg.Size/2, end); b > 0 {
			end = b
		}
		chunks = append(chunks, build(len(chunks), start, end))

		next := end - c.cfg.Overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// scanBoundaries returns offsets where a new structural block begins:
// right after a blank line, or at the start of a heading line.
func scanBoundaries(text string) []int {
	var out []int
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '\n' && text[i+1] == '\n' {
			j := i + 1
			for j < len(text) && text[j] == '\n' {
				j++
			}
			if j < len(text) {
				out = append(out, j)
			}
			i = j - 1
		}
	}
	for _, m := range headingRe.FindAllStringIndex(text, -1) {
		if m[0] > 0 {
			out = append(out, m[0])
		}
	}
	// Boundaries from the two scans interleave; keep them sorted and
	// deduplicated for lastBoundaryIn's linear scan.
	return sortedUnique(out)
}

// lastBoundaryIn returns the largest boundary b with lo < b <= hi,
// or 0 when no boundary falls in the window.
func lastBoundaryIn(boundaries []int, lo, hi int) int {
	best := 0
	for _, b := range boundaries {
		if b > hi {
			break
		}
		if b > lo {
			best = b
		}
	}
	return best
}

func scanHeadings(text string) []heading {
	matches := headingRe.FindAllStringSubmatchIndex(text, -1)
	out := make([]heading, 0, len(matches))
	for _, m := range matches {
		out = append(out, heading{
			offset: m[0],
			level:  m[3] - m[2],
			title:  strings.TrimSpace(text[m[4]:m[5]]),
		})
	}
	return out
}

// headingPathAt returns the stack of headings active at the given offset,
// outermost first (e.g., ["API", "Authentication", "Tokens"]).
func headingPathAt(headings []heading, offset int) []string {
	var stack []heading
	for _, h := range headings {
		if h.offset > offset {
			break
		}
		for len(stack) > 0 && stack[len(stack)-1].level >= h.level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, h)
	}
	if len(stack) == 0 {
		return nil
	}
	path := make([]string, len(stack))
	for i, h := range stack {
		path[i] = h.title
	}
	return path
}

func sortedUnique(in []int) []int {
	if len(in) < 2 {
		return in
	}
	sort.Ints(in)
	out := in[:1]
	for _, v := range in[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
