package docdex

import (
	"context"
	"time"
)

// ContentUnit is one fetched document: raw content already normalized to
// markdown text. Units are owned by a single crawl run and discarded after
// chunking; only the chunks derived from them are persisted.
type ContentUnit struct {
	SourceID  string
	Locator   string // canonical locator after redirects/cleanup
	Title     string
	Raw       string // raw fetched content, kept for link discovery
	Text      string // normalized markdown
	Hash      ContentHash
	FetchedAt time.Time
}

// Fetcher retrieves and normalizes content for a locator.
// Implementations exist per source kind (HTTP, filesystem) and hide
// retries, robots constraints, extraction, and markdown conversion.
type Fetcher interface {
	// Fetch retrieves the content at locator and normalizes it to text.
	// Transient failures are retried internally; the returned error is
	// final for this run. Permanent failures carry ENOTFOUND or EINVALID,
	// transient exhaustion carries EUNAVAILABLE.
	Fetch(ctx context.Context, locator string) (*ContentUnit, error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// Lister enumerates the fetchable locators under a root, for source
// kinds whose structure is walkable rather than link-discovered.
type Lister interface {
	// List returns the filter-passing locators under root.
	List(ctx context.Context, root string, filter *LocatorFilter) ([]string, error)
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML and returns the page title and the main
	// content as clean HTML with boilerplate (nav, footer, ads) removed.
	Extract(html string) (*ExtractResult, error)
}

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	Title       string
	ContentHTML string
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms clean HTML (e.g., from an Extractor) into
	// Markdown preserving heading and section structure.
	Convert(html string) (string, error)
}
