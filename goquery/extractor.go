// Package goquery provides the structure-aware HTML implementations of
// docdex.Extractor and docdex.LinkExtractor. It uses CSS selectors that
// cover the common documentation page shapes; pages it cannot handle
// fall back to readability-based extraction.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/docdex/docdex"
)

// contentSelectors identify the main content region, tried in order.
var contentSelectors = []string{
	"main",
	"article",
	"[role=\"main\"]",
	".markdown-body",
	".doc-content",
	".document",
	".content",
	"#content",
}

// chromeSelectors match page chrome stripped from extracted content.
const chromeSelectors = "nav, aside, footer, header, script, style, noscript, .sidebar, .toc, .breadcrumbs, .edit-page-link"

// Ensure Extractor implements docdex.Extractor at compile time.
var _ docdex.Extractor = (*Extractor)(nil)

// Extractor extracts main documentation content from HTML using
// structural CSS selectors.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page title and the main content region as clean
// HTML. When no content selector matches, ContentHTML is empty; callers
// treat that as a signal to try a fallback extractor.
func (e *Extractor) Extract(rawHTML string) (*docdex.ExtractResult, error) {
	if rawHTML == "" {
		return nil, docdex.Errorf(docdex.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "failed to parse HTML: %v", err)
	}

	result := &docdex.ExtractResult{Title: pageTitle(doc)}

	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		sel.Find(chromeSelectors).Remove()
		html, err := sel.Html()
		if err != nil {
			continue
		}
		if strings.TrimSpace(sel.Text()) == "" {
			continue
		}
		result.ContentHTML = html
		return result, nil
	}

	return result, nil
}

// pageTitle prefers the first content heading over the document title,
// which usually carries site-name suffixes.
func pageTitle(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
