package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/docdex/docdex"
)

// Ensure LinkExtractor implements docdex.LinkExtractor at compile time.
var _ docdex.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor discovers same-host child links in fetched HTML.
// Navigation and sidebar links get higher crawl priority than in-content
// links; anchors outside any recognized region are kept at fallback
// priority so sites with non-semantic markup still get crawled.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// linkRegions maps selector groups to crawl priorities, highest first so
// deduplication keeps the best priority for a URL found in several
// regions.
var linkRegions = []struct {
	selector string
	priority docdex.LinkPriority
}{
	{"nav a[href], [role=\"navigation\"] a[href], .sidebar a[href], .toc a[href], aside a[href]", docdex.PriorityNavigation},
	{"main a[href], article a[href], .content a[href], .doc-content a[href]", docdex.PriorityContent},
	{"a[href]", docdex.PriorityFallback},
}

// ExtractLinks parses HTML and returns discovered links resolved against
// baseURL. Links to other hosts, non-HTTP schemes, and the page itself
// are dropped; duplicates keep their highest-priority occurrence.
func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]docdex.Link, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "failed to parse HTML: %v", err)
	}

	// Track seen URLs with their index in the result slice so a later,
	// lower-priority occurrence never downgrades an earlier one.
	seen := make(map[string]int)
	var links []docdex.Link

	for _, region := range linkRegions {
		doc.Find(region.selector).Each(func(_ int, sel *goquery.Selection) {
			href, exists := sel.Attr("href")
			if !exists || href == "" {
				return
			}
			if isNonHTTPLink(href) {
				return
			}

			resolved := resolveURL(base, href)
			if resolved == "" {
				return
			}
			if !isSameHost(base, resolved) {
				return
			}

			link := docdex.Link{Locator: resolved, Priority: region.priority}
			if idx, ok := seen[resolved]; ok {
				if region.priority > links[idx].Priority {
					links[idx] = link
				}
				return
			}
			seen[resolved] = len(links)
			links = append(links, link)
		})
	}

	return links, nil
}

// resolveURL resolves href against base, stripping fragments. Returns
// empty for unparseable or self-referential links.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isSameHost uses exact host matching; subdomains count as different
// hosts.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

// isNonHTTPLink reports whether an href uses a scheme that cannot be
// crawled.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
