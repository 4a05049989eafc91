package goquery_test

import (
	"testing"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://example.com/docs/intro"

func locators(links []docdex.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Locator
	}
	return out
}

func TestLinkExtractor_ResolvesRelativeLinks(t *testing.T) {
	t.Parallel()

	html := `<html><body><main>
		<a href="/docs/install">install</a>
		<a href="advanced">advanced</a>
	</main></body></html>`

	e := goquery.NewLinkExtractor()
	links, err := e.ExtractLinks(html, base)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"https://example.com/docs/install",
		"https://example.com/docs/advanced",
	}, locators(links))
}

func TestLinkExtractor_PrioritizesNavigationRegions(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<nav><a href="/docs/toc">toc</a></nav>
		<main><a href="/docs/body">body</a></main>
		<div><a href="/docs/loose">loose</a></div>
	</body></html>`

	e := goquery.NewLinkExtractor()
	links, err := e.ExtractLinks(html, base)
	require.NoError(t, err)

	byLocator := make(map[string]docdex.LinkPriority)
	for _, l := range links {
		byLocator[l.Locator] = l.Priority
	}
	assert.Equal(t, docdex.PriorityNavigation, byLocator["https://example.com/docs/toc"])
	assert.Equal(t, docdex.PriorityContent, byLocator["https://example.com/docs/body"])
	assert.Equal(t, docdex.PriorityFallback, byLocator["https://example.com/docs/loose"])
}

func TestLinkExtractor_DuplicateKeepsHighestPriority(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<nav><a href="/docs/page">in nav</a></nav>
		<main><a href="/docs/page">in content</a></main>
	</body></html>`

	e := goquery.NewLinkExtractor()
	links, err := e.ExtractLinks(html, base)
	require.NoError(t, err)

	require.Len(t, links, 1)
	assert.Equal(t, docdex.PriorityNavigation, links[0].Priority)
}

func TestLinkExtractor_DropsOtherHosts(t *testing.T) {
	t.Parallel()

	html := `<html><body><main>
		<a href="https://other.example.org/docs">external</a>
		<a href="https://sub.example.com/docs">subdomain</a>
		<a href="/docs/local">local</a>
	</main></body></html>`

	e := goquery.NewLinkExtractor()
	links, err := e.ExtractLinks(html, base)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/docs/local"}, locators(links))
}

func TestLinkExtractor_DropsNonHTTPSchemes(t *testing.T) {
	t.Parallel()

	html := `<html><body><main>
		<a href="javascript:void(0)">js</a>
		<a href="mailto:docs@example.com">mail</a>
		<a href="tel:+123456">call</a>
		<a href="/docs/real">real</a>
	</main></body></html>`

	e := goquery.NewLinkExtractor()
	links, err := e.ExtractLinks(html, base)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/docs/real"}, locators(links))
}

func TestLinkExtractor_DropsSelfAndFragmentLinks(t *testing.T) {
	t.Parallel()

	html := `<html><body><main>
		<a href="#section">anchor</a>
		<a href="/docs/intro">self</a>
		<a href="/docs/intro#deep">self with fragment</a>
		<a href="/docs/other#part">other with fragment</a>
	</main></body></html>`

	e := goquery.NewLinkExtractor()
	links, err := e.ExtractLinks(html, base)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/docs/other"}, locators(links),
		"fragments are stripped and self links dropped")
}

func TestLinkExtractor_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	e := goquery.NewLinkExtractor()
	_, err := e.ExtractLinks("<html></html>", "://not-a-url")
	assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
}
