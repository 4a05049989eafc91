package docdex

import "context"

// Link is a frontier entry: a candidate locator discovered during a crawl
// together with its distance from the root and a crawl priority.
type Link struct {
	Locator  string
	Depth    int
	Priority LinkPriority
}

// LinkPriority represents crawl priority (higher = more important).
type LinkPriority int

// Link priority levels for crawl ordering.
const (
	PriorityFallback   LinkPriority = 10
	PriorityContent    LinkPriority = 50
	PriorityNavigation LinkPriority = 100
	PrioritySeed       LinkPriority = 200
)

// Frontier manages a crawl queue with deduplication. A locator pushed
// once is never returned again within the same run, whether or not its
// fetch succeeded.
type Frontier interface {
	// Push adds a link to the frontier.
	// Returns false if the locator has already been seen.
	Push(link Link) bool

	// Pop returns the next link by priority.
	// Returns false if the frontier is empty.
	Pop() (Link, bool)

	// Len returns the number of links in the queue.
	Len() int

	// Seen returns true if the locator has been queued or processed.
	Seen(locator string) bool
}

// LinkExtractor discovers candidate child locators in fetched content.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns discovered links.
	// The baseURL is used to resolve relative URLs; links to other hosts
	// are not returned.
	ExtractLinks(html string, baseURL string) ([]Link, error)
}

// DomainLimiter provides per-host rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the host.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, host string) error
}
