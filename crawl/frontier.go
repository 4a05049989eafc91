package crawl

import (
	"container/heap"
	"sync"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/bloom"
)

// Compile-time interface verification.
var _ docdex.Frontier = (*Frontier)(nil)

// Frontier is an in-memory crawl frontier with priority ordering and
// Bloom filter deduplication. It is safe for concurrent use by multiple
// goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue *linkHeap
}

// NewFrontier creates a new Frontier sized for n expected locators
// with the given false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	h := &linkHeap{}
	heap.Init(h)
	return &Frontier{
		seen:  bloom.NewFilter(n, fpRate),
		queue: h,
	}
}

// Push adds a link to the frontier.
// Returns false if the locator has already been seen. Locators are
// canonicalized before deduplication, so spellings differing only by
// fragment or trailing slash are considered duplicates.
func (f *Frontier) Push(link docdex.Link) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	locator := docdex.CanonicalLocator(link.Locator)
	if f.seen.Test(locator) {
		return false
	}
	f.seen.Add(locator)

	link.Locator = locator
	heap.Push(f.queue, link)
	return true
}

// Pop returns the next link by priority.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (docdex.Link, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue.Len() == 0 {
		return docdex.Link{}, false
	}
	link, _ := heap.Pop(f.queue).(docdex.Link)
	return link, true
}

// Len returns the number of links in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// Seen returns true if the locator has been queued or processed.
func (f *Frontier) Seen(locator string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(docdex.CanonicalLocator(locator))
}

// linkHeap implements heap.Interface for a Link priority queue.
// Higher priority links are popped first; among equal priorities,
// shallower links win so crawls proceed breadth-first.
type linkHeap []docdex.Link

func (h linkHeap) Len() int { return len(h) }

func (h linkHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].Depth < h[j].Depth
}

func (h linkHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *linkHeap) Push(x any) {
	link, _ := x.(docdex.Link)
	*h = append(*h, link)
}

func (h *linkHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
