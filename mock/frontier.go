package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.Frontier = (*Frontier)(nil)

// Frontier is a mock implementation of docdex.Frontier.
type Frontier struct {
	PushFn func(link docdex.Link) bool
	PopFn  func() (docdex.Link, bool)
	LenFn  func() int
	SeenFn func(locator string) bool
}

func (f *Frontier) Push(link docdex.Link) bool {
	return f.PushFn(link)
}

func (f *Frontier) Pop() (docdex.Link, bool) {
	return f.PopFn()
}

func (f *Frontier) Len() int {
	return f.LenFn()
}

func (f *Frontier) Seen(locator string) bool {
	return f.SeenFn(locator)
}

var _ docdex.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of docdex.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, host string) error {
	if l.WaitFn == nil {
		return nil
	}
	return l.WaitFn(ctx, host)
}

var _ docdex.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of docdex.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, baseURL string) ([]docdex.Link, error)
}

func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]docdex.Link, error) {
	return e.ExtractLinksFn(html, baseURL)
}
