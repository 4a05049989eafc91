// Package mock provides function-field mock implementations of docdex
// interfaces for tests.
package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of docdex.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, locator string) (*docdex.ContentUnit, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, locator string) (*docdex.ContentUnit, error) {
	return f.FetchFn(ctx, locator)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ docdex.Lister = (*Lister)(nil)

// Lister is a mock implementation of docdex.Lister.
type Lister struct {
	ListFn func(ctx context.Context, root string, filter *docdex.LocatorFilter) ([]string, error)
}

func (l *Lister) List(ctx context.Context, root string, filter *docdex.LocatorFilter) ([]string, error) {
	return l.ListFn(ctx, root, filter)
}
