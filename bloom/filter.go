// Package bloom provides locator deduplication using Bloom filters.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter for crawl-frontier deduplication.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected locators
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add adds a locator to the filter.
func (f *Filter) Add(locator string) {
	f.f.AddString(locator)
}

// Test returns true if the locator might be in the filter.
// False positives are possible; false negatives are not. A false positive
// makes the frontier skip a page, never index one twice.
func (f *Filter) Test(locator string) bool {
	return f.f.TestString(locator)
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
