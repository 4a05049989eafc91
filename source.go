package docdex

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// SourceKind identifies how a source's content is reached.
type SourceKind string

// Supported source kinds. The set is closed by design: fetch dispatch is
// by kind, and a new kind means a new Fetcher variant.
const (
	SourceWeb        SourceKind = "web"
	SourceFilesystem SourceKind = "filesystem"
)

// Source represents a documentation source to be crawled and indexed.
// A source is immutable for the duration of a crawl run.
type Source struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Kind      SourceKind `json:"kind"`
	Locator   string     `json:"locator"` // root URL or directory path
	Policy    Policy     `json:"policy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Policy bounds a crawl of a single source.
type Policy struct {
	// MaxDepth limits link-following depth from the root locator.
	// Zero means the root page only.
	MaxDepth int `json:"maxDepth"`

	// MaxPages caps the number of pages fetched in one run.
	MaxPages int `json:"maxPages"`

	// Include/Exclude are newline-separated regexp patterns applied to
	// candidate locators. Stored as text so sources round-trip through
	// storage; compile with Filter().
	Include string `json:"include,omitempty"`
	Exclude string `json:"exclude,omitempty"`

	// RatePerHost is the maximum requests per second per host.
	RatePerHost float64 `json:"ratePerHost,omitempty"`
}

// Validate returns an error if the source contains invalid fields.
func (s *Source) Validate() error {
	if s.Name == "" {
		return Errorf(EINVALID, "source name required")
	}
	if s.Locator == "" {
		return Errorf(EINVALID, "source locator required")
	}
	switch s.Kind {
	case SourceWeb, SourceFilesystem:
	default:
		return Errorf(EINVALID, "unknown source kind %q", s.Kind)
	}
	return nil
}

// Filter compiles the policy's include/exclude patterns.
// Returns EINVALID if any pattern fails to compile.
func (p *Policy) Filter() (*LocatorFilter, error) {
	f := &LocatorFilter{}
	var err error
	if f.Include, err = compilePatterns(p.Include); err != nil {
		return nil, err
	}
	if f.Exclude, err = compilePatterns(p.Exclude); err != nil {
		return nil, err
	}
	if len(f.Include) == 0 && len(f.Exclude) == 0 {
		return nil, nil
	}
	return f, nil
}

func compilePatterns(patterns string) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for _, p := range strings.Split(patterns, "\n") {
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid filter pattern %q: %v", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// LocatorFilter specifies patterns for including/excluding locators.
type LocatorFilter struct {
	// Include patterns - if set, only locators matching at least one
	// pattern are included.
	Include []*regexp.Regexp

	// Exclude patterns - locators matching any pattern are excluded.
	// Exclude is applied after Include.
	Exclude []*regexp.Regexp
}

// Match returns true if the locator passes the filter.
// A nil filter passes everything.
func (f *LocatorFilter) Match(locator string) bool {
	if f == nil {
		return true
	}
	if len(f.Include) > 0 {
		matched := false
		for _, re := range f.Include {
			if re.MatchString(locator) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, re := range f.Exclude {
		if re.MatchString(locator) {
			return false
		}
	}
	return true
}

// SourceService represents a service for managing sources.
type SourceService interface {
	// CreateSource creates a new source.
	CreateSource(ctx context.Context, source *Source) error

	// FindSourceByID retrieves a source by ID.
	// Returns ENOTFOUND if source does not exist.
	FindSourceByID(ctx context.Context, id string) (*Source, error)

	// FindSourceByName retrieves a source by its unique name.
	// Returns ENOTFOUND if source does not exist.
	FindSourceByName(ctx context.Context, name string) (*Source, error)

	// FindSources retrieves sources matching the filter.
	FindSources(ctx context.Context, filter SourceFilter) ([]*Source, error)

	// UpdateSource updates an existing source.
	// Returns ENOTFOUND if source does not exist.
	UpdateSource(ctx context.Context, id string, upd SourceUpdate) (*Source, error)

	// DeleteSource permanently removes a source. Indexed records for the
	// source are removed separately via VectorStore.DeleteBySource.
	// Returns ENOTFOUND if source does not exist.
	DeleteSource(ctx context.Context, id string) error
}

// SourceFilter represents a filter for FindSources.
type SourceFilter struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SourceUpdate represents fields that can be updated on a source.
type SourceUpdate struct {
	Name    *string `json:"name"`
	Locator *string `json:"locator"`
	Policy  *Policy `json:"policy"`
}
