// Package fs provides the filesystem implementations of docdex.Fetcher
// and docdex.Lister, for indexing documentation that lives on disk
// (checked-out repositories, generated doc trees).
package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docdex/docdex"
)

// maxFileBytes caps file reads so a stray binary cannot exhaust memory.
const maxFileBytes = 10 << 20

// Ensure Fetcher implements docdex.Fetcher at compile time.
var _ docdex.Fetcher = (*Fetcher)(nil)

// Fetcher reads documentation files from the local filesystem. Markdown
// and plain text pass through directly; HTML goes through the extractor
// and converter like a fetched web page.
type Fetcher struct {
	extractor docdex.Extractor
	converter docdex.Converter
}

// NewFetcher creates a filesystem Fetcher. The extractor and converter
// handle HTML files; both may be nil if the source contains none.
func NewFetcher(extractor docdex.Extractor, converter docdex.Converter) *Fetcher {
	return &Fetcher{extractor: extractor, converter: converter}
}

// Fetch reads the file at locator and normalizes it to markdown text.
func (f *Fetcher) Fetch(ctx context.Context, locator string) (*docdex.ContentUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(locator)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, docdex.Errorf(docdex.ENOTFOUND, "file %s does not exist", locator)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, docdex.Errorf(docdex.EINVALID, "%s is a directory", locator)
	}
	if info.Size() > maxFileBytes {
		return nil, docdex.Errorf(docdex.EINVALID, "file %s exceeds size limit", locator)
	}

	raw, err := os.ReadFile(locator)
	if err != nil {
		return nil, err
	}

	unit := &docdex.ContentUnit{
		Locator:   docdex.CanonicalLocator(locator),
		Raw:       string(raw),
		FetchedAt: time.Now().UTC(),
	}

	switch strings.ToLower(filepath.Ext(locator)) {
	case ".html", ".htm":
		if f.extractor == nil || f.converter == nil {
			return nil, docdex.Errorf(docdex.EINVALID, "no HTML pipeline configured for %s", locator)
		}
		result, err := f.extractor.Extract(unit.Raw)
		if err != nil {
			return nil, err
		}
		markdown := ""
		if strings.TrimSpace(result.ContentHTML) != "" {
			markdown, err = f.converter.Convert(result.ContentHTML)
			if err != nil {
				return nil, err
			}
		}
		unit.Title = result.Title
		unit.Text = markdown
	default:
		unit.Title = titleFromFile(locator, string(raw))
		unit.Text = string(raw)
	}

	unit.Hash = docdex.HashText(unit.Text)
	return unit, nil
}

// Close releases resources. The filesystem fetcher holds none.
func (f *Fetcher) Close() error {
	return nil
}

// titleFromFile derives a page title from the first markdown heading,
// falling back to the file name.
func titleFromFile(path, content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
