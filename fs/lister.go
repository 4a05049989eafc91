package fs

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docdex/docdex"
)

// indexableExtensions are the file types a filesystem crawl considers
// documentation.
var indexableExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdx":      true,
	".txt":      true,
	".rst":      true,
	".html":     true,
	".htm":      true,
}

// Ensure Lister implements docdex.Lister at compile time.
var _ docdex.Lister = (*Lister)(nil)

// Lister walks a directory tree and enumerates indexable documentation
// files. Hidden directories and common dependency directories are
// skipped.
type Lister struct{}

// NewLister creates a filesystem Lister.
func NewLister() *Lister {
	return &Lister{}
}

// List returns the filter-passing documentation files under root, in
// deterministic sorted order.
func (l *Lister) List(ctx context.Context, root string, filter *docdex.LocatorFilter) ([]string, error) {
	info, err := filepath.Abs(root)
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "invalid root %q: %v", root, err)
	}
	root = info

	var locators []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !indexableExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if !filter.Match(path) {
			return nil
		}
		locators = append(locators, path)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, docdex.Errorf(docdex.ENOTFOUND, "walking %s: %v", root, err)
	}

	sort.Strings(locators)
	return locators, nil
}

// skipDir reports whether a directory should be excluded from the walk.
func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "node_modules", "vendor", "dist", "build", "__pycache__":
		return true
	}
	return false
}
