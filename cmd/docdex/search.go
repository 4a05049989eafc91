package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/docdex/docdex"
)

const timePrecision = 10 * time.Millisecond

// previewRunes caps chunk text shown without --full.
const previewRunes = 200

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	sourceIDs, err := resolveSources(deps, c.Sources)
	if err != nil {
		return err
	}

	results, err := deps.Search.Search(deps.Ctx, c.Query, docdex.SearchOptions{
		SourceIDs: sourceIDs,
		Limit:     c.Limit,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results.")
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(deps.Stdout, "%d. [%.3f] %s\n", i+1, r.Score, r.Citation())
		text := strings.TrimSpace(r.Text)
		if !c.Full {
			text = preview(text)
		}
		fmt.Fprintf(deps.Stdout, "   %s\n", strings.ReplaceAll(text, "\n", "\n   "))
	}
	return nil
}

// resolveSources maps source names to IDs for search options.
func resolveSources(deps *Dependencies, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	ids := make([]string, len(names))
	for i, name := range names {
		source, err := deps.Sources.FindSourceByName(deps.Ctx, name)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
			return nil, err
		}
		ids[i] = source.ID
	}
	return ids, nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "…"
}
