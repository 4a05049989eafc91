package main

import (
	"fmt"

	"github.com/docdex/docdex"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	sources, err := deps.Sources.FindSources(deps.Ctx, docdex.SourceFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	if len(sources) == 0 {
		fmt.Fprintln(deps.Stdout, "No sources found. Use 'docdex add' to create one.")
		return nil
	}

	for _, src := range sources {
		count, err := deps.Store.CountBySource(deps.Ctx, src.ID)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %d chunks\n", src.Name, src.Kind, src.Locator, count)
	}
	return nil
}
