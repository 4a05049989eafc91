package main

import (
	"fmt"

	"github.com/docdex/docdex"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	sourceIDs, err := resolveSources(deps, c.Sources)
	if err != nil {
		return err
	}

	answer, err := deps.Asker.Ask(deps.Ctx, c.Question, docdex.SearchOptions{SourceIDs: sourceIDs})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer)
	return nil
}
