package main

import (
	"fmt"
	"strings"

	"github.com/docdex/docdex"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	source := &docdex.Source{
		Name:    c.Name,
		Kind:    docdex.SourceKind(c.Kind),
		Locator: c.Locator,
		Policy: docdex.Policy{
			MaxDepth: c.MaxDepth,
			MaxPages: c.MaxPages,
			Include:  strings.Join(c.Include, "\n"),
			Exclude:  strings.Join(c.Exclude, "\n"),
		},
	}

	if err := deps.Sources.CreateSource(deps.Ctx, source); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added source %q (%s)\n", c.Name, source.ID)
	fmt.Fprintf(deps.Stdout, "Run 'docdex crawl %s' to index it.\n", c.Name)
	return nil
}
