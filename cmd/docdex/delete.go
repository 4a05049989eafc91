package main

import (
	"fmt"

	"github.com/docdex/docdex"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	source, err := deps.Sources.FindSourceByName(deps.Ctx, c.Name)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	if !c.Force {
		count, err := deps.Store.CountBySource(deps.Ctx, source.ID)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Would delete source %q and %d indexed chunks. Re-run with --force to confirm.\n", c.Name, count)
		return nil
	}

	// Records go first so a failure cannot orphan them without a source.
	if err := deps.Store.DeleteBySource(deps.Ctx, source.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}
	if err := deps.Sources.DeleteSource(deps.Ctx, source.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted source %q\n", c.Name)
	return nil
}
