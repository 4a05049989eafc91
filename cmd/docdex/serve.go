package main

import "fmt"

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	fmt.Fprintln(deps.Stderr, "Serving MCP on stdio")
	return deps.ServeFn(deps.Ctx)
}
