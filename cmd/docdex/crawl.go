package main

import (
	"fmt"

	"github.com/docdex/docdex"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	source, err := deps.Sources.FindSourceByName(deps.Ctx, c.Name)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	summary, err := deps.Crawler.Run(deps.Ctx, source)
	if summary != nil {
		fmt.Fprintf(deps.Stdout, "Crawled %q: %d fetched, %d chunked, %d upserted, %d retired, %d failed (%s)\n",
			source.Name, summary.Fetched, summary.Chunked, summary.Upserted, summary.Retired, summary.Failed,
			summary.Finished.Sub(summary.Started).Round(timePrecision))
		for _, w := range summary.Warnings {
			fmt.Fprintf(deps.Stderr, "  warn: %s\n", w)
		}
		if summary.Aborted {
			fmt.Fprintln(deps.Stderr, "Run aborted; the index keeps its previous state for unverified pages.")
		}
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}
	return nil
}
