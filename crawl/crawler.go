// Package crawl provides the crawl-to-index pipeline: frontier
// scheduling, fetching, chunking, embedding, and reconciliation of the
// vector store against each crawl's surviving chunk set.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/docdex/docdex"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Frontier sizing for Bloom filter deduplication.
const (
	frontierExpectedLocators  = 10000
	frontierFalsePositiveRate = 0.01
)

// minAttemptsBeforeAbort delays the failure-fraction check so a small
// crawl with one flaky page does not abort immediately.
const minAttemptsBeforeAbort = 8

// Ensure Crawler implements docdex.CrawlService at compile time.
var _ docdex.CrawlService = (*Crawler)(nil)

// Crawler orchestrates crawl runs: it expands a source into a bounded,
// deduplicated frontier, fetches and chunks pages with a bounded worker
// pool, and reconciles the vector store through a Reconciler.
type Crawler struct {
	Config   docdex.Config
	Fetchers map[docdex.SourceKind]docdex.Fetcher
	Chunker  docdex.Chunker
	Sitemaps docdex.SitemapService // optional seed discovery for web sources
	Links    docdex.LinkExtractor  // optional recursive link discovery
	Lister   docdex.Lister         // seed discovery for filesystem sources
	Limiter  docdex.DomainLimiter
	Store    docdex.VectorStore
	Embedder docdex.Embedder
	Logger   *slog.Logger
}

// Run executes one crawl of one source and reconciles the index.
// It always returns a summary; the error reports run-terminating
// conditions (invalid source, failure-fraction abort, cancellation).
// Sources are independent: callers may run several sources concurrently.
func (c *Crawler) Run(ctx context.Context, source *docdex.Source) (*docdex.RunSummary, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	filter, err := source.Policy.Filter()
	if err != nil {
		return nil, err
	}
	fetcher, ok := c.Fetchers[source.Kind]
	if !ok {
		return nil, docdex.Errorf(docdex.EINVALID, "no fetcher for source kind %q", source.Kind)
	}

	run := &docdex.CrawlRun{
		ID:       uuid.New().String(),
		SourceID: source.ID,
		Started:  time.Now().UTC(),
	}
	logger := c.logger().With("source", source.Name, "run", run.ID)

	reconciler := &Reconciler{
		Store:       c.Store,
		Embedder:    c.Embedder,
		BatchSize:   c.Config.EmbedBatchSize,
		Retry:       docdex.RetryPolicy{Delays: c.Config.RetryDelays},
		Concurrency: c.Config.EmbedConcurrency,
	}
	rec, err := reconciler.Begin(ctx, source.ID)
	if err != nil {
		return nil, err
	}

	frontier := NewFrontier(frontierExpectedLocators, frontierFalsePositiveRate)
	seeded, err := c.seed(ctx, source, filter, frontier, run, logger)
	if err != nil {
		return nil, err
	}

	runErr := c.crawl(ctx, source, filter, frontier, fetcher, rec, run, logger)

	// Flush whatever embedded cleanly even when aborting; pending chunks
	// belong to locators that were fully processed.
	if err := rec.Flush(ctx, run); err != nil && runErr == nil {
		runErr = err
	}

	// Retirement only runs when the crawl re-verified full coverage. An
	// aborted or canceled run, a run seeded without its sitemap, or a
	// page budget that left frontier entries unvisited must not delete
	// records the run never got to re-check.
	if runErr == nil && !run.Aborted.Load() {
		switch {
		case !seeded:
			logger.Warn("retirement skipped, seed discovery was degraded")
		case frontier.Len() > 0:
			run.Warn(fmt.Sprintf("page budget exhausted with %d locators unvisited; retirement skipped", frontier.Len()))
			logger.Warn("retirement skipped, page budget exhausted", "unvisited", frontier.Len())
		default:
			if err := rec.Retire(ctx, run); err != nil {
				runErr = err
			}
		}
	}

	run.Finished = time.Now().UTC()
	summary := run.Summary()
	logger.Info("crawl finished",
		"fetched", summary.Fetched,
		"skipped", summary.SkippedDuplicate,
		"chunked", summary.Chunked,
		"embedded", summary.Embedded,
		"upserted", summary.Upserted,
		"retired", summary.Retired,
		"failed", summary.Failed,
		"aborted", summary.Aborted,
		"duration", summary.Finished.Sub(summary.Started),
		"err", runErr,
	)
	return &summary, runErr
}

// seed fills the frontier with the source's starting locators: sitemap
// URLs for web sources when available, otherwise the root locator.
// Returns false when sitemap discovery errored: the fallback crawl still
// runs but cannot claim full coverage of the source, so retirement is
// off the table.
func (c *Crawler) seed(ctx context.Context, source *docdex.Source, filter *docdex.LocatorFilter, frontier *Frontier, run *docdex.CrawlRun, logger *slog.Logger) (bool, error) {
	switch source.Kind {
	case docdex.SourceFilesystem:
		if c.Lister == nil {
			return false, docdex.Errorf(docdex.EINVALID, "filesystem sources require a lister")
		}
		locators, err := c.Lister.List(ctx, source.Locator, filter)
		if err != nil {
			return false, err
		}
		for _, l := range locators {
			frontier.Push(docdex.Link{Locator: l, Priority: docdex.PrioritySeed})
		}
		return true, nil
	case docdex.SourceWeb:
		if c.Sitemaps != nil {
			urls, err := c.Sitemaps.DiscoverURLs(ctx, source.Locator, filter)
			if err != nil {
				if ctx.Err() != nil {
					return false, ctx.Err()
				}
				logger.Warn("sitemap discovery failed, falling back to recursive crawl", "err", err)
				run.Warn(fmt.Sprintf("sitemap discovery failed: %v", err))
				frontier.Push(docdex.Link{Locator: source.Locator, Priority: docdex.PrioritySeed})
				return false, nil
			}
			for _, u := range urls {
				frontier.Push(docdex.Link{Locator: u, Priority: docdex.PrioritySeed})
			}
			if len(urls) > 0 {
				return true, nil
			}
		}
	}
	frontier.Push(docdex.Link{Locator: source.Locator, Priority: docdex.PrioritySeed})
	return true, nil
}

// crawl drains the frontier in bounded concurrent waves until it empties,
// the page budget is exhausted, the failure fraction trips, or the run is
// canceled. A wave is fully processed before the next starts; links
// discovered mid-wave only enter the following wave, so priority
// ordering applies at wave boundaries rather than per-pop. This trades
// a continuously fed queue for a scheduler whose only shared state is
// the frontier and the run counters.
func (c *Crawler) crawl(ctx context.Context, source *docdex.Source, filter *docdex.LocatorFilter, frontier *Frontier, fetcher docdex.Fetcher, rec *Reconciliation, run *docdex.CrawlRun, logger *slog.Logger) error {
	maxPages := source.Policy.MaxPages
	if maxPages <= 0 {
		maxPages = c.Config.MaxPages
	}
	maxDepth := source.Policy.MaxDepth
	if maxDepth <= 0 {
		maxDepth = c.Config.MaxDepth
	}

	scope := crawlScope(source)
	processed := 0

	for {
		if err := ctx.Err(); err != nil {
			run.Aborted.Store(true)
			return err
		}

		// Drain the currently queued links into one wave. Links the wave
		// discovers land in the frontier for the next one.
		var wave []docdex.Link
		for processed+len(wave) < maxPages {
			link, ok := frontier.Pop()
			if !ok {
				break
			}
			wave = append(wave, link)
		}
		if len(wave) == 0 {
			return nil
		}
		processed += len(wave)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.Config.FetchConcurrency)
		var mu sync.Mutex
		var abortErr error

		for _, link := range wave {
			g.Go(func() error {
				err := c.processLink(gctx, source, filter, scope, maxDepth, frontier, fetcher, rec, run, link)
				if err != nil {
					rec.FailLocator(link.Locator)
					run.Failed.Add(1)
					run.Warn(fmt.Sprintf("%s: %v", link.Locator, err))
					logger.Warn("page failed", "locator", link.Locator, "err", err)
				}
				if abort := c.checkAbort(run); abort != nil {
					mu.Lock()
					abortErr = abort
					mu.Unlock()
					return abort
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			run.Aborted.Store(true)
			if abortErr != nil {
				return abortErr
			}
			return err
		}
	}
}

// processLink fetches, chunks, and reconciles one locator, then feeds
// discovered child links back into the frontier.
func (c *Crawler) processLink(ctx context.Context, source *docdex.Source, filter *docdex.LocatorFilter, scope *url.URL, maxDepth int, frontier *Frontier, fetcher docdex.Fetcher, rec *Reconciliation, run *docdex.CrawlRun, link docdex.Link) error {
	if source.Kind == docdex.SourceWeb && c.Limiter != nil {
		if u, err := url.Parse(link.Locator); err == nil {
			if err := c.Limiter.Wait(ctx, u.Host); err != nil {
				return err
			}
		}
	}

	unit, err := fetcher.Fetch(ctx, link.Locator)
	if err != nil {
		return err
	}
	unit.SourceID = source.ID
	run.Fetched.Add(1)

	if source.Kind == docdex.SourceWeb && c.Links != nil && link.Depth < maxDepth {
		c.discover(source, filter, scope, frontier, run, unit, link.Depth)
	}

	chunks := c.Chunker.Chunk(unit)
	if len(chunks) == 0 {
		c.logger().Debug("empty page yielded no chunks", "locator", unit.Locator)
		return nil
	}
	run.Chunked.Add(int64(len(chunks)))

	return rec.Process(ctx, run, chunks)
}

// discover extracts in-scope child links from a fetched page and pushes
// the unseen ones onto the frontier.
func (c *Crawler) discover(source *docdex.Source, filter *docdex.LocatorFilter, scope *url.URL, frontier *Frontier, run *docdex.CrawlRun, unit *docdex.ContentUnit, depth int) {
	links, err := c.Links.ExtractLinks(unit.Raw, unit.Locator)
	if err != nil {
		return
	}
	for _, l := range links {
		if !inScope(scope, l.Locator) {
			continue
		}
		if !filter.Match(l.Locator) {
			continue
		}
		l.Depth = depth + 1
		if !frontier.Push(l) {
			run.SkippedDuplicate.Add(1)
		}
	}
}

// checkAbort trips when failures exceed the configured fraction of
// attempts, after a minimum attempt count.
func (c *Crawler) checkAbort(run *docdex.CrawlRun) error {
	failed := run.Failed.Load()
	attempts := failed + run.Fetched.Load()
	if attempts < minAttemptsBeforeAbort {
		return nil
	}
	if float64(failed)/float64(attempts) <= c.Config.FailureAbortFraction {
		return nil
	}
	run.Aborted.Store(true)
	return docdex.Errorf(docdex.EINTERNAL, "run aborted: %d of %d fetches failed", failed, attempts)
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// crawlScope returns the host+path prefix that bounds a web crawl.
// Returns nil for non-URL locators (filesystem sources bound themselves).
func crawlScope(source *docdex.Source) *url.URL {
	if source.Kind != docdex.SourceWeb {
		return nil
	}
	u, err := url.Parse(source.Locator)
	if err != nil {
		return nil
	}
	return u
}

// inScope reports whether a discovered locator stays on the source's host
// and under its path prefix.
func inScope(scope *url.URL, locator string) bool {
	if scope == nil {
		return true
	}
	u, err := url.Parse(locator)
	if err != nil {
		return false
	}
	if u.Host != scope.Host {
		return false
	}
	prefix := scope.Path
	if prefix == "" || prefix == "/" {
		return true
	}
	return strings.HasPrefix(u.Path, prefix)
}
