package docdex

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// CrawlService runs crawl-to-index pipelines over sources.
type CrawlService interface {
	// Run executes one crawl of one source and reconciles the index.
	// Once a run has started, a summary is returned even when err is
	// non-nil; a nil summary means the run never started.
	Run(ctx context.Context, source *Source) (*RunSummary, error)
}

// CrawlRun is one execution of the pipeline over a source. It owns the
// run-scoped mutable state (counters, warnings); everything else flows
// through the pipeline explicitly so concurrent runs never share state.
type CrawlRun struct {
	ID       string    `json:"id"`
	SourceID string    `json:"sourceId"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// Aborted and the counters are updated concurrently by stage workers.
	Aborted          atomic.Bool  `json:"-"`
	Fetched          atomic.Int64 `json:"-"`
	SkippedDuplicate atomic.Int64 `json:"-"`
	Chunked          atomic.Int64 `json:"-"`
	Embedded         atomic.Int64 `json:"-"`
	Upserted         atomic.Int64 `json:"-"`
	Retired          atomic.Int64 `json:"-"`
	Failed           atomic.Int64 `json:"-"`

	mu       sync.Mutex
	warnings []string
}

// Warn records a non-fatal problem surfaced in the run summary.
func (r *CrawlRun) Warn(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, msg)
}

// Warnings returns a copy of the recorded warnings.
func (r *CrawlRun) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Summary freezes the run's counters into an immutable value for callers.
func (r *CrawlRun) Summary() RunSummary {
	return RunSummary{
		RunID:            r.ID,
		SourceID:         r.SourceID,
		Started:          r.Started,
		Finished:         r.Finished,
		Aborted:          r.Aborted.Load(),
		Fetched:          int(r.Fetched.Load()),
		SkippedDuplicate: int(r.SkippedDuplicate.Load()),
		Chunked:          int(r.Chunked.Load()),
		Embedded:         int(r.Embedded.Load()),
		Upserted:         int(r.Upserted.Load()),
		Retired:          int(r.Retired.Load()),
		Failed:           int(r.Failed.Load()),
		Warnings:         r.Warnings(),
	}
}

// RunSummary is the structured result of a crawl call. A crawl always
// returns a summary plus warnings, never an ambiguous partial success.
type RunSummary struct {
	RunID            string    `json:"runId"`
	SourceID         string    `json:"sourceId"`
	Started          time.Time `json:"started"`
	Finished         time.Time `json:"finished"`
	Aborted          bool      `json:"aborted"`
	Fetched          int       `json:"fetched"`
	SkippedDuplicate int       `json:"skippedDuplicate"`
	Chunked          int       `json:"chunked"`
	Embedded         int       `json:"embedded"`
	Upserted         int       `json:"upserted"`
	Retired          int       `json:"retired"`
	Failed           int       `json:"failed"`
	Warnings         []string  `json:"warnings,omitempty"`
}
