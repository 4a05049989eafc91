package docdex

import "time"

// Config is the validated core configuration. The shell (CLI, MCP server)
// is responsible for loading it; the core assumes Validate has passed.
type Config struct {
	// Chunking.
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`

	// Crawl bounds, used when a source's policy leaves them zero.
	MaxDepth int `toml:"max_depth"`
	MaxPages int `toml:"max_pages"`

	// Stage concurrency.
	FetchConcurrency int `toml:"fetch_concurrency"`
	EmbedConcurrency int `toml:"embed_concurrency"`

	// RatePerHost is the default requests per second per host.
	RatePerHost float64 `toml:"rate_per_host"`

	// Embedding.
	EmbedBatchSize int `toml:"embed_batch_size"`
	EmbedDimension int `toml:"embed_dimension"`

	// RetryDelays are the backoff delays shared by fetch, embed, and
	// store writes.
	RetryDelays []time.Duration `toml:"-"`

	// FailureAbortFraction aborts a run when failed/attempted exceeds it
	// (after a minimum number of attempts).
	FailureAbortFraction float64 `toml:"failure_abort_fraction"`

	// Hybrid re-ranking weights. Vector similarity is primary; keyword
	// match is a secondary boost.
	VectorWeight  float32 `toml:"vector_weight"`
	KeywordWeight float32 `toml:"keyword_weight"`
}

// DefaultConfig returns a Config with working defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:            1600,
		ChunkOverlap:         200,
		MaxDepth:             3,
		MaxPages:             1000,
		FetchConcurrency:     8,
		EmbedConcurrency:     2,
		RatePerHost:          4,
		EmbedBatchSize:       32,
		EmbedDimension:       768,
		RetryDelays:          DefaultRetryDelays(),
		FailureAbortFraction: 0.5,
		VectorWeight:         0.7,
		KeywordWeight:        0.3,
	}
}

// Validate returns EINVALID describing the first invalid option.
// Configuration errors are fatal at startup, never at call time.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return Errorf(EINVALID, "chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return Errorf(EINVALID, "chunk_overlap must be in [0, chunk_size)")
	}
	if c.MaxDepth < 0 {
		return Errorf(EINVALID, "max_depth must not be negative")
	}
	if c.MaxPages <= 0 {
		return Errorf(EINVALID, "max_pages must be positive")
	}
	if c.FetchConcurrency <= 0 || c.EmbedConcurrency <= 0 {
		return Errorf(EINVALID, "stage concurrency must be positive")
	}
	if c.RatePerHost <= 0 {
		return Errorf(EINVALID, "rate_per_host must be positive")
	}
	if c.EmbedBatchSize <= 0 {
		return Errorf(EINVALID, "embed_batch_size must be positive")
	}
	if c.EmbedDimension <= 0 {
		return Errorf(EINVALID, "embed_dimension must be positive")
	}
	if c.FailureAbortFraction <= 0 || c.FailureAbortFraction > 1 {
		return Errorf(EINVALID, "failure_abort_fraction must be in (0, 1]")
	}
	if c.VectorWeight < 0 || c.KeywordWeight < 0 || c.VectorWeight+c.KeywordWeight == 0 {
		return Errorf(EINVALID, "re-ranking weights must be non-negative and not both zero")
	}
	return nil
}
