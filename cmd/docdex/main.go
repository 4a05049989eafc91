package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/docdex/docdex"
	"github.com/docdex/docdex/crawl"
	"github.com/docdex/docdex/fs"
	"github.com/docdex/docdex/gemini"
	"github.com/docdex/docdex/goquery"
	"github.com/docdex/docdex/htmltomarkdown"
	dochttp "github.com/docdex/docdex/http"
	"github.com/docdex/docdex/mcp"
	"github.com/docdex/docdex/readability"
	docslog "github.com/docdex/docdex/slog"
	"github.com/docdex/docdex/sqlite"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services exposed for end-to-end testing.
	SourceService docdex.SourceService
	VectorStore   docdex.VectorStore
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel()}))

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docdex"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docdex --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	deps.Config = cfg

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOCDEX_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.SourceService = sqlite.NewSourceService(m.DB)
	m.VectorStore = sqlite.NewVectorStore(m.DB)
	deps.DB = m.DB
	deps.Sources = m.SourceService
	deps.Store = m.VectorStore

	// Crawling, search, and serving all need the Gemini-backed pipeline.
	if cmd == "crawl" || cmd == "search" || cmd == "ask" || cmd == "serve" {
		client, err := geminiClient(ctx, stderr)
		if err != nil {
			return err
		}

		embedder := docdex.Embedder(gemini.NewEmbedder(client, cfg.EmbedDimension))
		embedder = docslog.NewLoggingEmbedder(embedder, logger)

		// A dimension change against an existing index would degrade every
		// cosine score to zero; fail now instead.
		existing, err := m.VectorStore.EmbeddingDimension(ctx)
		if err != nil {
			return err
		}
		if existing != 0 && existing != embedder.Dimension() {
			return docdex.Errorf(docdex.EINVALID,
				"configured embedding dimension %d does not match the indexed dimension %d; change embed_dimension back or re-index into a fresh database",
				embedder.Dimension(), existing)
		}

		searcher := docslog.NewLoggingSearchService(&crawl.Searcher{
			Embedder:      embedder,
			Store:         m.VectorStore,
			VectorWeight:  cfg.VectorWeight,
			KeywordWeight: cfg.KeywordWeight,
		}, logger)
		deps.Search = searcher
		deps.Asker = gemini.NewAsker(client, searcher)

		extractor := goquery.NewExtractor()
		converter := htmltomarkdown.NewConverter()
		webFetcher := dochttp.NewFetcher(extractor, converter,
			dochttp.WithRetryDelays(cfg.RetryDelays),
			dochttp.WithFallbackExtractor(readability.NewExtractor()),
		)
		defer webFetcher.Close()

		deps.Crawler = &crawl.Crawler{
			Config: cfg,
			Fetchers: map[docdex.SourceKind]docdex.Fetcher{
				docdex.SourceWeb:        docslog.NewLoggingFetcher(webFetcher, logger),
				docdex.SourceFilesystem: docslog.NewLoggingFetcher(fs.NewFetcher(extractor, converter), logger),
			},
			Chunker:  crawl.NewChunker(docdex.ChunkConfig{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}),
			Sitemaps: docslog.NewLoggingSitemapService(dochttp.NewSitemapService(nil), logger),
			Links:    goquery.NewLinkExtractor(),
			Lister:   fs.NewLister(),
			Limiter:  crawl.NewDomainLimiter(cfg.RatePerHost),
			Store:    m.VectorStore,
			Embedder: embedder,
			Logger:   logger,
		}

		if cmd == "serve" {
			server := mcp.NewServer(deps.Sources, deps.Store, deps.Search, deps.Asker, deps.Crawler)
			deps.ServeFn = server.Serve
		}
	}

	return kongCtx.Run(deps)
}

// geminiClient connects to the Gemini API using GEMINI_API_KEY.
func geminiClient(ctx context.Context, stderr io.Writer) (*genai.Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return client, nil
}

func defaultDBPath() string {
	if path := os.Getenv("DOCDEX_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "docdex.db"
	}
	dir := filepath.Join(home, ".docdex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "docdex.db")
}

func logLevel() slog.Level {
	if os.Getenv("DOCDEX_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
