package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/sqlite"
)

// Dependencies holds all services and configuration for command
// execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config docdex.Config

	DB      *sqlite.DB
	Sources docdex.SourceService
	Store   docdex.VectorStore
	Crawler docdex.CrawlService
	Search  docdex.SearchService
	Asker   docdex.Asker

	// ServeFn starts the MCP server; set only for the serve command.
	ServeFn func(ctx context.Context) error
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string `short:"c" type:"path" help:"Path to TOML config file"`

	Add    AddCmd    `cmd:"" help:"Register a documentation source"`
	Crawl  CrawlCmd  `cmd:"" help:"Crawl a source and index its content"`
	Search SearchCmd `cmd:"" help:"Search indexed documentation"`
	Ask    AskCmd    `cmd:"" help:"Ask a question about indexed documentation"`
	List   ListCmd   `cmd:"" help:"List registered sources"`
	Delete DeleteCmd `cmd:"" help:"Delete a source and its indexed content"`
	Serve  ServeCmd  `cmd:"" help:"Serve the index over the Model Context Protocol"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	Name     string   `arg:"" help:"Source name"`
	Locator  string   `arg:"" help:"Documentation URL or directory path"`
	Kind     string   `default:"web" enum:"web,filesystem" help:"Source kind"`
	MaxDepth int      `help:"Maximum link-following depth"`
	MaxPages int      `help:"Maximum pages per crawl run"`
	Include  []string `short:"I" help:"Include locators matching regex (repeatable)"`
	Exclude  []string `short:"X" help:"Exclude locators matching regex (repeatable)"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Name string `arg:"" help:"Source name"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query   string   `arg:"" help:"Search query"`
	Sources []string `short:"s" help:"Restrict to source names (repeatable)"`
	Limit   int      `short:"n" default:"10" help:"Maximum number of results"`
	Full    bool     `help:"Show full chunk text instead of a preview"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string   `arg:"" help:"Question to ask about the documentation"`
	Sources  []string `short:"s" help:"Restrict to source names (repeatable)"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Name  string `arg:"" help:"Source name"`
	Force bool   `help:"Confirm deletion"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct{}
