// Package mcp exposes docdex over the Model Context Protocol. Tools
// cover the full lifecycle: registering and crawling sources, hybrid
// search, and question answering over the index.
package mcp

import (
	"context"

	"github.com/docdex/docdex"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// ServerName is the MCP server name.
	ServerName = "docdex"
	// ServerVersion is the current server version.
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies.
type Server struct {
	mcp     *server.MCPServer
	sources docdex.SourceService
	store   docdex.VectorStore
	search  docdex.SearchService
	asker   docdex.Asker
	crawler docdex.CrawlService
}

// NewServer creates a new MCP server over the given services.
func NewServer(sources docdex.SourceService, store docdex.VectorStore, search docdex.SearchService, asker docdex.Asker, crawler docdex.CrawlService) *Server {
	s := &Server{
		mcp:     server.NewMCPServer(ServerName, ServerVersion),
		sources: sources,
		store:   store,
		search:  search,
		asker:   asker,
		crawler: crawler,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	s.mcp.AddTool(crawlSourceTool(), s.handleCrawlSource)
	s.mcp.AddTool(searchTool(), s.handleSearch)
	s.mcp.AddTool(askTool(), s.handleAsk)
	s.mcp.AddTool(listSourcesTool(), s.handleListSources)
	s.mcp.AddTool(deleteSourceTool(), s.handleDeleteSource)
}
