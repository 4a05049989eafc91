package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// crawlSourceTool returns the tool definition for crawl_source.
func crawlSourceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "crawl_source",
		Description: "Crawl a documentation source and index its content for search. Registers the source on first use; re-crawling an unchanged source is a no-op.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Unique short name for the source (e.g. 'fastapi')",
				},
				"locator": map[string]interface{}{
					"type":        "string",
					"description": "Root URL of the documentation site, or a local directory path",
				},
				"kind": map[string]interface{}{
					"type":        "string",
					"description": "Source kind",
					"enum":        []string{"web", "filesystem"},
					"default":     "web",
				},
				"max_depth": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum link-following depth from the root",
					"default":     3,
				},
				"max_pages": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum pages fetched in one run",
					"default":     1000,
				},
				"include": map[string]interface{}{
					"type":        "string",
					"description": "Newline-separated regexp patterns; only matching locators are crawled",
				},
				"exclude": map[string]interface{}{
					"type":        "string",
					"description": "Newline-separated regexp patterns; matching locators are skipped",
				},
			},
			Required: []string{"name", "locator"},
		},
	}
}

// searchTool returns the tool definition for search.
func searchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search",
		Description: "Search indexed documentation with a natural language or keyword query. Returns ranked passages with source citations.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"sources": map[string]interface{}{
					"type":        "array",
					"description": "Restrict results to these source names",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"min_score": map[string]interface{}{
					"type":        "number",
					"description": "Minimum combined relevance score threshold",
				},
			},
			Required: []string{"query"},
		},
	}
}

// askTool returns the tool definition for ask.
func askTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ask",
		Description: "Ask a natural language question about indexed documentation. The answer is synthesized from the most relevant passages and cites its sources.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The question to answer",
				},
				"sources": map[string]interface{}{
					"type":        "array",
					"description": "Restrict retrieval to these source names",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"question"},
		},
	}
}

// listSourcesTool returns the tool definition for list_sources.
func listSourcesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_sources",
		Description: "List registered documentation sources with their indexed chunk counts.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// deleteSourceTool returns the tool definition for delete_source.
func deleteSourceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_source",
		Description: "Delete a documentation source and all of its indexed content.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the source to delete",
				},
			},
			Required: []string{"name"},
		},
	}
}
