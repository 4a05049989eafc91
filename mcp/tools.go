package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docdex/docdex"
	"github.com/mark3labs/mcp-go/mcp"
)

// handleCrawlSource handles the crawl_source tool invocation. The source
// is registered on first use and updated when its locator or policy
// changed; the crawl itself is incremental either way.
func (s *Server) handleCrawlSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}

	name, _ := args["name"].(string)
	locator, _ := args["locator"].(string)
	if name == "" || locator == "" {
		return mcp.NewToolResultError("name and locator parameters are required"), nil
	}

	kind := docdex.SourceKind(getStringDefault(args, "kind", string(docdex.SourceWeb)))
	policy := docdex.Policy{
		MaxDepth: getIntDefault(args, "max_depth", 0),
		MaxPages: getIntDefault(args, "max_pages", 0),
		Include:  getStringDefault(args, "include", ""),
		Exclude:  getStringDefault(args, "exclude", ""),
	}

	source, err := s.ensureSource(ctx, name, kind, locator, policy)
	if err != nil {
		return toolError(err)
	}

	summary, err := s.crawler.Run(ctx, source)
	if err != nil && summary == nil {
		return toolError(err)
	}

	response := map[string]interface{}{
		"source":            source.Name,
		"run_id":            summary.RunID,
		"fetched":           summary.Fetched,
		"skipped_duplicate": summary.SkippedDuplicate,
		"chunked":           summary.Chunked,
		"embedded":          summary.Embedded,
		"upserted":          summary.Upserted,
		"retired":           summary.Retired,
		"failed":            summary.Failed,
		"aborted":           summary.Aborted,
		"duration_ms":       summary.Finished.Sub(summary.Started).Milliseconds(),
	}
	if len(summary.Warnings) > 0 {
		warnings := summary.Warnings
		if len(warnings) > 5 {
			response["warning_count"] = len(warnings)
			warnings = warnings[:5]
		}
		response["warnings"] = warnings
	}
	if err != nil {
		response["error"] = err.Error()
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// ensureSource registers the source if missing, or updates it when the
// caller's locator or policy differs from the stored one.
func (s *Server) ensureSource(ctx context.Context, name string, kind docdex.SourceKind, locator string, policy docdex.Policy) (*docdex.Source, error) {
	source, err := s.sources.FindSourceByName(ctx, name)
	if docdex.ErrorCode(err) == docdex.ENOTFOUND {
		source = &docdex.Source{Name: name, Kind: kind, Locator: locator, Policy: policy}
		if err := s.sources.CreateSource(ctx, source); err != nil {
			return nil, err
		}
		return source, nil
	}
	if err != nil {
		return nil, err
	}

	if source.Locator != locator || source.Policy != policy {
		return s.sources.UpdateSource(ctx, source.ID, docdex.SourceUpdate{
			Locator: &locator,
			Policy:  &policy,
		})
	}
	return source, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}

	query, _ := args["query"].(string)
	if query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return mcp.NewToolResultError("limit must be between 1 and 100"), nil
	}

	sourceIDs, err := s.resolveSourceNames(ctx, getStringSlice(args, "sources"))
	if err != nil {
		return toolError(err)
	}

	minScore, _ := args["min_score"].(float64)
	results, err := s.search.Search(ctx, query, docdex.SearchOptions{
		SourceIDs: sourceIDs,
		Limit:     limit,
		MinScore:  float32(minScore),
	})
	if err != nil {
		return toolError(err)
	}

	items := make([]map[string]interface{}, len(results))
	for i, r := range results {
		items[i] = map[string]interface{}{
			"citation": r.Citation(),
			"locator":  r.Locator,
			"score":    r.Score,
			"text":     r.Text,
		}
		if r.Metadata.Title != "" {
			items[i]["title"] = r.Metadata.Title
		}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": items,
	})), nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}

	question, _ := args["question"].(string)
	if question == "" {
		return mcp.NewToolResultError("question parameter is required"), nil
	}

	sourceIDs, err := s.resolveSourceNames(ctx, getStringSlice(args, "sources"))
	if err != nil {
		return toolError(err)
	}

	answer, err := s.asker.Ask(ctx, question, docdex.SearchOptions{SourceIDs: sourceIDs})
	if err != nil {
		return toolError(err)
	}

	return mcp.NewToolResultText(answer), nil
}

// handleListSources handles the list_sources tool invocation.
func (s *Server) handleListSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sources, err := s.sources.FindSources(ctx, docdex.SourceFilter{})
	if err != nil {
		return toolError(err)
	}

	items := make([]map[string]interface{}, len(sources))
	for i, src := range sources {
		count, err := s.store.CountBySource(ctx, src.ID)
		if err != nil {
			return toolError(err)
		}
		items[i] = map[string]interface{}{
			"name":       src.Name,
			"kind":       string(src.Kind),
			"locator":    src.Locator,
			"chunks":     count,
			"updated_at": src.UpdatedAt,
		}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"count":   len(sources),
		"sources": items,
	})), nil
}

// handleDeleteSource handles the delete_source tool invocation.
// The indexed records are removed before the source row so a failure
// cannot orphan records without a source.
func (s *Server) handleDeleteSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}

	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	source, err := s.sources.FindSourceByName(ctx, name)
	if err != nil {
		return toolError(err)
	}
	if err := s.store.DeleteBySource(ctx, source.ID); err != nil {
		return toolError(err)
	}
	if err := s.sources.DeleteSource(ctx, source.ID); err != nil {
		return toolError(err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"deleted": true,
		"source":  name,
	})), nil
}

// resolveSourceNames maps source names to IDs. Unknown names surface as
// ENOTFOUND so callers get a clear message instead of empty results.
func (s *Server) resolveSourceNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	ids := make([]string, len(names))
	for i, name := range names {
		source, err := s.sources.FindSourceByName(ctx, name)
		if err != nil {
			return nil, err
		}
		ids[i] = source.ID
	}
	return ids, nil
}

// toolError renders a docdex error as a tool result. Client mistakes
// (EINVALID, ENOTFOUND, ECONFLICT) become tool errors the model can
// react to; everything else propagates as a protocol error.
func toolError(err error) (*mcp.CallToolResult, error) {
	switch docdex.ErrorCode(err) {
	case docdex.EINVALID, docdex.ENOTFOUND, docdex.ECONFLICT:
		return mcp.NewToolResultError(docdex.ErrorMessage(err)), nil
	default:
		return nil, err
	}
}

// formatJSON formats a map as indented JSON.
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value.
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value.
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter.
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
