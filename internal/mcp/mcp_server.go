// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/sprintboard/core"
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/internal/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Sprintboard MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager, log logger.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"Sprintboard Server",
		"1.0.0",
		server.WithLogging(),
	)

	if log == nil {
		log = logger.NewNop()
	}
	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		log:     log,
	}

	// --- 1. Tool: get_iteration_aggregates ---
	s.AddTool(mcp.NewTool("get_iteration_aggregates",
		mcp.WithDescription("Story points per iteration: total, done, planned and per category (FE, BE, テスト)."),
		mcp.WithString("project", mcp.Description("Project whose stored settings are used (defaults to the configured project).")),
		mcp.WithBoolean("include_pr", mcp.Description("Count features in review as done.")),
	), h.handleGetAggregates)

	// --- 2. Tool: get_progress ---
	s.AddTool(mcp.NewTool("get_progress",
		mcp.WithDescription("Cumulative planned versus actual progress through each iteration."),
		mcp.WithString("project", mcp.Description("Project whose stored settings are used.")),
		mcp.WithBoolean("include_pr", mcp.Description("Count features in review as done.")),
	), h.handleGetProgress)

	// --- 3. Tool: get_velocity ---
	s.AddTool(mcp.NewTool("get_velocity",
		mcp.WithDescription("Team velocity per iteration and member velocity over an iteration range."),
		mcp.WithNumber("from", mcp.Description("First 1-based iteration of the member range (defaults to the first).")),
		mcp.WithNumber("to", mcp.Description("Last 1-based iteration of the member range (defaults to the last).")),
		mcp.WithString("project", mcp.Description("Project whose stored settings are used.")),
		mcp.WithBoolean("include_pr", mcp.Description("Count features in review as done.")),
	), h.handleGetVelocity)

	// --- 4. Tool: get_summary ---
	s.AddTool(mcp.NewTool("get_summary",
		mcp.WithDescription("Project totals with discarded points reported separately."),
		mcp.WithString("project", mcp.Description("Project whose stored settings are used.")),
	), h.handleGetSummary)

	// --- 5. Tool: list_features ---
	s.AddTool(mcp.NewTool("list_features",
		mcp.WithDescription("List imported features, optionally filtered."),
		mcp.WithString("search", mcp.Description("Case-insensitive text matched against title, category, status and assignee.")),
		mcp.WithString("category", mcp.Description("Exact category.")),
		mcp.WithString("status", mcp.Description("Exact status.")),
		mcp.WithString("iteration", mcp.Description("Exact iteration number, e.g. '3'.")),
		mcp.WithString("assignee", mcp.Description("Exact assignee.")),
	), h.handleListFeatures)

	// --- 6. Tool: preview_mapping ---
	s.AddTool(mcp.NewTool("preview_mapping",
		mcp.WithDescription("Show how the header row of TSV text maps onto feature fields."),
		mcp.WithString("tsv", mcp.Description("Tab-separated text with a header row."), mcp.Required()),
	), h.handlePreviewMapping)

	// --- 7. Tool: import_tsv ---
	s.AddTool(mcp.NewTool("import_tsv",
		mcp.WithDescription("Parse and validate TSV text. With confirm the valid rows replace the imported features."),
		mcp.WithString("tsv", mcp.Description("Tab-separated text with a header row."), mcp.Required()),
		mcp.WithBoolean("confirm", mcp.Description("Persist the valid rows. Defaults to false (preview only).")),
		mcp.WithString("source_name", mcp.Description("Name recorded in the import history.")),
		mcp.WithString("corrections", mcp.Description("Edited bad rows, one per line: the row's line number, a tab, then title, category, storyPoints, estimatedHours, actualHours, iteration, status and assignee separated by tabs.")),
	), h.handleImportTSV)

	// --- 8. Tool: get_settings ---
	s.AddTool(mcp.NewTool("get_settings",
		mcp.WithDescription("Return the settings document reports are computed with."),
		mcp.WithString("project", mcp.Description("Project whose stored settings are used.")),
	), h.handleGetSettings)

	// --- 9. Tool: set_iterations ---
	s.AddTool(mcp.NewTool("set_iterations",
		mcp.WithDescription("Replace the iterations with tab-separated lines of start, end, working days and an optional name."),
		mcp.WithString("text", mcp.Description("One iteration per line, e.g. '1月6日\\t1月17日\\t10'."), mcp.Required()),
	), h.handleSetIterations)

	return s
}

// StartMCPServer starts the Sprintboard MCP server on stdio.
func StartMCPServer(ctx context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr, core.LoggerFromContext(ctx))
	return server.ServeStdio(s)
}
