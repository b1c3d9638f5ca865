package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/sprintboard/core"
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/internal/logger"
	"github.com/huangsam/sprintboard/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
	log     logger.Logger
}

// prepare clones the base config, applies the arguments every report tool shares
// and attaches the server logger to ctx.
func (h *toolHandler) prepare(ctx context.Context, request mcp.CallToolRequest) (context.Context, *contract.Config) {
	cfg := h.baseCfg.Clone()
	if p := strings.TrimSpace(request.GetString("project", "")); p != "" {
		cfg.Project = p
	}
	if args := request.GetArguments(); args != nil {
		if _, ok := args["include_pr"]; ok {
			includePR := request.GetBool("include_pr", false)
			cfg.IncludePR = &includePR
		}
	}
	return core.WithLogger(ctx, h.log), cfg
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetAggregates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg := h.prepare(ctx, request)

	aggs, err := core.GetAggregateResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("aggregation failed: %v", err)), nil
	}
	return jsonResult(aggs)
}

func (h *toolHandler) handleGetProgress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg := h.prepare(ctx, request)

	rows, err := core.GetProgressResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("progress failed: %v", err)), nil
	}
	return jsonResult(rows)
}

func (h *toolHandler) handleGetVelocity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg := h.prepare(ctx, request)
	cfg.From = request.GetInt("from", 0)
	cfg.To = request.GetInt("to", 0)

	if cfg.From < 0 || cfg.To < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("invalid velocity parameters: iteration range must not be negative (from %d, to %d)", cfg.From, cfg.To)), nil
	}
	if cfg.From > 0 && cfg.To > 0 && cfg.To < cfg.From {
		return mcp.NewToolResultError(fmt.Sprintf("invalid velocity parameters: to (%d) cannot be before from (%d)", cfg.To, cfg.From)), nil
	}

	result, err := core.GetVelocityResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("velocity failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleGetSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg := h.prepare(ctx, request)

	summary, err := core.GetSummaryResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summary failed: %v", err)), nil
	}
	return jsonResult(summary)
}

func (h *toolHandler) handleListFeatures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg := h.prepare(ctx, request)
	cfg.Filter = schema.FeatureFilter{
		Search:    strings.TrimSpace(request.GetString("search", "")),
		Category:  strings.TrimSpace(request.GetString("category", "")),
		Status:    strings.TrimSpace(request.GetString("status", "")),
		Iteration: strings.TrimSpace(request.GetString("iteration", "")),
		Assignee:  strings.TrimSpace(request.GetString("assignee", "")),
	}

	features, err := core.GetFeatureResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing features failed: %v", err)), nil
	}
	return jsonResult(features)
}

func (h *toolHandler) handlePreviewMapping(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg := h.prepare(ctx, request)
	text := request.GetString("tsv", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("tsv is required"), nil
	}

	report, err := core.GetMappingResults(ctx, cfg, h.mgr, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("mapping failed: %v", err)), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleImportTSV(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg := h.prepare(ctx, request)
	text := request.GetString("tsv", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("tsv is required"), nil
	}
	cfg.Confirm = request.GetBool("confirm", false)
	source := request.GetString("source_name", "mcp")
	corrections, err := core.ParseCorrections(request.GetString("corrections", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid corrections: %v", err)), nil
	}

	summary, err := core.RunImport(ctx, cfg, h.mgr, text, source, corrections...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("import failed: %v", err)), nil
	}
	return jsonResult(summary)
}

func (h *toolHandler) handleGetSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg := h.prepare(ctx, request)

	s, err := core.GetSettingsResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading settings failed: %v", err)), nil
	}
	return jsonResult(s)
}

func (h *toolHandler) handleSetIterations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg := h.prepare(ctx, request)
	text := request.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	iterations, err := core.SetIterations(ctx, cfg, h.mgr, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid iterations: %v", err)), nil
	}
	return jsonResult(iterations)
}
