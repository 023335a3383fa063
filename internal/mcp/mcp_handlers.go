package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/gitspark/core"
	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
	mgr     contract.CacheManager
}

// configFor clones the base config and applies the range arguments of a request.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	if b := request.GetString("branch", ""); b != "" {
		cfg.Branch = b
	}
	if f := request.GetString("path_filter", ""); f != "" {
		cfg.PathFilter = f
	}

	now := time.Now().Truncate(contract.CacheGranularity)
	if s := request.GetString("since", ""); s != "" {
		since, err := contract.ParseTimeInput(s, now, cfg.Options.AuthorLocation)
		if err != nil {
			return nil, fmt.Errorf("since: %w", err)
		}
		cfg.Options.Since = since
	}
	if u := request.GetString("until", ""); u != "" {
		until, err := contract.ParseTimeInput(u, now, cfg.Options.AuthorLocation)
		if err != nil {
			return nil, fmt.Errorf("until: %w", err)
		}
		cfg.Options.Until = until
	}
	if !cfg.Options.Since.IsZero() && !cfg.Options.Until.IsZero() && cfg.Options.Since.After(cfg.Options.Until) {
		return nil, fmt.Errorf("since (%s) cannot be after until (%s)",
			cfg.Options.Since.Format(contract.DateTimeFormat), cfg.Options.Until.Format(contract.DateTimeFormat))
	}
	return cfg, nil
}

// limitArg reads a non-negative limit where 0 means no limit.
func limitArg(request mcp.CallToolRequest) (int, error) {
	limit := request.GetInt("limit", 0)
	if limit < 0 {
		return 0, fmt.Errorf("limit must be non-negative, got %d", limit)
	}
	return limit, nil
}

// analyze runs the shared analysis for a request.
func (h *toolHandler) analyze(ctx context.Context, cfg *contract.Config) (*schema.AnalysisReport, *mcp.CallToolResult) {
	report, err := core.RunAnalysis(ctx, cfg, h.client, h.mgr)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err))
	}
	return report, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func limitSlice[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func (h *toolHandler) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if m := request.GetInt("max_hotspots", -1); m >= 0 {
		cfg.Options.MaxHotspots = m
	}

	report, errResult := h.analyze(ctx, cfg)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(report), nil
}

func (h *toolHandler) handleGetHotspots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	limit, err := limitArg(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	report, errResult := h.analyze(ctx, cfg)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(limitSlice(report.Hotspots, limit)), nil
}

func (h *toolHandler) handleGetAuthors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	limit, err := limitArg(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	report, errResult := h.analyze(ctx, cfg)
	if errResult != nil {
		return errResult, nil
	}
	enriched := schema.EnrichAuthors(report.Authors, report.Repository.TotalCommits)
	return jsonResult(limitSlice(enriched, limit)), nil
}

func (h *toolHandler) handleGetDailyTrends(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	report, errResult := h.analyze(ctx, cfg)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(report.DailyTrends), nil
}

func (h *toolHandler) handleGetTeamScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	report, errResult := h.analyze(ctx, cfg)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(report.Team), nil
}

func (h *toolHandler) handleGetGovernance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	report, errResult := h.analyze(ctx, cfg)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(report.Governance), nil
}

func (h *toolHandler) handleCheckRisk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	maxRisk := request.GetFloat("max_risk", cfg.MaxRisk)
	if maxRisk < 0 || maxRisk > 1 {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: max_risk must be between 0 and 1, got %g", maxRisk)), nil
	}

	report, errResult := h.analyze(ctx, cfg)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(core.EvaluateCheck(report, maxRisk)), nil
}
