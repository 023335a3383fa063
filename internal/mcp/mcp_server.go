// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/gitspark/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// rangeOptions are the arguments every analysis tool accepts.
func rangeOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to the configured repository).")),
		mcp.WithString("branch", mcp.Description("Branch or ref to analyze (defaults to HEAD).")),
		mcp.WithString("path_filter", mcp.Description("Optional pathspec limiting the analysis to part of the tree.")),
		mcp.WithString("since", mcp.Description("Start of the window: ISO8601, YYYY-MM-DD or 'N units ago'.")),
		mcp.WithString("until", mcp.Description("End of the window: ISO8601, YYYY-MM-DD or 'N units ago'.")),
	}
}

func newTool(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := append([]mcp.ToolOption{mcp.WithDescription(description)}, rangeOptions()...)
	return mcp.NewTool(name, append(opts, extra...)...)
}

// NewMCPServer initializes and configures the gitspark MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) *server.MCPServer {
	version := baseCfg.Options.ToolVersion
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"gitspark Analysis Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
		mgr:     mgr,
	}

	s.AddTool(newTool("analyze_repository",
		"Analyze git history and return the full report: repository totals, authors, files, hotspots, risk, governance, team score and daily trends.",
		mcp.WithNumber("max_hotspots", mcp.Description("Number of hotspots to surface (0 means all).")),
	), h.handleAnalyzeRepository)

	s.AddTool(newTool("get_hotspots",
		"Return the files that deserve attention, ranked by hotspot score with their risk factors.",
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetHotspots)

	s.AddTool(newTool("get_authors",
		"Return per-author commit statistics ranked by commit count.",
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetAuthors)

	s.AddTool(newTool("get_daily_trends",
		"Return one row per calendar day of flow, stability, ownership, coupling and hygiene metrics plus a contributions graph.",
	), h.handleGetDailyTrends)

	s.AddTool(newTool("get_team_score",
		"Return the team score with collaboration, consistency, quality and work-life timing metrics and their limitations.",
	), h.handleGetTeamScore)

	s.AddTool(newTool("get_governance",
		"Return commit message pattern counts and ratios.",
	), h.handleGetGovernance)

	s.AddTool(newTool("check_risk",
		"Gate on risk: report every surfaced hotspot whose risk score is at or above max_risk.",
		mcp.WithNumber("max_risk", mcp.Description("Risk ceiling between 0 and 1 (defaults to the configured value).")),
	), h.handleCheckRisk)

	return s
}

// StartMCPServer starts the gitspark MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, contract.NewLocalGitClient(), mgr)
	return server.ServeStdio(s)
}
