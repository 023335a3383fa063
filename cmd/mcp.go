package cmd

import (
	"github.com/huangsam/gitspark/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the gitspark MCP server",
	Long: `Launch a Model Context Protocol server on stdio so AI agents can run gitspark analyses as tools.

Tools: analyze_repository, get_hotspots, get_authors, get_daily_trends,
get_team_score, get_governance, check_risk.

The repository and options given here are the defaults for every tool call.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
