package cmd

import (
	"github.com/huangsam/gitspark/core"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [repo-path]",
	Short: "Fail when a surfaced hotspot reaches the risk ceiling (for CI/CD pipelines).",
	Long: `Analyze the configured window and enforce a risk ceiling on the surfaced hotspots.

Designed for CI/CD integration: exits with a non-zero code when any hotspot
has a risk score at or above --max-risk. Only the top --max-hotspots files
are checked.

Default ceiling: 0.7 (the start of the high risk band)

Examples:
  # Gate on the default ceiling over the last 90 days
  gitspark check --lookback "90 days"

  # Stricter ceiling on the top 25 hotspots
  gitspark check --max-risk 0.5 --max-hotspots 25

  # Machine-readable result
  gitspark check --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE:    runView(core.ExecuteCheck),
}
