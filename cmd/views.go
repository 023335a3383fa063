package cmd

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/huangsam/gitspark/core"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// terminalSpinner shows progress on stderr while an analysis runs. It is inert when stderr is not a TTY.
type terminalSpinner struct {
	s *spinner.Spinner
}

func newTerminalSpinner(message string) *terminalSpinner {
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return &terminalSpinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	return &terminalSpinner{s: s}
}

// Start begins the spinner animation.
func (t *terminalSpinner) Start() {
	if t.s != nil {
		t.s.Start()
	}
}

// Stop ends the spinner animation.
func (t *terminalSpinner) Stop() {
	if t.s != nil {
		t.s.Stop()
	}
}

// runView adapts a core executor to a cobra RunE with a progress spinner.
func runView(executor core.ExecutorFunc) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := core.WithProgress(rootCtx, newTerminalSpinner("Analyzing "+cfg.RepoPath))
		return executor(ctx, cfg, cacheManager)
	}
}

// analyzeCmd prints the full report.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [repo-path]",
	Short: "Print the full analysis report for a repository.",
	Long: `Read the commit history and print every metric family in one report.

The report contains:
- Repository totals, language breakdown and bus factor
- Top hotspots with their risk scores and bands
- Top authors by commit count
- Governance score and activity index
- Warnings raised while normalizing commits

Use --output json or yaml to get the complete machine-readable report,
including team metrics and daily trends.

Examples:
  # Analyze the last six months of the current repository
  gitspark analyze --lookback "6 months"

  # Analyze a release window on a branch
  gitspark analyze ../service --branch main --since 2024-01-01 --until 2024-06-30

  # Export the full report as JSON
  gitspark analyze --output json --output-file report.json

  # Export files, authors and daily rows to Parquet
  gitspark analyze --output parquet --output-file report`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE:    runView(core.ExecuteAnalyze),
}

// authorsCmd prints per-author statistics.
var authorsCmd = &cobra.Command{
	Use:   "authors [repo-path]",
	Short: "Show per-author commit statistics.",
	Long: `Rank authors by commit count and show their churn, active days and timing.

Authors are identified by case-folded email. Co-authors credited through
Co-authored-by trailers receive day coverage but no commit credit.

Examples:
  gitspark authors
  gitspark authors --since "3 months ago" --output csv --output-file authors.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE:    runView(core.ExecuteAuthors),
}

// filesCmd prints the hotspot ranking.
var filesCmd = &cobra.Command{
	Use:   "files [repo-path]",
	Short: "Show the top files ranked by hotspot score.",
	Long: `Rank files by hotspot score and break their risk down by factor.

Risk blends churn, recency, ownership concentration, coupling and size.
A hotspot is a file that deserves attention, not a defect.

Examples:
  gitspark files --max-hotspots 20
  gitspark files --filter src/ --exclude "**/*_test.go"
  gitspark files --output markdown --output-file hotspots.md`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE:    runView(core.ExecuteFiles),
}

// teamCmd prints the team score.
var teamCmd = &cobra.Command{
	Use:   "team [repo-path]",
	Short: "Show collaboration, consistency, quality and work-life metrics.",
	Long: `Compute the team score from commit history alone.

Every metric family carries its data source and caveats. Commit timing is
not working time, and pattern counts say nothing about code quality.

Examples:
  gitspark team
  gitspark team --business-start 9 --business-end 17 --author-timezone Europe/Berlin`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE:    runView(core.ExecuteTeam),
}

// trendsCmd prints the daily trends.
var trendsCmd = &cobra.Command{
	Use:   "trends [repo-path]",
	Short: "Show one row per calendar day of flow, stability, ownership, coupling and hygiene.",
	Long: `Bucket commits into calendar days in the trends timezone.

Days without commits are included so every family is contiguous.

Examples:
  gitspark trends --since "30 days ago"
  gitspark trends --timezone UTC --output csv --output-file daily.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE:    runView(core.ExecuteTrends),
}

// governanceCmd prints commit message governance.
var governanceCmd = &cobra.Command{
	Use:   "governance [repo-path]",
	Short: "Show commit message pattern counts and ratios.",
	Long: `Classify commit messages: conventional types, issue references,
short messages, WIP, reverts and commit sizes.

Examples:
  gitspark governance
  gitspark governance --short-message 20 --large-commit 1000`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE:    runView(core.ExecuteGovernance),
}
