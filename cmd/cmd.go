// Package cmd defines the command-line interface for gitspark.
package cmd

import (
	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(authorsCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(governanceCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.String("since", "", "Start of the window in ISO8601 or time ago (e.g. '3 months ago')")
	flags.String("until", "", "End of the window in ISO8601 or time ago")
	flags.String("lookback", "", "Window length ending at --until when --since is unset (e.g. '6 months')")
	flags.String("branch", "", "Branch or ref to analyze (default HEAD)")
	flags.StringP("filter", "f", "", "Restrict analysis to a path prefix")
	flags.String("exclude", "", "Comma-separated list of path prefixes or glob patterns to ignore")
	flags.String("author-timezone", "", "IANA timezone for author-local metrics (default: commit offset)")
	flags.String("timezone", schema.DefaultTrendsTimezone, "IANA timezone used to bucket daily trends")
	flags.Int("business-start", schema.DefaultBusinessStart, "First business hour (0-23)")
	flags.Int("business-end", schema.DefaultBusinessEnd, "End of business hours, exclusive (1-24)")
	flags.Int("retouch-window", schema.DefaultRetouchWindow, "Days within which a re-edit counts as a retouch")
	flags.Int("ownership-window", schema.DefaultOwnershipWindow, "Days of history used for recent ownership")
	flags.Float64("bus-factor-target", schema.DefaultBusFactorTarget, "Share of work the bus factor must cover")
	flags.Int("max-hotspots", schema.DefaultMaxHotspots, "Number of hotspots to surface (0 = all)")
	flags.Float64("recency-half-life", schema.DefaultRecencyHalfLife, "Half-life in days for recency decay")
	flags.Int("short-message", schema.DefaultShortMessage, "Subjects shorter than this count as short messages")
	flags.Int("large-commit", schema.DefaultLargeCommit, "Churn at or above which a commit is large")
	flags.Int("small-commit", schema.DefaultSmallCommit, "Churn at or below which a commit is small")
	flags.String("output", string(schema.TextOut), "Output format: text or json or yaml or csv or markdown or html or parquet")
	flags.String("output-file", "", "Optional path to write output to (prefix for parquet)")
	flags.Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns (1 or 2)")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	flags.String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	flags.String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	flags.String("config", "", "Path to config file")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().Float64("max-risk", contract.DefaultMaxRisk, "Fail when a surfaced hotspot has risk at or above this value")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
