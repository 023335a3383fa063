package cmd

import (
	"runtime"

	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/schema"
	"github.com/spf13/cobra"
)

// versionCmd prints build details and where gitspark keeps its state.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gitspark.",
	Long: `Display build details and local storage locations.

Shows the release version, commit and build date, the Go runtime, and the
SQLite files used when the cache or analysis backend is sqlite.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("gitspark %s (commit %s, built %s, %s)\n", version, commit, date, runtime.Version())
		cmd.Printf("  Percentiles:   %s interpolation\n", schema.PercentileMethod)
		cmd.Printf("  Cache DB:      %s\n", contract.GetCacheDBFilePath())
		cmd.Printf("  Analysis DB:   %s\n", contract.GetAnalysisDBFilePath())
	},
}
