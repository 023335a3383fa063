package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/internal/parquet"
)

// ExecuteAnalysisExport writes every tracked run and its snapshots to Parquet files
// named after outputFile.
func ExecuteAnalysisExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	return exportAnalysis(Manager.GetAnalysisStore(), outputFile)
}

func exportAnalysis(store contract.AnalysisStore, outputFile string) error {
	if store == nil {
		return errors.New("analysis tracking is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total analysis runs: %d\n", status.TotalRuns)

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	files, err := store.GetAllFileStats()
	if err != nil {
		return fmt.Errorf("failed to retrieve file stats: %w", err)
	}
	authors, err := store.GetAllAuthorStats()
	if err != nil {
		return fmt.Errorf("failed to retrieve author stats: %w", err)
	}

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquet.ConvertAnalysisRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	fmt.Printf("Exported %d analysis runs to: %s\n", len(runs), runsFile)

	filesFile := outputFile + ".file_stats.parquet"
	if err := parquet.WriteFileSnapshotsParquet(parquet.ConvertFileStatsRecords(files), filesFile); err != nil {
		return fmt.Errorf("failed to write file stats: %w", err)
	}
	fmt.Printf("Exported %d file records to: %s\n", len(files), filesFile)

	authorsFile := outputFile + ".author_stats.parquet"
	if err := parquet.WriteAuthorSnapshotsParquet(parquet.ConvertAuthorStatsRecords(authors), authorsFile); err != nil {
		return fmt.Errorf("failed to write author stats: %w", err)
	}
	fmt.Printf("Exported %d author records to: %s\n", len(authors), authorsFile)

	return nil
}
