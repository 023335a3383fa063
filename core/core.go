// Package core turns a stream of commits into a single analysis report.
//
// The metrics pipeline (Pipeline, Analyze) is pure: it reads only its inputs
// and the options passed to it. The Execute* entrypoints wire that pipeline
// to git, the stores and the output writers.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/gitspark/core/normalize"
	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/internal/outwriter"
	"github.com/huangsam/gitspark/schema"
)

// ErrInvalidOptions is wrapped by every option validation failure.
var ErrInvalidOptions = errors.New("invalid analysis options")

// ErrMalformedCommit is wrapped by every MalformedCommitError.
var ErrMalformedCommit = normalize.ErrMalformedCommit

// MalformedCommitError identifies the commit and field that failed normalization.
type MalformedCommitError = normalize.MalformedCommitError

// ExecutorFunc defines the function signature for executing different analysis views.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// writeFunc renders one view of a finished report.
type writeFunc func(ow *outwriter.OutWriter, report *schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error

// ExecuteAnalyze runs the analysis and prints the full report.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeView(ctx, cfg, mgr, (*outwriter.OutWriter).WriteReport)
}

// ExecuteAuthors runs the analysis and prints the per-author view.
func ExecuteAuthors(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeView(ctx, cfg, mgr, (*outwriter.OutWriter).WriteAuthors)
}

// ExecuteFiles runs the analysis and prints the hotspot view.
func ExecuteFiles(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeView(ctx, cfg, mgr, (*outwriter.OutWriter).WriteFiles)
}

// ExecuteTeam runs the analysis and prints the team score.
func ExecuteTeam(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeView(ctx, cfg, mgr, (*outwriter.OutWriter).WriteTeam)
}

// ExecuteTrends runs the analysis and prints the daily trends.
func ExecuteTrends(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeView(ctx, cfg, mgr, (*outwriter.OutWriter).WriteTrends)
}

// ExecuteGovernance runs the analysis and prints the governance result.
func ExecuteGovernance(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeView(ctx, cfg, mgr, (*outwriter.OutWriter).WriteGovernance)
}

// executeView runs the shared analysis and hands the report to one writer.
func executeView(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, write writeFunc) error {
	return executeViewWith(ctx, cfg, contract.NewLocalGitClient(), mgr, write)
}

// executeViewWith is executeView with an explicit git client.
func executeViewWith(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, write writeFunc) error {
	start := time.Now()

	progress := progressFrom(ctx)
	progress.Start()
	report, err := RunAnalysis(ctx, cfg, client, mgr)
	progress.Stop()
	if err != nil {
		return err
	}
	return write(outwriter.NewOutWriter(), report, cfg, time.Since(start))
}
