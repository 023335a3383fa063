package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/gitspark/internal/collector"
	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/schema"
	"github.com/sirupsen/logrus"
)

// noCommitsWarning is attached to reports whose range holds no commits.
const noCommitsWarning = "no commits found in the requested range"

// RunAnalysis produces the report for cfg, serving it from the report cache
// when the repository and options are unchanged.
func RunAnalysis(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) (*schema.AnalysisReport, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetReportStore()
	}
	if store == nil {
		return analyzeRepository(ctx, cfg, client, mgr)
	}

	key := generateCacheKey(ctx, cfg, client)
	if report := checkCacheHit(store, key); report != nil {
		contract.LogDebug("Report cache hit", logrus.Fields{"repo": cfg.RepoPath})
		return report, nil
	}
	return computeAndStore(ctx, cfg, client, mgr, store, key)
}

// analyzeRepository streams the git history through a fresh pipeline and
// records the run in the analysis store when one is configured.
func analyzeRepository(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) (*schema.AnalysisReport, error) {
	opts := cfg.Options
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}

	pipeline, err := NewPipeline(opts)
	if err != nil {
		return nil, err
	}

	tracker := beginTracking(cfg, mgr)

	req := collector.Request{
		RepoPath:   cfg.RepoPath,
		Branch:     cfg.Branch,
		PathFilter: cfg.PathFilter,
		Since:      opts.Since,
		Until:      opts.Until,
	}
	contract.LogInfo("Collecting commit history", logrus.Fields{"repo": cfg.RepoPath, "branch": cfg.Branch})
	err = collector.Collect(ctx, client, req, func(raw schema.RawCommit) error {
		return pipeline.Add(ctx, raw)
	})
	if err != nil {
		return nil, fmt.Errorf("collecting history for %s: %w", cfg.RepoPath, err)
	}
	empty := pipeline.Commits() == 0

	report, err := pipeline.Finalize()
	if err != nil {
		return nil, err
	}
	if empty {
		report.Metadata.Warnings = append(report.Metadata.Warnings, noCommitsWarning)
	}
	for _, w := range report.Metadata.Warnings {
		contract.LogWarn("Analysis warning", errors.New(w))
	}

	tracker.finish(report)
	return report, nil
}

// runTracker records one analysis run. A zero tracker is a no-op.
type runTracker struct {
	store      contract.AnalysisStore
	analysisID int64
}

// beginTracking opens an analysis run. Tracking failures never fail the analysis.
func beginTracking(cfg *contract.Config, mgr contract.CacheManager) runTracker {
	if mgr == nil {
		return runTracker{}
	}
	store := mgr.GetAnalysisStore()
	if store == nil {
		return runTracker{}
	}

	opts := cfg.Options
	configParams := map[string]any{
		"repo_path":         cfg.RepoPath,
		"branch":            cfg.Branch,
		"path_filter":       cfg.PathFilter,
		"since":             formatOptionalTime(opts.Since),
		"until":             formatOptionalTime(opts.Until),
		"trends_timezone":   opts.TrendsTimezone,
		"bus_factor_target": opts.BusFactorTarget,
		"max_hotspots":      opts.MaxHotspots,
		"risk_weights":      opts.RiskWeights,
	}
	analysisID, err := store.BeginAnalysis(uuid.NewString(), time.Now(), configParams)
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return runTracker{}
	}
	return runTracker{store: store, analysisID: analysisID}
}

// finish stores the per-file and per-author snapshots and closes the run.
func (t runTracker) finish(report *schema.AnalysisReport) {
	if t.store == nil || t.analysisID <= 0 {
		return
	}
	now := time.Now()

	if err := t.store.RecordFileStats(t.analysisID, fileSnapshots(report.Files, now)); err != nil {
		logTrackingError("RecordFileStats", err)
	}
	if err := t.store.RecordAuthorStats(t.analysisID, authorSnapshots(report.Authors, now)); err != nil {
		logTrackingError("RecordAuthorStats", err)
	}

	summary := schema.AnalysisRunSummary{
		TotalCommits: report.Repository.TotalCommits,
		TotalFiles:   report.Repository.TotalFiles,
		TotalAuthors: report.Repository.TotalAuthors,
		WarningCount: len(report.Metadata.Warnings),
	}
	if err := t.store.EndAnalysis(t.analysisID, now, summary); err != nil {
		logTrackingError("EndAnalysis", err)
	}
}

// fileSnapshots converts scored files into analysis store rows.
func fileSnapshots(files []schema.FileStats, now time.Time) []schema.FileStatsRecord {
	records := make([]schema.FileStatsRecord, 0, len(files))
	for _, f := range files {
		var owner *string
		if top := schema.TopOwners(f.Ownership, 1); len(top) > 0 {
			owner = &top[0]
		}
		records = append(records, schema.FileStatsRecord{
			FilePath:     f.Path,
			AnalysisTime: now,
			Commits:      int32(f.Commits),
			Churn:        int32(f.Churn),
			AuthorCount:  int32(len(f.Authors)),
			TopOwner:     owner,
			Language:     f.Language,
			RiskScore:    f.RiskScore,
			HotspotScore: f.HotspotScore,
			RiskBand:     string(schema.GetRiskBand(f.RiskScore)),
		})
	}
	return records
}

// authorSnapshots converts author aggregates into analysis store rows.
func authorSnapshots(authors []schema.AuthorStats, now time.Time) []schema.AuthorStatsRecord {
	records := make([]schema.AuthorStatsRecord, 0, len(authors))
	for _, a := range authors {
		records = append(records, schema.AuthorStatsRecord{
			Email:             a.Email,
			Name:              a.Name,
			AnalysisTime:      now,
			Commits:           int32(a.Commits),
			Churn:             int32(a.Churn),
			ActiveDays:        int32(a.ActiveDays),
			FilesChanged:      int32(a.FilesChanged),
			AfterHoursCommits: int32(a.AfterHoursCommits),
			WeekendCommits:    int32(a.WeekendCommits),
		})
	}
	return records
}

// logTrackingError logs database tracking errors without disrupting analysis.
func logTrackingError(operation string, err error) {
	contract.LogWarn(fmt.Sprintf("Analysis tracking failed for %s", operation), err)
}

func formatOptionalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(contract.DateTimeFormat)
}
