package core

import (
	"math"

	"github.com/huangsam/gitspark/core/algo"
	"github.com/huangsam/gitspark/core/risk"
	"github.com/huangsam/gitspark/core/team"
	"github.com/huangsam/gitspark/schema"
)

// assembly holds the finalized outputs of every aggregator.
type assembly struct {
	opts        schema.AnalysisOptions
	warnings    []string
	fingerprint string
	sizes       []float64
	authors     []schema.AuthorStats
	files       []schema.FileStats
	repo        schema.RepositoryStats
	governance  schema.GovernanceResult
	team        *team.Tracker
	trends      schema.DailyTrendsData
}

// assemble composes the final report. It reads its inputs and never mutates them.
func assemble(a assembly) *schema.AnalysisReport {
	opts := a.opts
	weights := opts.RiskWeights

	riskCtx := risk.NewContext(a.files, opts.Until, opts.RecencyHalfLife)
	files := risk.ScoreFiles(a.files, riskCtx, weights)
	algo.SortFiles(files)

	authors := make([]schema.AuthorStats, len(a.authors))
	copy(authors, a.authors)
	algo.SortAuthors(authors)

	teamScore := team.Score(a.team, authors, files, opts.BusFactorTarget)

	repo := a.repo
	repo.BusFactor = teamScore.Consistency.BusFactor
	repo.GovernanceScore = a.governance.Score
	repo.ActivityIndex = ActivityIndex(repo.AvgCommitsPerDay, repo.TotalAuthors, repo.TotalCommits, a.sizes)

	riskSummary := risk.Summarize(files, weights)

	warnings := make([]string, len(a.warnings))
	copy(warnings, a.warnings)

	toolVersion := opts.ToolVersion
	if toolVersion == "" {
		toolVersion = schema.DefaultToolVersion
	}

	return &schema.AnalysisReport{
		Metadata: schema.ReportMetadata{
			GeneratedAt:      opts.GeneratedAt,
			ToolVersion:      toolVersion,
			Options:          opts,
			Warnings:         warnings,
			InputFingerprint: a.fingerprint,
		},
		Repository:  repo,
		Authors:     authors,
		Files:       files,
		Hotspots:    risk.Hotspots(files, riskCtx, hotspotLimit(opts.MaxHotspots)),
		Risk:        riskSummary,
		Governance:  a.governance,
		Team:        teamScore,
		DailyTrends: a.trends,
		Summary: schema.Summary{
			ActivityIndex:  repo.ActivityIndex,
			ActivityRating: schema.GetActivityRating(repo.ActivityIndex),
			KeyMetrics:     keyMetrics(repo, a.governance, teamScore, riskSummary, a.trends),
		},
	}
}

// ActivityIndex is the unweighted mean of three [0,1] signals: commit
// frequency, author participation and commit size consistency. It describes
// activity only and is 0 when there are no commits.
func ActivityIndex(commitsPerDay float64, authors, commits int, commitSizes []float64) float64 {
	if commits == 0 {
		return 0
	}
	frequency := math.Min(commitsPerDay/5, 1)
	participation := math.Min(float64(authors)/math.Max(float64(commits)/20, 1), 1)
	consistency := 1 - algo.Clamp01(algo.CoefficientOfVariation(commitSizes))
	return algo.Clamp01((frequency + participation + consistency) / 3)
}

// keyMetrics flattens the headline numbers into a single map.
func keyMetrics(repo schema.RepositoryStats, gov schema.GovernanceResult, ts schema.TeamScore, rs schema.RiskSummary, daily schema.DailyTrendsData) map[string]float64 {
	return map[string]float64{
		"total_commits":        float64(repo.TotalCommits),
		"total_authors":        float64(repo.TotalAuthors),
		"total_files":          float64(repo.TotalFiles),
		"total_churn":          float64(repo.TotalChurn),
		"active_days":          float64(repo.ActiveDays),
		"avg_commits_per_day":  repo.AvgCommitsPerDay,
		"bus_factor":           float64(repo.BusFactor),
		"gini_coefficient":     ts.Consistency.GiniCoefficient,
		"team_overall":         ts.Overall,
		"governance_score":     gov.Score,
		"conventional_ratio":   gov.ConventionalRatio,
		"average_risk":         rs.AverageRisk,
		"max_risk":             rs.MaxRisk,
		"high_risk_files":      float64(rs.BandCounts[schema.RiskHigh]),
		"trend_days":           float64(daily.Metadata.TotalDays),
		"trend_active_days":    float64(daily.Metadata.ActiveDays),
		"after_hours_share":    ts.WorkLife.AfterHoursShare,
		"weekend_share":        ts.WorkLife.WeekendShare,
		"specialization_score": ts.Collaboration.SpecializationScore,
	}
}
