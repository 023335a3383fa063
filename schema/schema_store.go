package schema

import "time"

// AnalysisRunRecord represents a row from the gitspark_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID         int64
	RunID              string
	StartTime          time.Time
	EndTime            *time.Time
	RunDurationMs      *int32
	TotalCommits       int32
	TotalFilesAnalyzed int32
	TotalAuthors       int32
	WarningCount       int32
	ConfigParams       *string
}

// AnalysisRunSummary is what gets recorded when an analysis run completes.
type AnalysisRunSummary struct {
	TotalCommits int
	TotalFiles   int
	TotalAuthors int
	WarningCount int
}

// FileStatsRecord represents a row from the gitspark_file_stats table.
type FileStatsRecord struct {
	AnalysisID   int64
	FilePath     string
	AnalysisTime time.Time
	Commits      int32
	Churn        int32
	AuthorCount  int32
	TopOwner     *string
	Language     string
	RiskScore    float64
	HotspotScore float64
	RiskBand     string
}

// AuthorStatsRecord represents a row from the gitspark_author_stats table.
type AuthorStatsRecord struct {
	AnalysisID        int64
	Email             string
	Name              string
	AnalysisTime      time.Time
	Commits           int32
	Churn             int32
	ActiveDays        int32
	FilesChanged      int32
	AfterHoursCommits int32
	WeekendCommits    int32
}
