package schema

import "time"

// CacheStatus describes the report cache: how many reports it holds and how old they are.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// AnalysisStatus describes the run history. Totals are summed over every recorded run.
type AnalysisStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalCommits  int              `json:"total_commits"`
	TotalFiles    int              `json:"total_files"`
	TotalAuthors  int              `json:"total_authors"`
	TotalWarnings int              `json:"total_warnings"`
	TableSizes    map[string]int64 `json:"table_sizes"` // Row counts per table
}
