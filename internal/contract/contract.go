// Package contract provides interfaces and shared utilities for gitspark's internal architecture.
package contract

import (
	"context"
	"io"
	"time"

	"github.com/huangsam/gitspark/schema"
)

// GitClient defines the Git operations the collector and the CLI need.
// This allows the analysis to be tested without a real git executable.
type GitClient interface {
	// Run executes a git command and returns its stdout.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// Stream executes a git command and copies its stdout to w as it is produced.
	Stream(ctx context.Context, repoPath string, w io.Writer, args ...string) error

	// GetRepoHash returns the commit hash of the given ref, or HEAD when ref is empty.
	GetRepoHash(ctx context.Context, repoPath string, ref string) (string, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)
}

// CacheManager defines the interface for managing the report cache and analysis stores.
// This allows the persistence layer to be mocked for testing.
type CacheManager interface {
	GetReportStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for report cache storage.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and their snapshots.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(runID string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, summary schema.AnalysisRunSummary) error

	// RecordFileStats stores the per-file snapshot of a run
	RecordFileStats(analysisID int64, records []schema.FileStatsRecord) error

	// RecordAuthorStats stores the per-author snapshot of a run
	RecordAuthorStats(analysisID int64, records []schema.AuthorStatsRecord) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every recorded run ordered by ID
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllFileStats returns every per-file snapshot ordered by run and path
	GetAllFileStats() ([]schema.FileStatsRecord, error)

	// GetAllAuthorStats returns every per-author snapshot ordered by run and email
	GetAllAuthorStats() ([]schema.AuthorStatsRecord, error)

	// Close closes the underlying connection
	Close() error
}
