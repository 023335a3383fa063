// Package parquet provides data structures and functions for exporting gitspark
// reports and tracked analysis runs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/gitspark/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single tracked analysis run with metadata.
// This struct maps to the gitspark_analysis_runs database table.
type AnalysisRun struct {
	// AnalysisID is the unique identifier for this analysis run
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// RunID is the UUID assigned when the run began
	RunID string `parquet:"run_id,snappy"`

	// StartTime is when the analysis began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the analysis completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the analysis run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalCommits is the number of normalized commits in this run
	TotalCommits int32 `parquet:"total_commits,snappy"`

	// TotalFilesAnalyzed is the number of files aggregated in this run
	TotalFilesAnalyzed int32 `parquet:"total_files_analyzed,snappy"`

	// TotalAuthors is the number of distinct authors in this run
	TotalAuthors int32 `parquet:"total_authors,snappy"`

	// WarningCount is the number of data-quality warnings raised
	WarningCount int32 `parquet:"warning_count,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// FileSnapshot is the per-file snapshot of a tracked run.
// This struct maps to the gitspark_file_stats database table.
type FileSnapshot struct {
	AnalysisID   int64     `parquet:"analysis_id,snappy"`
	FilePath     string    `parquet:"file_path,snappy"`
	AnalysisTime time.Time `parquet:"analysis_time,snappy"`
	Commits      int32     `parquet:"commits,snappy"`
	Churn        int32     `parquet:"churn,snappy"`
	AuthorCount  int32     `parquet:"author_count,snappy"`
	TopOwner     *string   `parquet:"top_owner,optional,snappy"`
	Language     string    `parquet:"language,snappy,dict"`
	RiskScore    float64   `parquet:"risk_score,snappy"`
	HotspotScore float64   `parquet:"hotspot_score,snappy"`
	RiskBand     string    `parquet:"risk_band,snappy,dict"`
}

// AuthorSnapshot is the per-author snapshot of a tracked run.
// This struct maps to the gitspark_author_stats database table.
type AuthorSnapshot struct {
	AnalysisID        int64     `parquet:"analysis_id,snappy"`
	Email             string    `parquet:"email,snappy"`
	Name              string    `parquet:"name,snappy"`
	AnalysisTime      time.Time `parquet:"analysis_time,snappy"`
	Commits           int32     `parquet:"commits,snappy"`
	Churn             int32     `parquet:"churn,snappy"`
	ActiveDays        int32     `parquet:"active_days,snappy"`
	FilesChanged      int32     `parquet:"files_changed,snappy"`
	AfterHoursCommits int32     `parquet:"after_hours_commits,snappy"`
	WeekendCommits    int32     `parquet:"weekend_commits,snappy"`
}

// FileRow is one file of a report, flattened for columnar output.
type FileRow struct {
	Path         string    `parquet:"path,snappy"`
	Language     string    `parquet:"language,snappy,dict"`
	Commits      int64     `parquet:"commits,snappy"`
	Authors      int64     `parquet:"authors,snappy"`
	Insertions   int64     `parquet:"insertions,snappy"`
	Deletions    int64     `parquet:"deletions,snappy"`
	Churn        int64     `parquet:"churn,snappy"`
	NetLines     int64     `parquet:"net_lines,snappy"`
	CoChanges    int64     `parquet:"co_changes,snappy"`
	FirstChange  time.Time `parquet:"first_change,snappy"`
	LastChange   time.Time `parquet:"last_change,snappy"`
	Deleted      bool      `parquet:"deleted,snappy"`
	RiskScore    float64   `parquet:"risk_score,snappy"`
	HotspotScore float64   `parquet:"hotspot_score,snappy"`
	RiskBand     string    `parquet:"risk_band,snappy,dict"`
}

// AuthorRow is one author of a report, flattened for columnar output.
type AuthorRow struct {
	Email             string    `parquet:"email,snappy"`
	Name              string    `parquet:"name,snappy"`
	Commits           int64     `parquet:"commits,snappy"`
	Insertions        int64     `parquet:"insertions,snappy"`
	Deletions         int64     `parquet:"deletions,snappy"`
	Churn             int64     `parquet:"churn,snappy"`
	FilesChanged      int64     `parquet:"files_changed,snappy"`
	FirstCommit       time.Time `parquet:"first_commit,snappy"`
	LastCommit        time.Time `parquet:"last_commit,snappy"`
	ActiveDays        int64     `parquet:"active_days,snappy"`
	AvgCommitSize     float64   `parquet:"avg_commit_size,snappy"`
	LargestCommit     int64     `parquet:"largest_commit,snappy"`
	AfterHoursCommits int64     `parquet:"after_hours_commits,snappy"`
	WeekendCommits    int64     `parquet:"weekend_commits,snappy"`
}

// DailyRow joins every daily trend family for one calendar day.
type DailyRow struct {
	Date                string  `parquet:"date,snappy"`
	Commits             int64   `parquet:"commits,snappy"`
	Authors             int64   `parquet:"authors,snappy"`
	Insertions          int64   `parquet:"insertions,snappy"`
	Deletions           int64   `parquet:"deletions,snappy"`
	Churn               int64   `parquet:"churn,snappy"`
	Files               int64   `parquet:"files,snappy"`
	P50CommitSize       float64 `parquet:"p50_commit_size,snappy"`
	P90CommitSize       float64 `parquet:"p90_commit_size,snappy"`
	Reverts             int64   `parquet:"reverts,snappy"`
	Merges              int64   `parquet:"merges,snappy"`
	RetouchedFiles      int64   `parquet:"retouched_files,snappy"`
	RetouchRate         float64 `parquet:"retouch_rate,snappy"`
	Renames             int64   `parquet:"renames,snappy"`
	OutOfHoursShare     float64 `parquet:"out_of_hours_share,snappy"`
	NewFiles            int64   `parquet:"new_files,snappy"`
	SingleOwnerShare    float64 `parquet:"single_owner_share,snappy"`
	AvgAuthorsPerFile   float64 `parquet:"avg_authors_per_file,snappy"`
	MultiFileCommits    int64   `parquet:"multi_file_commits,snappy"`
	CoChangePairs       int64   `parquet:"co_change_pairs,snappy"`
	CoChangeDensity     float64 `parquet:"co_change_density,snappy"`
	MedianMessageLength float64 `parquet:"median_message_length,snappy"`
	ShortMessages       int64   `parquet:"short_messages,snappy"`
	ConventionalCommits int64   `parquet:"conventional_commits,snappy"`
}

// writeRows writes rows of any struct type to a new Parquet file at outputPath.
// The schema is derived from the struct tags of T.
func writeRows[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteAnalysisRunsParquet writes tracked runs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteFileSnapshotsParquet writes per-file run snapshots to a Parquet file.
func WriteFileSnapshotsParquet(data []FileSnapshot, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteAuthorSnapshotsParquet writes per-author run snapshots to a Parquet file.
func WriteAuthorSnapshotsParquet(data []AuthorSnapshot, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteFilesParquet writes report files to a Parquet file.
func WriteFilesParquet(data []FileRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteAuthorsParquet writes report authors to a Parquet file.
func WriteAuthorsParquet(data []AuthorRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteDailyParquet writes daily trend rows to a Parquet file.
func WriteDailyParquet(data []DailyRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteReportParquet writes the files, authors and daily tables of a report
// next to each other using prefix as the base path. It returns the paths written.
func WriteReportParquet(report *schema.AnalysisReport, prefix string) ([]string, error) {
	if prefix == "" {
		return nil, fmt.Errorf("an output file prefix is required for parquet output")
	}
	paths := []string{
		prefix + ".files.parquet",
		prefix + ".authors.parquet",
		prefix + ".daily.parquet",
	}
	if err := WriteFilesParquet(ConvertFiles(report.Files), paths[0]); err != nil {
		return nil, fmt.Errorf("failed to write files: %w", err)
	}
	if err := WriteAuthorsParquet(ConvertAuthors(report.Authors), paths[1]); err != nil {
		return nil, fmt.Errorf("failed to write authors: %w", err)
	}
	if err := WriteDailyParquet(ConvertDailyTrends(report.DailyTrends), paths[2]); err != nil {
		return nil, fmt.Errorf("failed to write daily trends: %w", err)
	}
	return paths, nil
}

// ConvertAnalysisRunRecords converts store records to Parquet rows.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, r := range records {
		result[i] = AnalysisRun{
			AnalysisID:         r.AnalysisID,
			RunID:              r.RunID,
			StartTime:          r.StartTime,
			EndTime:            r.EndTime,
			RunDurationMs:      r.RunDurationMs,
			TotalCommits:       r.TotalCommits,
			TotalFilesAnalyzed: r.TotalFilesAnalyzed,
			TotalAuthors:       r.TotalAuthors,
			WarningCount:       r.WarningCount,
			ConfigParams:       r.ConfigParams,
		}
	}
	return result
}

// ConvertFileStatsRecords converts store records to Parquet rows.
func ConvertFileStatsRecords(records []schema.FileStatsRecord) []FileSnapshot {
	result := make([]FileSnapshot, len(records))
	for i, r := range records {
		result[i] = FileSnapshot{
			AnalysisID:   r.AnalysisID,
			FilePath:     r.FilePath,
			AnalysisTime: r.AnalysisTime,
			Commits:      r.Commits,
			Churn:        r.Churn,
			AuthorCount:  r.AuthorCount,
			TopOwner:     r.TopOwner,
			Language:     r.Language,
			RiskScore:    r.RiskScore,
			HotspotScore: r.HotspotScore,
			RiskBand:     r.RiskBand,
		}
	}
	return result
}

// ConvertAuthorStatsRecords converts store records to Parquet rows.
func ConvertAuthorStatsRecords(records []schema.AuthorStatsRecord) []AuthorSnapshot {
	result := make([]AuthorSnapshot, len(records))
	for i, r := range records {
		result[i] = AuthorSnapshot{
			AnalysisID:        r.AnalysisID,
			Email:             r.Email,
			Name:              r.Name,
			AnalysisTime:      r.AnalysisTime,
			Commits:           r.Commits,
			Churn:             r.Churn,
			ActiveDays:        r.ActiveDays,
			FilesChanged:      r.FilesChanged,
			AfterHoursCommits: r.AfterHoursCommits,
			WeekendCommits:    r.WeekendCommits,
		}
	}
	return result
}

// ConvertFiles flattens report files.
func ConvertFiles(files []schema.FileStats) []FileRow {
	result := make([]FileRow, len(files))
	for i, f := range files {
		result[i] = FileRow{
			Path:         f.Path,
			Language:     f.Language,
			Commits:      int64(f.Commits),
			Authors:      int64(len(f.Authors)),
			Insertions:   int64(f.Insertions),
			Deletions:    int64(f.Deletions),
			Churn:        int64(f.Churn),
			NetLines:     int64(f.NetLines),
			CoChanges:    int64(f.CoChanges),
			FirstChange:  f.FirstChange,
			LastChange:   f.LastChange,
			Deleted:      f.Deleted,
			RiskScore:    f.RiskScore,
			HotspotScore: f.HotspotScore,
			RiskBand:     string(schema.GetRiskBand(f.RiskScore)),
		}
	}
	return result
}

// ConvertAuthors flattens report authors.
func ConvertAuthors(authors []schema.AuthorStats) []AuthorRow {
	result := make([]AuthorRow, len(authors))
	for i, a := range authors {
		result[i] = AuthorRow{
			Email:             a.Email,
			Name:              a.Name,
			Commits:           int64(a.Commits),
			Insertions:        int64(a.Insertions),
			Deletions:         int64(a.Deletions),
			Churn:             int64(a.Churn),
			FilesChanged:      int64(a.FilesChanged),
			FirstCommit:       a.FirstCommit,
			LastCommit:        a.LastCommit,
			ActiveDays:        int64(a.ActiveDays),
			AvgCommitSize:     a.AvgCommitSize,
			LargestCommit:     int64(a.LargestCommit),
			AfterHoursCommits: int64(a.AfterHoursCommits),
			WeekendCommits:    int64(a.WeekendCommits),
		}
	}
	return result
}

// ConvertDailyTrends joins the daily families by position.
// Every family carries one row per day of the same window, so index i is the same date in all of them.
func ConvertDailyTrends(trends schema.DailyTrendsData) []DailyRow {
	result := make([]DailyRow, len(trends.Flow))
	for i, f := range trends.Flow {
		row := DailyRow{
			Date:          f.Date,
			Commits:       int64(f.Commits),
			Authors:       int64(f.Authors),
			Insertions:    int64(f.Insertions),
			Deletions:     int64(f.Deletions),
			Churn:         int64(f.Churn),
			Files:         int64(f.Files),
			P50CommitSize: f.P50CommitSize,
			P90CommitSize: f.P90CommitSize,
		}
		if i < len(trends.Stability) {
			s := trends.Stability[i]
			row.Reverts = int64(s.Reverts)
			row.Merges = int64(s.Merges)
			row.RetouchedFiles = int64(s.RetouchedFiles)
			row.RetouchRate = s.RetouchRate
			row.Renames = int64(s.Renames)
			row.OutOfHoursShare = s.OutOfHoursShare
		}
		if i < len(trends.Ownership) {
			o := trends.Ownership[i]
			row.NewFiles = int64(o.NewFiles)
			row.SingleOwnerShare = o.SingleOwnerShare
			row.AvgAuthorsPerFile = o.AvgAuthorsPerFile
		}
		if i < len(trends.Coupling) {
			c := trends.Coupling[i]
			row.MultiFileCommits = int64(c.MultiFileCommits)
			row.CoChangePairs = int64(c.CoChangePairs)
			row.CoChangeDensity = c.CoChangeDensity
		}
		if i < len(trends.Hygiene) {
			h := trends.Hygiene[i]
			row.MedianMessageLength = h.MedianMessageLength
			row.ShortMessages = int64(h.ShortMessages)
			row.ConventionalCommits = int64(h.ConventionalCommits)
		}
		result[i] = row
	}
	return result
}
