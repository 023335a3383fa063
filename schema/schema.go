// Package schema has the models, enums and report types for all parts of gitspark.
package schema

import "time"

// FileChange is one file's delta within a commit.
type FileChange struct {
	Path       string     `json:"path"`
	OldPath    string     `json:"old_path,omitempty"` // Only set for renamed or copied files
	Insertions int        `json:"insertions"`
	Deletions  int        `json:"deletions"`
	Status     FileStatus `json:"status"`
}

// Churn returns insertions plus deletions.
func (fc FileChange) Churn() int {
	return fc.Insertions + fc.Deletions
}

// RawCommit is a parsed commit entry as handed over by a collector.
// Nothing about it is trusted until it has been normalized.
type RawCommit struct {
	Hash        string
	AuthorName  string
	AuthorEmail string
	Timestamp   time.Time
	Subject     string
	Body        string
	Parents     []string
	Files       []FileChange
}

// CoAuthor is a person credited through a Co-authored-by trailer.
type CoAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CommitRecord is the canonical, immutable representation of one commit.
type CommitRecord struct {
	Hash         string       `json:"hash"`
	ShortHash    string       `json:"short_hash"`
	AuthorName   string       `json:"author_name"`
	AuthorEmail  string       `json:"author_email"` // Original casing, for display
	AuthorKey    string       `json:"author_key"`   // Lowercased email, for identity
	Timestamp    time.Time    `json:"timestamp"`
	Subject      string       `json:"subject"`
	Message      string       `json:"message"`
	Insertions   int          `json:"insertions"`
	Deletions    int          `json:"deletions"`
	FilesChanged int          `json:"files_changed"`
	IsMerge      bool         `json:"is_merge"`
	CoAuthors    []CoAuthor   `json:"co_authors,omitempty"`
	Files        []FileChange `json:"files"`
}

// Churn returns insertions plus deletions.
func (c *CommitRecord) Churn() int {
	return c.Insertions + c.Deletions
}

// AuthorStats is the per-author aggregate, one per normalized email.
type AuthorStats struct {
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Commits           int       `json:"commits"`
	Insertions        int       `json:"insertions"`
	Deletions         int       `json:"deletions"`
	Churn             int       `json:"churn"`
	FilesChanged      int       `json:"files_changed"`
	FirstCommit       time.Time `json:"first_commit"`
	LastCommit        time.Time `json:"last_commit"`
	ActiveDays        int       `json:"active_days"`
	AvgCommitSize     float64   `json:"avg_commit_size"`
	LargestCommit     int       `json:"largest_commit"`
	HourHistogram     [24]int   `json:"hour_histogram"`
	WeekdayHistogram  [7]int    `json:"weekday_histogram"` // Indexed by time.Weekday, Sunday first
	AfterHoursCommits int       `json:"after_hours_commits"`
	WeekendCommits    int       `json:"weekend_commits"`
}

// FileStats is the per-file aggregate, one per path touched in range.
type FileStats struct {
	Path         string             `json:"path"`
	Commits      int                `json:"commits"`
	Authors      []string           `json:"authors"` // Sorted normalized emails
	Insertions   int                `json:"insertions"`
	Deletions    int                `json:"deletions"`
	Churn        int                `json:"churn"`
	NetLines     int                `json:"net_lines"`
	CoChanges    int                `json:"co_changes"` // Sum of other files touched alongside this one
	FirstChange  time.Time          `json:"first_change"`
	LastChange   time.Time          `json:"last_change"`
	Deleted      bool               `json:"deleted"`
	RiskScore    float64            `json:"risk_score"`
	HotspotScore float64            `json:"hotspot_score"`
	Ownership    map[string]float64 `json:"ownership"`
	Language     string             `json:"language"`
}

// LanguageStats holds per-language totals derived from file changes.
type LanguageStats struct {
	Files      int `json:"files"`
	Insertions int `json:"insertions"`
	Deletions  int `json:"deletions"`
	Churn      int `json:"churn"`
}

// RepositoryStats is the repository-wide singleton for one analysis run.
type RepositoryStats struct {
	TotalCommits     int                      `json:"total_commits"`
	TotalAuthors     int                      `json:"total_authors"`
	TotalFiles       int                      `json:"total_files"`
	TotalInsertions  int                      `json:"total_insertions"`
	TotalDeletions   int                      `json:"total_deletions"`
	TotalChurn       int                      `json:"total_churn"`
	MergeCommits     int                      `json:"merge_commits"`
	FirstCommit      time.Time                `json:"first_commit"`
	LastCommit       time.Time                `json:"last_commit"`
	ActiveDays       int                      `json:"active_days"`
	AvgCommitsPerDay float64                  `json:"avg_commits_per_day"`
	Languages        map[string]LanguageStats `json:"languages"`
	BusFactor        int                      `json:"bus_factor"`
	ActivityIndex    float64                  `json:"activity_index"`
	GovernanceScore  float64                  `json:"governance_score"`
}
