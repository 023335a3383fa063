package schema

// DateLayout is the calendar day format used across daily trend rows.
const DateLayout = "2006-01-02"

// PercentileMethod names the percentile convention used for commit sizes.
const PercentileMethod = "linear"

// FlowMetrics is the daily throughput row.
type FlowMetrics struct {
	Date          string  `json:"date"`
	Commits       int     `json:"commits"`
	Authors       int     `json:"authors"`
	Insertions    int     `json:"insertions"`
	Deletions     int     `json:"deletions"`
	Churn         int     `json:"churn"`
	Files         int     `json:"files"`
	P50CommitSize float64 `json:"p50_commit_size"`
	P90CommitSize float64 `json:"p90_commit_size"`
}

// StabilityMetrics is the daily revert and rework row.
type StabilityMetrics struct {
	Date            string  `json:"date"`
	Reverts         int     `json:"reverts"`
	Merges          int     `json:"merges"`
	MergeRatio      float64 `json:"merge_ratio"`
	RetouchedFiles  int     `json:"retouched_files"`
	RetouchRate     float64 `json:"retouch_rate"`
	Renames         int     `json:"renames"`
	OutOfHoursShare float64 `json:"out_of_hours_share"`
}

// OwnershipMetrics is the daily ownership row over a trailing window.
type OwnershipMetrics struct {
	Date              string  `json:"date"`
	NewFiles          int     `json:"new_files"`
	SingleOwnerShare  float64 `json:"single_owner_share"`
	AvgAuthorsPerFile float64 `json:"avg_authors_per_file"`
}

// CouplingMetrics is the daily co-change row.
type CouplingMetrics struct {
	Date             string  `json:"date"`
	MultiFileCommits int     `json:"multi_file_commits"`
	CoChangePairs    int     `json:"co_change_pairs"`
	CoChangeDensity  float64 `json:"co_change_density"`
}

// HygieneMetrics is the daily message hygiene row.
type HygieneMetrics struct {
	Date                string  `json:"date"`
	MedianMessageLength float64 `json:"median_message_length"`
	ShortMessages       int     `json:"short_messages"`
	ConventionalCommits int     `json:"conventional_commits"`
}

// ContributionDay is one cell of the contributions graph.
type ContributionDay struct {
	Date    string `json:"date"`
	Weekday int    `json:"weekday"` // Sunday is 0
	Count   int    `json:"count"`
	Level   int    `json:"level"` // 0-4
}

// ContributionWeek is one column of the contributions graph, starting on Sunday.
type ContributionWeek struct {
	Start string            `json:"start"`
	Days  []ContributionDay `json:"days"`
}

// ContributionsGraph is a calendar heatmap of daily commit counts.
type ContributionsGraph struct {
	Weeks              []ContributionWeek `json:"weeks"`
	MaxCount           int                `json:"max_count"`
	TotalContributions int                `json:"total_contributions"`
}

// TrendsMetadata describes the window of a DailyTrendsData value.
type TrendsMetadata struct {
	Timezone            string        `json:"timezone"`
	StartDate           string        `json:"start_date"`
	EndDate             string        `json:"end_date"`
	TotalDays           int           `json:"total_days"`
	ActiveDays          int           `json:"active_days"`
	RetouchWindowDays   int           `json:"retouch_window_days"`
	OwnershipWindowDays int           `json:"ownership_window_days"`
	PercentileMethod    string        `json:"percentile_method"`
	BusinessHours       BusinessHours `json:"business_hours"`
}

// DailyTrendsData holds one contiguous row per calendar day for each metric family.
type DailyTrendsData struct {
	Metadata      TrendsMetadata     `json:"metadata"`
	Flow          []FlowMetrics      `json:"flow"`
	Stability     []StabilityMetrics `json:"stability"`
	Ownership     []OwnershipMetrics `json:"ownership"`
	Coupling      []CouplingMetrics  `json:"coupling"`
	Hygiene       []HygieneMetrics   `json:"hygiene"`
	Contributions ContributionsGraph `json:"contributions"`
}
