package schema

// MessageLengthStats summarizes commit subject lengths in characters.
type MessageLengthStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    int     `json:"max"`
}

// GovernanceResult holds objective commit message pattern counts and ratios.
type GovernanceResult struct {
	TotalCommits        int                `json:"total_commits"`
	ConventionalCommits int                `json:"conventional_commits"`
	ConventionalRatio   float64            `json:"conventional_ratio"`
	TypeCounts          map[string]int     `json:"type_counts"`
	IssueReferences     int                `json:"issue_references"`
	TraceabilityScore   float64            `json:"traceability_score"`
	ShortMessages       int                `json:"short_messages"`
	ShortMessageRatio   float64            `json:"short_message_ratio"`
	WIPCommits          int                `json:"wip_commits"`
	RevertCommits       int                `json:"revert_commits"`
	MergePatternCommits int                `json:"merge_pattern_commits"`
	LargeCommits        int                `json:"large_commits"`
	SmallCommits        int                `json:"small_commits"`
	MessageLength       MessageLengthStats `json:"message_length"`
	Score               float64            `json:"score"`           // 0-1
	Recommendations     []string           `json:"recommendations"` // Always empty
}
