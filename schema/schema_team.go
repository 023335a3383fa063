package schema

// Limitations documents where a metric comes from and what it cannot see.
// Every team subtree carries one.
type Limitations struct {
	DataSource string   `json:"data_source"`
	Caveats    []string `json:"caveats"`
}

// CollaborationMetrics describes how file ownership is spread across authors.
type CollaborationMetrics struct {
	TotalFiles             int         `json:"total_files"`
	SingleAuthorFiles      int         `json:"single_author_files"`
	MultiAuthorFiles       int         `json:"multi_author_files"`
	SpecializationScore    float64     `json:"specialization_score"` // 0-100, share of single-author files
	AvgAuthorsPerFile      float64     `json:"avg_authors_per_file"`
	SharedAuthorPairs      int         `json:"shared_author_pairs"`
	CrossAuthorInteraction float64     `json:"cross_author_interaction"` // 0-100, share of author pairs sharing a file
	Limitations            Limitations `json:"limitations"`
}

// ConsistencyMetrics describes how evenly work is distributed over people and time.
type ConsistencyMetrics struct {
	BusFactor           int         `json:"bus_factor"`
	BusFactorPercentage float64     `json:"bus_factor_percentage"` // 0-100
	VelocityConsistency float64     `json:"velocity_consistency"`  // 0-100, from weekly commit counts
	DeliveryCadence     float64     `json:"delivery_cadence"`      // 0-100, from inter-commit gaps
	CadenceCoV          float64     `json:"cadence_cov"`
	GiniCoefficient     float64     `json:"gini_coefficient"` // 0-1 over per-author commit counts
	Limitations         Limitations `json:"limitations"`
}

// QualityMetrics holds pattern-count ratios. Nothing here is inferred from code.
type QualityMetrics struct {
	TestFiles       int         `json:"test_files"`
	TestFileRatio   float64     `json:"test_file_ratio"`
	TestCommits     int         `json:"test_commits"`
	TestCommitRatio float64     `json:"test_commit_ratio"`
	RefactorCommits int         `json:"refactor_commits"`
	RefactorRatio   float64     `json:"refactor_ratio"`
	BugfixCommits   int         `json:"bugfix_commits"`
	BugfixRatio     float64     `json:"bugfix_ratio"`
	Limitations     Limitations `json:"limitations"`
}

// WorkLifeMetrics describes commit timing, which is not the same as working time.
type WorkLifeMetrics struct {
	AfterHoursCommits   int         `json:"after_hours_commits"`
	AfterHoursShare     float64     `json:"after_hours_share"`
	WeekendCommits      int         `json:"weekend_commits"`
	WeekendShare        float64     `json:"weekend_share"`
	ActiveDays          int         `json:"active_days"`
	MultiAuthorDays     int         `json:"multi_author_days"`
	SoloAuthorDays      int         `json:"solo_author_days"`
	MultiAuthorDayShare float64     `json:"multi_author_day_share"`
	Limitations         Limitations `json:"limitations"`
}

// TeamScore is the team-level composite for one analysis run.
type TeamScore struct {
	Overall         float64              `json:"overall"` // 0-100, mean of the consistency and ownership indices
	Collaboration   CollaborationMetrics `json:"collaboration"`
	Consistency     ConsistencyMetrics   `json:"consistency"`
	Quality         QualityMetrics       `json:"quality"`
	WorkLife        WorkLifeMetrics      `json:"work_life_balance"`
	Recommendations []string             `json:"recommendations"` // Always empty
}
