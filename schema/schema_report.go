package schema

import "time"

// ReportMetadata describes how and when a report was produced.
type ReportMetadata struct {
	GeneratedAt      time.Time       `json:"generated_at"`
	ToolVersion      string          `json:"tool_version"`
	Options          AnalysisOptions `json:"options"`
	Warnings         []string        `json:"warnings"`
	InputFingerprint string          `json:"input_fingerprint"` // xxhash over the normalized commit stream
}

// Hotspot is a file surfaced for attention. It is not a defect indicator.
type Hotspot struct {
	Rank         int                    `json:"rank"`
	Path         string                 `json:"path"`
	HotspotScore float64                `json:"hotspot_score"`
	RiskScore    float64                `json:"risk_score"`
	Band         RiskBand               `json:"band"`
	Commits      int                    `json:"commits"`
	Churn        int                    `json:"churn"`
	Authors      int                    `json:"authors"`
	LastChange   time.Time              `json:"last_change"`
	Factors      map[RiskFactor]float64 `json:"factors"`
}

// RiskSummary aggregates risk scores across all files.
type RiskSummary struct {
	Weights     map[RiskFactor]float64 `json:"weights"`
	BandCounts  map[RiskBand]int       `json:"band_counts"`
	AverageRisk float64                `json:"average_risk"`
	MaxRisk     float64                `json:"max_risk"`
	MaxRiskPath string                 `json:"max_risk_path"`
}

// Summary is the top-level digest of a report.
type Summary struct {
	ActivityIndex  float64            `json:"activity_index"`
	ActivityRating ActivityRating     `json:"activity_rating"`
	KeyMetrics     map[string]float64 `json:"key_metrics"`
}

// AnalysisReport is the single immutable result of one analysis run.
type AnalysisReport struct {
	Metadata    ReportMetadata   `json:"metadata"`
	Repository  RepositoryStats  `json:"repository"`
	Authors     []AuthorStats    `json:"authors"`
	Files       []FileStats      `json:"files"`
	Hotspots    []Hotspot        `json:"hotspots"`
	Risk        RiskSummary      `json:"risk"`
	Governance  GovernanceResult `json:"governance"`
	Team        TeamScore        `json:"team"`
	DailyTrends DailyTrendsData  `json:"daily_trends"`
	Summary     Summary          `json:"summary"`
}
