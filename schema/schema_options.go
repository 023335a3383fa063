package schema

import "time"

// BusinessHours is the local working window used to classify after-hours commits.
// Start is inclusive and End is exclusive, both in whole hours.
type BusinessHours struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether the given hour falls inside the window.
func (b BusinessHours) Contains(hour int) bool {
	return hour >= b.Start && hour < b.End
}

// GovernanceThresholds configures the message and size classifiers.
type GovernanceThresholds struct {
	ShortMessage int `json:"short_message"` // Subjects shorter than this are short
	LargeCommit  int `json:"large_commit"`  // Churn at or above this is large
	SmallCommit  int `json:"small_commit"`  // Churn at or below this is small
}

// AnalysisOptions is everything the metrics pipeline consumes.
// It is resolved by the caller and passed explicitly to every scorer.
type AnalysisOptions struct {
	Since           time.Time              `json:"since"`
	Until           time.Time              `json:"until"`
	AuthorLocation  *time.Location         `json:"-"`
	AuthorTimezone  string                 `json:"author_timezone"`
	TrendsTimezone  string                 `json:"trends_timezone"`
	BusinessHours   BusinessHours          `json:"business_hours"`
	RetouchWindow   int                    `json:"retouch_window_days"`
	OwnershipWindow int                    `json:"ownership_window_days"`
	BusFactorTarget float64                `json:"bus_factor_target"`
	MaxHotspots     int                    `json:"max_hotspots"`
	RecencyHalfLife float64                `json:"recency_half_life_days"`
	Governance      GovernanceThresholds   `json:"governance"`
	RiskWeights     map[RiskFactor]float64 `json:"risk_weights"`
	Excludes        []string               `json:"excludes"`
	ToolVersion     string                 `json:"-"`
	GeneratedAt     time.Time              `json:"-"`
}

// Default values for AnalysisOptions.
const (
	DefaultTrendsTimezone  = "America/Chicago"
	DefaultBusinessStart   = 8
	DefaultBusinessEnd     = 18
	DefaultRetouchWindow   = 14
	DefaultOwnershipWindow = 90
	DefaultBusFactorTarget = 0.8
	DefaultMaxHotspots     = 10
	DefaultRecencyHalfLife = 30.0
	DefaultShortMessage    = 15
	DefaultLargeCommit     = 500
	DefaultSmallCommit     = 50
	DefaultToolVersion     = "dev"
)

// DefaultAnalysisOptions returns options populated with every default.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		AuthorLocation:  time.Local,
		TrendsTimezone:  DefaultTrendsTimezone,
		BusinessHours:   BusinessHours{Start: DefaultBusinessStart, End: DefaultBusinessEnd},
		RetouchWindow:   DefaultRetouchWindow,
		OwnershipWindow: DefaultOwnershipWindow,
		BusFactorTarget: DefaultBusFactorTarget,
		MaxHotspots:     DefaultMaxHotspots,
		RecencyHalfLife: DefaultRecencyHalfLife,
		Governance: GovernanceThresholds{
			ShortMessage: DefaultShortMessage,
			LargeCommit:  DefaultLargeCommit,
			SmallCommit:  DefaultSmallCommit,
		},
		RiskWeights: GetDefaultRiskWeights(),
		ToolVersion: DefaultToolVersion,
	}
}
