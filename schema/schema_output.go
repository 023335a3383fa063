package schema

import "strings"

// GetRiskBand returns the display band for a risk score in [0,1].
func GetRiskBand(score float64) RiskBand {
	switch {
	case score >= 0.70:
		return RiskHigh
	case score >= 0.50:
		return RiskMedium
	case score >= 0.30:
		return RiskLow
	default:
		return RiskMinimal
	}
}

// GetActivityRating buckets an activity index in [0,1].
func GetActivityRating(index float64) ActivityRating {
	switch {
	case index >= 0.7:
		return ActivityHigh
	case index >= 0.4:
		return ActivityModerate
	case index > 0:
		return ActivityLow
	default:
		return ActivityNone
	}
}

// GetPlainLabel returns a capitalized label for a risk score.
func GetPlainLabel(score float64) string {
	band := string(GetRiskBand(score))
	return strings.ToUpper(band[:1]) + band[1:]
}

// EnrichedAuthor adds presentation data to an AuthorStats.
type EnrichedAuthor struct {
	Rank      int     `json:"rank"`
	ShortName string  `json:"short_name"`
	Share     float64 `json:"share"` // Share of all commits
	AuthorStats
}

// EnrichAuthors adds rank, abbreviated name and commit share to a list of authors.
func EnrichAuthors(authors []AuthorStats, totalCommits int) []EnrichedAuthor {
	output := make([]EnrichedAuthor, len(authors))
	for i, a := range authors {
		share := 0.0
		if totalCommits > 0 {
			share = float64(a.Commits) / float64(totalCommits)
		}
		output[i] = EnrichedAuthor{
			Rank:        i + 1,
			ShortName:   AbbreviateName(a.Name),
			Share:       share,
			AuthorStats: a,
		}
	}
	return output
}

// CheckResult is the outcome of a CI risk gate over the surfaced hotspots.
type CheckResult struct {
	MaxRisk    float64   `json:"max_risk"`
	Checked    int       `json:"checked"`
	Violations []Hotspot `json:"violations"`
	Passed     bool      `json:"passed"`
}
