// Package governance counts objective commit message patterns.
// It never produces advice.
package governance

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/huangsam/gitspark/core/algo"
	"github.com/huangsam/gitspark/schema"
)

// ConventionalTypes are the recognized conventional commit types.
var ConventionalTypes = []string{"feat", "fix", "docs", "style", "refactor", "perf", "test", "build", "ci", "chore", "revert"}

var (
	conventionalPattern = regexp.MustCompile(`(?i)^(` + strings.Join(ConventionalTypes, "|") + `)(\([^)]+\))?!?: .+`)
	issueKeywordPattern = regexp.MustCompile(`(?i)\b(close[sd]?|fix(e[sd])?|resolve[sd]?|refs?|references|see|related to|part of)\b[:\s]+(([a-z][a-z0-9_./-]*)?#\d+|[A-Z][A-Z0-9]+-\d+|GH-\d+)`)
	issueRefPattern     = regexp.MustCompile(`(\(#\d+\)|\b[A-Z]{2,10}-\d{1,6}\b|\bAB#\d+\b)`)
	wipPattern          = regexp.MustCompile(`(?i)(^\s*(\[wip\]|wip\b)|\bwork in progress\b|^\s*(fixup|squash)!)`)
	revertPattern       = regexp.MustCompile(`(?i)revert`)
	mergePattern        = regexp.MustCompile(`(?i)^merge (pull request|branch|remote-tracking branch|tag)\b`)
)

// IsConventional reports whether a subject follows type(scope): subject.
func IsConventional(subject string) bool {
	return conventionalPattern.MatchString(subject)
}

// ConventionalType returns the lowercase conventional type of a subject, or "".
func ConventionalType(subject string) string {
	m := conventionalPattern.FindStringSubmatch(subject)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// HasIssueReference reports whether a message links an issue or ticket.
func HasIssueReference(message string) bool {
	return issueKeywordPattern.MatchString(message) || issueRefPattern.MatchString(message)
}

// IsWIP reports whether a subject is marked as work in progress.
func IsWIP(subject string) bool {
	return wipPattern.MatchString(subject)
}

// IsRevert reports whether a message starts with or mentions a revert.
func IsRevert(message string) bool {
	return revertPattern.MatchString(message)
}

// IsMergeMessage reports whether a subject uses a merge commit template.
func IsMergeMessage(subject string) bool {
	return mergePattern.MatchString(subject)
}

// IsShort reports whether a subject is shorter than threshold characters.
func IsShort(subject string, threshold int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(subject)) < threshold
}

// Scorer is a streaming fold over the commit message stream.
type Scorer struct {
	thresholds schema.GovernanceThresholds
	result     schema.GovernanceResult
	lengths    []float64
}

// NewScorer creates a Scorer with the given thresholds.
func NewScorer(thresholds schema.GovernanceThresholds) *Scorer {
	return &Scorer{
		thresholds: thresholds,
		result:     schema.GovernanceResult{TypeCounts: make(map[string]int)},
	}
}

// Add folds one commit.
func (s *Scorer) Add(c *schema.CommitRecord) {
	r := &s.result
	r.TotalCommits++

	if t := ConventionalType(c.Subject); t != "" {
		r.ConventionalCommits++
		r.TypeCounts[t]++
	}
	if HasIssueReference(c.Message) {
		r.IssueReferences++
	}
	if IsShort(c.Subject, s.thresholds.ShortMessage) {
		r.ShortMessages++
	}
	if IsWIP(c.Subject) {
		r.WIPCommits++
	}
	if IsRevert(c.Message) {
		r.RevertCommits++
	}
	if IsMergeMessage(c.Subject) {
		r.MergePatternCommits++
	}

	churn := c.Churn()
	if churn >= s.thresholds.LargeCommit {
		r.LargeCommits++
	}
	if churn <= s.thresholds.SmallCommit {
		r.SmallCommits++
	}

	length := utf8.RuneCountInString(c.Subject)
	r.MessageLength.Max = max(r.MessageLength.Max, length)
	s.lengths = append(s.lengths, float64(length))
}

// Finalize computes ratios and the composite score.
// The score is 0.4 conventional + 0.3 traceability + 0.2 non-short + 0.1 non-WIP,
// and is 0 for an empty stream.
func (s *Scorer) Finalize() schema.GovernanceResult {
	r := s.result
	r.TypeCounts = make(map[string]int, len(s.result.TypeCounts))
	for k, v := range s.result.TypeCounts {
		r.TypeCounts[k] = v
	}

	total := float64(r.TotalCommits)
	r.ConventionalRatio = algo.SafeRatio(float64(r.ConventionalCommits), total)
	r.TraceabilityScore = algo.SafeRatio(float64(r.IssueReferences), total)
	r.ShortMessageRatio = algo.SafeRatio(float64(r.ShortMessages), total)
	r.MessageLength.Mean = algo.Mean(s.lengths)
	r.MessageLength.Median = algo.Median(s.lengths)
	r.MessageLength.P90 = algo.Percentile(s.lengths, 0.9)

	if r.TotalCommits > 0 {
		wipRatio := float64(r.WIPCommits) / total
		r.Score = algo.Clamp01(0.4*r.ConventionalRatio + 0.3*r.TraceabilityScore +
			0.2*(1-r.ShortMessageRatio) + 0.1*(1-wipRatio))
	}
	r.Recommendations = GenerateRecommendations(r)
	return r
}

// GenerateRecommendations always returns an empty list. Governance output is
// limited to counts and ratios.
func GenerateRecommendations(_ schema.GovernanceResult) []string {
	return []string{}
}
