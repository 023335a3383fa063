// Package team derives team-level composite indices from the commit stream
// and the finalized author and file aggregates.
package team

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/huangsam/gitspark/core/algo"
	"github.com/huangsam/gitspark/core/governance"
	"github.com/huangsam/gitspark/schema"
)

// Data sources named in each subtree's limitations.
const (
	SourceFileAuthorship = "git-file-authorship-only"
	SourceCommitTiming   = "git-commit-timestamps-only"
	SourcePatterns       = "git-message-and-path-patterns-only"
)

var (
	testPathPattern = regexp.MustCompile(`(?i)((^|/)(test|tests|__tests__|spec|specs|testdata)/|_test\.go$|\.(test|spec)\.[cm]?[jt]sx?$|(^|/)test_[^/]+\.py$|_test\.py$|tests?\.java$|_spec\.rb$)`)
	refactorPattern = regexp.MustCompile(`(?i)\brefactor`)
	bugfixPattern   = regexp.MustCompile(`(?i)\b(fix(es|ed)?|bug|bugfix|hotfix|patch)\b`)
)

// IsTestPath reports whether a path looks like a test file.
func IsTestPath(path string) bool {
	return testPathPattern.MatchString(path)
}

// Tracker is a streaming fold over the commit stream for the signals that
// per-author and per-file aggregates do not keep.
type Tracker struct {
	loc             *time.Location
	commits         int
	timestamps      []time.Time
	dayPeople       map[string]map[string]struct{}
	testCommits     int
	refactorCommits int
	bugfixCommits   int
}

// NewTracker creates a Tracker bucketing days in loc.
func NewTracker(loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{
		loc:       loc,
		dayPeople: make(map[string]map[string]struct{}),
	}
}

// Add folds one commit. Co-authors count as participants of the commit's day.
func (t *Tracker) Add(c *schema.CommitRecord) {
	t.commits++
	t.timestamps = append(t.timestamps, c.Timestamp)

	day := c.Timestamp.In(t.loc).Format(schema.DateLayout)
	people, ok := t.dayPeople[day]
	if !ok {
		people = make(map[string]struct{})
		t.dayPeople[day] = people
	}
	people[c.AuthorKey] = struct{}{}
	for _, co := range c.CoAuthors {
		people[strings.ToLower(strings.TrimSpace(co.Email))] = struct{}{}
	}

	for _, fc := range c.Files {
		if IsTestPath(fc.Path) {
			t.testCommits++
			break
		}
	}
	kind := governance.ConventionalType(c.Subject)
	if kind == "refactor" || (kind == "" && refactorPattern.MatchString(c.Subject)) {
		t.refactorCommits++
	}
	if kind == "fix" || (kind == "" && bugfixPattern.MatchString(c.Subject)) {
		t.bugfixCommits++
	}
}

// Score assembles the TeamScore. Recommendations are always empty.
func Score(t *Tracker, authors []schema.AuthorStats, files []schema.FileStats, busFactorTarget float64) schema.TeamScore {
	collab := collaboration(authors, files)
	consistency := consistency(t, authors, busFactorTarget)
	score := schema.TeamScore{
		Collaboration:   collab,
		Consistency:     consistency,
		Quality:         quality(t, files),
		WorkLife:        workLife(t, authors),
		Recommendations: []string{},
	}
	if t.commits > 0 {
		score.Overall = algo.Clamp(algo.Mean([]float64{
			collab.SpecializationScore,
			consistency.BusFactorPercentage,
			consistency.VelocityConsistency,
			consistency.DeliveryCadence,
			(1 - consistency.GiniCoefficient) * 100,
		}), 0, 100)
	}
	return score
}

// BusFactor returns the smallest number of top authors whose cumulative commit
// share reaches target, and that count as a percentage of all authors.
func BusFactor(authors []schema.AuthorStats, target float64) (int, float64) {
	if len(authors) == 0 {
		return 0, 0
	}
	counts := make([]int, len(authors))
	total := 0
	for i, a := range authors {
		counts[i] = a.Commits
		total += a.Commits
	}
	if total == 0 {
		return 0, 0
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))

	needed, cumulative := 0, 0
	for _, n := range counts {
		cumulative += n
		needed++
		if float64(cumulative)/float64(total) >= target-1e-9 {
			break
		}
	}
	return needed, float64(needed) / float64(len(authors)) * 100
}

// CadenceScore maps the coefficient of variation of inter-commit gaps (days)
// to [0,100], higher for more regular delivery. It also returns the CoV.
func CadenceScore(timestamps []time.Time) (float64, float64) {
	if len(timestamps) < 2 {
		return 0, 0
	}
	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].Sub(sorted[i-1]).Hours()/24)
	}
	if algo.Mean(gaps) == 0 {
		return 0, 0
	}
	cov := algo.CoefficientOfVariation(gaps)
	return algo.Clamp(100/(1+cov), 0, 100), cov
}

// VelocityConsistency maps the CoV of weekly commit counts (weeks starting
// Sunday, gaps included) to [0,100].
func VelocityConsistency(timestamps []time.Time, loc *time.Location) float64 {
	if len(timestamps) == 0 {
		return 0
	}
	weeks := make(map[int]int)
	first, last := math.MaxInt, math.MinInt
	for _, ts := range timestamps {
		w := weekIndex(ts.In(loc))
		weeks[w]++
		first = min(first, w)
		last = max(last, w)
	}
	counts := make([]float64, 0, last-first+1)
	for w := first; w <= last; w++ {
		counts = append(counts, float64(weeks[w]))
	}
	return algo.Clamp(100/(1+algo.CoefficientOfVariation(counts)), 0, 100)
}

// weekIndex numbers Sunday-start weeks since the Unix epoch.
func weekIndex(t time.Time) int {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Unix() / 86400)
	// 1970-01-01 was a Thursday, so shift by four days to align on Sunday.
	return int(math.Floor(float64(days+4) / 7))
}

func collaboration(authors []schema.AuthorStats, files []schema.FileStats) schema.CollaborationMetrics {
	m := schema.CollaborationMetrics{
		TotalFiles: len(files),
		Limitations: schema.Limitations{
			DataSource: SourceFileAuthorship,
			Caveats: []string{
				"Authorship reflects who committed changes, not who reviewed or designed them.",
				"Pair programming and squash merges collapse several people into one author.",
				"Shared files may indicate duplicated effort or unclear ownership rather than collaboration.",
			},
		},
	}

	pairs := make(map[[2]string]struct{})
	totalAuthors := 0
	for _, f := range files {
		totalAuthors += len(f.Authors)
		switch {
		case len(f.Authors) == 1:
			m.SingleAuthorFiles++
		case len(f.Authors) > 1:
			m.MultiAuthorFiles++
		}
		for i := 0; i < len(f.Authors); i++ {
			for j := i + 1; j < len(f.Authors); j++ {
				pairs[[2]string{f.Authors[i], f.Authors[j]}] = struct{}{}
			}
		}
	}
	m.SpecializationScore = algo.SafeRatio(float64(m.SingleAuthorFiles), float64(len(files))) * 100
	m.AvgAuthorsPerFile = algo.SafeRatio(float64(totalAuthors), float64(len(files)))
	m.SharedAuthorPairs = len(pairs)

	n := float64(len(authors))
	m.CrossAuthorInteraction = algo.Clamp(algo.SafeRatio(float64(len(pairs)), n*(n-1)/2)*100, 0, 100)
	return m
}

func consistency(t *Tracker, authors []schema.AuthorStats, target float64) schema.ConsistencyMetrics {
	m := schema.ConsistencyMetrics{
		Limitations: schema.Limitations{
			DataSource: SourceCommitTiming,
			Caveats: []string{
				"Commit counts do not reflect the size or difficulty of the work.",
				"Timestamps are author dates and can be rewritten by rebases.",
				"Bus factor is measured on commits, not on knowledge of the code.",
			},
		},
	}
	m.BusFactor, m.BusFactorPercentage = BusFactor(authors, target)
	m.DeliveryCadence, m.CadenceCoV = CadenceScore(t.timestamps)
	m.VelocityConsistency = VelocityConsistency(t.timestamps, t.loc)

	counts := make([]float64, len(authors))
	for i, a := range authors {
		counts[i] = float64(a.Commits)
	}
	m.GiniCoefficient = algo.Gini(counts)
	return m
}

func quality(t *Tracker, files []schema.FileStats) schema.QualityMetrics {
	m := schema.QualityMetrics{
		TestCommits:     t.testCommits,
		RefactorCommits: t.refactorCommits,
		BugfixCommits:   t.bugfixCommits,
		Limitations: schema.Limitations{
			DataSource: SourcePatterns,
			Caveats: []string{
				"Test files are detected by path naming conventions only.",
				"Refactor and bugfix counts depend on commit message wording.",
				"No code is executed or inspected, so nothing here measures quality directly.",
			},
		},
	}
	for _, f := range files {
		if IsTestPath(f.Path) {
			m.TestFiles++
		}
	}
	commits := float64(t.commits)
	m.TestFileRatio = algo.SafeRatio(float64(m.TestFiles), float64(len(files)))
	m.TestCommitRatio = algo.SafeRatio(float64(m.TestCommits), commits)
	m.RefactorRatio = algo.SafeRatio(float64(m.RefactorCommits), commits)
	m.BugfixRatio = algo.SafeRatio(float64(m.BugfixCommits), commits)
	return m
}

func workLife(t *Tracker, authors []schema.AuthorStats) schema.WorkLifeMetrics {
	m := schema.WorkLifeMetrics{
		ActiveDays: len(t.dayPeople),
		Limitations: schema.Limitations{
			DataSource: SourceCommitTiming,
			Caveats: []string{
				"Commit time is not working time; people commit work done earlier.",
				"Author time zones come from configuration, not from each person.",
				"Day coverage counts authors and co-authors named on commits only.",
			},
		},
	}
	for _, a := range authors {
		m.AfterHoursCommits += a.AfterHoursCommits
		m.WeekendCommits += a.WeekendCommits
	}
	for _, people := range t.dayPeople {
		if len(people) > 1 {
			m.MultiAuthorDays++
		} else {
			m.SoloAuthorDays++
		}
	}
	commits := float64(t.commits)
	m.AfterHoursShare = algo.SafeRatio(float64(m.AfterHoursCommits), commits)
	m.WeekendShare = algo.SafeRatio(float64(m.WeekendCommits), commits)
	m.MultiAuthorDayShare = algo.SafeRatio(float64(m.MultiAuthorDays), float64(m.ActiveDays))
	return m
}
