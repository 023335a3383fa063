package team

import (
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/gitspark/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC) // Sunday

func authorsWithCommits(counts ...int) []schema.AuthorStats {
	authors := make([]schema.AuthorStats, len(counts))
	for i, n := range counts {
		authors[i] = schema.AuthorStats{Email: fmt.Sprintf("a%d@x.com", i), Commits: n}
	}
	return authors
}

func TestBusFactor(t *testing.T) {
	tests := []struct {
		name        string
		counts      []int
		wantCount   int
		wantPercent float64
	}{
		{"no authors", nil, 0, 0},
		{"single author", []int{12}, 1, 100},
		{"one dominant of ten", []int{8, 1, 1, 0, 0, 0, 0, 0, 0, 0}, 1, 10},
		{"two of four", []int{5, 3, 1, 1}, 2, 50},
		{"even split of five", []int{2, 2, 2, 2, 2}, 4, 80},
		{"unsorted input", []int{1, 8, 1}, 1, 100.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, pct := BusFactor(authorsWithCommits(tt.counts...), 0.8)
			assert.Equal(t, tt.wantCount, count)
			assert.InDelta(t, tt.wantPercent, pct, 1e-9)
		})
	}
}

func TestBusFactorMonotonicWithEvenness(t *testing.T) {
	distributions := [][]int{
		{97, 1, 1, 1},
		{70, 10, 10, 10},
		{40, 20, 20, 20},
		{25, 25, 25, 25},
	}
	prev := 0.0
	for _, d := range distributions {
		_, pct := BusFactor(authorsWithCommits(d...), 0.8)
		assert.GreaterOrEqual(t, pct, prev, "%v", d)
		prev = pct
	}
}

func TestCadenceScore(t *testing.T) {
	var regular []time.Time
	for i := range 6 {
		regular = append(regular, start.AddDate(0, 0, 2*i))
	}
	score, cov := CadenceScore(regular)
	assert.InDelta(t, 100, score, 1e-9)
	assert.InDelta(t, 0, cov, 1e-9)

	irregular := []time.Time{start, start.Add(time.Hour), start.AddDate(0, 0, 10), start.AddDate(0, 0, 11)}
	score, cov = CadenceScore(irregular)
	assert.Less(t, score, 100.0)
	assert.Greater(t, score, 0.0)
	assert.Greater(t, cov, 0.0)

	score, _ = CadenceScore([]time.Time{start})
	assert.Equal(t, 0.0, score)
	score, _ = CadenceScore([]time.Time{start, start})
	assert.Equal(t, 0.0, score)
}

func TestVelocityConsistency(t *testing.T) {
	steady := []time.Time{start, start.AddDate(0, 0, 7), start.AddDate(0, 0, 14)}
	assert.InDelta(t, 100, VelocityConsistency(steady, time.UTC), 1e-9)

	// Two busy weeks around an empty one.
	bursty := []time.Time{start, start.Add(time.Hour), start.AddDate(0, 0, 14)}
	assert.Less(t, VelocityConsistency(bursty, time.UTC), 100.0)

	assert.Equal(t, 0.0, VelocityConsistency(nil, time.UTC))
}

func TestWeekIndexStartsSunday(t *testing.T) {
	sat := time.Date(2024, 1, 6, 23, 0, 0, 0, time.UTC)
	sun := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	nextSat := time.Date(2024, 1, 13, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, weekIndex(sat)+1, weekIndex(sun))
	assert.Equal(t, weekIndex(sun), weekIndex(nextSat))
}

func TestIsTestPath(t *testing.T) {
	for _, p := range []string{"core/agg_test.go", "tests/unit/a.py", "src/app.spec.ts", "pkg/test_utils.py", "web/__tests__/x.js", "FooTest.java"} {
		assert.True(t, IsTestPath(p), p)
	}
	for _, p := range []string{"core/agg.go", "contest/main.go", "latest.go"} {
		assert.False(t, IsTestPath(p), p)
	}
}

func TestScore(t *testing.T) {
	tracker := NewTracker(time.UTC)
	commits := []schema.CommitRecord{
		{AuthorKey: "a@x.com", Timestamp: start, Subject: "feat: add", Files: []schema.FileChange{{Path: "a.go"}, {Path: "a_test.go"}}},
		{AuthorKey: "b@x.com", Timestamp: start.Add(time.Hour), Subject: "fix: typo", Files: []schema.FileChange{{Path: "a.go"}}},
		{AuthorKey: "a@x.com", Timestamp: start.AddDate(0, 0, 1), Subject: "Refactor helpers", Files: []schema.FileChange{{Path: "b.go"}}},
		{
			AuthorKey: "a@x.com", Timestamp: start.AddDate(0, 0, 2), Subject: "hotfix for login bug",
			CoAuthors: []schema.CoAuthor{{Name: "C", Email: "C@x.com"}},
		},
	}
	for i := range commits {
		tracker.Add(&commits[i])
	}

	authors := []schema.AuthorStats{
		{Email: "a@x.com", Commits: 3, AfterHoursCommits: 1, WeekendCommits: 2},
		{Email: "b@x.com", Commits: 1, WeekendCommits: 1},
	}
	files := []schema.FileStats{
		{Path: "a.go", Authors: []string{"a@x.com", "b@x.com"}},
		{Path: "a_test.go", Authors: []string{"a@x.com"}},
		{Path: "b.go", Authors: []string{"a@x.com"}},
	}

	score := Score(tracker, authors, files, 0.8)

	c := score.Collaboration
	assert.Equal(t, 3, c.TotalFiles)
	assert.Equal(t, 2, c.SingleAuthorFiles)
	assert.Equal(t, 1, c.MultiAuthorFiles)
	assert.InDelta(t, 200.0/3, c.SpecializationScore, 1e-9)
	assert.InDelta(t, 4.0/3, c.AvgAuthorsPerFile, 1e-9)
	assert.Equal(t, 1, c.SharedAuthorPairs)
	assert.InDelta(t, 100, c.CrossAuthorInteraction, 1e-9)
	assert.Equal(t, SourceFileAuthorship, c.Limitations.DataSource)

	k := score.Consistency
	assert.Equal(t, 2, k.BusFactor)
	assert.InDelta(t, 100, k.BusFactorPercentage, 1e-9)
	assert.InDelta(t, 0.25, k.GiniCoefficient, 1e-9)

	q := score.Quality
	assert.Equal(t, 1, q.TestFiles)
	assert.Equal(t, 1, q.TestCommits)
	assert.Equal(t, 1, q.RefactorCommits)
	assert.Equal(t, 2, q.BugfixCommits)
	assert.InDelta(t, 0.5, q.BugfixRatio, 1e-9)

	w := score.WorkLife
	assert.Equal(t, 3, w.ActiveDays)
	assert.Equal(t, 2, w.MultiAuthorDays) // day one by two authors, day three with a co-author
	assert.Equal(t, 1, w.SoloAuthorDays)
	assert.InDelta(t, 0.25, w.AfterHoursShare, 1e-9)
	assert.InDelta(t, 0.75, w.WeekendShare, 1e-9)

	for _, lim := range []schema.Limitations{c.Limitations, k.Limitations, q.Limitations, w.Limitations} {
		assert.NotEmpty(t, lim.DataSource)
		assert.NotEmpty(t, lim.Caveats)
	}
	require.NotNil(t, score.Recommendations)
	assert.Empty(t, score.Recommendations)
	assert.GreaterOrEqual(t, score.Overall, 0.0)
	assert.LessOrEqual(t, score.Overall, 100.0)
}

func TestScoreEmpty(t *testing.T) {
	score := Score(NewTracker(nil), nil, nil, 0.8)
	assert.Equal(t, 0.0, score.Overall)
	assert.Equal(t, 0, score.Consistency.BusFactor)
	assert.Equal(t, 0.0, score.Collaboration.SpecializationScore)
	assert.Equal(t, 0.0, score.WorkLife.MultiAuthorDayShare)
	assert.Equal(t, []string{}, score.Recommendations)
}
