package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/gitspark/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC) // Monday

func testOptions() schema.AnalysisOptions {
	opts := schema.DefaultAnalysisOptions()
	opts.TrendsTimezone = "UTC"
	opts.AuthorTimezone = "UTC"
	opts.GeneratedAt = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	return opts
}

func rawCommit(n int, email string, at time.Time, subject string, files ...schema.FileChange) schema.RawCommit {
	return schema.RawCommit{
		Hash:        fmt.Sprintf("%040x", n+1),
		AuthorName:  strings.Split(email, "@")[0],
		AuthorEmail: email,
		Timestamp:   at,
		Subject:     subject,
		Files:       files,
	}
}

func change(path string, ins, del int) schema.FileChange {
	return schema.FileChange{Path: path, Insertions: ins, Deletions: del, Status: schema.StatusModified}
}

func sampleHistory() []schema.RawCommit {
	return []schema.RawCommit{
		rawCommit(0, "alice@example.com", day0, "feat: add parser", change("parser.go", 120, 0), change("README.md", 10, 0)),
		rawCommit(1, "bob@example.com", day0.Add(26*time.Hour), "fix(parser): handle empty input", change("parser.go", 8, 3)),
		rawCommit(2, "alice@example.com", day0.Add(50*time.Hour), "wip", change("parser.go", 30, 12), change("lexer.go", 40, 0)),
		rawCommit(3, "carol@example.com", day0.Add(5*24*time.Hour+12*time.Hour), "docs: usage", change("README.md", 4, 1)),
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	ctx := context.Background()
	first, err := Analyze(ctx, sampleHistory(), testOptions())
	require.NoError(t, err)
	second, err := Analyze(ctx, sampleHistory(), testOptions())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, first.Metadata.InputFingerprint, second.Metadata.InputFingerprint)
}

func TestAnalyzeFingerprintTracksInput(t *testing.T) {
	ctx := context.Background()
	base, err := Analyze(ctx, sampleHistory(), testOptions())
	require.NoError(t, err)

	changed := sampleHistory()
	changed[1].Files[0].Insertions++
	other, err := Analyze(ctx, changed, testOptions())
	require.NoError(t, err)

	assert.Len(t, base.Metadata.InputFingerprint, 16)
	assert.NotEqual(t, base.Metadata.InputFingerprint, other.Metadata.InputFingerprint)
}

func TestAnalyzeSingleAuthorOwnership(t *testing.T) {
	commits := []schema.RawCommit{
		rawCommit(0, "a@x.com", day0, "feat: one", change("f.ts", 10, 0)),
		rawCommit(1, "a@x.com", day0.Add(time.Hour), "feat: two", change("f.ts", 0, 0)),
		rawCommit(2, "a@x.com", day0.Add(2*time.Hour), "feat: three", change("f.ts", 3, 2)),
	}
	report, err := Analyze(context.Background(), commits, testOptions())
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.Equal(t, map[string]float64{"a@x.com": 1.0}, report.Files[0].Ownership)
	require.Len(t, report.Authors, 1)
	assert.Equal(t, 3, report.Authors[0].Commits)
	assert.Equal(t, 15, report.Authors[0].Churn)
	assert.Equal(t, 100.0, report.Team.Consistency.BusFactorPercentage)
}

func TestAnalyzeMergesCaseFoldedIdentities(t *testing.T) {
	var commits []schema.RawCommit
	for i := range 5 {
		commits = append(commits, rawCommit(i, "Jo@X.com", day0.Add(time.Duration(i)*time.Hour), "chore: a", change("a.go", 1, 0)))
	}
	for i := 5; i < 8; i++ {
		commits = append(commits, rawCommit(i, "jo@x.com", day0.Add(time.Duration(i)*time.Hour), "chore: b", change("b.go", 1, 0)))
	}
	report, err := Analyze(context.Background(), commits, testOptions())
	require.NoError(t, err)

	require.Len(t, report.Authors, 1)
	assert.Equal(t, 8, report.Authors[0].Commits)
	assert.Equal(t, 1, report.Repository.TotalAuthors)
}

func TestAnalyzeBusFactorConcentration(t *testing.T) {
	var commits []schema.RawCommit
	n := 0
	add := func(email string) {
		commits = append(commits, rawCommit(n, email, day0.Add(time.Duration(n)*time.Hour), "feat: x", change("main.go", 1, 0)))
		n++
	}
	for range 36 {
		add("lead@x.com")
	}
	for i := range 9 {
		add(fmt.Sprintf("dev%d@x.com", i))
	}

	report, err := Analyze(context.Background(), commits, testOptions())
	require.NoError(t, err)
	assert.Equal(t, 10, report.Repository.TotalAuthors)
	assert.Equal(t, 1, report.Team.Consistency.BusFactor)
	assert.InDelta(t, 10.0, report.Team.Consistency.BusFactorPercentage, 1e-9)
	assert.Equal(t, 1, report.Repository.BusFactor)
}

func TestAnalyzeOwnershipSumsToOne(t *testing.T) {
	report, err := Analyze(context.Background(), sampleHistory(), testOptions())
	require.NoError(t, err)
	for _, f := range report.Files {
		sum := 0.0
		for _, share := range f.Ownership {
			sum += share
		}
		assert.InDelta(t, 1.0, sum, 1e-9, f.Path)
	}
}

func TestAnalyzeReportShape(t *testing.T) {
	report, err := Analyze(context.Background(), sampleHistory(), testOptions())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Repository.TotalCommits)
	assert.Equal(t, 3, report.Repository.TotalAuthors)
	assert.Equal(t, schema.DefaultToolVersion, report.Metadata.ToolVersion)
	assert.Equal(t, "parser.go", report.Hotspots[0].Path)
	assert.Empty(t, report.Team.Recommendations)
	assert.GreaterOrEqual(t, report.Summary.ActivityIndex, 0.0)
	assert.LessOrEqual(t, report.Summary.ActivityIndex, 1.0)
	assert.Equal(t, float64(4), report.Summary.KeyMetrics["total_commits"])
	assert.Equal(t, report.Governance.Score, report.Repository.GovernanceScore)

	for i := 1; i < len(report.Hotspots); i++ {
		assert.Equal(t, i+1, report.Hotspots[i].Rank)
	}
}

func TestAnalyzeMaxHotspots(t *testing.T) {
	opts := testOptions()
	opts.MaxHotspots = 1
	report, err := Analyze(context.Background(), sampleHistory(), opts)
	require.NoError(t, err)
	assert.Len(t, report.Hotspots, 1)

	opts.MaxHotspots = 0
	report, err = Analyze(context.Background(), sampleHistory(), opts)
	require.NoError(t, err)
	assert.Len(t, report.Hotspots, len(report.Files))
}

func TestAnalyzeUsesToolVersion(t *testing.T) {
	opts := testOptions()
	opts.ToolVersion = "1.2.3"
	report, err := Analyze(context.Background(), sampleHistory(), opts)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", report.Metadata.ToolVersion)
}

func TestAnalyzeSkipsCommitsOutsideWindow(t *testing.T) {
	opts := testOptions()
	opts.Since = day0.Add(24 * time.Hour)
	report, err := Analyze(context.Background(), sampleHistory(), opts)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Repository.TotalCommits)
	found := false
	for _, w := range report.Metadata.Warnings {
		if strings.Contains(w, "outside the analysis window") {
			found = true
		}
	}
	assert.True(t, found, "expected an out-of-window warning, got %v", report.Metadata.Warnings)
}

func TestAnalyzeAvgCommitsPerDayUsesCommitSpan(t *testing.T) {
	opts := testOptions()
	opts.Since = day0.AddDate(0, 0, -30)
	report, err := Analyze(context.Background(), sampleHistory(), opts)
	require.NoError(t, err)

	// 4 commits from day0 through day0+5, inclusive
	assert.InDelta(t, 4.0/6.0, report.Repository.AvgCommitsPerDay, 1e-9)
	assert.Len(t, report.DailyTrends.Flow, 36)
}

func TestAnalyzeMalformedCommit(t *testing.T) {
	commits := sampleHistory()
	commits[2].Timestamp = time.Time{}

	_, err := Analyze(context.Background(), commits, testOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedCommit))

	var malformed *MalformedCommitError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 2, malformed.Index)
	assert.Equal(t, "timestamp", malformed.Field)
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, sampleHistory(), testOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineFinalizeOnce(t *testing.T) {
	p, err := NewPipeline(testOptions())
	require.NoError(t, err)
	require.NoError(t, p.Add(context.Background(), sampleHistory()[0]))
	assert.Equal(t, 1, p.Commits())

	_, err = p.Finalize()
	require.NoError(t, err)

	_, err = p.Finalize()
	assert.ErrorIs(t, err, errPipelineFinalized)
	assert.ErrorIs(t, p.Add(context.Background(), sampleHistory()[1]), errPipelineFinalized)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	report, err := Analyze(context.Background(), nil, testOptions())
	require.NoError(t, err)
	assert.Zero(t, report.Repository.TotalCommits)
	assert.Zero(t, report.Summary.ActivityIndex)
	assert.Empty(t, report.Hotspots)
}

func TestActivityIndex(t *testing.T) {
	assert.Zero(t, ActivityIndex(3, 2, 0, nil))
	assert.InDelta(t, 1.0, ActivityIndex(5, 1, 1, []float64{10}), 1e-9)
	// frequency 0.5, participation 0.5, consistency 1
	assert.InDelta(t, 2.0/3.0, ActivityIndex(2.5, 1, 40, []float64{5, 5}), 1e-9)
	assert.InDelta(t, 1.0, ActivityIndex(100, 50, 10, []float64{1, 1}), 1e-9)

	idx := ActivityIndex(0.1, 1, 3, []float64{1, 1000, 2})
	assert.GreaterOrEqual(t, idx, 0.0)
	assert.LessOrEqual(t, idx, 1.0)
}
