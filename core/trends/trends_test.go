package trends

import (
	"testing"
	"time"

	"github.com/huangsam/gitspark/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monday is 2024-01-01 10:00 UTC.
var monday = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func utcOptions() schema.AnalysisOptions {
	opts := schema.DefaultAnalysisOptions()
	opts.TrendsTimezone = "UTC"
	return opts
}

func newAggregator(t *testing.T, opts schema.AnalysisOptions) *Aggregator {
	t.Helper()
	a, err := New(opts)
	require.NoError(t, err)
	return a
}

func mkCommit(author string, ts time.Time, subject string, files ...schema.FileChange) *schema.CommitRecord {
	c := &schema.CommitRecord{
		Hash:      ts.Format(time.RFC3339) + author,
		AuthorKey: author,
		Timestamp: ts,
		Subject:   subject,
		Message:   subject,
		Files:     files,
	}
	for _, fc := range files {
		c.Insertions += fc.Insertions
		c.Deletions += fc.Deletions
	}
	c.FilesChanged = len(files)
	return c
}

func fileTouch(path string, churn int) schema.FileChange {
	return schema.FileChange{Path: path, Insertions: churn, Status: schema.StatusModified}
}

func dates[T any](rows []T, date func(T) string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = date(r)
	}
	return out
}

func TestNewRejectsUnknownTimezone(t *testing.T) {
	opts := utcOptions()
	opts.TrendsTimezone = "Mars/Olympus_Mons"
	_, err := New(opts)
	assert.Error(t, err)
}

func TestFinalizeIsContiguous(t *testing.T) {
	a := newAggregator(t, utcOptions())
	a.Add(mkCommit("a@x.com", monday, "first commit here", fileTouch("a.go", 10)))
	a.Add(mkCommit("b@x.com", monday.AddDate(0, 0, 4), "second commit here", fileTouch("b.go", 5)))

	data := a.Finalize()
	require.Len(t, data.Flow, 5)
	assert.Len(t, data.Stability, 5)
	assert.Len(t, data.Ownership, 5)
	assert.Len(t, data.Coupling, 5)
	assert.Len(t, data.Hygiene, 5)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"},
		dates(data.Flow, func(r schema.FlowMetrics) string { return r.Date }))

	assert.Equal(t, 5, data.Metadata.TotalDays)
	assert.Equal(t, 2, data.Metadata.ActiveDays)
	assert.Equal(t, "2024-01-01", data.Metadata.StartDate)
	assert.Equal(t, "2024-01-05", data.Metadata.EndDate)
	assert.Equal(t, schema.PercentileMethod, data.Metadata.PercentileMethod)

	gap := data.Flow[2]
	assert.Equal(t, schema.FlowMetrics{Date: "2024-01-03"}, gap)
	assert.Equal(t, 1, data.Flow[0].Commits)
	assert.Equal(t, 10, data.Flow[0].Churn)
}

func TestFinalizeHonorsExplicitWindow(t *testing.T) {
	opts := utcOptions()
	opts.Since = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	opts.Until = time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC)
	a := newAggregator(t, opts)
	a.Add(mkCommit("a@x.com", monday.AddDate(0, 0, 2), "only commit today", fileTouch("a.go", 1)))

	data := a.Finalize()
	assert.Len(t, data.Flow, 10)
	assert.Equal(t, 10, data.Metadata.TotalDays)
	assert.Equal(t, 1, data.Metadata.ActiveDays)
	assert.GreaterOrEqual(t, data.Metadata.TotalDays, data.Metadata.ActiveDays)
}

func TestFinalizeEmpty(t *testing.T) {
	data := newAggregator(t, utcOptions()).Finalize()
	assert.Empty(t, data.Flow)
	assert.NotNil(t, data.Flow)
	assert.Equal(t, 0, data.Metadata.TotalDays)
	assert.Empty(t, data.Contributions.Weeks)
}

func TestDayBucketingUsesTrendsTimezone(t *testing.T) {
	opts := utcOptions()
	opts.TrendsTimezone = "America/Chicago"
	a := newAggregator(t, opts)
	a.Add(mkCommit("a@x.com", time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC), "late night commit", fileTouch("a.go", 1)))

	data := a.Finalize()
	require.Len(t, data.Flow, 1)
	assert.Equal(t, "2024-01-01", data.Flow[0].Date)
	assert.Equal(t, "America/Chicago", data.Metadata.Timezone)
}

func TestFlowPercentiles(t *testing.T) {
	a := newAggregator(t, utcOptions())
	for i, size := range []int{40, 10, 30, 20} {
		a.Add(mkCommit("a@x.com", monday.Add(time.Duration(i)*time.Minute), "sized commit here", fileTouch("a.go", size)))
	}

	flow := a.Finalize().Flow[0]
	assert.Equal(t, 4, flow.Commits)
	assert.Equal(t, 1, flow.Authors)
	assert.Equal(t, 1, flow.Files)
	assert.InDelta(t, 25.0, flow.P50CommitSize, 1e-9)
	assert.InDelta(t, 37.0, flow.P90CommitSize, 1e-9)
}

func TestRetouchWindow(t *testing.T) {
	a := newAggregator(t, utcOptions())
	a.Add(mkCommit("a@x.com", monday, "create the file", fileTouch("a.go", 1)))
	a.Add(mkCommit("a@x.com", monday.AddDate(0, 0, 3), "touch it again soon", fileTouch("a.go", 1), fileTouch("b.go", 1)))
	a.Add(mkCommit("a@x.com", monday.AddDate(0, 0, 20), "touch it much later", fileTouch("a.go", 1)))

	stability := a.Finalize().Stability
	require.Len(t, stability, 21)
	assert.Equal(t, 0, stability[0].RetouchedFiles)
	assert.Equal(t, 1, stability[3].RetouchedFiles)
	assert.InDelta(t, 0.5, stability[3].RetouchRate, 1e-9)
	assert.Equal(t, 0, stability[20].RetouchedFiles)
	assert.Zero(t, stability[20].RetouchRate)
}

func TestStabilityCounts(t *testing.T) {
	a := newAggregator(t, utcOptions())
	merge := mkCommit("a@x.com", monday, "Merge branch 'main'", fileTouch("a.go", 1))
	merge.IsMerge = true
	a.Add(merge)
	a.Add(mkCommit("a@x.com", monday.Add(10*time.Hour), "Revert \"add thing\"", fileTouch("a.go", 1)))
	renamed := mkCommit("a@x.com", monday.Add(time.Hour), "move file around", schema.FileChange{
		Path: "new.go", OldPath: "old.go", Status: schema.StatusRenamed,
	})
	a.Add(renamed)

	s := a.Finalize().Stability[0]
	assert.Equal(t, 1, s.Merges)
	assert.Equal(t, 1, s.Reverts)
	assert.Equal(t, 1, s.Renames)
	assert.InDelta(t, 1.0/3, s.MergeRatio, 1e-9)
	assert.InDelta(t, 1.0/3, s.OutOfHoursShare, 1e-9) // 20:00 is outside 8-18
}

func TestWeekendIsOutOfHours(t *testing.T) {
	a := newAggregator(t, utcOptions())
	saturday := time.Date(2024, 1, 6, 11, 0, 0, 0, time.UTC)
	a.Add(mkCommit("a@x.com", saturday, "weekend work here", fileTouch("a.go", 1)))

	assert.InDelta(t, 1.0, a.Finalize().Stability[0].OutOfHoursShare, 1e-9)
}

func TestOwnershipWindow(t *testing.T) {
	opts := utcOptions()
	opts.OwnershipWindow = 5
	a := newAggregator(t, opts)
	a.Add(mkCommit("a@x.com", monday, "create shared file", fileTouch("f.go", 1)))
	a.Add(mkCommit("b@x.com", monday.AddDate(0, 0, 1), "edit shared file", fileTouch("f.go", 1), fileTouch("g.go", 1)))
	a.Add(mkCommit("b@x.com", monday.AddDate(0, 0, 10), "edit it much later", fileTouch("f.go", 1)))

	ownership := a.Finalize().Ownership
	require.Len(t, ownership, 11)

	assert.Equal(t, 1, ownership[0].NewFiles)
	assert.InDelta(t, 1.0, ownership[0].SingleOwnerShare, 1e-9)

	assert.Equal(t, 1, ownership[1].NewFiles)
	assert.InDelta(t, 0.5, ownership[1].SingleOwnerShare, 1e-9)
	assert.InDelta(t, 1.5, ownership[1].AvgAuthorsPerFile, 1e-9)

	assert.Equal(t, 0, ownership[10].NewFiles)
	assert.InDelta(t, 1.0, ownership[10].SingleOwnerShare, 1e-9)
	assert.InDelta(t, 1.0, ownership[10].AvgAuthorsPerFile, 1e-9)
}

func TestCouplingDensity(t *testing.T) {
	a := newAggregator(t, utcOptions())
	a.Add(mkCommit("a@x.com", monday, "touch three files", fileTouch("a.go", 1), fileTouch("b.go", 1), fileTouch("c.go", 1)))
	a.Add(mkCommit("a@x.com", monday.Add(time.Hour), "touch two again", fileTouch("a.go", 1), fileTouch("b.go", 1)))
	a.Add(mkCommit("a@x.com", monday.Add(2*time.Hour), "touch one alone", fileTouch("d.go", 1)))

	c := a.Finalize().Coupling[0]
	assert.Equal(t, 2, c.MultiFileCommits)
	assert.Equal(t, 3, c.CoChangePairs)
	assert.InDelta(t, 0.5, c.CoChangeDensity, 1e-9)
}

func TestCouplingCapsLargeCommits(t *testing.T) {
	a := newAggregator(t, utcOptions())
	files := make([]schema.FileChange, 0, 60)
	for i := range 60 {
		files = append(files, fileTouch(time.Duration(i).String()+".go", 1))
	}
	a.Add(mkCommit("a@x.com", monday, "mass reformat of files", files...))

	c := a.Finalize().Coupling[0]
	assert.Equal(t, MaxFilesPerCommitForCoupling*(MaxFilesPerCommitForCoupling-1)/2, c.CoChangePairs)
	assert.LessOrEqual(t, c.CoChangeDensity, 1.0)
}

func TestHygiene(t *testing.T) {
	a := newAggregator(t, utcOptions())
	a.Add(mkCommit("a@x.com", monday, "feat: add parser support", fileTouch("a.go", 1)))
	a.Add(mkCommit("a@x.com", monday.Add(time.Hour), "wip", fileTouch("a.go", 1)))

	h := a.Finalize().Hygiene[0]
	assert.Equal(t, 1, h.ShortMessages)
	assert.Equal(t, 1, h.ConventionalCommits)
	assert.InDelta(t, 13.5, h.MedianMessageLength, 1e-9)
}

func TestLevel(t *testing.T) {
	tests := []struct {
		count, maxCount, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{3, 10, 2},
		{5, 10, 2},
		{6, 10, 3},
		{8, 10, 4},
		{10, 10, 4},
		{1, 1, 4},
		{3, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.count, tt.maxCount), "Level(%d, %d)", tt.count, tt.maxCount)
	}
}

func TestContributionsGraphWeeks(t *testing.T) {
	opts := utcOptions()
	wednesday := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	a := newAggregator(t, opts)
	a.Add(mkCommit("a@x.com", wednesday, "start of the range", fileTouch("a.go", 1)))
	a.Add(mkCommit("a@x.com", wednesday.Add(time.Hour), "start of the range again", fileTouch("a.go", 1)))
	a.Add(mkCommit("a@x.com", wednesday.AddDate(0, 0, 6), "end of the range", fileTouch("a.go", 1)))

	graph := a.Finalize().Contributions
	require.Len(t, graph.Weeks, 2)
	assert.Equal(t, "2023-12-31", graph.Weeks[0].Start)
	assert.Len(t, graph.Weeks[0].Days, 4) // Wed..Sat
	assert.Equal(t, "2024-01-07", graph.Weeks[1].Start)
	assert.Len(t, graph.Weeks[1].Days, 3) // Sun..Tue
	assert.Equal(t, 2, graph.MaxCount)
	assert.Equal(t, 3, graph.TotalContributions)

	first := graph.Weeks[0].Days[0]
	assert.Equal(t, "2024-01-03", first.Date)
	assert.Equal(t, int(time.Wednesday), first.Weekday)
	assert.Equal(t, 4, first.Level)
	assert.Equal(t, 2, graph.Weeks[1].Days[2].Level)
}
