// Package trends buckets the commit stream into contiguous calendar-day series.
package trends

import (
	"fmt"
	"sort"
	"time"
	_ "time/tzdata" // Trends default to a named zone even on hosts without zoneinfo

	"github.com/huangsam/gitspark/core/agg"
	"github.com/huangsam/gitspark/core/algo"
	"github.com/huangsam/gitspark/core/governance"
	"github.com/huangsam/gitspark/schema"
)

// MaxFilesPerCommitForCoupling caps the files of one commit counted toward
// co-change pairs, so mass reformat commits do not dominate a day.
const MaxFilesPerCommitForCoupling = 50

// dayAcc collects one local calendar day.
type dayAcc struct {
	commits        int
	authors        map[string]struct{}
	insertions     int
	deletions      int
	files          map[string]struct{}
	fileAuthors    map[string]map[string]struct{}
	sizes          []float64
	reverts        int
	merges         int
	renames        int
	outOfHours     int
	pairs          map[[2]string]struct{}
	multiFile      int
	messageLengths []float64
	shortMessages  int
	conventional   int
}

// Aggregator is a streaming fold from commits to per-day accumulators.
// Window computations run at Finalize in calendar order, so they do not depend
// on the order in which commits arrive.
type Aggregator struct {
	loc             *time.Location
	tzName          string
	hours           schema.BusinessHours
	retouchWindow   int
	ownershipWindow int
	shortMessage    int
	since           time.Time
	until           time.Time
	days            map[string]*dayAcc
}

// New creates an Aggregator from analysis options. It fails on an unknown timezone.
func New(opts schema.AnalysisOptions) (*Aggregator, error) {
	tz := opts.TrendsTimezone
	if tz == "" {
		tz = schema.DefaultTrendsTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid trends timezone %q: %w", tz, err)
	}
	return &Aggregator{
		loc:             loc,
		tzName:          tz,
		hours:           opts.BusinessHours,
		retouchWindow:   opts.RetouchWindow,
		ownershipWindow: opts.OwnershipWindow,
		shortMessage:    opts.Governance.ShortMessage,
		since:           opts.Since,
		until:           opts.Until,
		days:            make(map[string]*dayAcc),
	}, nil
}

// Add folds one commit into its local calendar day.
func (a *Aggregator) Add(c *schema.CommitRecord) {
	local := c.Timestamp.In(a.loc)
	key := local.Format(schema.DateLayout)
	d, ok := a.days[key]
	if !ok {
		d = &dayAcc{
			authors:     make(map[string]struct{}),
			files:       make(map[string]struct{}),
			fileAuthors: make(map[string]map[string]struct{}),
			pairs:       make(map[[2]string]struct{}),
		}
		a.days[key] = d
	}

	d.commits++
	d.authors[c.AuthorKey] = struct{}{}
	d.insertions += c.Insertions
	d.deletions += c.Deletions
	d.sizes = append(d.sizes, float64(c.Churn()))
	if governance.IsRevert(c.Message) {
		d.reverts++
	}
	if c.IsMerge {
		d.merges++
	}
	if agg.IsWeekend(local) || !a.hours.Contains(local.Hour()) {
		d.outOfHours++
	}

	paths := make([]string, 0, len(c.Files))
	for _, fc := range c.Files {
		if fc.Status == schema.StatusRenamed {
			d.renames++
		}
		d.files[fc.Path] = struct{}{}
		authors, ok := d.fileAuthors[fc.Path]
		if !ok {
			authors = make(map[string]struct{})
			d.fileAuthors[fc.Path] = authors
		}
		authors[c.AuthorKey] = struct{}{}
		paths = append(paths, fc.Path)
	}
	if len(paths) > 1 {
		d.multiFile++
		sort.Strings(paths)
		if len(paths) > MaxFilesPerCommitForCoupling {
			paths = paths[:MaxFilesPerCommitForCoupling]
		}
		for i := 0; i < len(paths); i++ {
			for j := i + 1; j < len(paths); j++ {
				if paths[i] != paths[j] {
					d.pairs[[2]string{paths[i], paths[j]}] = struct{}{}
				}
			}
		}
	}

	d.messageLengths = append(d.messageLengths, float64(len([]rune(c.Subject))))
	if governance.IsShort(c.Subject, a.shortMessage) {
		d.shortMessages++
	}
	if governance.IsConventional(c.Subject) {
		d.conventional++
	}
}

// touch is one author's change to a file on a day index.
type touch struct {
	day    int
	author string
}

// Finalize emits one row per calendar day in the window, gap days included.
// Commits outside an explicit Since/Until window do not appear in any row.
func (a *Aggregator) Finalize() schema.DailyTrendsData {
	data := schema.DailyTrendsData{
		Metadata: schema.TrendsMetadata{
			Timezone:            a.tzName,
			RetouchWindowDays:   a.retouchWindow,
			OwnershipWindowDays: a.ownershipWindow,
			PercentileMethod:    schema.PercentileMethod,
			BusinessHours:       a.hours,
		},
		Flow:      []schema.FlowMetrics{},
		Stability: []schema.StabilityMetrics{},
		Ownership: []schema.OwnershipMetrics{},
		Coupling:  []schema.CouplingMetrics{},
		Hygiene:   []schema.HygieneMetrics{},
	}

	start, end, ok := a.window()
	if !ok {
		data.Contributions = ContributionsGraph(nil)
		return data
	}
	data.Metadata.StartDate = start.Format(schema.DateLayout)
	data.Metadata.EndDate = end.Format(schema.DateLayout)

	lastTouch := make(map[string]int)
	history := make(map[string][]touch)
	counts := make([]schema.ContributionDay, 0)

	idx := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(schema.DateLayout)
		d := a.days[key]
		if d == nil {
			d = &dayAcc{}
		}
		if d.commits > 0 {
			data.Metadata.ActiveDays++
		}

		data.Flow = append(data.Flow, schema.FlowMetrics{
			Date:          key,
			Commits:       d.commits,
			Authors:       len(d.authors),
			Insertions:    d.insertions,
			Deletions:     d.deletions,
			Churn:         d.insertions + d.deletions,
			Files:         len(d.files),
			P50CommitSize: algo.Percentile(d.sizes, 0.5),
			P90CommitSize: algo.Percentile(d.sizes, 0.9),
		})

		files := sortedKeys(d.files)
		retouched := 0
		for _, f := range files {
			if last, seen := lastTouch[f]; seen && idx-last <= a.retouchWindow {
				retouched++
			}
		}
		data.Stability = append(data.Stability, schema.StabilityMetrics{
			Date:            key,
			Reverts:         d.reverts,
			Merges:          d.merges,
			MergeRatio:      algo.SafeRatio(float64(d.merges), float64(d.commits)),
			RetouchedFiles:  retouched,
			RetouchRate:     algo.SafeRatio(float64(retouched), float64(len(files))),
			Renames:         d.renames,
			OutOfHoursShare: algo.SafeRatio(float64(d.outOfHours), float64(d.commits)),
		})

		newFiles, singleOwner, authorSum := 0, 0, 0
		for _, f := range files {
			if _, seen := lastTouch[f]; !seen {
				newFiles++
			}
			lastTouch[f] = idx
			for _, author := range sortedKeys(d.fileAuthors[f]) {
				history[f] = append(history[f], touch{day: idx, author: author})
			}
			history[f] = prune(history[f], idx-a.ownershipWindow+1)
			distinct := distinctAuthors(history[f])
			authorSum += distinct
			if distinct == 1 {
				singleOwner++
			}
		}
		data.Ownership = append(data.Ownership, schema.OwnershipMetrics{
			Date:              key,
			NewFiles:          newFiles,
			SingleOwnerShare:  algo.SafeRatio(float64(singleOwner), float64(len(files))),
			AvgAuthorsPerFile: algo.SafeRatio(float64(authorSum), float64(len(files))),
		})

		possible := float64(len(files)) * float64(len(files)-1) / 2
		data.Coupling = append(data.Coupling, schema.CouplingMetrics{
			Date:             key,
			MultiFileCommits: d.multiFile,
			CoChangePairs:    len(d.pairs),
			CoChangeDensity:  algo.Clamp01(algo.SafeRatio(float64(len(d.pairs)), possible)),
		})

		data.Hygiene = append(data.Hygiene, schema.HygieneMetrics{
			Date:                key,
			MedianMessageLength: algo.Median(d.messageLengths),
			ShortMessages:       d.shortMessages,
			ConventionalCommits: d.conventional,
		})

		counts = append(counts, schema.ContributionDay{Date: key, Weekday: int(day.Weekday()), Count: d.commits})
		idx++
	}

	data.Metadata.TotalDays = idx
	data.Contributions = ContributionsGraph(counts)
	return data
}

// window returns the first and last local calendar day to emit, as midnight
// UTC values so that stepping by one day never crosses a DST transition.
// Since and Until bound the range when set; otherwise the first and last
// commit days do.
func (a *Aggregator) window() (time.Time, time.Time, bool) {
	var first, last time.Time
	for key := range a.days {
		t, _ := time.Parse(schema.DateLayout, key)
		if first.IsZero() || t.Before(first) {
			first = t
		}
		if last.IsZero() || t.After(last) {
			last = t
		}
	}
	start, end := first, last
	if !a.since.IsZero() {
		start = a.calendarDay(a.since)
	}
	if !a.until.IsZero() {
		end = a.calendarDay(a.until)
	}
	switch {
	case start.IsZero() && end.IsZero():
		return start, end, false
	case start.IsZero():
		start = end
	case end.IsZero():
		end = start
	}
	if end.Before(start) {
		return start, end, false
	}
	return start, end, true
}

func (a *Aggregator) calendarDay(t time.Time) time.Time {
	l := t.In(a.loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// ContributionsGraph groups daily counts into Sunday-start weeks and assigns
// intensity levels 0-4 relative to the busiest day.
func ContributionsGraph(days []schema.ContributionDay) schema.ContributionsGraph {
	graph := schema.ContributionsGraph{Weeks: []schema.ContributionWeek{}}
	for _, d := range days {
		graph.MaxCount = max(graph.MaxCount, d.Count)
		graph.TotalContributions += d.Count
	}

	for _, d := range days {
		d.Level = Level(d.Count, graph.MaxCount)
		if len(graph.Weeks) == 0 || d.Weekday == int(time.Sunday) {
			t, _ := time.Parse(schema.DateLayout, d.Date)
			weekStart := t.AddDate(0, 0, -d.Weekday)
			graph.Weeks = append(graph.Weeks, schema.ContributionWeek{Start: weekStart.Format(schema.DateLayout)})
		}
		w := &graph.Weeks[len(graph.Weeks)-1]
		w.Days = append(w.Days, d)
	}
	return graph
}

// Level maps a count to 0-4 as ceil(4*count/maxCount).
func Level(count, maxCount int) int {
	if count <= 0 || maxCount <= 0 {
		return 0
	}
	level := (4*count + maxCount - 1) / maxCount
	return min(max(level, 1), 4)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// prune drops touches before the first day still inside the window.
func prune(touches []touch, firstDay int) []touch {
	i := 0
	for i < len(touches) && touches[i].day < firstDay {
		i++
	}
	return touches[i:]
}

func distinctAuthors(touches []touch) int {
	seen := make(map[string]struct{}, len(touches))
	for _, t := range touches {
		seen[t.author] = struct{}{}
	}
	return len(seen)
}
