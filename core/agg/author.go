// Package agg folds the normalized commit stream into per-author, per-file
// and repository-wide aggregates.
package agg

import (
	"sort"
	"time"

	"github.com/huangsam/gitspark/core/algo"
	"github.com/huangsam/gitspark/schema"
)

// authorAcc accumulates one raw author identity before case-folded merging.
type authorAcc struct {
	stats schema.AuthorStats
	key   string
	files map[string]struct{}
	days  map[string]struct{}
}

// AuthorAggregator is a streaming fold keyed by author identity.
// Identities whose emails differ only in case are merged at Finalize.
type AuthorAggregator struct {
	loc   *time.Location
	hours schema.BusinessHours
	accs  map[string]*authorAcc // Raw email -> accumulator
}

// NewAuthorAggregator creates an aggregator that buckets hours and weekdays in loc.
func NewAuthorAggregator(loc *time.Location, hours schema.BusinessHours) *AuthorAggregator {
	if loc == nil {
		loc = time.Local
	}
	return &AuthorAggregator{
		loc:   loc,
		hours: hours,
		accs:  make(map[string]*authorAcc),
	}
}

// Add folds one commit into its author's accumulator.
func (a *AuthorAggregator) Add(c *schema.CommitRecord) {
	raw := c.AuthorEmail
	if raw == "" {
		raw = c.AuthorKey
	}

	acc, ok := a.accs[raw]
	if !ok {
		acc = &authorAcc{
			stats: schema.AuthorStats{Name: c.AuthorName},
			key:   c.AuthorKey,
			files: make(map[string]struct{}),
			days:  make(map[string]struct{}),
		}
		a.accs[raw] = acc
	}

	s := &acc.stats
	s.Name = preferName(s.Name, c.AuthorName)
	s.Commits++
	s.Insertions += c.Insertions
	s.Deletions += c.Deletions
	s.Churn += c.Churn()
	s.LargestCommit = max(s.LargestCommit, c.Churn())
	if s.FirstCommit.IsZero() || c.Timestamp.Before(s.FirstCommit) {
		s.FirstCommit = c.Timestamp
	}
	if c.Timestamp.After(s.LastCommit) {
		s.LastCommit = c.Timestamp
	}
	for _, fc := range c.Files {
		acc.files[fc.Path] = struct{}{}
	}

	local := c.Timestamp.In(a.loc)
	acc.days[local.Format(schema.DateLayout)] = struct{}{}
	s.HourHistogram[local.Hour()]++
	s.WeekdayHistogram[local.Weekday()]++
	switch {
	case IsWeekend(local):
		s.WeekendCommits++
	case !a.hours.Contains(local.Hour()):
		s.AfterHoursCommits++
	}
}

// Finalize returns one AuthorStats per case-folded email, sorted by commits
// descending then email ascending.
func (a *AuthorAggregator) Finalize() []schema.AuthorStats {
	raws := make([]string, 0, len(a.accs))
	for raw := range a.accs {
		raws = append(raws, raw)
	}
	sort.Strings(raws)

	merged := make(map[string]schema.AuthorStats)
	keys := make([]string, 0, len(raws))
	for _, raw := range raws {
		acc := a.accs[raw]
		s := acc.stats
		s.Email = acc.key
		s.FilesChanged = len(acc.files)
		s.ActiveDays = len(acc.days)
		s.AvgCommitSize = algo.SafeRatio(float64(s.Churn), float64(s.Commits))

		if existing, ok := merged[acc.key]; ok {
			merged[acc.key] = MergeAuthorStats(existing, s)
			continue
		}
		merged[acc.key] = s
		keys = append(keys, acc.key)
	}

	result := make([]schema.AuthorStats, 0, len(keys))
	for _, k := range keys {
		result = append(result, merged[k])
	}
	algo.SortAuthors(result)
	return result
}

// MergeAuthorStats combines two records for the same person. Counts and
// histograms sum; files changed, active days and largest commit take the
// maximum since the underlying sets are not tracked across identities.
func MergeAuthorStats(a, b schema.AuthorStats) schema.AuthorStats {
	m := schema.AuthorStats{
		Name:              preferName(a.Name, b.Name),
		Email:             a.Email,
		Commits:           a.Commits + b.Commits,
		Insertions:        a.Insertions + b.Insertions,
		Deletions:         a.Deletions + b.Deletions,
		Churn:             a.Churn + b.Churn,
		FilesChanged:      max(a.FilesChanged, b.FilesChanged),
		FirstCommit:       a.FirstCommit,
		LastCommit:        a.LastCommit,
		ActiveDays:        max(a.ActiveDays, b.ActiveDays),
		LargestCommit:     max(a.LargestCommit, b.LargestCommit),
		AfterHoursCommits: a.AfterHoursCommits + b.AfterHoursCommits,
		WeekendCommits:    a.WeekendCommits + b.WeekendCommits,
	}
	if m.Email == "" {
		m.Email = b.Email
	}
	if m.FirstCommit.IsZero() || (!b.FirstCommit.IsZero() && b.FirstCommit.Before(m.FirstCommit)) {
		m.FirstCommit = b.FirstCommit
	}
	if b.LastCommit.After(m.LastCommit) {
		m.LastCommit = b.LastCommit
	}
	for i := range m.HourHistogram {
		m.HourHistogram[i] = a.HourHistogram[i] + b.HourHistogram[i]
	}
	for i := range m.WeekdayHistogram {
		m.WeekdayHistogram[i] = a.WeekdayHistogram[i] + b.WeekdayHistogram[i]
	}
	m.AvgCommitSize = algo.SafeRatio(float64(m.Churn), float64(m.Commits))
	return m
}

// preferName picks the display name for a merged author: a name that does not
// look like an email wins, then the longer name, then the lexically smaller one.
func preferName(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	aEmail, bEmail := schema.LooksLikeEmail(a), schema.LooksLikeEmail(b)
	if aEmail != bEmail {
		if aEmail {
			return b
		}
		return a
	}
	if len(a) != len(b) {
		if len(a) > len(b) {
			return a
		}
		return b
	}
	return min(a, b)
}

// IsWeekend reports whether t falls on Saturday or Sunday in its own location.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
