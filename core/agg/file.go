package agg

import (
	"fmt"
	"sort"
	"time"

	"github.com/huangsam/gitspark/schema"
)

// fileAcc accumulates one path. Ownership churn is kept as integers until Finalize.
type fileAcc struct {
	stats         schema.FileStats
	churnByAuthor map[string]int
}

// FileAggregator is a streaming fold keyed by path.
// A rename moves the old path's accumulator to the new path when the old
// path was seen earlier in the window. Nothing beyond that is inferred.
type FileAggregator struct {
	accs     map[string]*fileAcc
	warnings []string
}

// NewFileAggregator creates an empty FileAggregator.
func NewFileAggregator() *FileAggregator {
	return &FileAggregator{accs: make(map[string]*fileAcc)}
}

// Add folds every file change of one commit.
func (f *FileAggregator) Add(c *schema.CommitRecord) {
	others := len(c.Files) - 1
	for _, fc := range c.Files {
		if fc.Status == schema.StatusRenamed && fc.OldPath != "" {
			f.carryRename(c, fc)
		}

		acc := f.get(fc.Path)
		s := &acc.stats
		s.Commits++
		s.Insertions += fc.Insertions
		s.Deletions += fc.Deletions
		s.Churn += fc.Churn()
		s.NetLines += fc.Insertions - fc.Deletions
		s.CoChanges += others
		s.Deleted = fc.Status == schema.StatusDeleted
		if s.FirstChange.IsZero() || c.Timestamp.Before(s.FirstChange) {
			s.FirstChange = c.Timestamp
		}
		if c.Timestamp.After(s.LastChange) {
			s.LastChange = c.Timestamp
		}
		acc.churnByAuthor[c.AuthorKey] += fc.Churn()
	}
}

// get returns the accumulator for path, creating it on first touch.
func (f *FileAggregator) get(path string) *fileAcc {
	acc, ok := f.accs[path]
	if !ok {
		acc = &fileAcc{
			stats:         schema.FileStats{Path: path, Language: DetectLanguage(path)},
			churnByAuthor: make(map[string]int),
		}
		f.accs[path] = acc
	}
	return acc
}

// carryRename links the old path's history to the new path.
func (f *FileAggregator) carryRename(c *schema.CommitRecord, fc schema.FileChange) {
	old, ok := f.accs[fc.OldPath]
	if !ok {
		return
	}
	if _, taken := f.accs[fc.Path]; taken {
		f.warnings = append(f.warnings, fmt.Sprintf("commit %s: rename %s => %s targets a path already tracked, histories kept apart", c.ShortHash, fc.OldPath, fc.Path))
		return
	}
	delete(f.accs, fc.OldPath)
	old.stats.Path = fc.Path
	old.stats.Language = DetectLanguage(fc.Path)
	f.accs[fc.Path] = old
}

// Warnings returns non-fatal conditions met while folding.
func (f *FileAggregator) Warnings() []string {
	return f.warnings
}

// Finalize returns one FileStats per path sorted by path, with ownership
// normalized to shares of churn. When a file has no churn at all, ownership
// is split equally among its contributors.
func (f *FileAggregator) Finalize() []schema.FileStats {
	result := make([]schema.FileStats, 0, len(f.accs))
	for _, acc := range f.accs {
		s := acc.stats
		s.Authors = make([]string, 0, len(acc.churnByAuthor))
		total := 0
		for author, churn := range acc.churnByAuthor {
			s.Authors = append(s.Authors, author)
			total += churn
		}
		sort.Strings(s.Authors)

		s.Ownership = make(map[string]float64, len(s.Authors))
		for _, author := range s.Authors {
			if total == 0 {
				s.Ownership[author] = 1.0 / float64(len(s.Authors))
				continue
			}
			s.Ownership[author] = float64(acc.churnByAuthor[author]) / float64(total)
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})
	return result
}

// RepoAggregator folds repository-wide totals.
type RepoAggregator struct {
	loc     *time.Location
	stats   schema.RepositoryStats
	days    map[string]struct{}
	authors map[string]struct{}
}

// NewRepoAggregator creates a RepoAggregator bucketing days in loc.
func NewRepoAggregator(loc *time.Location) *RepoAggregator {
	if loc == nil {
		loc = time.Local
	}
	return &RepoAggregator{
		loc:     loc,
		days:    make(map[string]struct{}),
		authors: make(map[string]struct{}),
	}
}

// Add folds one commit into the totals.
func (r *RepoAggregator) Add(c *schema.CommitRecord) {
	s := &r.stats
	s.TotalCommits++
	s.TotalInsertions += c.Insertions
	s.TotalDeletions += c.Deletions
	s.TotalChurn += c.Churn()
	if c.IsMerge {
		s.MergeCommits++
	}
	if s.FirstCommit.IsZero() || c.Timestamp.Before(s.FirstCommit) {
		s.FirstCommit = c.Timestamp
	}
	if c.Timestamp.After(s.LastCommit) {
		s.LastCommit = c.Timestamp
	}
	r.days[c.Timestamp.In(r.loc).Format(schema.DateLayout)] = struct{}{}
	r.authors[c.AuthorKey] = struct{}{}
}

// Finalize completes the totals using the finalized file list.
// Average commits per day is taken over the calendar span from the first to
// the last commit day, inclusive.
func (r *RepoAggregator) Finalize(files []schema.FileStats) schema.RepositoryStats {
	s := r.stats
	s.TotalAuthors = len(r.authors)
	s.TotalFiles = len(files)
	s.ActiveDays = len(r.days)
	s.Languages = make(map[string]schema.LanguageStats)
	for _, fs := range files {
		ls := s.Languages[fs.Language]
		ls.Files++
		ls.Insertions += fs.Insertions
		ls.Deletions += fs.Deletions
		ls.Churn += fs.Churn
		s.Languages[fs.Language] = ls
	}
	if s.TotalCommits > 0 {
		s.AvgCommitsPerDay = float64(s.TotalCommits) / float64(SpanDays(s.FirstCommit, s.LastCommit, r.loc))
	}
	return s
}

// SpanDays returns the number of calendar days from first to last inclusive in loc.
func SpanDays(first, last time.Time, loc *time.Location) int {
	if first.IsZero() || last.IsZero() {
		return 0
	}
	a := first.In(loc)
	b := last.In(loc)
	start := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours()/24) + 1
}
