package algo

import (
	"sort"

	"github.com/huangsam/gitspark/schema"
)

// RankFiles returns a copy of files sorted by hotspot score in descending order,
// ties broken by path, limited to the top 'limit' entries. Deleted files are skipped.
// If limit is negative, all live files are returned in sorted order.
func RankFiles(files []schema.FileStats, limit int) []schema.FileStats {
	ranked := make([]schema.FileStats, 0, len(files))
	for _, f := range files {
		if !f.Deleted {
			ranked = append(ranked, f)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].HotspotScore != ranked[j].HotspotScore {
			return ranked[i].HotspotScore > ranked[j].HotspotScore
		}
		return ranked[i].Path < ranked[j].Path
	})
	if limit >= 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

// SortAuthors sorts authors in place by commit count descending, then email ascending.
func SortAuthors(authors []schema.AuthorStats) {
	sort.SliceStable(authors, func(i, j int) bool {
		if authors[i].Commits != authors[j].Commits {
			return authors[i].Commits > authors[j].Commits
		}
		return authors[i].Email < authors[j].Email
	})
}

// SortFiles sorts files in place by path.
func SortFiles(files []schema.FileStats) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
}
