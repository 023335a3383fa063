package algo

import (
	"testing"

	"github.com/huangsam/gitspark/schema"
	"github.com/stretchr/testify/assert"
)

// TestRankFiles tests file ranking logic.
func TestRankFiles(t *testing.T) {
	files := []schema.FileStats{
		{Path: "low.go", HotspotScore: 0.1},
		{Path: "high.go", HotspotScore: 0.9},
		{Path: "medium.go", HotspotScore: 0.5},
		{Path: "gone.go", HotspotScore: 0.99, Deleted: true},
		{Path: "critical.go", HotspotScore: 0.95},
		{Path: "also-high.go", HotspotScore: 0.9},
	}

	t.Run("rank and limit", func(t *testing.T) {
		ranked := RankFiles(files, 2)
		assert.Equal(t, 2, len(ranked))
		assert.Equal(t, "critical.go", ranked[0].Path)
		assert.Equal(t, "also-high.go", ranked[1].Path)
	})

	t.Run("limit exceeds length", func(t *testing.T) {
		ranked := RankFiles(files, 10)
		assert.Equal(t, 5, len(ranked))
	})

	t.Run("negative limit returns all", func(t *testing.T) {
		assert.Len(t, RankFiles(files, -1), 5)
	})

	t.Run("input is untouched", func(t *testing.T) {
		_ = RankFiles(files, 10)
		assert.Equal(t, "low.go", files[0].Path)
	})

	t.Run("scores in descending order", func(t *testing.T) {
		ranked := RankFiles(files, 10)
		for i := 1; i < len(ranked); i++ {
			assert.LessOrEqual(t, ranked[i].HotspotScore, ranked[i-1].HotspotScore)
		}
	})
}

func TestSortAuthors(t *testing.T) {
	authors := []schema.AuthorStats{
		{Email: "b@x.com", Commits: 2},
		{Email: "c@x.com", Commits: 5},
		{Email: "a@x.com", Commits: 2},
	}
	SortAuthors(authors)
	assert.Equal(t, "c@x.com", authors[0].Email)
	assert.Equal(t, "a@x.com", authors[1].Email)
	assert.Equal(t, "b@x.com", authors[2].Email)
}

func TestSortFiles(t *testing.T) {
	files := []schema.FileStats{{Path: "b"}, {Path: "a"}, {Path: "c"}}
	SortFiles(files)
	assert.Equal(t, "a", files[0].Path)
	assert.Equal(t, "c", files[2].Path)
}
