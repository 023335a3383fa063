package contract

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/huangsam/gitspark/schema"
)

// Color variables for console output, one per risk band.
var (
	HighColor    = color.New(color.FgRed, color.Bold) // HighColor represents standard danger.
	MediumColor  = color.New(color.FgYellow, color.Bold)
	LowColor     = color.New(color.FgCyan)
	MinimalColor = color.New(color.FgGreen)
)

// GetColorLabel returns a colored risk band label for console output (table).
func GetColorLabel(score float64) string {
	text := schema.GetPlainLabel(score)
	switch schema.GetRiskBand(score) {
	case schema.RiskHigh:
		return HighColor.Sprint(text)
	case schema.RiskMedium:
		return MediumColor.Sprint(text)
	case schema.RiskLow:
		return LowColor.Sprint(text)
	default:
		return MinimalColor.Sprint(text)
	}
}

// GetActivityColorLabel returns a colored activity rating for console output.
func GetActivityColorLabel(rating schema.ActivityRating) string {
	switch rating {
	case schema.ActivityHigh:
		return MinimalColor.Sprint(string(rating))
	case schema.ActivityModerate:
		return LowColor.Sprint(string(rating))
	case schema.ActivityLow:
		return MediumColor.Sprint(string(rating))
	default:
		return string(rating)
	}
}

// SelectOutputFile returns the file handle for output, or os.Stdout when
// filePath is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// Patterns with glob characters are matched with doublestar against the full
// path and against the base name, so "**/vendor/**" and "*.min.js" both work.
// Patterns ending with '/' are prefixes, patterns starting with '.' are
// suffixes, and anything else is a substring match.
func ShouldIgnore(p string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[{") {
			if ok, err := doublestar.Match(ex, p); err == nil && ok {
				return true
			}
			if ok, err := doublestar.Match(ex, path.Base(p)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(p, ex) || strings.Contains(p, "/"+ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(p, ex) {
				return true
			}
		case strings.Contains(p, ex):
			return true
		}
	}
	return false
}

// DefaultExcludes are lockfiles, generated assets and build output that only add noise.
var DefaultExcludes = []string{
	"Cargo.lock", "go.sum", "package-lock.json", "yarn.lock", "pnpm-lock.yaml", "composer.lock", "uv.lock", "poetry.lock",
	".min.js", ".min.css", ".map",
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico", ".mp4", ".mov", ".webm", ".mp3", ".ogg", ".pdf", ".webp",
	"dist/", "build/", "out/", "target/", "bin/", "node_modules/", "vendor/",
	".DS_Store",
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the report cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitspark_cache.db"
	}
	return filepath.Join(homeDir, ".gitspark_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitspark_analysis.db"
	}
	return filepath.Join(homeDir, ".gitspark_analysis.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// maxWidth must exceed 3 to leave room for the prefix and some content.
func TruncatePath(p string, maxWidth int) string {
	runes := []rune(p)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return p
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
