package contract

import (
	"strings"
	"testing"
	"time"
)

// FuzzShouldIgnore checks exclude matching never panics on odd patterns and
// that an empty exclude list keeps every path.
func FuzzShouldIgnore(f *testing.F) {
	f.Add("cmd/main.go", "*.log")
	f.Add("web/vendor/lib.js", "vendor/")
	f.Add("assets/app.min.js", "**/*.min.js")
	f.Add("go.sum", "")
	f.Add("a/[b]/c.go", "a/[b/**")
	f.Add("", "{,}")

	f.Fuzz(func(t *testing.T, p string, patterns string) {
		if ShouldIgnore(p, nil) {
			t.Fatalf("path %q ignored without excludes", p)
		}
		_ = ShouldIgnore(p, strings.Split(patterns, ","))
		_ = ShouldIgnore(p, DefaultExcludes)
	})
}

// FuzzParseTimeInput checks that plain dates always resolve to midnight.
func FuzzParseTimeInput(f *testing.F) {
	f.Add("2024-01-02")
	f.Add("2024-01-02T15:04:05Z")
	f.Add("3 months ago")
	f.Add(" 1999-12-31 ")
	f.Add("yesterday")

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f.Fuzz(func(t *testing.T, s string) {
		got, err := ParseTimeInput(s, now, time.UTC)
		if err != nil {
			return
		}
		if _, dateErr := time.Parse("2006-01-02", strings.TrimSpace(s)); dateErr == nil && got.Hour() != 0 {
			t.Fatalf("date %q resolved to %v, want midnight", s, got)
		}
	})
}
