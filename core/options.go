package core

import (
	"fmt"
	"time"

	"github.com/huangsam/gitspark/core/risk"
	"github.com/huangsam/gitspark/schema"
)

// ValidateOptions fails fast on any option the pipeline cannot consume.
// Every error wraps ErrInvalidOptions.
func ValidateOptions(opts schema.AnalysisOptions) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
	}

	if err := risk.ValidateWeights(opts.RiskWeights); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if _, err := time.LoadLocation(opts.TrendsTimezone); err != nil || opts.TrendsTimezone == "" {
		return invalid("unknown trends timezone %q", opts.TrendsTimezone)
	}
	if opts.AuthorTimezone != "" {
		if _, err := time.LoadLocation(opts.AuthorTimezone); err != nil {
			return invalid("unknown author timezone %q", opts.AuthorTimezone)
		}
	}

	bh := opts.BusinessHours
	if bh.Start < 0 || bh.End > 24 || bh.Start >= bh.End {
		return invalid("business hours must satisfy 0 <= start < end <= 24, got %d-%d", bh.Start, bh.End)
	}
	if opts.RetouchWindow <= 0 {
		return invalid("retouch window must be positive, got %d", opts.RetouchWindow)
	}
	if opts.OwnershipWindow <= 0 {
		return invalid("ownership window must be positive, got %d", opts.OwnershipWindow)
	}
	if opts.BusFactorTarget <= 0 || opts.BusFactorTarget > 1 {
		return invalid("bus factor target must be in (0, 1], got %v", opts.BusFactorTarget)
	}
	if opts.MaxHotspots < 0 {
		return invalid("max hotspots must not be negative, got %d", opts.MaxHotspots)
	}
	if opts.RecencyHalfLife <= 0 {
		return invalid("recency half-life must be positive, got %v", opts.RecencyHalfLife)
	}

	g := opts.Governance
	if g.ShortMessage < 0 || g.SmallCommit < 0 || g.LargeCommit <= 0 {
		return invalid("governance thresholds must not be negative and large commit must be positive")
	}
	if g.SmallCommit >= g.LargeCommit {
		return invalid("small commit threshold %d must be below large commit threshold %d", g.SmallCommit, g.LargeCommit)
	}

	if !opts.Since.IsZero() && !opts.Until.IsZero() && opts.Until.Before(opts.Since) {
		return invalid("until %s is before since %s", opts.Until.Format(time.RFC3339), opts.Since.Format(time.RFC3339))
	}
	return nil
}

// authorLocation resolves where author histograms are bucketed.
// An explicit AuthorLocation wins over AuthorTimezone; the fallback is time.Local.
func authorLocation(opts schema.AnalysisOptions) *time.Location {
	if opts.AuthorLocation != nil {
		return opts.AuthorLocation
	}
	if opts.AuthorTimezone != "" {
		if loc, err := time.LoadLocation(opts.AuthorTimezone); err == nil {
			return loc
		}
	}
	return time.Local
}

// hotspotLimit maps MaxHotspots to a ranking limit; zero surfaces every file.
func hotspotLimit(maxHotspots int) int {
	if maxHotspots == 0 {
		return -1
	}
	return maxHotspots
}
