// Package risk derives per-file risk and hotspot scores from finalized file stats.
package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/huangsam/gitspark/core/algo"
	"github.com/huangsam/gitspark/schema"
)

// WeightTolerance is how far the weight sum may drift from 1.0.
const WeightTolerance = 0.001

// Context is the repository-wide normalization context shared by all files.
type Context struct {
	MaxChurn     float64
	MaxCommits   float64
	MaxNetLines  float64
	MaxCoupling  float64
	MaxAuthors   int
	Reference    time.Time // Recency is measured back from this instant
	HalfLifeDays float64
}

// NewContext computes the normalization maxima over files. The reference time
// should be the end of the analysis window; when zero, the latest change is used.
func NewContext(files []schema.FileStats, reference time.Time, halfLifeDays float64) Context {
	ctx := Context{Reference: reference, HalfLifeDays: halfLifeDays}
	if ctx.HalfLifeDays <= 0 {
		ctx.HalfLifeDays = schema.DefaultRecencyHalfLife
	}
	for _, f := range files {
		ctx.MaxChurn = math.Max(ctx.MaxChurn, float64(f.Churn))
		ctx.MaxCommits = math.Max(ctx.MaxCommits, float64(f.Commits))
		ctx.MaxNetLines = math.Max(ctx.MaxNetLines, float64(f.NetLines))
		ctx.MaxCoupling = math.Max(ctx.MaxCoupling, coupling(f))
		ctx.MaxAuthors = max(ctx.MaxAuthors, len(f.Ownership))
		if reference.IsZero() && f.LastChange.After(ctx.Reference) {
			ctx.Reference = f.LastChange
		}
	}
	return ctx
}

// ValidateWeights checks that every factor has a non-negative weight and that
// the weights sum to 1.0 within WeightTolerance.
func ValidateWeights(weights map[schema.RiskFactor]float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("risk weights are empty")
	}
	valid := make(map[schema.RiskFactor]struct{}, len(schema.AllRiskFactors))
	for _, f := range schema.AllRiskFactors {
		valid[f] = struct{}{}
	}
	sum := 0.0
	for factor, w := range weights {
		if _, ok := valid[factor]; !ok {
			return fmt.Errorf("unknown risk factor %q", factor)
		}
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("risk weight for %s must be non-negative, got %v", factor, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > WeightTolerance {
		return fmt.Errorf("risk weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

// Factors returns each normalized [0,1] risk factor for one file.
func Factors(f schema.FileStats, ctx Context) map[schema.RiskFactor]float64 {
	return map[schema.RiskFactor]float64{
		schema.FactorChurn:     algo.LogNormalize(float64(f.Churn), ctx.MaxChurn),
		schema.FactorRecency:   recency(f.LastChange, ctx),
		schema.FactorOwnership: ownershipSpread(f, ctx.MaxAuthors),
		schema.FactorCoupling:  algo.Clamp01(algo.SafeRatio(coupling(f), ctx.MaxCoupling)),
		schema.FactorSize:      algo.LogNormalize(float64(f.NetLines), ctx.MaxNetLines),
	}
}

// Score returns the weighted composite risk in [0,1] along with its factors.
func Score(f schema.FileStats, ctx Context, weights map[schema.RiskFactor]float64) (float64, map[schema.RiskFactor]float64) {
	factors := Factors(f, ctx)
	var raw float64
	for _, factor := range schema.AllRiskFactors {
		raw += weights[factor] * factors[factor]
	}
	return algo.Clamp01(raw), factors
}

// HotspotScore weighs activity only: half commit count, half churn, both log-normalized.
func HotspotScore(f schema.FileStats, ctx Context) float64 {
	return algo.Clamp01(0.5*algo.LogNormalize(float64(f.Commits), ctx.MaxCommits) +
		0.5*algo.LogNormalize(float64(f.Churn), ctx.MaxChurn))
}

// ScoreFiles returns a copy of files with RiskScore and HotspotScore filled in.
func ScoreFiles(files []schema.FileStats, ctx Context, weights map[schema.RiskFactor]float64) []schema.FileStats {
	scored := make([]schema.FileStats, len(files))
	for i, f := range files {
		f.RiskScore, _ = Score(f, ctx, weights)
		f.HotspotScore = HotspotScore(f, ctx)
		scored[i] = f
	}
	return scored
}

// Hotspots returns the top files by hotspot score, skipping deleted paths.
func Hotspots(files []schema.FileStats, ctx Context, limit int) []schema.Hotspot {
	ranked := algo.RankFiles(files, limit)
	hotspots := make([]schema.Hotspot, len(ranked))
	for i, f := range ranked {
		hotspots[i] = schema.Hotspot{
			Rank:         i + 1,
			Path:         f.Path,
			HotspotScore: f.HotspotScore,
			RiskScore:    f.RiskScore,
			Band:         schema.GetRiskBand(f.RiskScore),
			Commits:      f.Commits,
			Churn:        f.Churn,
			Authors:      len(f.Authors),
			LastChange:   f.LastChange,
			Factors:      Factors(f, ctx),
		}
	}
	return hotspots
}

// Summarize counts files per risk band and records the extremes.
func Summarize(files []schema.FileStats, weights map[schema.RiskFactor]float64) schema.RiskSummary {
	summary := schema.RiskSummary{
		Weights:    make(map[schema.RiskFactor]float64, len(weights)),
		BandCounts: make(map[schema.RiskBand]int, len(schema.AllRiskBands)),
	}
	for k, v := range weights {
		summary.Weights[k] = v
	}
	for _, band := range schema.AllRiskBands {
		summary.BandCounts[band] = 0
	}

	var total float64
	for _, f := range files {
		summary.BandCounts[schema.GetRiskBand(f.RiskScore)]++
		total += f.RiskScore
		if f.RiskScore > summary.MaxRisk || (f.RiskScore == summary.MaxRisk && summary.MaxRiskPath == "") {
			summary.MaxRisk = f.RiskScore
			summary.MaxRiskPath = f.Path
		}
	}
	summary.AverageRisk = algo.SafeRatio(total, float64(len(files)))
	return summary
}

// recency decays by half every HalfLifeDays before the reference time.
func recency(last time.Time, ctx Context) float64 {
	if last.IsZero() || ctx.Reference.IsZero() {
		return 0
	}
	days := ctx.Reference.Sub(last).Hours() / 24
	if days < 0 {
		days = 0
	}
	return algo.Clamp01(math.Pow(0.5, days/ctx.HalfLifeDays))
}

// ownershipSpread is the ownership entropy scaled by the largest possible entropy
// seen in the repository, so a file shared evenly by many authors scores high.
func ownershipSpread(f schema.FileStats, maxAuthors int) float64 {
	if maxAuthors <= 1 || len(f.Ownership) <= 1 {
		return 0
	}
	shares := make([]float64, 0, len(f.Ownership))
	for _, author := range f.Authors {
		shares = append(shares, f.Ownership[author])
	}
	return algo.Clamp01(algo.Entropy(shares) / math.Log2(float64(maxAuthors)))
}

// coupling is the average number of other files changed alongside this one.
func coupling(f schema.FileStats) float64 {
	return algo.SafeRatio(float64(f.CoChanges), float64(f.Commits))
}
