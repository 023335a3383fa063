package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/internal/outwriter"
	"github.com/huangsam/gitspark/schema"
)

// ErrCheckFailed is returned by ExecuteCheck when at least one hotspot violates the risk ceiling.
var ErrCheckFailed = errors.New("risk check failed")

// ExecuteCheck runs the check command for CI/CD gating.
// It analyzes the configured range and returns ErrCheckFailed when any
// surfaced hotspot has a risk score at or above cfg.MaxRisk.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeCheck(ctx, cfg, contract.NewLocalGitClient(), mgr)
}

func executeCheck(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) error {
	start := time.Now()

	progress := progressFrom(ctx)
	progress.Start()
	report, err := RunAnalysis(ctx, cfg, client, mgr)
	progress.Stop()
	if err != nil {
		return err
	}

	result := EvaluateCheck(report, cfg.MaxRisk)
	if err := outwriter.NewOutWriter().WriteCheck(result, cfg, time.Since(start)); err != nil {
		return err
	}

	if !result.Passed {
		return fmt.Errorf("%w: %d violation(s) at or above %.2f", ErrCheckFailed, len(result.Violations), cfg.MaxRisk)
	}
	return nil
}

// EvaluateCheck compares every surfaced hotspot against maxRisk.
func EvaluateCheck(report *schema.AnalysisReport, maxRisk float64) schema.CheckResult {
	result := schema.CheckResult{
		MaxRisk:    maxRisk,
		Checked:    len(report.Hotspots),
		Violations: []schema.Hotspot{},
	}
	for _, h := range report.Hotspots {
		if h.RiskScore >= maxRisk {
			result.Violations = append(result.Violations, h)
		}
	}
	result.Passed = len(result.Violations) == 0
	return result
}
