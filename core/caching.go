package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/schema"
)

// currentCacheVersion defines the version of the cached report layout.
const currentCacheVersion = 1

// cacheTTL bounds how long a cached report is trusted.
const cacheTTL = 7 * 24 * time.Hour

// checkCacheHit attempts to retrieve and validate a cached report.
func checkCacheHit(store contract.CacheStore, key string) *schema.AnalysisReport {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	if version != currentCacheVersion {
		return nil
	}
	if time.Since(time.Unix(ts, 0)) > cacheTTL {
		return nil
	}

	var report schema.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil
	}
	return &report
}

// computeAndStore computes the report and stores it in the cache.
func computeAndStore(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, store contract.CacheStore, key string) (*schema.AnalysisReport, error) {
	report, err := analyzeRepository(ctx, cfg, client, mgr)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(report); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache report", err)
		}
	}
	return report, nil
}

// generateCacheKey creates a unique key from the repository state and the
// resolved options. A new commit on the analyzed ref changes the key.
func generateCacheKey(ctx context.Context, cfg *contract.Config, client contract.GitClient) string {
	repoHash, err := client.GetRepoHash(ctx, cfg.RepoPath, cfg.Branch)
	if err != nil {
		repoHash = ""
	}

	optsJSON, err := json.Marshal(cfg.Options)
	if err != nil {
		optsJSON = nil
	}

	// AuthorLocation is not serialized and may fall back to the host zone.
	key := fmt.Sprintf("%s:%s:%s:%d:%d:%s:%s:%s",
		cfg.RepoPath,
		cfg.Branch,
		cfg.PathFilter,
		unixOrZero(cfg.Options.Since),
		unixOrZero(cfg.Options.Until),
		authorLocation(cfg.Options).String(),
		repoHash,
		optsJSON,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
