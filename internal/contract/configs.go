package contract

import (
	"context"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/gitspark/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 1
	DefaultMaxRisk   = 0.7
)

// CacheGranularity defines the time granularity for relative time windows.
// Relative inputs like "6 months ago" are truncated to it so that repeated
// runs within the same hour resolve to the same window and cache key.
const CacheGranularity = time.Hour

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// WeightsRawInput holds custom risk weights from the YAML config file.
// Pointers distinguish "not provided" from zero.
type WeightsRawInput struct {
	Churn     *float64 `mapstructure:"churn"`
	Recency   *float64 `mapstructure:"recency"`
	Ownership *float64 `mapstructure:"ownership"`
	Coupling  *float64 `mapstructure:"coupling"`
	Size      *float64 `mapstructure:"size"`
}

// Config holds the runtime configuration for the analysis.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath   string
	Branch     string
	PathFilter string

	// Options is handed to the core unchanged.
	Options schema.AnalysisOptions

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	MaxRisk float64 // Risk ceiling enforced by the check command

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Window and source ---
	Since    string `mapstructure:"since"`
	Until    string `mapstructure:"until"`
	Lookback string `mapstructure:"lookback"`
	Branch   string `mapstructure:"branch"`
	Filter   string `mapstructure:"filter"`
	Exclude  string `mapstructure:"exclude"`

	// --- Analysis options ---
	AuthorTimezone  string  `mapstructure:"author-timezone"`
	Timezone        string  `mapstructure:"timezone"`
	BusinessStart   int     `mapstructure:"business-start"`
	BusinessEnd     int     `mapstructure:"business-end"`
	RetouchWindow   int     `mapstructure:"retouch-window"`
	OwnershipWindow int     `mapstructure:"ownership-window"`
	BusFactorTarget float64 `mapstructure:"bus-factor-target"`
	MaxHotspots     int     `mapstructure:"max-hotspots"`
	RecencyHalfLife float64 `mapstructure:"recency-half-life"`
	ShortMessage    int     `mapstructure:"short-message"`
	LargeCommit     int     `mapstructure:"large-commit"`
	SmallCommit     int     `mapstructure:"small-commit"`

	// --- Output ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`

	// --- Storage ---
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`

	// --- Fields from checkCmd.Flags() ---
	MaxRisk float64 `mapstructure:"max-risk"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Options.Excludes != nil {
		clone.Options.Excludes = make([]string, len(c.Options.Excludes))
		copy(clone.Options.Excludes, c.Options.Excludes)
	}
	if c.Options.RiskWeights != nil {
		clone.Options.RiskWeights = make(map[schema.RiskFactor]float64, len(c.Options.RiskWeights))
		maps.Copy(clone.Options.RiskWeights, c.Options.RiskWeights)
	}
	return &clone
}

// CloneWithTimeWindow creates a copy of the Config and sets a new Since and Until.
func (c *Config) CloneWithTimeWindow(since time.Time, until time.Time) *Config {
	clone := c.Clone()
	clone.Options.Since = since
	clone.Options.Until = until
	return clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processAnalysisOptions(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input, time.Now()); err != nil {
		return err
	}
	if err := processCustomWeights(cfg, input); err != nil {
		return err
	}
	if err := resolveGitPathAndFilter(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	// Cache and analysis must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and storage fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Branch = strings.TrimSpace(input.Branch)
	cfg.PathFilter = strings.TrimSpace(input.Filter)

	colors := true
	if input.Color != "" {
		parsed, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid --color value: %w", err)
		}
		colors = parsed
	}
	cfg.UseColors = colors

	precision := input.Precision
	if precision == 0 {
		precision = DefaultPrecision
	}
	if precision < 1 || precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json, yaml, csv, markdown, html, parquet", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file as a file prefix")
	}

	if input.MaxRisk < 0 || input.MaxRisk > 1 {
		return fmt.Errorf("max-risk must be between 0 and 1 (received %.2f)", input.MaxRisk)
	}
	cfg.MaxRisk = input.MaxRisk
	if cfg.MaxRisk == 0 {
		cfg.MaxRisk = DefaultMaxRisk
	}

	return validateBackendConfigs(cfg, input)
}

// processAnalysisOptions builds the options the core consumes. Zero values
// fall back to defaults, then the result is range checked.
func processAnalysisOptions(cfg *Config, input *ConfigRawInput) error {
	opts := schema.DefaultAnalysisOptions()

	if tz := strings.TrimSpace(input.AuthorTimezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("unknown author timezone %q: %w", tz, err)
		}
		opts.AuthorTimezone = tz
		opts.AuthorLocation = loc
	}
	if tz := strings.TrimSpace(input.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("unknown timezone %q: %w", tz, err)
		}
		opts.TrendsTimezone = tz
	}

	if input.BusinessStart != 0 || input.BusinessEnd != 0 {
		opts.BusinessHours = schema.BusinessHours{Start: input.BusinessStart, End: input.BusinessEnd}
	}
	bh := opts.BusinessHours
	if bh.Start < 0 || bh.End > 24 || bh.Start >= bh.End {
		return fmt.Errorf("business hours must satisfy 0 <= start < end <= 24 (received %d-%d)", bh.Start, bh.End)
	}

	setPositive := func(name string, value int, target *int) error {
		if value < 0 {
			return fmt.Errorf("%s must be positive (received %d)", name, value)
		}
		if value > 0 {
			*target = value
		}
		return nil
	}
	if err := setPositive("retouch-window", input.RetouchWindow, &opts.RetouchWindow); err != nil {
		return err
	}
	if err := setPositive("ownership-window", input.OwnershipWindow, &opts.OwnershipWindow); err != nil {
		return err
	}
	if err := setPositive("short-message", input.ShortMessage, &opts.Governance.ShortMessage); err != nil {
		return err
	}
	if err := setPositive("large-commit", input.LargeCommit, &opts.Governance.LargeCommit); err != nil {
		return err
	}
	if err := setPositive("small-commit", input.SmallCommit, &opts.Governance.SmallCommit); err != nil {
		return err
	}
	if opts.Governance.SmallCommit >= opts.Governance.LargeCommit {
		return fmt.Errorf("small-commit (%d) must be below large-commit (%d)", opts.Governance.SmallCommit, opts.Governance.LargeCommit)
	}

	if input.MaxHotspots < 0 {
		return fmt.Errorf("max-hotspots cannot be negative (received %d)", input.MaxHotspots)
	}
	if input.MaxHotspots > 0 {
		opts.MaxHotspots = input.MaxHotspots
	}

	if input.BusFactorTarget != 0 {
		if input.BusFactorTarget < 0 || input.BusFactorTarget > 1 {
			return fmt.Errorf("bus-factor-target must be in (0, 1] (received %.2f)", input.BusFactorTarget)
		}
		opts.BusFactorTarget = input.BusFactorTarget
	}
	if input.RecencyHalfLife != 0 {
		if input.RecencyHalfLife < 0 {
			return fmt.Errorf("recency-half-life must be positive (received %.2f)", input.RecencyHalfLife)
		}
		opts.RecencyHalfLife = input.RecencyHalfLife
	}

	opts.Excludes = append([]string{}, DefaultExcludes...)
	if input.Exclude != "" {
		for p := range strings.SplitSeq(input.Exclude, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				opts.Excludes = append(opts.Excludes, trimmed)
			}
		}
	}

	cfg.Options = opts
	return nil
}

// processTimeRange resolves since and until. An explicit since wins over lookback;
// without either the whole history is analyzed.
func processTimeRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	loc := cfg.Options.AuthorLocation
	now = now.Truncate(CacheGranularity)

	if input.Since != "" {
		t, err := ParseTimeInput(input.Since, now, loc)
		if err != nil {
			return fmt.Errorf("invalid since: %w", err)
		}
		cfg.Options.Since = t
	} else if input.Lookback != "" {
		lookback, err := ParseLookbackDuration(input.Lookback)
		if err != nil {
			return err
		}
		cfg.Options.Since = now.Add(-lookback)
	}

	if input.Until != "" {
		t, err := ParseTimeInput(input.Until, now, loc)
		if err != nil {
			return fmt.Errorf("invalid until: %w", err)
		}
		cfg.Options.Until = t
	}

	since, until := cfg.Options.Since, cfg.Options.Until
	if !since.IsZero() && !until.IsZero() && since.After(until) {
		return fmt.Errorf("since (%s) cannot be after until (%s)", since.Format(DateTimeFormat), until.Format(DateTimeFormat))
	}
	return nil
}

// ProcessWeightsRawInput merges custom weights over the defaults.
// If validateSum is true, it validates that the merged weights sum to 1.0.
func ProcessWeightsRawInput(weights WeightsRawInput, validateSum bool) (map[schema.RiskFactor]float64, error) {
	result := schema.GetDefaultRiskWeights()

	provided := map[schema.RiskFactor]*float64{
		schema.FactorChurn:     weights.Churn,
		schema.FactorRecency:   weights.Recency,
		schema.FactorOwnership: weights.Ownership,
		schema.FactorCoupling:  weights.Coupling,
		schema.FactorSize:      weights.Size,
	}
	for factor, value := range provided {
		if value == nil {
			continue
		}
		if *value < 0 {
			return nil, fmt.Errorf("weight for %s cannot be negative (received %.3f)", factor, *value)
		}
		result[factor] = *value
	}

	if validateSum {
		sum := 0.0
		for _, w := range result {
			sum += w
		}
		if math.Abs(sum-1.0) > 0.001 {
			return nil, fmt.Errorf("risk weights must sum to 1.0, got %.3f", sum)
		}
	}
	return result, nil
}

// processCustomWeights converts the raw input into the final risk weights.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	weights, err := ProcessWeightsRawInput(input.Weights, true)
	if err != nil {
		return err
	}
	cfg.Options.RiskWeights = weights
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolveGitPathAndFilter resolves the Git repository path and sets the implicit path filter.
func resolveGitPathAndFilter(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	info, statErr := os.Stat(absSearchPath)
	gitContextPath := absSearchPath
	if statErr == nil && !info.IsDir() {
		gitContextPath = filepath.Dir(absSearchPath)
	}

	gitRoot, err := client.GetRepoRoot(ctx, gitContextPath)
	if err != nil {
		return err
	}

	cfg.RepoPath = gitRoot

	if cfg.PathFilter != "" { // User-provided --filter flag takes precedence
		return nil
	}

	if absSearchPath != gitRoot {
		relativePath, err := filepath.Rel(gitRoot, absSearchPath)
		if err != nil {
			return err
		}

		if relativePath != "." {
			filter := relativePath
			if statErr == nil && info.IsDir() {
				filter += "/"
			}
			cfg.PathFilter = strings.ReplaceAll(filter, string(os.PathSeparator), "/")
		}
	}

	return nil
}
