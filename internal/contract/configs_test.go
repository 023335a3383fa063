package contract

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/gitspark/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
		setupMock   func(*MockGitClient, string) // Pass the expected working directory
	}{
		{
			name:  "valid minimal config",
			input: &ConfigRawInput{RepoPathStr: "."},
			setupMock: func(mock *MockGitClient, workDir string) {
				mock.On("GetRepoRoot", context.Background(), workDir).Return("/mock/repo/root", nil)
			},
		},
		{
			name:        "invalid output",
			input:       &ConfigRawInput{RepoPathStr: ".", Output: "invalid_format"},
			expectError: true,
		},
		{
			name:        "parquet without output file",
			input:       &ConfigRawInput{RepoPathStr: ".", Output: "parquet"},
			expectError: true,
		},
		{
			name:        "invalid precision",
			input:       &ConfigRawInput{RepoPathStr: ".", Precision: 5},
			expectError: true,
		},
		{
			name:        "invalid color",
			input:       &ConfigRawInput{RepoPathStr: ".", Color: "maybe"},
			expectError: true,
		},
		{
			name:        "invalid max risk",
			input:       &ConfigRawInput{RepoPathStr: ".", MaxRisk: 1.5},
			expectError: true,
		},
		{
			name:        "invalid cache backend",
			input:       &ConfigRawInput{RepoPathStr: ".", CacheBackend: "invalid_backend"},
			expectError: true,
		},
		{
			name:        "mysql backend without connection string",
			input:       &ConfigRawInput{RepoPathStr: ".", CacheBackend: string(schema.MySQLBackend)},
			expectError: true,
		},
		{
			name:        "postgresql backend without connection string",
			input:       &ConfigRawInput{RepoPathStr: ".", CacheBackend: string(schema.PostgreSQLBackend)},
			expectError: true,
		},
		{
			name: "mysql backend with connection string",
			input: &ConfigRawInput{
				RepoPathStr:    ".",
				CacheBackend:   string(schema.MySQLBackend),
				CacheDBConnect: "user:pass@tcp(localhost:3306)/gitspark",
			},
			setupMock: func(mock *MockGitClient, workDir string) {
				mock.On("GetRepoRoot", context.Background(), workDir).Return("/mock/repo/root", nil)
			},
		},
		{
			name: "same sqlite file for cache and analysis",
			input: &ConfigRawInput{
				RepoPathStr:       ".",
				CacheBackend:      string(schema.SQLiteBackend),
				CacheDBConnect:    "/tmp/shared.db",
				AnalysisBackend:   string(schema.SQLiteBackend),
				AnalysisDBConnect: "/tmp/shared.db",
			},
			expectError: true,
		},
		{
			name:  "none backend",
			input: &ConfigRawInput{RepoPathStr: ".", CacheBackend: string(schema.NoneBackend)},
			setupMock: func(mock *MockGitClient, workDir string) {
				mock.On("GetRepoRoot", context.Background(), workDir).Return("/mock/repo/root", nil)
			},
		},
		{
			name:        "unknown trends timezone",
			input:       &ConfigRawInput{RepoPathStr: ".", Timezone: "Mars/Olympus"},
			expectError: true,
		},
		{
			name:        "unknown author timezone",
			input:       &ConfigRawInput{RepoPathStr: ".", AuthorTimezone: "Nowhere/Town"},
			expectError: true,
		},
		{
			name:        "business window inverted",
			input:       &ConfigRawInput{RepoPathStr: ".", BusinessStart: 18, BusinessEnd: 9},
			expectError: true,
		},
		{
			name:        "business window past midnight",
			input:       &ConfigRawInput{RepoPathStr: ".", BusinessStart: 9, BusinessEnd: 25},
			expectError: true,
		},
		{
			name:        "negative retouch window",
			input:       &ConfigRawInput{RepoPathStr: ".", RetouchWindow: -1},
			expectError: true,
		},
		{
			name:        "bus factor target above one",
			input:       &ConfigRawInput{RepoPathStr: ".", BusFactorTarget: 1.2},
			expectError: true,
		},
		{
			name:        "small commit above large commit",
			input:       &ConfigRawInput{RepoPathStr: ".", SmallCommit: 600},
			expectError: true,
		},
		{
			name:        "weights not summing to one",
			input:       &ConfigRawInput{RepoPathStr: ".", Weights: WeightsRawInput{Churn: ptr(0.9)}},
			expectError: true,
		},
		{
			name:        "since after until",
			input:       &ConfigRawInput{RepoPathStr: ".", Since: "2024-02-01", Until: "2024-01-01"},
			expectError: true,
		},
		{
			name:        "invalid lookback",
			input:       &ConfigRawInput{RepoPathStr: ".", Lookback: "forever"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := new(MockGitClient)
			workDir, err := filepath.Abs(".")
			require.NoError(t, err)
			if tt.setupMock != nil {
				tt.setupMock(mockClient, workDir)
			}

			cfg := &Config{}
			err = ProcessAndValidate(context.Background(), cfg, mockClient, tt.input)

			if tt.expectError {
				assert.Error(t, err, "ProcessAndValidate should return an error for %s", tt.name)
			} else {
				assert.NoError(t, err, "ProcessAndValidate should not return an error for %s", tt.name)
				assert.Equal(t, "/mock/repo/root", cfg.RepoPath)
			}
			mockClient.AssertExpectations(t)
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	mockClient := new(MockGitClient)
	mockClient.On("GetRepoRoot", mock.Anything, mock.Anything).Return("/mock/repo/root", nil)

	cfg := &Config{}
	err := ProcessAndValidate(context.Background(), cfg, mockClient, &ConfigRawInput{RepoPathStr: "."})
	require.NoError(t, err)

	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, DefaultPrecision, cfg.Precision)
	assert.Equal(t, DefaultMaxRisk, cfg.MaxRisk)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)

	opts := cfg.Options
	assert.Equal(t, schema.DefaultTrendsTimezone, opts.TrendsTimezone)
	assert.Equal(t, schema.BusinessHours{Start: 8, End: 18}, opts.BusinessHours)
	assert.Equal(t, schema.DefaultRetouchWindow, opts.RetouchWindow)
	assert.Equal(t, schema.DefaultOwnershipWindow, opts.OwnershipWindow)
	assert.InDelta(t, schema.DefaultBusFactorTarget, opts.BusFactorTarget, 1e-9)
	assert.Equal(t, schema.GetDefaultRiskWeights(), opts.RiskWeights)
	assert.Equal(t, DefaultExcludes, opts.Excludes)
	assert.True(t, opts.Since.IsZero(), "no since means the whole history")
	assert.True(t, opts.Until.IsZero())
}

func TestProcessAnalysisOptionsOverrides(t *testing.T) {
	cfg := &Config{}
	input := &ConfigRawInput{
		AuthorTimezone:  "Asia/Tokyo",
		Timezone:        "UTC",
		BusinessStart:   9,
		BusinessEnd:     17,
		RetouchWindow:   7,
		OwnershipWindow: 30,
		BusFactorTarget: 0.5,
		MaxHotspots:     3,
		ShortMessage:    10,
		Exclude:         "docs/, *.pb.go ,",
	}
	require.NoError(t, processAnalysisOptions(cfg, input))

	opts := cfg.Options
	assert.Equal(t, "Asia/Tokyo", opts.AuthorTimezone)
	require.NotNil(t, opts.AuthorLocation)
	assert.Equal(t, "Asia/Tokyo", opts.AuthorLocation.String())
	assert.Equal(t, "UTC", opts.TrendsTimezone)
	assert.Equal(t, schema.BusinessHours{Start: 9, End: 17}, opts.BusinessHours)
	assert.Equal(t, 7, opts.RetouchWindow)
	assert.Equal(t, 30, opts.OwnershipWindow)
	assert.InDelta(t, 0.5, opts.BusFactorTarget, 1e-9)
	assert.Equal(t, 3, opts.MaxHotspots)
	assert.Equal(t, 10, opts.Governance.ShortMessage)
	assert.Equal(t, []string{"docs/", "*.pb.go"}, opts.Excludes[len(DefaultExcludes):])
}

func TestProcessTimeRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 34, 0, 0, time.UTC)

	t.Run("lookback", func(t *testing.T) {
		cfg := &Config{Options: schema.AnalysisOptions{AuthorLocation: time.UTC}}
		require.NoError(t, processTimeRange(cfg, &ConfigRawInput{Lookback: "30 days"}, now))
		assert.Equal(t, time.Date(2024, 5, 16, 12, 0, 0, 0, time.UTC), cfg.Options.Since)
		assert.True(t, cfg.Options.Until.IsZero())
	})

	t.Run("since wins over lookback", func(t *testing.T) {
		cfg := &Config{Options: schema.AnalysisOptions{AuthorLocation: time.UTC}}
		require.NoError(t, processTimeRange(cfg, &ConfigRawInput{Since: "2024-01-01", Lookback: "30 days"}, now))
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Options.Since)
	})

	t.Run("relative until", func(t *testing.T) {
		cfg := &Config{Options: schema.AnalysisOptions{AuthorLocation: time.UTC}}
		require.NoError(t, processTimeRange(cfg, &ConfigRawInput{Until: "1 day ago"}, now))
		assert.Equal(t, time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC), cfg.Options.Until)
	})

	t.Run("invalid since", func(t *testing.T) {
		cfg := &Config{}
		assert.Error(t, processTimeRange(cfg, &ConfigRawInput{Since: "yesterday-ish"}, now))
	})
}

func TestProcessWeightsRawInput(t *testing.T) {
	weights, err := ProcessWeightsRawInput(WeightsRawInput{}, true)
	require.NoError(t, err)
	assert.Equal(t, schema.GetDefaultRiskWeights(), weights)

	weights, err = ProcessWeightsRawInput(WeightsRawInput{Churn: ptr(0.25), Size: ptr(0.20)}, true)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, weights[schema.FactorChurn], 1e-9)
	assert.InDelta(t, 0.20, weights[schema.FactorSize], 1e-9)

	_, err = ProcessWeightsRawInput(WeightsRawInput{Churn: ptr(0.5)}, true)
	assert.Error(t, err)

	_, err = ProcessWeightsRawInput(WeightsRawInput{Churn: ptr(0.5)}, false)
	assert.NoError(t, err)

	_, err = ProcessWeightsRawInput(WeightsRawInput{Size: ptr(-0.1)}, false)
	assert.Error(t, err)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "u:p@tcp(localhost:3306)/db"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "u:p@localhost/db"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=gitspark"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Options: schema.DefaultAnalysisOptions()}
	cfg.Options.Excludes = []string{"vendor/"}

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clone := cfg.CloneWithTimeWindow(since, since.AddDate(0, 1, 0))
	clone.Options.Excludes[0] = "changed/"
	clone.Options.RiskWeights[schema.FactorChurn] = 0

	assert.Equal(t, "vendor/", cfg.Options.Excludes[0])
	assert.InDelta(t, 0.35, cfg.Options.RiskWeights[schema.FactorChurn], 1e-9)
	assert.True(t, cfg.Options.Since.IsZero())
	assert.Equal(t, since, clone.Options.Since)
}

func TestProcessProfilingConfig(t *testing.T) {
	var profile ProfileConfig
	require.NoError(t, ProcessProfilingConfig(&profile, ""))
	assert.False(t, profile.Enabled)
	require.NoError(t, ProcessProfilingConfig(&profile, "run"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "run", profile.Prefix)
}
