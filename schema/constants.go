package schema

// Custom string types for type safety.
type (
	// RiskFactor represents keys used in risk scoring weights and breakdowns.
	RiskFactor string

	// OutputMode represents the format of the output.
	OutputMode string

	// FileStatus represents how a file changed within a commit.
	FileStatus string

	// RiskBand represents the display band of a risk score.
	RiskBand string

	// ActivityRating represents the bucketed activity index.
	ActivityRating string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string
)

// Risk factors used in the scoring logic.
const (
	FactorChurn     RiskFactor = "churn"
	FactorRecency   RiskFactor = "recency"
	FactorOwnership RiskFactor = "ownership"
	FactorCoupling  RiskFactor = "coupling"
	FactorSize      RiskFactor = "size"
)

// All output modes supported.
const (
	TextOut     OutputMode = "text" // default
	JSONOut     OutputMode = "json"
	YAMLOut     OutputMode = "yaml"
	CSVOut      OutputMode = "csv"
	MarkdownOut OutputMode = "markdown"
	HTMLOut     OutputMode = "html"
	ParquetOut  OutputMode = "parquet"
)

// All file statuses supported.
const (
	StatusAdded    FileStatus = "added"
	StatusModified FileStatus = "modified"
	StatusDeleted  FileStatus = "deleted"
	StatusRenamed  FileStatus = "renamed"
	StatusCopied   FileStatus = "copied"
)

// Risk bands, from most to least severe.
const (
	RiskHigh    RiskBand = "high"
	RiskMedium  RiskBand = "medium"
	RiskLow     RiskBand = "low"
	RiskMinimal RiskBand = "minimal"
)

// Activity ratings derived from the activity index.
const (
	ActivityHigh     ActivityRating = "high"
	ActivityModerate ActivityRating = "moderate"
	ActivityLow      ActivityRating = "low"
	ActivityNone     ActivityRating = "none"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllRiskFactors lists the risk factors in a stable order.
var AllRiskFactors = []RiskFactor{FactorChurn, FactorRecency, FactorOwnership, FactorCoupling, FactorSize}

// AllRiskBands lists the risk bands from most to least severe.
var AllRiskBands = []RiskBand{RiskHigh, RiskMedium, RiskLow, RiskMinimal}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:     {},
	JSONOut:     {},
	YAMLOut:     {},
	CSVOut:      {},
	MarkdownOut: {},
	HTMLOut:     {},
	ParquetOut:  {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidFileStatuses lists all valid file statuses.
var ValidFileStatuses = map[FileStatus]struct{}{
	StatusAdded:    {},
	StatusModified: {},
	StatusDeleted:  {},
	StatusRenamed:  {},
	StatusCopied:   {},
}

// GetDefaultRiskWeights returns the default weight map for risk scoring.
func GetDefaultRiskWeights() map[RiskFactor]float64 {
	return map[RiskFactor]float64{
		FactorChurn:     0.35,
		FactorRecency:   0.25,
		FactorOwnership: 0.20,
		FactorCoupling:  0.10,
		FactorSize:      0.10,
	}
}
