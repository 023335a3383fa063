package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable = "gitspark_analysis_runs"
	fileStatsTable    = "gitspark_file_stats"
	authorStatsTable  = "gitspark_author_stats"
)

// analysisTables lists the tracking tables in creation order.
var analysisTables = []string{analysisRunsTable, fileStatsTable, authorStatsTable}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetAnalysisDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analysis store: %w", err)
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, table := range analysisTables {
		if _, err := db.Exec(getCreateAnalysisTableQuery(table, backend)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// columnTypes holds the per-backend spelling of the column types used below.
type columnTypes struct {
	serial, bigint, integer, double, timestamp, text, key string
}

func getColumnTypes(backend schema.DatabaseBackend) columnTypes {
	switch backend {
	case schema.MySQLBackend:
		return columnTypes{"BIGINT AUTO_INCREMENT PRIMARY KEY", "BIGINT", "INT", "DOUBLE", "DATETIME(6)", "TEXT", "VARCHAR(512)"}
	case schema.PostgreSQLBackend:
		return columnTypes{"BIGSERIAL PRIMARY KEY", "BIGINT", "INT", "DOUBLE PRECISION", "TIMESTAMPTZ", "TEXT", "TEXT"}
	default: // SQLite
		return columnTypes{"INTEGER PRIMARY KEY AUTOINCREMENT", "INTEGER", "INTEGER", "REAL", "TEXT", "TEXT", "TEXT"}
	}
}

// getCreateAnalysisTableQuery returns the CREATE TABLE query for one tracking table.
func getCreateAnalysisTableQuery(table string, backend schema.DatabaseBackend) string {
	ct := getColumnTypes(backend)
	quoted := quoteTableName(table, backend)

	switch table {
	case fileStatsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id %s NOT NULL,
				file_path %s NOT NULL,
				analysis_time %s NOT NULL,
				commits %s NOT NULL,
				churn %s NOT NULL,
				author_count %s NOT NULL,
				top_owner %s,
				language %s NOT NULL,
				risk_score %s NOT NULL,
				hotspot_score %s NOT NULL,
				risk_band %s NOT NULL,
				PRIMARY KEY (analysis_id, file_path)
			);
		`, quoted, ct.bigint, ct.key, ct.timestamp, ct.integer, ct.integer, ct.integer,
			ct.text, ct.text, ct.double, ct.double, ct.text)

	case authorStatsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id %s NOT NULL,
				email %s NOT NULL,
				name %s NOT NULL,
				analysis_time %s NOT NULL,
				commits %s NOT NULL,
				churn %s NOT NULL,
				active_days %s NOT NULL,
				files_changed %s NOT NULL,
				after_hours_commits %s NOT NULL,
				weekend_commits %s NOT NULL,
				PRIMARY KEY (analysis_id, email)
			);
		`, quoted, ct.bigint, ct.key, ct.text, ct.timestamp, ct.integer, ct.integer,
			ct.integer, ct.integer, ct.integer, ct.integer)

	default: // runs
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id %s,
				run_id %s NOT NULL,
				start_time %s NOT NULL,
				end_time %s,
				run_duration_ms %s,
				total_commits %s NOT NULL DEFAULT 0,
				total_files_analyzed %s NOT NULL DEFAULT 0,
				total_authors %s NOT NULL DEFAULT 0,
				warning_count %s NOT NULL DEFAULT 0,
				config_params %s
			);
		`, quoted, ct.serial, ct.key, ct.timestamp, ct.timestamp, ct.integer,
			ct.integer, ct.integer, ct.integer, ct.integer, ct.text)
	}
}

// disabled reports whether tracking is a no-op for this store.
func (as *AnalysisStoreImpl) disabled() bool {
	return as.backend == schema.NoneBackend || as.db == nil
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(runID string, startTime time.Time, configParams map[string]any) (int64, error) {
	if as.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	args := []any{runID, formatTime(startTime, as.backend), string(configJSON)}

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_id, start_time, config_params) VALUES ($1, $2, $3) RETURNING analysis_id`, quotedTableName)
		err = as.db.QueryRow(query, args...).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_id, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, args...)
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}

	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, summary schema.AnalysisRunSummary) error {
	if as.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, placeholders(as.backend, 1))

	start := newTimeScanner(as.backend)
	if err := as.db.QueryRow(selectQuery, analysisID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}

	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	var updateQuery string
	if as.backend == schema.PostgreSQLBackend {
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_commits = $3,
			total_files_analyzed = $4, total_authors = $5, warning_count = $6 WHERE analysis_id = $7`, quotedTableName)
	} else {
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_commits = ?,
			total_files_analyzed = ?, total_authors = ?, warning_count = ? WHERE analysis_id = ?`, quotedTableName)
	}

	_, err = as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, summary.TotalCommits,
		summary.TotalFiles, summary.TotalAuthors, summary.WarningCount, analysisID)
	if err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}

	return nil
}

// RecordFileStats stores the per-file snapshot of a run in one transaction.
func (as *AnalysisStoreImpl) RecordFileStats(analysisID int64, records []schema.FileStatsRecord) error {
	if as.disabled() || len(records) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (analysis_id, file_path, analysis_time, commits, churn, author_count,
		top_owner, language, risk_score, hotspot_score, risk_band) VALUES (%s)`,
		quoteTableName(fileStatsTable, as.backend), placeholders(as.backend, 11))

	return as.insertBatch(query, len(records), func(i int) []any {
		r := records[i]
		return []any{
			analysisID, r.FilePath, formatTime(r.AnalysisTime, as.backend), r.Commits, r.Churn, r.AuthorCount,
			r.TopOwner, r.Language, r.RiskScore, r.HotspotScore, r.RiskBand,
		}
	})
}

// RecordAuthorStats stores the per-author snapshot of a run in one transaction.
func (as *AnalysisStoreImpl) RecordAuthorStats(analysisID int64, records []schema.AuthorStatsRecord) error {
	if as.disabled() || len(records) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (analysis_id, email, name, analysis_time, commits, churn, active_days,
		files_changed, after_hours_commits, weekend_commits) VALUES (%s)`,
		quoteTableName(authorStatsTable, as.backend), placeholders(as.backend, 10))

	return as.insertBatch(query, len(records), func(i int) []any {
		r := records[i]
		return []any{
			analysisID, r.Email, r.Name, formatTime(r.AnalysisTime, as.backend), r.Commits, r.Churn,
			r.ActiveDays, r.FilesChanged, r.AfterHoursCommits, r.WeekendCommits,
		}
	})
}

// insertBatch runs one prepared insert per row inside a transaction.
func (as *AnalysisStoreImpl) insertBatch(query string, n int, row func(i int) []any) (err error) {
	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < n; i++ {
		if _, err = stmt.Exec(row(i)...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.disabled() {
		return status, nil
	}

	runs := quoteTableName(analysisRunsTable, as.backend)
	totalsQuery := fmt.Sprintf(
		"SELECT COUNT(*), COALESCE(SUM(total_commits), 0), COALESCE(SUM(total_files_analyzed), 0), COALESCE(SUM(total_authors), 0), COALESCE(SUM(warning_count), 0) FROM %s",
		runs,
	)
	totals := []any{&status.TotalRuns, &status.TotalCommits, &status.TotalFiles, &status.TotalAuthors, &status.TotalWarnings}
	if err := as.db.QueryRow(totalsQuery).Scan(totals...); err != nil {
		return status, fmt.Errorf("failed to get run totals: %w", err)
	}

	if status.TotalRuns > 0 {
		last := newTimeScanner(as.backend)
		lastQuery := fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs)
		if err := as.db.QueryRow(lastQuery).Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, err := last.value()
		if err != nil {
			return status, err
		}

		oldest := newTimeScanner(as.backend)
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs)
		if err := as.db.QueryRow(oldestQuery).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, err := oldest.value()
		if err != nil {
			return status, err
		}

		if lastTime != nil {
			status.LastRunTime = *lastTime
		}
		if oldestTime != nil {
			status.OldestRunTime = *oldestTime
		}
	}

	for _, table := range analysisTables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		if err := as.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, run_id, start_time, end_time, run_duration_ms, total_commits,
		total_files_analyzed, total_authors, warning_count, config_params FROM %s ORDER BY analysis_id`,
		quoteTableName(analysisRunsTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		start, end := newTimeScanner(as.backend), newTimeScanner(as.backend)
		if err := rows.Scan(&record.AnalysisID, &record.RunID, start.dest(), end.dest(), &record.RunDurationMs,
			&record.TotalCommits, &record.TotalFilesAnalyzed, &record.TotalAuthors, &record.WarningCount,
			&record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}

		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}

		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}

	return results, nil
}

// GetAllFileStats retrieves every per-file snapshot from the store.
func (as *AnalysisStoreImpl) GetAllFileStats() ([]schema.FileStatsRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, file_path, analysis_time, commits, churn, author_count,
		top_owner, language, risk_score, hotspot_score, risk_band FROM %s ORDER BY analysis_id, file_path`,
		quoteTableName(fileStatsTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query file stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FileStatsRecord
	for rows.Next() {
		var record schema.FileStatsRecord
		at := newTimeScanner(as.backend)
		if err := rows.Scan(&record.AnalysisID, &record.FilePath, at.dest(), &record.Commits, &record.Churn,
			&record.AuthorCount, &record.TopOwner, &record.Language, &record.RiskScore, &record.HotspotScore,
			&record.RiskBand); err != nil {
			return nil, fmt.Errorf("failed to scan file stats: %w", err)
		}
		analysisTime, err := at.value()
		if err != nil {
			return nil, err
		}
		if analysisTime != nil {
			record.AnalysisTime = *analysisTime
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file stats: %w", err)
	}

	return results, nil
}

// GetAllAuthorStats retrieves every per-author snapshot from the store.
func (as *AnalysisStoreImpl) GetAllAuthorStats() ([]schema.AuthorStatsRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, email, name, analysis_time, commits, churn, active_days,
		files_changed, after_hours_commits, weekend_commits FROM %s ORDER BY analysis_id, email`,
		quoteTableName(authorStatsTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query author stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AuthorStatsRecord
	for rows.Next() {
		var record schema.AuthorStatsRecord
		at := newTimeScanner(as.backend)
		if err := rows.Scan(&record.AnalysisID, &record.Email, &record.Name, at.dest(), &record.Commits,
			&record.Churn, &record.ActiveDays, &record.FilesChanged, &record.AfterHoursCommits,
			&record.WeekendCommits); err != nil {
			return nil, fmt.Errorf("failed to scan author stats: %w", err)
		}
		analysisTime, err := at.value()
		if err != nil {
			return nil, err
		}
		if analysisTime != nil {
			record.AnalysisTime = *analysisTime
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating author stats: %w", err)
	}

	return results, nil
}
