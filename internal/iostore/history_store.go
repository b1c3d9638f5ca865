package iostore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/schema"
)

// Table names for import history.
const (
	importRunsTable         = "sprintboard_import_runs"
	featuresTable           = "sprintboard_features"
	aggregateSnapshotsTable = "sprintboard_aggregate_snapshots"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{importRunsTable, featuresTable, aggregateSnapshotsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createHistoryTables creates the history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{importRunsTable, getCreateImportRunsQuery(backend)},
		{featuresTable, getCreateFeaturesQuery(backend)},
		{aggregateSnapshotsTable, getCreateAggregateSnapshotsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateImportRunsQuery returns the CREATE TABLE query for sprintboard_import_runs.
func getCreateImportRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(importRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				session_id VARCHAR(64) NOT NULL,
				project VARCHAR(255) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				source_name VARCHAR(512),
				accepted_rows INT NOT NULL DEFAULT 0,
				rejected_rows INT NOT NULL DEFAULT 0,
				warning_count INT NOT NULL DEFAULT 0,
				settings_json TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				session_id TEXT NOT NULL,
				project TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				source_name TEXT,
				accepted_rows INT NOT NULL DEFAULT 0,
				rejected_rows INT NOT NULL DEFAULT 0,
				warning_count INT NOT NULL DEFAULT 0,
				settings_json TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id TEXT NOT NULL,
				project TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				source_name TEXT,
				accepted_rows INTEGER NOT NULL DEFAULT 0,
				rejected_rows INTEGER NOT NULL DEFAULT 0,
				warning_count INTEGER NOT NULL DEFAULT 0,
				settings_json TEXT
			);
		`, quotedTableName)
	}
}

// getCreateFeaturesQuery returns the CREATE TABLE query for sprintboard_features.
func getCreateFeaturesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(featuresTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				feature_id VARCHAR(64) NOT NULL,
				title TEXT NOT NULL,
				category VARCHAR(100),
				story_points DOUBLE,
				estimated_hours DOUBLE,
				actual_hours DOUBLE,
				iteration DOUBLE,
				status VARCHAR(100),
				assignee VARCHAR(255),
				PRIMARY KEY (run_id, feature_id)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				feature_id TEXT NOT NULL,
				title TEXT NOT NULL,
				category TEXT,
				story_points DOUBLE PRECISION,
				estimated_hours DOUBLE PRECISION,
				actual_hours DOUBLE PRECISION,
				iteration DOUBLE PRECISION,
				status TEXT,
				assignee TEXT,
				PRIMARY KEY (run_id, feature_id)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				feature_id TEXT NOT NULL,
				title TEXT NOT NULL,
				category TEXT,
				story_points REAL,
				estimated_hours REAL,
				actual_hours REAL,
				iteration REAL,
				status TEXT,
				assignee TEXT,
				PRIMARY KEY (run_id, feature_id)
			);
		`, quotedTableName)
	}
}

// getCreateAggregateSnapshotsQuery returns the CREATE TABLE query for sprintboard_aggregate_snapshots.
func getCreateAggregateSnapshotsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(aggregateSnapshotsTable, backend)

	realType := "REAL"
	intType := "INTEGER"
	textType := "TEXT"
	switch backend {
	case schema.MySQLBackend:
		realType, intType, textType = "DOUBLE", "INT", "VARCHAR(255)"
	case schema.PostgreSQLBackend:
		realType, intType = "DOUBLE PRECISION", "INT"
	}

	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			run_id BIGINT NOT NULL,
			iteration_index %[3]s NOT NULL,
			iteration_name %[4]s,
			start_date %[4]s,
			end_date %[4]s,
			working_days %[3]s NOT NULL,
			total_points %[2]s NOT NULL,
			done_points %[2]s NOT NULL,
			planned_points %[2]s NOT NULL,
			fe_total %[2]s NOT NULL,
			fe_done %[2]s NOT NULL,
			be_total %[2]s NOT NULL,
			be_done %[2]s NOT NULL,
			test_total %[2]s NOT NULL,
			test_done %[2]s NOT NULL,
			PRIMARY KEY (run_id, iteration_index)
		);
	`, quotedTableName, realType, intType, textType)
}

// BeginImport creates a new import run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginImport(run schema.ImportRunRecord) (int64, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(importRunsTable, hs.backend)
	columns := "session_id, project, start_time, source_name, settings_json"
	args := []any{run.SessionID, run.Project, formatTime(run.StartTime, hs.backend), run.SourceName, run.SettingsJSON}

	var runID int64
	var err error
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING run_id`, quotedTableName, columns, placeholders(hs.backend, len(args)))
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, quotedTableName, columns, placeholders(hs.backend, len(args)))
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert import run: %w", err)
	}

	return runID, nil
}

// EndImport updates the import run with completion data.
func (hs *HistoryStoreImpl) EndImport(runID int64, endTime time.Time, accepted, rejected, warnings int) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(importRunsTable, hs.backend)

	var query string
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`UPDATE %s SET end_time = $1, accepted_rows = $2, rejected_rows = $3, warning_count = $4 WHERE run_id = $5`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`UPDATE %s SET end_time = ?, accepted_rows = ?, rejected_rows = ?, warning_count = ? WHERE run_id = ?`, quotedTableName)
	}

	result, err := hs.db.Exec(query, formatTime(endTime, hs.backend), accepted, rejected, warnings, runID)
	if err != nil {
		return fmt.Errorf("failed to update import run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("import run %d not found", runID)
	}

	return nil
}

// RecordFeatures stores the confirmed features of a run in one transaction.
func (hs *HistoryStoreImpl) RecordFeatures(runID int64, features []schema.Feature) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil || len(features) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, feature_id, title, category, story_points, estimated_hours,
		                actual_hours, iteration, status, assignee)
		VALUES (%s)
	`, quoteTableName(featuresTable, hs.backend), placeholders(hs.backend, 10))

	return hs.inTx(query, len(features), func(i int) []any {
		f := features[i]
		return []any{
			runID, f.ID, f.Title, f.Category, f.StoryPoints, f.EstimatedHours,
			f.ActualHours, f.Iteration, f.Status, f.Assignee,
		}
	})
}

// RecordAggregates stores the iteration aggregates computed for a run.
func (hs *HistoryStoreImpl) RecordAggregates(runID int64, aggs []schema.IterationAggregate) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil || len(aggs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, iteration_index, iteration_name, start_date, end_date, working_days,
		                total_points, done_points, planned_points,
		                fe_total, fe_done, be_total, be_done, test_total, test_done)
		VALUES (%s)
	`, quoteTableName(aggregateSnapshotsTable, hs.backend), placeholders(hs.backend, 15))

	return hs.inTx(query, len(aggs), func(i int) []any {
		a := aggs[i]
		fe := a.CategoryPoints[schema.CategoryFE]
		be := a.CategoryPoints[schema.CategoryBE]
		test := a.CategoryPoints[schema.CategoryTest]
		return []any{
			runID, a.IterationIndex, a.IterationName, a.Start, a.End, a.WorkingDays,
			a.TotalPoints, a.DonePoints, a.PlannedPoints,
			fe.Total, fe.Done, be.Total, be.Done, test.Total, test.Done,
		}
	})
}

// inTx executes query once per row inside a single transaction.
func (hs *HistoryStoreImpl) inTx(query string, n int, argsAt func(i int) []any) error {
	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range n {
		if _, err := stmt.Exec(argsAt(i)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(importRunsTable, hs.backend)

	// 1. Count runs
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// 2. Last run
		last := timeScanner{backend: hs.backend}
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastRunID, last.target()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, err := last.value()
		if err != nil {
			return status, err
		}
		if lastTime != nil {
			status.LastRunTime = *lastTime
		}

		// 3. Oldest run
		oldest := timeScanner{backend: hs.backend}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)
		if err := hs.db.QueryRow(oldestQuery).Scan(oldest.target()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, err := oldest.value()
		if err != nil {
			return status, err
		}
		if oldestTime != nil {
			status.OldestRunTime = *oldestTime
		}
	}

	// 4. Row counts per table
	for _, table := range historyTables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalFeatures = int(status.TableSizes[featuresTable])

	return status, nil
}

// GetAllImportRuns retrieves all import runs from the store.
func (hs *HistoryStoreImpl) GetAllImportRuns() ([]schema.ImportRunRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT run_id, session_id, project, start_time, end_time, source_name,
		       accepted_rows, rejected_rows, warning_count, settings_json
		FROM %s ORDER BY run_id
	`, quoteTableName(importRunsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ImportRunRecord
	for rows.Next() {
		var record schema.ImportRunRecord
		var source sql.NullString
		start := timeScanner{backend: hs.backend}
		end := timeScanner{backend: hs.backend}

		if err := rows.Scan(
			&record.RunID, &record.SessionID, &record.Project, start.target(), end.target(), &source,
			&record.AcceptedRows, &record.RejectedRows, &record.WarningCount, &record.SettingsJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
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
		record.SourceName = source.String

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating import runs: %w", err)
	}

	return results, nil
}

// GetAllFeatures retrieves all recorded features from the store.
func (hs *HistoryStoreImpl) GetAllFeatures() ([]schema.FeatureRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT run_id, feature_id, title, category, story_points, estimated_hours,
		       actual_hours, iteration, status, assignee
		FROM %s ORDER BY run_id, feature_id
	`, quoteTableName(featuresTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query features: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FeatureRecord
	for rows.Next() {
		var record schema.FeatureRecord
		var category, status, assignee sql.NullString

		if err := rows.Scan(
			&record.RunID, &record.FeatureID, &record.Title, &category,
			&record.StoryPoints, &record.EstimatedHours, &record.ActualHours, &record.Iteration,
			&status, &assignee,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		record.Category = category.String
		record.Status = status.String
		record.Assignee = assignee.String

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating features: %w", err)
	}

	return results, nil
}

// GetAllAggregateSnapshots retrieves all recorded iteration aggregates from the store.
func (hs *HistoryStoreImpl) GetAllAggregateSnapshots() ([]schema.AggregateSnapshotRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT run_id, iteration_index, iteration_name, start_date, end_date, working_days,
		       total_points, done_points, planned_points,
		       fe_total, fe_done, be_total, be_done, test_total, test_done
		FROM %s ORDER BY run_id, iteration_index
	`, quoteTableName(aggregateSnapshotsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query aggregate snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AggregateSnapshotRecord
	for rows.Next() {
		var r schema.AggregateSnapshotRecord
		var name, start, end sql.NullString

		if err := rows.Scan(
			&r.RunID, &r.IterationIndex, &name, &start, &end, &r.WorkingDays,
			&r.TotalPoints, &r.DonePoints, &r.PlannedPoints,
			&r.FETotal, &r.FEDone, &r.BETotal, &r.BEDone, &r.TestTotal, &r.TestDone,
		); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate snapshot: %w", err)
		}
		r.IterationName = name.String
		r.Start = start.String
		r.End = end.String

		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aggregate snapshots: %w", err)
	}

	return results, nil
}
