package iostore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/schema"
)

// SettingsStoreImpl keeps one settings document per project in a key/value table.
type SettingsStoreImpl struct {
	db         *sql.DB
	tableName  string
	backend    schema.DatabaseBackend
	driverName string
	connStr    string
}

var _ contract.SettingsStore = &SettingsStoreImpl{} // Compile-time check

// NewSettingsStore initializes and returns a new SettingsStore based on the backend type.
func NewSettingsStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.SettingsStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	if backend == schema.NoneBackend {
		// Return a no-op store for disabled persistence
		return &SettingsStoreImpl{tableName: tableName, backend: backend, connStr: connStr}, nil
	}

	db, driverName, err := openDB(backend, connStr, GetSettingsDBFilePath())
	if err != nil {
		return nil, err
	}

	query := getCreateSettingsQuery(tableName, backend)
	if _, err := db.Exec(query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &SettingsStoreImpl{
		db:         db,
		tableName:  tableName,
		backend:    backend,
		driverName: driverName,
		connStr:    connStr,
	}, nil
}

// getCreateSettingsQuery returns the CREATE TABLE query for the given backend.
func getCreateSettingsQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				project_key VARCHAR(255) PRIMARY KEY,
				settings_value BLOB NOT NULL,
				settings_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				project_key TEXT PRIMARY KEY,
				settings_value BYTEA NOT NULL,
				settings_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				project_key TEXT PRIMARY KEY,
				settings_value BLOB NOT NULL,
				settings_timestamp INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// Get retrieves the settings document of a project.
// A project without a stored document yields nil data and no error.
func (ss *SettingsStoreImpl) Get(project string) ([]byte, int64, error) {
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil, 0, nil
	}

	var value []byte
	var ts int64

	quotedTableName := quoteTableName(ss.tableName, ss.backend)
	query := fmt.Sprintf(`SELECT settings_value, settings_timestamp FROM %s WHERE project_key = %s`,
		quotedTableName, placeholders(ss.backend, 1))
	row := ss.db.QueryRow(query, project)

	if err := row.Scan(&value, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to read settings for %q: %w", project, err)
	}
	return value, ts, nil
}

// Set inserts or replaces the settings document of a project.
func (ss *SettingsStoreImpl) Set(project string, value []byte, timestamp int64) error {
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil
	}

	if _, err := ss.db.Exec(ss.getUpsertQuery(), project, value, timestamp); err != nil {
		return fmt.Errorf("failed to store settings for %q: %w", project, err)
	}
	return nil
}

// getUpsertQuery returns the UPSERT query for the backend.
func (ss *SettingsStoreImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(ss.tableName, ss.backend)
	switch ss.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (project_key, settings_value, settings_timestamp) VALUES (?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE settings_value = new.settings_value, settings_timestamp = new.settings_timestamp`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (project_key, settings_value, settings_timestamp) VALUES ($1, $2, $3)
			ON CONFLICT (project_key) DO UPDATE SET settings_value = EXCLUDED.settings_value, settings_timestamp = EXCLUDED.settings_timestamp`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (project_key, settings_value, settings_timestamp) VALUES (?, ?, ?)`, quotedTableName)
	}
}

// Close closes the underlying DB connection.
func (ss *SettingsStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// GetStatus returns status information about the settings store.
func (ss *SettingsStoreImpl) GetStatus() (schema.SettingsStoreStatus, error) {
	status := schema.SettingsStoreStatus{
		Backend:   string(ss.backend),
		Connected: ss.db != nil,
	}

	if ss.backend == schema.NoneBackend || ss.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(ss.tableName, ss.backend)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	if err := ss.db.QueryRow(countQuery).Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}

	if status.TotalEntries == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	rangeQuery := fmt.Sprintf("SELECT MAX(settings_timestamp), MIN(settings_timestamp) FROM %s", quotedTableName)
	if err := ss.db.QueryRow(rangeQuery).Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)

	status.TableSizeBytes = ss.tableSize(int64(status.TotalEntries))
	return status, nil
}

// tableSize estimates the on-disk size of the table, falling back to a rough per-row guess.
func (ss *SettingsStoreImpl) tableSize(entries int64) int64 {
	estimate := entries * 1000
	var size int64

	switch ss.backend {
	case schema.SQLiteBackend:
		if err := ss.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&size); err != nil {
			return 0
		}
		return size

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ss.connStr)
		if err != nil || cfg.DBName == "" {
			return estimate
		}
		sizeQuery := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := ss.db.QueryRow(sizeQuery, cfg.DBName, ss.tableName).Scan(&size); err != nil {
			return estimate
		}
		return size

	case schema.PostgreSQLBackend:
		if err := ss.db.QueryRow("SELECT pg_total_relation_size($1)", ss.tableName).Scan(&size); err != nil {
			return estimate
		}
		return size
	}

	return estimate
}
