package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// DashboardStoreImpl stores dashboard specs by name using various database backends.
type DashboardStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.DashboardStore = &DashboardStoreImpl{} // Compile-time check

// NewDashboardStore initializes and returns a new DashboardStore based on the backend type.
func NewDashboardStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.DashboardStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	if backend == schema.NoneBackend {
		// Return a no-op store for disabled storage
		return &DashboardStoreImpl{tableName: tableName, backend: backend, connStr: connStr}, nil
	}

	db, err := openDB(backend, connStr, GetDashboardDBFilePath())
	if err != nil {
		return nil, err
	}

	query := getCreateDashboardTableQuery(tableName, backend)
	if _, err := db.Exec(query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &DashboardStoreImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// getCreateDashboardTableQuery returns the CREATE TABLE query for the given backend.
func getCreateDashboardTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				name VARCHAR(255) PRIMARY KEY,
				spec LONGBLOB NOT NULL,
				version INT NOT NULL,
				updated_at BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				name TEXT PRIMARY KEY,
				spec BYTEA NOT NULL,
				version INTEGER NOT NULL,
				updated_at BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				name TEXT PRIMARY KEY,
				spec BLOB NOT NULL,
				version INTEGER NOT NULL,
				updated_at INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

func (ds *DashboardStoreImpl) disabled() bool {
	return ds.backend == schema.NoneBackend || ds.db == nil
}

// Get retrieves a dashboard spec by name. Missing names yield sql.ErrNoRows.
func (ds *DashboardStoreImpl) Get(name string) ([]byte, int, int64, error) {
	if ds.disabled() {
		return nil, 0, 0, sql.ErrNoRows
	}

	var spec []byte
	var version int
	var ts int64

	query := fmt.Sprintf(`SELECT spec, version, updated_at FROM %s WHERE name = %s`,
		quoteTableName(ds.tableName, ds.backend), placeholder(ds.backend, 1))
	if err := ds.db.QueryRow(query, name).Scan(&spec, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return spec, version, ts, nil
}

// Set inserts or replaces a dashboard spec.
func (ds *DashboardStoreImpl) Set(name string, spec []byte, version int, timestamp int64) error {
	if ds.disabled() {
		return nil
	}

	query := upsertQuery(ds.backend, ds.tableName, []string{"name"}, []string{"spec", "version", "updated_at"})
	_, err := ds.db.Exec(query, name, spec, version, timestamp)
	return err
}

// List returns all stored dashboards ordered by name.
func (ds *DashboardStoreImpl) List() ([]schema.DashboardRecord, error) {
	if ds.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT name, spec, version, updated_at FROM %s ORDER BY name`,
		quoteTableName(ds.tableName, ds.backend))
	rows, err := ds.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.DashboardRecord
	for rows.Next() {
		var r schema.DashboardRecord
		if err := rows.Scan(&r.Name, &r.Spec, &r.Version, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dashboard: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Delete removes a dashboard. Deleting a missing name is not an error.
func (ds *DashboardStoreImpl) Delete(name string) error {
	if ds.disabled() {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE name = %s`,
		quoteTableName(ds.tableName, ds.backend), placeholder(ds.backend, 1))
	_, err := ds.db.Exec(query, name)
	return err
}

// Close closes the underlying DB connection.
func (ds *DashboardStoreImpl) Close() error {
	if ds.db != nil {
		return ds.db.Close()
	}
	return nil
}

// GetStatus returns status information about the dashboard store.
func (ds *DashboardStoreImpl) GetStatus() (schema.DashboardStoreStatus, error) {
	status := schema.DashboardStoreStatus{
		Backend:   string(ds.backend),
		Connected: ds.db != nil,
	}

	if ds.disabled() {
		return status, nil
	}

	quotedTableName := quoteTableName(ds.tableName, ds.backend)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	if err := ds.db.QueryRow(countQuery).Scan(&status.TotalDashboards); err != nil {
		return status, fmt.Errorf("failed to get total dashboards: %w", err)
	}

	if status.TotalDashboards == 0 {
		return status, nil
	}

	lastQuery := fmt.Sprintf("SELECT MAX(updated_at) FROM %s", quotedTableName)
	var lastTs int64
	if err := ds.db.QueryRow(lastQuery).Scan(&lastTs); err != nil {
		return status, fmt.Errorf("failed to get last update time: %w", err)
	}
	status.LastUpdateTime = time.Unix(lastTs, 0)
	status.TableSizeBytes = tableSizeBytes(ds.db, ds.backend, ds.connStr, ds.tableName, status.TotalDashboards)

	return status, nil
}
