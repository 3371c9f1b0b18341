package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// dashboardsTable is the name of the table for dashboard specs.
const dashboardsTable = "tschart_dashboards"

// schemaMigrationsTable is the version table maintained by the migrator.
const schemaMigrationsTable = "schema_migrations"

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetStoreDBFilePath returns the path to the SQLite DB file for series storage.
func GetStoreDBFilePath() string {
	return contract.GetStoreDBFilePath()
}

// GetDashboardDBFilePath returns the path to the SQLite DB file for dashboard storage.
func GetDashboardDBFilePath() string {
	return contract.GetDashboardDBFilePath()
}

// InitStores initializes the global manager with separate series and dashboard stores.
// storeBackend can be empty to skip the series store.
// dashboardBackend can be empty to skip the dashboard store.
func InitStores(storeBackend schema.DatabaseBackend, storeConnStr string, dashboardBackend schema.DatabaseBackend, dashboardConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var err error

		var seriesStore contract.SeriesStore
		if storeBackend != "" {
			seriesStore, err = NewSeriesStore(storeBackend, storeConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize series store: %w", err)
				return
			}
		}

		var dashboardStore contract.DashboardStore
		if dashboardBackend != "" {
			dashboardStore, err = NewDashboardStore(dashboardsTable, dashboardBackend, dashboardConnStr)
			if err != nil {
				if seriesStore != nil {
					_ = seriesStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize dashboard store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.series = seriesStore
		Manager.dashboards = dashboardStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.series != nil {
			if err := Manager.series.Close(); err != nil {
				contract.LogWarn("closing series store", err)
			}
		}
		if Manager.dashboards != nil {
			if err := Manager.dashboards.Close(); err != nil {
				contract.LogWarn("closing dashboard store", err)
			}
		}
	})
}

// ClearStore clears the series data for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the series and migration tables.
// For NoneBackend, it does nothing.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, pointsTable, metricsTable, schemaMigrationsTable)
}

// ClearDashboards clears the dashboard specs for the specified backend.
func ClearDashboards(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, dashboardsTable)
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		driverName, _ := driverFor(backend)
		for _, table := range tables {
			if err := clearSQLTable(driverName, connStr, quoteTableName(table, backend)); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(driverName, connStr, tableName string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	return nil
}
