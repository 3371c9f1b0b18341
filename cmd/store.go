package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/tschart/core"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/iocache"
	"github.com/huangsam/tschart/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadConfigFile handles config file loading for commands which skip the shared setup.
func loadConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// storeMaintenanceSetup loads the minimal configuration needed for clear and migrate.
// It does NOT open the stores, so migrations run on a fresh database and
// SQLite files can be removed.
func storeMaintenanceSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("store-backend")))
	connStr := viper.GetString("store-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	dashboardBackend := schema.DatabaseBackend(strings.ToLower(viper.GetString("dashboard-backend")))
	dashboardConnStr := viper.GetString("dashboard-db-connect")
	if err := contract.ValidateDatabaseConnectionString(dashboardBackend, dashboardConnStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.DashboardBackend = dashboardBackend
	cfg.DashboardDBConnect = dashboardConnStr
	return nil
}

// storeMaintenanceSetupWrapper wraps storeMaintenanceSetup to provide PreRunE.
func storeMaintenanceSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeMaintenanceSetup()
}

// storeCmd focused on series store management.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the time series store",
	Long: `Manage the store holding the series that charts load through the "store" source.

Each series belongs to a collection and has one metric per resolution. Points
are kept per metric and may carry measurement bounds.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  ingest  - Load series batches from a JSON file
  status  - Show store statistics and connection info
  clear   - Remove all stored series
  migrate - Run schema migrations
  export  - Export stored points to Parquet`,
}

// storeIngestCmd loads series batches.
var storeIngestCmd = &cobra.Command{
	Use:   "ingest <batches.json>",
	Short: "Load series batches into the store",
	Long: `Load a JSON array of series batches. Each batch names its collection,
series, metric and resolution and lists its points. Points already stored at
the same timestamp are replaced.

Example batch file:
  [{"collectionRef": "web", "timeSeriesName": "requests", "metricName": "count",
    "resolution": 5, "points": [{"timestamp": 1700000000, "value": 12}]}]

Examples:
  tschart store ingest requests.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteStoreIngest(rootCtx, cfg, storeManager, args[0])
	},
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, connection state, series, metric and point counts of the
series store, and the dashboard count of the dashboard store.

Examples:
  tschart store status
  tschart store status --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteStoreStatus(rootCtx, cfg, storeManager)
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored series",
	Long: `Delete all stored series from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the series tables

Examples:
  # Clear the SQLite store (default)
  tschart store clear

  # Clear the dashboards as well
  tschart store clear --dashboards

  # Clear a MySQL store (set connection string via env variable)
  TSCHART_STORE_BACKEND=mysql TSCHART_STORE_DB_CONNECT="..." tschart store clear`,
	Args:    cobra.NoArgs,
	PreRunE: storeMaintenanceSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iocache.ClearStore(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
		fmt.Println("Store cleared successfully.")
		if viper.GetBool("dashboards") {
			if err := iocache.ClearDashboards(cfg.DashboardBackend, contract.GetDashboardDBFilePath(), cfg.DashboardDBConnect); err != nil {
				return fmt.Errorf("failed to clear dashboards: %w", err)
			}
			fmt.Println("Dashboards cleared successfully.")
		}
		return nil
	},
}

// storeMigrateCmd runs schema migrations.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run series store schema migrations",
	Long: `Migrate the series store schema. Opening the store already migrates to the
latest version, so this is mostly useful to roll back.

Examples:
  # Migrate to the latest version
  tschart store migrate

  # Roll back everything
  tschart store migrate --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: storeMaintenanceSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return iocache.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, viper.GetInt("target-version"))
	},
}

// storeExportCmd exports stored points.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored points to a Parquet file",
	Long: `Write every stored point, with its collection, series, metric and
resolution, to a Parquet file for analytics tools.

Examples:
  tschart store export --output-file points.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return iocache.ExecuteStoreExport(rootCtx, cfg.OutputFile)
	},
}
