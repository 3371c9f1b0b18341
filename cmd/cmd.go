// Package cmd defines the command-line interface for tschart.
package cmd

import (
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the dashboard subcommands to the parent dashboard command
	dashboardCmd.AddCommand(dashboardValidateCmd)
	dashboardCmd.AddCommand(dashboardSaveCmd)
	dashboardCmd.AddCommand(dashboardShowCmd)
	dashboardCmd.AddCommand(dashboardListCmd)
	dashboardCmd.AddCommand(dashboardDeleteCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for point values")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored point flags in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Series store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("dashboard-backend", string(schema.SQLiteBackend), "Dashboard store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("dashboard-db-connect", "", "Database connection string for the dashboard store")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of chartCmd to Viper
	chartCmd.Flags().String("resolution", "", "Time resolution to display, e.g. 5s or '1 minute' (default: smallest configured)")
	chartCmd.Flags().String("last-point", "", "Newest point to display in unix seconds, ISO8601 or time ago")
	chartCmd.Flags().Bool("live", false, "Follow the newest point and refresh every update interval")
	chartCmd.Flags().Int64("now-offset", 0, "Seconds added to the local clock")
	if err := viper.BindPFlags(chartCmd.Flags()); err != nil {
		contract.LogFatal("Error binding chart flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}

	// Bind all flags of storeClearCmd to Viper
	storeClearCmd.Flags().Bool("dashboards", false, "Also remove all saved dashboards")
	if err := viper.BindPFlags(storeClearCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store clear flags", err)
	}
}
