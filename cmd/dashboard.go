package cmd

import (
	"github.com/huangsam/tschart/core"
	"github.com/spf13/cobra"
)

// dashboardCmd focused on dashboard spec management.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Validate and manage chart dashboards",
	Long: `Validate dashboard specs and keep them in the dashboard store.

A dashboard is a tree of sections holding charts. Specs are normalized before
they are saved, so defaults are filled in and unknown fields are dropped.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  validate - Check a spec file and print it normalized
  save     - Save a spec file under a name
  show     - Print a saved dashboard
  list     - List saved dashboards
  delete   - Remove a saved dashboard`,
}

// dashboardValidateCmd validates a spec file.
var dashboardValidateCmd = &cobra.Command{
	Use:   "validate <spec.json>",
	Short: "Validate a dashboard spec and print it normalized",
	Long: `Load a dashboard spec, report the first invalid element and print the
normalized spec as an outline (text) or as JSON.

Examples:
  tschart dashboard validate ops.json
  tschart dashboard validate ops.json --output json --output-file ops.normalized.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: configOnlySetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteDashboardValidate(rootCtx, cfg, args[0])
	},
}

// dashboardSaveCmd saves a spec file.
var dashboardSaveCmd = &cobra.Command{
	Use:   "save <name> <spec.json>",
	Short: "Save a dashboard spec under a name",
	Long: `Validate a dashboard spec and save its normalized form. Saving under an
existing name replaces the spec and bumps its version.

Examples:
  tschart dashboard save ops ops.json`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteDashboardSave(rootCtx, cfg, storeManager, args[0], args[1])
	},
}

// dashboardShowCmd prints a saved dashboard.
var dashboardShowCmd = &cobra.Command{
	Use:     "show <name>",
	Short:   "Print a saved dashboard",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteDashboardShow(rootCtx, cfg, storeManager, args[0])
	},
}

// dashboardListCmd lists saved dashboards.
var dashboardListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List saved dashboards",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteDashboardList(rootCtx, cfg, storeManager)
	},
}

// dashboardDeleteCmd removes a saved dashboard.
var dashboardDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Short:   "Remove a saved dashboard",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteDashboardDelete(rootCtx, cfg, storeManager, args[0])
	},
}
