package cmd

import (
	"github.com/huangsam/tschart/core"
	"github.com/spf13/cobra"
)

// chartCmd evaluates a chart definition.
var chartCmd = &cobra.Command{
	Use:   "chart <definition.json>",
	Short: "Evaluate a chart definition and print its state.",
	Long: `Evaluate a JSON chart definition against the series store.

The chart definition holds a title, y axes and the series and series group
builders. Series load their points through the "store" external source, which
reads the series ingested with 'tschart store ingest'.

The time resolution defaults to the smallest one configured. Resolutions are
configured in the 'resolutions' list of the config file.

Examples:
  # Evaluate a chart with the smallest resolution
  tschart chart cpu.json

  # Look at one hour ago with a one minute resolution
  tschart chart cpu.json --resolution 1m --last-point "1 hour ago"

  # Keep following the newest points
  tschart chart cpu.json --live

  # Export the points for analysis
  tschart chart cpu.json --output parquet --output-file cpu.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteChart(rootCtx, cfg, storeManager, args[0])
	},
}
