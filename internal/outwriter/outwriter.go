// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteChartState prints an evaluated chart using the configured output format.
func (ow *OutWriter) WriteChartState(state *schema.ChartState, cfg *contract.Config, duration time.Duration) error {
	return WriteChartState(state, cfg, duration)
}

// WriteDashboardTree prints the outline of a dashboard spec using the configured output format.
func (ow *OutWriter) WriteDashboardTree(spec *schema.DashboardSpec, cfg *contract.Config) error {
	return WriteDashboardTree(spec, cfg)
}

// WriteDashboardList prints stored dashboards using the configured output format.
func (ow *OutWriter) WriteDashboardList(records []schema.DashboardRecord, cfg *contract.Config) error {
	return WriteDashboardList(records, cfg)
}

// WriteStoreStatus prints the status of both stores using the configured output format.
func (ow *OutWriter) WriteStoreStatus(status StoreStatusReport, cfg *contract.Config) error {
	return WriteStoreStatus(status, cfg)
}

// getTerminalWidth returns the width override or the detected terminal width.
func getTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		return 80
	}
	return detectedWidth
}

// getMaxSeriesColumnWidth calculates the maximum width of a series column in
// table output based on terminal width and the number of series.
func getMaxSeriesColumnWidth(cfg *contract.Config, seriesCount int) int {
	if seriesCount < 1 {
		seriesCount = 1
	}

	// Reserve space for the time column plus borders and padding
	baseWidth := 22 + 4

	available := (getTerminalWidth(cfg) - baseWidth) / seriesCount
	available -= 3 // Separator and padding per column
	if available < 8 {
		// Minimum reasonable column width
		return 8
	}
	if available > 40 {
		return 40
	}
	return available
}
