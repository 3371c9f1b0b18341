package outwriter

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/olekukonko/tablewriter"
)

// StoreStatusReport bundles the status of the configured stores.
// A nil field means the store is not configured.
type StoreStatusReport struct {
	Series     *schema.StoreStatus          `json:"series,omitempty"`
	Dashboards *schema.DashboardStoreStatus `json:"dashboards,omitempty"`
}

// WriteStoreStatus outputs the store status report.
func WriteStoreStatus(report StoreStatusReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStoreStatusTable(w, report)
		}, "Wrote status")
	}
}

func writeStoreStatusTable(w io.Writer, report StoreStatusReport) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Store", "Property", "Value"})

	var data [][]string
	if s := report.Series; s != nil {
		data = append(data,
			[]string{"series", "backend", s.Backend},
			[]string{"series", "connected", strconv.FormatBool(s.Connected)},
			[]string{"series", "series", strconv.Itoa(s.TotalSeries)},
			[]string{"series", "metrics", strconv.Itoa(s.TotalMetrics)},
			[]string{"series", "points", strconv.Itoa(s.TotalPoints)},
		)
		if s.TotalPoints > 0 {
			data = append(data,
				[]string{"series", "oldest point", formatStatusTime(s.OldestPointTime)},
				[]string{"series", "newest point", formatStatusTime(s.NewestPointTime)},
			)
		}
		tables := make([]string, 0, len(s.TableSizes))
		for name := range s.TableSizes {
			tables = append(tables, name)
		}
		sort.Strings(tables)
		for _, name := range tables {
			data = append(data, []string{"series", name + " rows", strconv.FormatInt(s.TableSizes[name], 10)})
		}
	}
	if d := report.Dashboards; d != nil {
		data = append(data,
			[]string{"dashboards", "backend", d.Backend},
			[]string{"dashboards", "connected", strconv.FormatBool(d.Connected)},
			[]string{"dashboards", "dashboards", strconv.Itoa(d.TotalDashboards)},
		)
		if d.TotalDashboards > 0 {
			data = append(data,
				[]string{"dashboards", "last update", formatStatusTime(d.LastUpdateTime)},
				[]string{"dashboards", "size", formatBytes(d.TableSizeBytes)},
			)
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func formatStatusTime(t time.Time) string {
	return t.UTC().Format(contract.DateTimeFormat)
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
