package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteDashboardTree outputs a dashboard spec. Text mode prints an indented outline,
// JSON mode prints the normalized spec.
func WriteDashboardTree(spec *schema.DashboardSpec, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, spec)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDashboardOutline(w, spec)
		}, "Wrote outline")
	}
}

// writeDashboardOutline prints sections and charts with two spaces of indent per level.
func writeDashboardOutline(w io.Writer, spec *schema.DashboardSpec) error {
	if spec == nil || spec.RootSection == nil {
		_, err := fmt.Fprintln(w, "(empty dashboard)")
		return err
	}
	return writeSectionOutline(w, spec.RootSection, 0)
}

func writeSectionOutline(w io.Writer, section *schema.SectionSpec, depth int) error {
	indent := strings.Repeat("  ", depth)
	title := section.Title.Content
	if title == "" && depth == 0 {
		title = "root"
	}
	if _, err := fmt.Fprintf(w, "%s- section %q [%s]\n", indent, title, section.ChartNavigation); err != nil {
		return err
	}
	for _, chart := range section.Charts {
		_, err := fmt.Fprintf(w, "%s  - chart %q: %d axes, %d series builders, %d group builders\n",
			indent, chart.Title.Content, len(chart.YAxes), len(chart.SeriesBuilders), len(chart.SeriesGroupBuilders))
		if err != nil {
			return err
		}
	}
	for i := range section.Sections {
		if err := writeSectionOutline(w, &section.Sections[i], depth+1); err != nil {
			return err
		}
	}
	return nil
}

// WriteDashboardList outputs stored dashboard records.
func WriteDashboardList(records []schema.DashboardRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if records == nil {
			records = []schema.DashboardRecord{}
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, records)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDashboardListCSV(w, records)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDashboardListTable(w, records)
		}, "Wrote table")
	}
	return nil
}

func writeDashboardListCSV(w io.Writer, records []schema.DashboardRecord) error {
	return writeCSVWithHeader(w, []string{"name", "version", "updated_at", "size_bytes"}, func(cw *csv.Writer) error {
		for _, r := range records {
			record := []string{
				r.Name,
				strconv.Itoa(r.Version),
				time.Unix(r.UpdatedAt, 0).UTC().Format(contract.DateTimeFormat),
				strconv.Itoa(len(r.Spec)),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

func writeDashboardListTable(w io.Writer, records []schema.DashboardRecord) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", "Version", "Updated", "Size"})

	var data [][]string
	for _, r := range records {
		data = append(data, []string{
			r.Name,
			strconv.Itoa(r.Version),
			time.Unix(r.UpdatedAt, 0).UTC().Format(contract.DateTimeFormat),
			fmt.Sprintf("%d B", len(r.Spec)),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d dashboards stored\n", len(records))
	return err
}
