package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/parquet"
	"github.com/huangsam/tschart/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteChartState outputs an evaluated chart, dispatching based on the output format configured.
func WriteChartState(state *schema.ChartState, cfg *contract.Config, duration time.Duration) error {
	if state == nil {
		return errors.New("no chart state to write")
	}

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, state)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChartCSV(w, state, cfg.Precision)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeChartParquet(state, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChartTable(state, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeChartParquet writes one row per series point. Parquet is binary so a file is required.
func writeChartParquet(state *schema.ChartState, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}
	rows := parquet.ConvertChartState(state)
	if err := parquet.WriteChartPointsParquet(rows, outputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote %d points as Parquet to %s\n", len(rows), outputFile)
	return nil
}

// writeChartCSV writes the chart in long format, one record per series point.
func writeChartCSV(w io.Writer, state *schema.ChartState, precision int) error {
	fmtValue := createFormatter(precision, "")
	header := []string{
		"series_id",
		"series_name",
		"timestamp",
		"time",
		"value",
		"flags",
		"measurement_duration",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range state.Series {
			for _, p := range s.Data {
				record := []string{
					s.ID,
					s.Name,
					strconv.FormatInt(p.Timestamp, 10),
					time.Unix(p.Timestamp, 0).UTC().Format(contract.DateTimeFormat),
					fmtValue(p.Value),
					contract.GetPlainFlags(p),
					strconv.FormatInt(p.MeasurementDuration(), 10),
				}
				if err := cw.Write(record); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
		return nil
	})
}

// writeChartTable writes the chart as a table with one row per x axis timestamp
// and one column per series.
func writeChartTable(state *schema.ChartState, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	fmtValue := createFormatter(cfg.Precision, "-")
	flags := contract.GetPlainFlags
	if cfg.UseColors {
		flags = contract.GetColorFlags
	}

	if state.Title.Content != "" {
		fmt.Fprintf(writer, "%s\n", state.Title.Content)
	}

	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	columnWidth := getMaxSeriesColumnWidth(cfg, len(state.Series))
	headers := []string{"Time"}
	for _, s := range state.Series {
		name := s.Name
		if name == "" {
			name = s.ID
		}
		headers = append(headers, contract.TruncateText(name, columnWidth))
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 2. Index points by timestamp
	byTimestamp := make([]map[int64]schema.Point, len(state.Series))
	for i, s := range state.Series {
		byTimestamp[i] = make(map[int64]schema.Point, len(s.Data))
		for _, p := range s.Data {
			byTimestamp[i][p.Timestamp] = p
		}
	}

	// 3. Populate Rows
	var data [][]string
	for _, ts := range chartTimestamps(state) {
		row := []string{contract.FormatTimestamp(ts, state.TimeResolution)}
		for i := range state.Series {
			p, ok := byTimestamp[i][ts]
			if !ok {
				row = append(row, "")
				continue
			}
			cell := fmtValue(p.Value)
			if f := flags(p); f != "" {
				cell += " " + f
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(writer, "Chart evaluated in %v with %d series at %ds resolution. Store backend: %s\n",
		duration, len(state.Series), state.TimeResolution, cfg.StoreBackend)
	return nil
}

// chartTimestamps returns the x axis timestamps, or the sorted union of series
// timestamps when the x axis is empty.
func chartTimestamps(state *schema.ChartState) []int64 {
	if len(state.XAxis.Timestamps) > 0 {
		return state.XAxis.Timestamps
	}
	seen := make(map[int64]struct{})
	var timestamps []int64
	for _, s := range state.Series {
		for _, p := range s.Data {
			if _, ok := seen[p.Timestamp]; !ok {
				seen[p.Timestamp] = struct{}{}
				timestamps = append(timestamps, p.Timestamp)
			}
		}
	}
	slices.Sort(timestamps)
	return timestamps
}
