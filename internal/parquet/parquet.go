// Package parquet provides data structures and functions for exporting tschart
// points to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/tschart/schema"
	"github.com/parquet-go/parquet-go"
)

// ChartPointRow is one point of one evaluated chart series.
type ChartPointRow struct {
	// SeriesID is the id of the series the point belongs to
	SeriesID string `parquet:"series_id,snappy,dict"`

	// SeriesName is the display name of the series
	SeriesName string `parquet:"series_name,snappy,dict"`

	// Timestamp is the point start in unix seconds
	Timestamp int64 `parquet:"timestamp,snappy"`

	// Time is Timestamp as a TIMESTAMP column for query engines
	Time time.Time `parquet:"time,snappy"`

	// Value is the point value, null when the slot has no data
	Value *float64 `parquet:"value,optional,snappy"`

	Fake   bool `parquet:"fake"`
	Oldest bool `parquet:"oldest"`
	Newest bool `parquet:"newest"`

	// MeasurementDuration is how many seconds of real measurements the point covers
	MeasurementDuration int64 `parquet:"measurement_duration,snappy"`
}

// StoredPointRow is one point of the series store.
type StoredPointRow struct {
	CollectionRef  string `parquet:"collection_ref,snappy,dict"`
	TimeSeriesName string `parquet:"time_series_name,snappy,dict"`
	MetricName     string `parquet:"metric_name,snappy,dict"`
	Resolution     int64  `parquet:"resolution,snappy"`
	Timestamp      int64  `parquet:"timestamp,snappy"`

	// Value is the point value, null when the slot has no data
	Value *float64 `parquet:"value,optional,snappy"`

	FirstMeasurement *int64 `parquet:"first_measurement,optional,snappy"`
	LastMeasurement  *int64 `parquet:"last_measurement,optional,snappy"`
}

// ConvertChartState flattens the series of a chart state into rows.
func ConvertChartState(state *schema.ChartState) []ChartPointRow {
	if state == nil {
		return nil
	}
	var rows []ChartPointRow
	for _, s := range state.Series {
		for _, p := range s.Data {
			rows = append(rows, ChartPointRow{
				SeriesID:            s.ID,
				SeriesName:          s.Name,
				Timestamp:           p.Timestamp,
				Time:                time.Unix(p.Timestamp, 0).UTC(),
				Value:               p.Value,
				Fake:                p.Fake,
				Oldest:              p.Oldest,
				Newest:              p.Newest,
				MeasurementDuration: p.MeasurementDuration(),
			})
		}
	}
	return rows
}

// ConvertStoredPoints converts store points into rows.
func ConvertStoredPoints(points []schema.StoredPoint) []StoredPointRow {
	result := make([]StoredPointRow, len(points))
	for i, p := range points {
		result[i] = StoredPointRow{
			CollectionRef:    p.CollectionRef,
			TimeSeriesName:   p.TimeSeriesName,
			MetricName:       p.MetricName,
			Resolution:       p.Resolution,
			Timestamp:        p.Timestamp,
			Value:            p.Value,
			FirstMeasurement: p.FirstMeasurementTimestamp,
			LastMeasurement:  p.LastMeasurementTimestamp,
		}
	}
	return result
}

// WriteChartPoints writes chart rows to w.
func WriteChartPoints(rows []ChartPointRow, w io.Writer) error {
	return writeRows(rows, w)
}

// WriteChartPointsParquet writes chart rows to a Parquet file.
func WriteChartPointsParquet(rows []ChartPointRow, outputPath string) error {
	return writeFile(rows, outputPath)
}

// WriteStoredPointsParquet writes store rows to a Parquet file.
func WriteStoredPointsParquet(rows []StoredPointRow, outputPath string) error {
	return writeFile(rows, outputPath)
}

func writeFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeRows(rows, file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// writeRows writes rows with a schema derived from the struct tags of T.
func writeRows[T any](rows []T, w io.Writer) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the footer
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
