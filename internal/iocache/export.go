package iocache

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/tschart/internal/parquet"
)

// ExecuteStoreExport writes every stored point of the series store to a Parquet file.
func ExecuteStoreExport(ctx context.Context, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetSeriesStore()
	if store == nil {
		return errors.New("series store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}

	if status.TotalPoints == 0 {
		return errors.New("no stored points found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total series: %d\n", status.TotalSeries)
	fmt.Printf("Total points: %d\n", status.TotalPoints)

	points, err := store.ExportPoints(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve stored points: %w", err)
	}

	rows := parquet.ConvertStoredPoints(points)
	if err := parquet.WriteStoredPointsParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write stored points: %w", err)
	}
	fmt.Printf("Exported %d points to: %s\n", len(rows), outputFile)

	return nil
}
