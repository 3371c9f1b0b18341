package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/outwriter"
	"github.com/huangsam/tschart/schema"
)

// ExecuteStoreIngest loads the JSON series batches stored at path into the series store.
func ExecuteStoreIngest(ctx context.Context, _ *contract.Config, mgr contract.StoreManager, path string) error {
	start := time.Now()
	batches, err := LoadSeriesBatches(path)
	if err != nil {
		return err
	}
	if mgr == nil || mgr.GetSeriesStore() == nil {
		return errors.New("series store is not configured")
	}
	n, err := mgr.GetSeriesStore().Ingest(ctx, batches)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "📥 Ingested %d points from %d batches in %v\n", n, len(batches), time.Since(start))
	return nil
}

// LoadSeriesBatches reads a JSON array of series batches from disk.
func LoadSeriesBatches(path string) ([]schema.SeriesBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read series batches: %w", err)
	}
	var batches []schema.SeriesBatch
	if err := json.Unmarshal(data, &batches); err != nil {
		return nil, fmt.Errorf("decode series batches: %w", err)
	}
	return batches, nil
}

// ExecuteStoreStatus prints the status of the configured stores.
func ExecuteStoreStatus(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	report, err := StoreStatus(mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteStoreStatus(report, cfg)
}

// StoreStatus collects the status of every configured store.
func StoreStatus(mgr contract.StoreManager) (outwriter.StoreStatusReport, error) {
	var report outwriter.StoreStatusReport
	if mgr == nil {
		return report, nil
	}
	if store := mgr.GetSeriesStore(); store != nil {
		status, err := store.GetStatus()
		if err != nil {
			return report, fmt.Errorf("series store status: %w", err)
		}
		report.Series = &status
	}
	if store := mgr.GetDashboardStore(); store != nil {
		status, err := store.GetStatus()
		if err != nil {
			return report, fmt.Errorf("dashboard store status: %w", err)
		}
		report.Dashboards = &status
	}
	return report, nil
}
