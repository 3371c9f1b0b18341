// Package contract provides interfaces and shared utilities for the tschart internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/tschart/schema"
)

// ExternalDataSource is anything registered under a name as a chart data source.
// What it can deliver is discovered through the fetcher interfaces below.
type ExternalDataSource = any

// SeriesFetcher delivers raw points of a single series.
type SeriesFetcher interface {
	// FetchSeries returns up to params.PointsCount points not newer than
	// params.LastPointTimestamp. Order is not significant.
	FetchSeries(ctx context.Context, params schema.FetchParams, sourceParameters map[string]any) ([]schema.RawPoint, error)
}

// DynamicSeriesConfigsFetcher delivers configs used to stamp out series from a template.
type DynamicSeriesConfigsFetcher interface {
	FetchDynamicSeriesConfigs(ctx context.Context, sourceParameters map[string]any) ([]map[string]any, error)
}

// DynamicSeriesGroupConfigsFetcher delivers configs used to stamp out series groups from a template.
type DynamicSeriesGroupConfigsFetcher interface {
	FetchDynamicSeriesGroupConfigs(ctx context.Context, sourceParameters map[string]any) ([]map[string]any, error)
}

// StoreManager defines the interface for managing the SQL stores.
// This allows the store layer to be mocked for testing.
type StoreManager interface {
	GetSeriesStore() SeriesStore
	GetDashboardStore() DashboardStore
}

// SeriesStore persists time series and serves them as an external data source.
type SeriesStore interface {
	SeriesFetcher
	DynamicSeriesConfigsFetcher
	DynamicSeriesGroupConfigsFetcher

	// Ingest upserts metrics and their points, returning the number of points written.
	Ingest(ctx context.Context, batches []schema.SeriesBatch) (int, error)

	// ExportPoints returns every stored point ordered by series and timestamp.
	ExportPoints(ctx context.Context) ([]schema.StoredPoint, error)

	// GetStatus returns status information about the series store
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}

// DashboardStore defines the interface for dashboard spec storage.
type DashboardStore interface {
	Get(name string) ([]byte, int, int64, error)
	Set(name string, spec []byte, version int, timestamp int64) error
	List() ([]schema.DashboardRecord, error)
	Delete(name string) error
	GetStatus() (schema.DashboardStoreStatus, error)
	Close() error
}
