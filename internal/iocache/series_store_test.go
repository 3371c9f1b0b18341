package iocache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeriesStore(t *testing.T) *SeriesStoreImpl {
	t.Helper()
	store, err := NewSeriesStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "series.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*SeriesStoreImpl)
}

func cpuBatches() []schema.SeriesBatch {
	return []schema.SeriesBatch{
		{
			CollectionRef:  "hosts",
			TimeSeriesName: "cpu.host-a",
			MetricName:     "cpu_5s",
			Resolution:     5,
			Points: []schema.RawPoint{
				{Timestamp: 100, Value: schema.Float(1)},
				{Timestamp: 105, Value: nil},
				{Timestamp: 110, Value: schema.Float(3), LastMeasurementTimestamp: schema.Int(112)},
			},
		},
		{
			CollectionRef:  "hosts",
			TimeSeriesName: "cpu.host-a",
			MetricName:     "cpu_60s",
			Resolution:     60,
			Points: []schema.RawPoint{
				{Timestamp: 60, Value: schema.Float(10), FirstMeasurementTimestamp: schema.Int(70)},
			},
		},
		{
			CollectionRef:  "hosts",
			TimeSeriesName: "cpu.host-b",
			MetricName:     "cpu_5s",
			Resolution:     5,
			Points:         []schema.RawPoint{{Timestamp: 100, Value: schema.Float(7)}},
		},
		{
			CollectionRef:  "hosts",
			TimeSeriesName: "mem.host-a",
			MetricName:     "mem_5s",
			Resolution:     5,
		},
	}
}

func TestSeriesStore_NoneBackend(t *testing.T) {
	store, err := NewSeriesStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	ctx := context.Background()
	points, err := store.FetchSeries(ctx, schema.FetchParams{PointsCount: 10}, map[string]any{})
	assert.NoError(t, err)
	assert.Empty(t, points)

	configs, err := store.FetchDynamicSeriesConfigs(ctx, map[string]any{})
	assert.NoError(t, err)
	assert.Empty(t, configs)

	written, err := store.Ingest(ctx, cpuBatches())
	assert.NoError(t, err)
	assert.Equal(t, 0, written)

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Equal(t, "none", status.Backend)

	assert.NoError(t, store.Close())
}

func TestSeriesStore_IngestAndFetch(t *testing.T) {
	store := newTestSeriesStore(t)
	ctx := context.Background()

	written, err := store.Ingest(ctx, cpuBatches())
	require.NoError(t, err)
	assert.Equal(t, 5, written)

	params := map[string]any{
		"collectionRef":  "hosts",
		"timeSeriesName": "cpu.host-a",
		"metricNames":    []any{"cpu_60s", "cpu_5s"},
	}

	t.Run("picks metric by resolution", func(t *testing.T) {
		points, err := store.FetchSeries(ctx, schema.FetchParams{TimeResolution: 5, PointsCount: 10}, params)
		require.NoError(t, err)
		require.Len(t, points, 3)
		assert.Equal(t, int64(110), points[0].Timestamp)
		assert.Equal(t, 3.0, *points[0].Value)
		assert.Equal(t, int64(112), *points[0].LastMeasurementTimestamp)
		assert.Nil(t, points[1].Value)
		assert.Equal(t, int64(100), points[2].Timestamp)
	})

	t.Run("falls back to first metric", func(t *testing.T) {
		points, err := store.FetchSeries(ctx, schema.FetchParams{TimeResolution: 3600, PointsCount: 10}, params)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, int64(60), points[0].Timestamp)
		assert.Equal(t, int64(70), *points[0].FirstMeasurementTimestamp)
	})

	t.Run("limits and bounds", func(t *testing.T) {
		points, err := store.FetchSeries(ctx, schema.FetchParams{
			TimeResolution:     5,
			PointsCount:        1,
			LastPointTimestamp: schema.Int(107),
		}, params)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, int64(105), points[0].Timestamp)
	})

	t.Run("missing parameters", func(t *testing.T) {
		_, err := store.FetchSeries(ctx, schema.FetchParams{PointsCount: 1}, map[string]any{"collectionRef": "hosts"})
		assert.Error(t, err)

		points, err := store.FetchSeries(ctx, schema.FetchParams{PointsCount: 1}, map[string]any{
			"collectionRef":  "hosts",
			"timeSeriesName": "cpu.host-a",
		})
		assert.NoError(t, err)
		assert.Empty(t, points)
	})
}

func TestSeriesStore_IngestUpserts(t *testing.T) {
	store := newTestSeriesStore(t)
	ctx := context.Background()

	_, err := store.Ingest(ctx, cpuBatches())
	require.NoError(t, err)

	_, err = store.Ingest(ctx, []schema.SeriesBatch{{
		CollectionRef:  "hosts",
		TimeSeriesName: "cpu.host-a",
		MetricName:     "cpu_5s",
		Resolution:     5,
		Points:         []schema.RawPoint{{Timestamp: 105, Value: schema.Float(2)}},
	}})
	require.NoError(t, err)

	points, err := store.FetchSeries(ctx, schema.FetchParams{TimeResolution: 5, PointsCount: 10}, map[string]any{
		"collectionRef":  "hosts",
		"timeSeriesName": "cpu.host-a",
		"metricNames":    []string{"cpu_5s"},
	})
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 2.0, *points[1].Value)
}

func TestSeriesStore_IngestValidation(t *testing.T) {
	store := newTestSeriesStore(t)

	_, err := store.Ingest(context.Background(), []schema.SeriesBatch{{CollectionRef: "hosts", MetricName: "m", Resolution: 5}})
	assert.ErrorContains(t, err, "timeSeriesName is required")

	_, err = store.Ingest(context.Background(), []schema.SeriesBatch{{CollectionRef: "hosts", TimeSeriesName: "s", MetricName: "m"}})
	assert.ErrorContains(t, err, "resolution must be positive")
}

func TestSeriesStore_DynamicConfigs(t *testing.T) {
	store := newTestSeriesStore(t)
	ctx := context.Background()
	_, err := store.Ingest(ctx, cpuBatches())
	require.NoError(t, err)

	params := map[string]any{
		"collectionRef":           "hosts",
		"timeSeriesNameGenerator": "cpu.",
		"metricNames":             []any{"cpu_5s"},
	}

	configs, err := store.FetchDynamicSeriesConfigs(ctx, params)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "cpu.host-a", configs[0]["id"])
	assert.Equal(t, "cpu.host-b", configs[1]["name"])
	assert.Equal(t, map[string]any{
		"externalSourceName": schema.StoreSourceName,
		"externalSourceParameters": map[string]any{
			"collectionRef":  "hosts",
			"timeSeriesName": "cpu.host-b",
			"metricNames":    []string{"cpu_5s"},
		},
	}, configs[1]["loadSeriesSourceSpec"])

	groups, err := store.FetchDynamicSeriesGroupConfigs(ctx, map[string]any{
		"collectionRef":           "hosts",
		"timeSeriesNameGenerator": "mem.",
	})
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"id": "mem.host-a", "name": "mem.host-a"}}, groups)

	none, err := store.FetchDynamicSeriesGroupConfigs(ctx, map[string]any{"collectionRef": "other"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSeriesStore_GetStatus(t *testing.T) {
	store := newTestSeriesStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalPoints)
	assert.True(t, status.OldestPointTime.IsZero())

	_, err = store.Ingest(context.Background(), cpuBatches())
	require.NoError(t, err)

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.Equal(t, 3, status.TotalSeries)
	assert.Equal(t, 4, status.TotalMetrics)
	assert.Equal(t, 5, status.TotalPoints)
	assert.Equal(t, int64(60), status.OldestPointTime.Unix())
	assert.Equal(t, int64(110), status.NewestPointTime.Unix())
	assert.Equal(t, int64(5), status.TableSizes[pointsTable])
}

func TestSeriesStore_ExportPoints(t *testing.T) {
	store := newTestSeriesStore(t)
	ctx := context.Background()
	_, err := store.Ingest(ctx, cpuBatches())
	require.NoError(t, err)

	points, err := store.ExportPoints(ctx)
	require.NoError(t, err)
	require.Len(t, points, 5)

	first := points[0]
	assert.Equal(t, "cpu.host-a", first.TimeSeriesName)
	assert.Equal(t, "cpu_5s", first.MetricName)
	assert.Equal(t, int64(5), first.Resolution)
	assert.Equal(t, int64(100), first.Timestamp)
	assert.Equal(t, "cpu.host-b", points[4].TimeSeriesName)
}

func TestMigrateStore_NoneBackend(t *testing.T) {
	err := MigrateStore(schema.NoneBackend, "", -1)
	assert.ErrorContains(t, err, "migrations are not supported for NoneBackend")
}

func TestMigrateStore_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, -1))
	// Already at latest
	assert.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, -1))
	assert.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, 1))
	assert.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, 0))
	assert.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, 2))

	// A store opened on a migrated database reuses the schema
	store, err := NewSeriesStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestMigrateStore_UnsupportedBackend(t *testing.T) {
	err := MigrateStore(schema.DatabaseBackend("oracle"), "", -1)
	assert.ErrorContains(t, err, "unsupported backend")
}
