package core

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/huangsam/tschart/internal/iocache"
	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const batchesJSON = `[{
  "collectionRef": "web",
  "timeSeriesName": "requests",
  "metricName": "count",
  "resolution": 5,
  "points": [{"timestamp": 100, "value": 3}, {"timestamp": 105, "value": null}]
}]`

func TestLoadSeriesBatches(t *testing.T) {
	batches, err := LoadSeriesBatches(writeTempFile(t, "batches.json", batchesJSON))
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "requests", batches[0].TimeSeriesName)
	require.Len(t, batches[0].Points, 2)
	assert.Equal(t, 3.0, *batches[0].Points[0].Value)
	assert.Nil(t, batches[0].Points[1].Value)

	_, err = LoadSeriesBatches(writeTempFile(t, "bad.json", `{"not": "a list"}`))
	assert.ErrorContains(t, err, "decode series batches")
}

func TestExecuteStoreIngest(t *testing.T) {
	store := &iocache.MockSeriesStore{}
	store.On("Ingest", mock.Anything, mock.MatchedBy(func(b []schema.SeriesBatch) bool {
		return len(b) == 1 && b[0].MetricName == "count"
	})).Return(2, nil)
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetSeriesStore").Return(store)

	path := writeTempFile(t, "batches.json", batchesJSON)
	require.NoError(t, ExecuteStoreIngest(context.Background(), nil, mgr, path))
	store.AssertExpectations(t)

	assert.ErrorContains(t, ExecuteStoreIngest(context.Background(), nil, nil, path), "not configured")
}

func TestExecuteStoreIngestError(t *testing.T) {
	store := &iocache.MockSeriesStore{}
	store.On("Ingest", mock.Anything, mock.Anything).Return(0, errors.New("resolution must be positive"))
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetSeriesStore").Return(store)

	err := ExecuteStoreIngest(context.Background(), nil, mgr, writeTempFile(t, "batches.json", batchesJSON))
	assert.ErrorContains(t, err, "resolution must be positive")
}

func TestStoreStatus(t *testing.T) {
	series := &iocache.MockSeriesStore{}
	series.On("GetStatus").Return(schema.StoreStatus{Backend: "sqlite", TotalPoints: 4}, nil)
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetSeriesStore").Return(series)
	mgr.On("GetDashboardStore").Return(nil)

	report, err := StoreStatus(mgr)
	require.NoError(t, err)
	require.NotNil(t, report.Series)
	assert.Equal(t, 4, report.Series.TotalPoints)
	assert.Nil(t, report.Dashboards)

	empty, err := StoreStatus(nil)
	require.NoError(t, err)
	assert.Nil(t, empty.Series)
}

func TestExecuteStoreStatus(t *testing.T) {
	dashboards := &iocache.MockDashboardStore{}
	dashboards.On("GetStatus").Return(schema.DashboardStoreStatus{Backend: "sqlite", TotalDashboards: 1}, nil)
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetSeriesStore").Return(nil)
	mgr.On("GetDashboardStore").Return(dashboards)

	cfg := jsonOutConfig(t)
	require.NoError(t, ExecuteStoreStatus(context.Background(), cfg, mgr))
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dashboards"`)
	assert.NotContains(t, string(data), `"series"`)
}
