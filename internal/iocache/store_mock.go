package iocache

import (
	"context"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetSeriesStore implements the StoreManager interface.
func (m *MockStoreManager) GetSeriesStore() contract.SeriesStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SeriesStore)
	return store
}

// GetDashboardStore implements the StoreManager interface.
func (m *MockStoreManager) GetDashboardStore() contract.DashboardStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.DashboardStore)
	return store
}

// MockSeriesStore is a mock implementation of SeriesStore for testing.
type MockSeriesStore struct {
	mock.Mock
}

var _ contract.SeriesStore = &MockSeriesStore{} // Compile-time check

// FetchSeries implements the SeriesStore interface.
func (m *MockSeriesStore) FetchSeries(ctx context.Context, params schema.FetchParams, sourceParameters map[string]any) ([]schema.RawPoint, error) {
	args := m.Called(ctx, params, sourceParameters)
	points, _ := args.Get(0).([]schema.RawPoint)
	return points, args.Error(1)
}

// FetchDynamicSeriesConfigs implements the SeriesStore interface.
func (m *MockSeriesStore) FetchDynamicSeriesConfigs(ctx context.Context, sourceParameters map[string]any) ([]map[string]any, error) {
	args := m.Called(ctx, sourceParameters)
	configs, _ := args.Get(0).([]map[string]any)
	return configs, args.Error(1)
}

// FetchDynamicSeriesGroupConfigs implements the SeriesStore interface.
func (m *MockSeriesStore) FetchDynamicSeriesGroupConfigs(ctx context.Context, sourceParameters map[string]any) ([]map[string]any, error) {
	args := m.Called(ctx, sourceParameters)
	configs, _ := args.Get(0).([]map[string]any)
	return configs, args.Error(1)
}

// Ingest implements the SeriesStore interface.
func (m *MockSeriesStore) Ingest(ctx context.Context, batches []schema.SeriesBatch) (int, error) {
	args := m.Called(ctx, batches)
	return args.Int(0), args.Error(1)
}

// ExportPoints implements the SeriesStore interface.
func (m *MockSeriesStore) ExportPoints(ctx context.Context) ([]schema.StoredPoint, error) {
	args := m.Called(ctx)
	points, _ := args.Get(0).([]schema.StoredPoint)
	return points, args.Error(1)
}

// GetStatus implements the SeriesStore interface.
func (m *MockSeriesStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the SeriesStore interface.
func (m *MockSeriesStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockDashboardStore is a mock implementation of DashboardStore for testing.
type MockDashboardStore struct {
	mock.Mock
}

var _ contract.DashboardStore = &MockDashboardStore{} // Compile-time check

// Get implements the DashboardStore interface.
func (m *MockDashboardStore) Get(name string) ([]byte, int, int64, error) {
	args := m.Called(name)
	spec, _ := args.Get(0).([]byte)
	return spec, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the DashboardStore interface.
func (m *MockDashboardStore) Set(name string, spec []byte, version int, timestamp int64) error {
	args := m.Called(name, spec, version, timestamp)
	return args.Error(0)
}

// List implements the DashboardStore interface.
func (m *MockDashboardStore) List() ([]schema.DashboardRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.DashboardRecord)
	return records, args.Error(1)
}

// Delete implements the DashboardStore interface.
func (m *MockDashboardStore) Delete(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

// GetStatus implements the DashboardStore interface.
func (m *MockDashboardStore) GetStatus() (schema.DashboardStoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.DashboardStoreStatus), args.Error(1)
}

// Close implements the DashboardStore interface.
func (m *MockDashboardStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
