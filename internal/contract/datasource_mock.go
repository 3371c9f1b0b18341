package contract

import (
	"context"

	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/mock"
)

// MockExternalDataSource is a mock implementation of all data source capabilities.
type MockExternalDataSource struct {
	mock.Mock
}

var (
	_ SeriesFetcher                    = &MockExternalDataSource{} // Compile-time check
	_ DynamicSeriesConfigsFetcher      = &MockExternalDataSource{}
	_ DynamicSeriesGroupConfigsFetcher = &MockExternalDataSource{}
)

// FetchSeries mocks the FetchSeries method.
func (m *MockExternalDataSource) FetchSeries(ctx context.Context, params schema.FetchParams, sourceParameters map[string]any) ([]schema.RawPoint, error) {
	args := m.Called(ctx, params, sourceParameters)
	points, _ := args.Get(0).([]schema.RawPoint)
	return points, args.Error(1)
}

// FetchDynamicSeriesConfigs mocks the FetchDynamicSeriesConfigs method.
func (m *MockExternalDataSource) FetchDynamicSeriesConfigs(ctx context.Context, sourceParameters map[string]any) ([]map[string]any, error) {
	args := m.Called(ctx, sourceParameters)
	configs, _ := args.Get(0).([]map[string]any)
	return configs, args.Error(1)
}

// FetchDynamicSeriesGroupConfigs mocks the FetchDynamicSeriesGroupConfigs method.
func (m *MockExternalDataSource) FetchDynamicSeriesGroupConfigs(ctx context.Context, sourceParameters map[string]any) ([]map[string]any, error) {
	args := m.Called(ctx, sourceParameters)
	configs, _ := args.Get(0).([]map[string]any)
	return configs, args.Error(1)
}
