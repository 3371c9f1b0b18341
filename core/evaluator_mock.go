package core

import (
	"context"

	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/mock"
)

// MockEvaluator is a mock implementation of Evaluator for testing.
type MockEvaluator struct {
	mock.Mock
}

var _ Evaluator = &MockEvaluator{} // Compile-time check

// EvaluateSeriesFunction implements the Evaluator interface.
func (m *MockEvaluator) EvaluateSeriesFunction(ctx context.Context, sc *SeriesContext, spec any) (schema.FunctionResult, error) {
	args := m.Called(ctx, sc, spec)
	result, _ := args.Get(0).(schema.FunctionResult)
	return result, args.Error(1)
}

// EvaluateSeries implements the Evaluator interface.
func (m *MockEvaluator) EvaluateSeries(ctx context.Context, sc *SeriesContext, template map[string]any) (schema.Series, error) {
	args := m.Called(ctx, sc, template)
	series, _ := args.Get(0).(schema.Series)
	return series, args.Error(1)
}

// EvaluateSeriesGroup implements the Evaluator interface.
func (m *MockEvaluator) EvaluateSeriesGroup(ctx context.Context, sc *SeriesContext, template map[string]any) (schema.SeriesGroup, error) {
	args := m.Called(ctx, sc, template)
	group, _ := args.Get(0).(schema.SeriesGroup)
	return group, args.Error(1)
}
