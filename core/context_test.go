package core

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestFunctionPathConcurrentAccess tests that the function path can be read concurrently.
func TestFunctionPathConcurrentAccess(t *testing.T) {
	ctx := withFunctionName(context.Background(), "rate")
	ctx = withFunctionName(ctx, "loadSeries")

	const numGoroutines = 50
	done := make(chan bool, numGoroutines)
	for i := range numGoroutines {
		go func(id int) {
			defer func() { done <- true }()
			assert.Equal(t, []string{"rate", "loadSeries"}, functionPath(ctx), "Goroutine %d", id)
		}(i)
	}
	for range numGoroutines {
		<-done
	}
}

// TestFunctionPathIsolation tests that sibling contexts do not share path storage.
func TestFunctionPathIsolation(t *testing.T) {
	base := withFunctionName(context.Background(), "multiply")
	left := withFunctionName(base, "rate")
	right := withFunctionName(base, "abs")

	assert.Nil(t, functionPath(context.Background()))
	assert.Equal(t, []string{"multiply"}, functionPath(base))
	assert.Equal(t, []string{"multiply", "rate"}, functionPath(left))
	assert.Equal(t, []string{"multiply", "abs"}, functionPath(right))
}

func TestSeriesContextCopies(t *testing.T) {
	sc := &SeriesContext{TimeResolution: 5, PointsCount: 10}

	more := sc.WithPointsCount(11)
	assert.Equal(t, 10, sc.PointsCount)
	assert.Equal(t, 11, more.PointsCount)
	assert.Equal(t, int64(5), more.TimeResolution)

	withConfig := sc.WithDynamicSeriesConfig(map[string]any{"id": "a"})
	assert.Nil(t, sc.DynamicSeriesConfig)
	assert.Equal(t, "a", withConfig.DynamicSeriesConfig["id"])

	withGroupConfig := sc.WithDynamicSeriesGroupConfig(map[string]any{"id": "g"})
	assert.Nil(t, sc.DynamicSeriesGroupConfig)
	assert.Equal(t, "g", withGroupConfig.DynamicSeriesGroupConfig["id"])
}

func TestSeriesContextDataSource(t *testing.T) {
	sc := &SeriesContext{}
	_, ok := sc.DataSource("store")
	assert.False(t, ok)

	sc.ExternalDataSources = map[string]any{"store": struct{}{}, "empty": nil}
	_, ok = sc.DataSource("store")
	assert.True(t, ok)
	_, ok = sc.DataSource("empty")
	assert.False(t, ok)
	_, ok = sc.DataSource("")
	assert.False(t, ok)
}

func TestSeriesContextEvaluate(t *testing.T) {
	ctx := context.Background()
	m := &MockEvaluator{}
	sc := &SeriesContext{Evaluator: m}

	result, err := sc.Evaluate(ctx, 12.0)
	require.NoError(t, err)
	assert.Equal(t, schema.NewBasicResult(12.0), result)

	fn := map[string]any{"functionName": "x"}
	m.On("EvaluateSeriesFunction", ctx, sc, fn).Return(schema.NewBasicResult("done"), nil).Once()
	result, err = sc.Evaluate(ctx, fn)
	require.NoError(t, err)
	assert.Equal(t, "done", result.Data)
	m.AssertExpectations(t)
}

func TestSeriesContextEvaluateAll(t *testing.T) {
	m := &MockEvaluator{}
	sc := &SeriesContext{Evaluator: m}
	first := map[string]any{"functionName": "first"}
	second := map[string]any{"functionName": "second"}
	m.On("EvaluateSeriesFunction", mock.Anything, sc, first).Return(schema.NewBasicResult(1.0), nil)
	m.On("EvaluateSeriesFunction", mock.Anything, sc, second).Return(schema.NewBasicResult(2.0), nil)

	results, err := sc.EvaluateAll(context.Background(), first, "raw", second)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 1.0, results[0].Data)
	assert.Equal(t, "raw", results[1].Data)
	assert.Equal(t, 2.0, results[2].Data)
}

func TestSeriesContextEvaluateAllError(t *testing.T) {
	m := &MockEvaluator{}
	sc := &SeriesContext{Evaluator: m}
	failing := map[string]any{"functionName": "failing"}
	m.On("EvaluateSeriesFunction", mock.Anything, sc, failing).Return(schema.FunctionResult{}, errors.New("boom"))

	_, err := sc.EvaluateAll(context.Background(), 1.0, failing)
	assert.EqualError(t, err, "boom")
}
