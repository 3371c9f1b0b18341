package core

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateNonFunction(t *testing.T) {
	r := NewRegistry()
	result, err := r.EvaluateSeriesFunction(context.Background(), newTestContext(r), []any{1.0, 2.0})
	require.NoError(t, err)
	assert.Equal(t, schema.NewBasicResult([]any{1.0, 2.0}), result)
}

func TestEvaluateUnknownFunction(t *testing.T) {
	r := NewRegistry()
	sc := newTestContext(r)

	_, err := r.EvaluateSeriesFunction(context.Background(), sc, call("abs", map[string]any{
		"inputDataProvider": call("doesNotExist", nil),
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFunction))

	var unknown *UnknownFunctionError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "doesNotExist", unknown.FunctionName)
	assert.Equal(t, []string{"abs"}, unknown.Path)
	assert.Equal(t, UnknownFunctionErrorID, unknown.ID())
	assert.Contains(t, err.Error(), "(in abs)")
}

func TestEvaluateCancelledContext(t *testing.T) {
	r := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.EvaluateSeriesFunction(ctx, newTestContext(r), lit(1.0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLiteral(t *testing.T) {
	r := NewRegistry()
	result, err := r.EvaluateSeriesFunction(context.Background(), newTestContext(r), lit("abc"))
	require.NoError(t, err)
	assert.Equal(t, schema.NewBasicResult("abc"), result)

	result, err = r.EvaluateSeriesFunction(context.Background(), newTestContext(r), call("literal", nil))
	require.NoError(t, err)
	assert.Equal(t, schema.NewBasicResult(nil), result)
}

func TestGetDynamicConfigs(t *testing.T) {
	r := NewRegistry()
	sc := newTestContext(r).
		WithDynamicSeriesConfig(map[string]any{"id": "s1"}).
		WithDynamicSeriesGroupConfig(map[string]any{"id": "g1"})
	ctx := context.Background()

	result, err := r.EvaluateSeriesFunction(ctx, sc, call("getDynamicSeriesConfig", map[string]any{"propertyName": "id"}))
	require.NoError(t, err)
	assert.Equal(t, "s1", result.Data)

	result, err = r.EvaluateSeriesFunction(ctx, sc, call("getDynamicSeriesGroupConfig", map[string]any{"propertyName": "id"}))
	require.NoError(t, err)
	assert.Equal(t, "g1", result.Data)

	result, err = r.EvaluateSeriesFunction(ctx, sc, call("getDynamicSeriesConfig", map[string]any{"propertyName": "missing"}))
	require.NoError(t, err)
	assert.Nil(t, result.Data)

	result, err = r.EvaluateSeriesFunction(ctx, newTestContext(r), call("getDynamicSeriesConfig", map[string]any{"propertyName": "id"}))
	require.NoError(t, err)
	assert.Nil(t, result.Data)
}

func TestAbs(t *testing.T) {
	r := NewRegistry()
	sc := newTestContext(r)
	ctx := context.Background()
	input := pointsFixture(r, "input", []schema.Point{
		pt(0, v(-3), schema.PointParams{}),
		pt(5, nil, schema.PointParams{Fake: true}),
		pt(10, v(math.Inf(-1)), schema.PointParams{}),
	})

	result, err := r.EvaluateSeriesFunction(ctx, sc, call("abs", map[string]any{"inputDataProvider": input}))
	require.NoError(t, err)
	assert.Equal(t, []schema.Point{
		pt(0, v(3), schema.PointParams{}),
		pt(5, nil, schema.PointParams{Fake: true}),
		pt(10, nil, schema.PointParams{}),
	}, result.Points())

	result, err = r.EvaluateSeriesFunction(ctx, sc, call("abs", map[string]any{"inputDataProvider": []any{-1.0, nil, 2.0}}))
	require.NoError(t, err)
	assert.Equal(t, []*float64{v(1), nil, v(2)}, result.Data)

	result, err = r.EvaluateSeriesFunction(ctx, sc, call("abs", map[string]any{"inputDataProvider": -4.0}))
	require.NoError(t, err)
	assert.Equal(t, v(4), result.Data)

	result, err = r.EvaluateSeriesFunction(ctx, sc, call("abs", nil))
	require.NoError(t, err)
	assert.Equal(t, schema.NewBasicResult(nil), result)
}

func TestRate(t *testing.T) {
	day := int64(24 * 60 * 60)
	tests := []struct {
		name           string
		input          any
		timeSpan       any
		timeResolution int64
		expected       any
	}{
		{
			name:           "Typical",
			input:          []schema.Point{pt(0, v(100), schema.PointParams{}), pt(5, v(50), schema.PointParams{})},
			timeSpan:       1.0,
			timeResolution: 5,
			expected:       []schema.Point{pt(0, v(20), schema.PointParams{}), pt(5, v(10), schema.PointParams{})},
		},
		{
			name:           "Custom time span",
			input:          []schema.Point{pt(0, v(100), schema.PointParams{}), pt(5, v(50), schema.PointParams{})},
			timeSpan:       5.0,
			timeResolution: 5,
			expected:       []schema.Point{pt(0, v(100), schema.PointParams{}), pt(5, v(50), schema.PointParams{})},
		},
		{
			name:           "Nil time span",
			input:          []schema.Point{pt(0, v(100), schema.PointParams{}), pt(5, v(50), schema.PointParams{})},
			timeResolution: 5,
			expected:       []schema.Point{pt(0, v(20), schema.PointParams{}), pt(5, v(10), schema.PointParams{})},
		},
		{
			name:           "Zero time span",
			input:          []schema.Point{pt(0, v(100), schema.PointParams{}), pt(5, v(50), schema.PointParams{})},
			timeSpan:       0.0,
			timeResolution: 5,
			expected:       []schema.Point{pt(0, v(20), schema.PointParams{}), pt(5, v(10), schema.PointParams{})},
		},
		{
			name:           "Negative time span",
			input:          []schema.Point{pt(0, v(100), schema.PointParams{}), pt(5, v(50), schema.PointParams{})},
			timeSpan:       -1.0,
			timeResolution: 5,
			expected:       []schema.Point{pt(0, v(20), schema.PointParams{}), pt(5, v(10), schema.PointParams{})},
		},
		{
			name:           "Points with nil",
			input:          []schema.Point{pt(0, v(100), schema.PointParams{}), pt(5, nil, schema.PointParams{}), pt(10, v(50), schema.PointParams{})},
			timeResolution: 5,
			expected:       []schema.Point{pt(0, v(20), schema.PointParams{}), pt(5, nil, schema.PointParams{}), pt(10, v(10), schema.PointParams{})},
		},
		{
			name:           "Zero and negative values",
			input:          []schema.Point{pt(0, v(0), schema.PointParams{}), pt(5, v(-50), schema.PointParams{})},
			timeResolution: 5,
			expected:       []schema.Point{pt(0, v(0), schema.PointParams{}), pt(5, v(-10), schema.PointParams{})},
		},
		{
			name:           "Values array",
			input:          []any{100.0, 50.0, nil},
			timeResolution: 5,
			expected:       []*float64{v(20), v(10), nil},
		},
		{
			name:           "Single value",
			input:          100.0,
			timeResolution: 5,
			expected:       v(20),
		},
		{
			name:           "Values array without time resolution",
			input:          []any{100.0, 50.0, nil},
			timeResolution: 0,
			expected:       []*float64{nil, nil, nil},
		},
		{
			name:           "Single value with negative time resolution",
			input:          100.0,
			timeResolution: -5,
			expected:       (*float64)(nil),
		},
		{
			name:           "Time span larger than resolution",
			input:          []schema.Point{pt(0, v(100), schema.PointParams{}), pt(5, v(50), schema.PointParams{})},
			timeSpan:       60.0,
			timeResolution: 5,
			expected:       []schema.Point{pt(0, v(1200), schema.PointParams{}), pt(5, v(600), schema.PointParams{})},
		},
		{
			name: "Resolution much larger than time span",
			input: []schema.Point{
				pt(0, v(8640000), schema.PointParams{PointDuration: day}),
				pt(5, v(2160000), schema.PointParams{PointDuration: day}),
			},
			timeSpan:       30.0,
			timeResolution: day,
			expected: []schema.Point{
				pt(0, v(3000), schema.PointParams{PointDuration: day}),
				pt(5, v(750), schema.PointParams{PointDuration: day}),
			},
		},
		{
			name: "Partial last point",
			input: []schema.Point{
				pt(0, v(100), schema.PointParams{}),
				pt(5, v(50), schema.PointParams{LastMeasurementTimestamp: schema.Int(6), Newest: true}),
			},
			timeSpan:       1.0,
			timeResolution: 5,
			expected: []schema.Point{
				pt(0, v(20), schema.PointParams{}),
				pt(5, v(25), schema.PointParams{LastMeasurementTimestamp: schema.Int(6), Newest: true}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			sc := newTestContext(r)
			sc.TimeResolution = tt.timeResolution

			input := tt.input
			if points, ok := tt.input.([]schema.Point); ok {
				input = pointsFixture(r, "input", points)
			}
			result, err := r.EvaluateSeriesFunction(context.Background(), sc, call("rate", map[string]any{
				"inputDataProvider": input,
				"timeSpanProvider":  lit(tt.timeSpan),
			}))
			require.NoError(t, err)

			if points, ok := tt.expected.([]schema.Point); ok {
				assert.Equal(t, points, result.Points())
				return
			}
			assert.Equal(t, schema.NewBasicResult(tt.expected), result)
		})
	}
}

func TestRateWithoutInput(t *testing.T) {
	r := NewRegistry()
	result, err := r.EvaluateSeriesFunction(context.Background(), newTestContext(r), call("rate", nil))
	require.NoError(t, err)
	assert.Equal(t, schema.NewBasicResult(nil), result)
}

func TestRateTimeSpanFromPoints(t *testing.T) {
	r := NewRegistry()
	sc := newTestContext(r)
	span := pointsFixture(r, "span", []schema.Point{pt(0, v(1), schema.PointParams{}), pt(5, v(10), schema.PointParams{})})

	result, err := r.EvaluateSeriesFunction(context.Background(), sc, call("rate", map[string]any{
		"inputDataProvider": 50.0,
		"timeSpanProvider":  span,
	}))
	require.NoError(t, err)
	assert.Equal(t, v(100), result.Data)
}

func TestTimeDerivative(t *testing.T) {
	tests := []struct {
		name     string
		input    []schema.Point
		timeSpan any
		expected []schema.Point
	}{
		{
			name:     "Typical",
			input:    []schema.Point{pt(10, v(100), schema.PointParams{}), pt(15, v(50), schema.PointParams{}), pt(20, v(150), schema.PointParams{})},
			timeSpan: 1.0,
			expected: []schema.Point{pt(15, v(-10), schema.PointParams{}), pt(20, v(20), schema.PointParams{})},
		},
		{
			name:     "Custom time span",
			input:    []schema.Point{pt(10, v(100), schema.PointParams{}), pt(15, v(50), schema.PointParams{}), pt(20, v(150), schema.PointParams{})},
			timeSpan: 5.0,
			expected: []schema.Point{pt(15, v(-50), schema.PointParams{}), pt(20, v(100), schema.PointParams{})},
		},
		{
			name:     "Time span larger than resolution",
			input:    []schema.Point{pt(10, v(100), schema.PointParams{}), pt(15, v(50), schema.PointParams{}), pt(20, v(150), schema.PointParams{})},
			timeSpan: 60.0,
			expected: []schema.Point{pt(15, v(-600), schema.PointParams{}), pt(20, v(1200), schema.PointParams{})},
		},
		{
			name: "Oldest point starts from zero",
			input: []schema.Point{
				pt(5, nil, schema.PointParams{Oldest: true, Fake: true}),
				pt(10, v(100), schema.PointParams{Oldest: true}),
				pt(15, v(50), schema.PointParams{}),
				pt(20, v(150), schema.PointParams{}),
			},
			expected: []schema.Point{
				pt(10, v(20), schema.PointParams{Oldest: true}),
				pt(15, v(-10), schema.PointParams{}),
				pt(20, v(20), schema.PointParams{}),
			},
		},
		{
			name: "Fake oldest stays empty",
			input: []schema.Point{
				pt(0, nil, schema.PointParams{Oldest: true, Fake: true}),
				pt(5, nil, schema.PointParams{Oldest: true, Fake: true}),
				pt(10, v(100), schema.PointParams{Oldest: true}),
			},
			expected: []schema.Point{
				pt(5, nil, schema.PointParams{Oldest: true, Fake: true}),
				pt(10, v(20), schema.PointParams{Oldest: true}),
			},
		},
		{
			name: "Partial last point",
			input: []schema.Point{
				pt(10, v(100), schema.PointParams{}),
				pt(15, v(50), schema.PointParams{}),
				pt(20, v(150), schema.PointParams{Newest: true, LastMeasurementTimestamp: schema.Int(21)}),
			},
			expected: []schema.Point{
				pt(15, v(-10), schema.PointParams{}),
				pt(20, v(50), schema.PointParams{Newest: true, LastMeasurementTimestamp: schema.Int(21)}),
			},
		},
		{
			name: "Nil values",
			input: []schema.Point{
				pt(0, v(100), schema.PointParams{}),
				pt(5, nil, schema.PointParams{}),
				pt(10, nil, schema.PointParams{}),
				pt(15, v(50), schema.PointParams{}),
				pt(20, v(100), schema.PointParams{}),
			},
			expected: []schema.Point{
				pt(5, nil, schema.PointParams{}),
				pt(10, nil, schema.PointParams{}),
				pt(15, nil, schema.PointParams{}),
				pt(20, v(10), schema.PointParams{}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			sc := newTestContext(r)
			sc.PointsCount = len(tt.input) - 1

			var requestedCount int
			r.RegisterFunction("input", func(_ context.Context, sc *SeriesContext, _ map[string]any) (schema.FunctionResult, error) {
				requestedCount = sc.PointsCount
				return schema.NewPointsResult(schema.ClonePoints(tt.input)), nil
			})

			result, err := r.EvaluateSeriesFunction(context.Background(), sc, call("timeDerivative", map[string]any{
				"inputDataProvider": call("input", nil),
				"timeSpanProvider":  tt.timeSpan,
			}))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Points())
			assert.Equal(t, len(tt.input), requestedCount)
		})
	}
}

func TestTimeDerivativeBasic(t *testing.T) {
	r := NewRegistry()
	sc := newTestContext(r)
	ctx := context.Background()

	result, err := r.EvaluateSeriesFunction(ctx, sc, call("timeDerivative", map[string]any{
		"inputDataProvider": []any{100.0, 50.0, nil},
	}))
	require.NoError(t, err)
	assert.Equal(t, []*float64{v(-10), nil}, result.Data)

	result, err = r.EvaluateSeriesFunction(ctx, sc, call("timeDerivative", map[string]any{
		"inputDataProvider": 100.0,
	}))
	require.NoError(t, err)
	assert.Equal(t, schema.NewBasicResult(nil), result)
}

func TestReplaceEmptyFunction(t *testing.T) {
	ctx := context.Background()

	t.Run("Points with scalar fallback", func(t *testing.T) {
		r := NewRegistry()
		input := pointsFixture(r, "input", []schema.Point{
			pt(0, v(1), schema.PointParams{}),
			pt(5, nil, schema.PointParams{Fake: true}),
		})
		result, err := r.EvaluateSeriesFunction(ctx, newTestContext(r), call("replaceEmpty", map[string]any{
			"inputDataProvider":     input,
			"fallbackValueProvider": 0.0,
		}))
		require.NoError(t, err)
		assert.Equal(t, []schema.Point{
			pt(0, v(1), schema.PointParams{}),
			pt(5, v(0), schema.PointParams{Fake: true}),
		}, result.Points())
	})

	t.Run("Points with points fallback matched by timestamp", func(t *testing.T) {
		r := NewRegistry()
		input := pointsFixture(r, "input", []schema.Point{
			pt(0, nil, schema.PointParams{}),
			pt(5, nil, schema.PointParams{}),
			pt(10, v(3), schema.PointParams{}),
		})
		fallback := pointsFixture(r, "fallback", []schema.Point{
			pt(5, v(7), schema.PointParams{}),
			pt(10, v(8), schema.PointParams{}),
		})
		result, err := r.EvaluateSeriesFunction(ctx, newTestContext(r), call("replaceEmpty", map[string]any{
			"inputDataProvider":     input,
			"fallbackValueProvider": fallback,
		}))
		require.NoError(t, err)
		assert.Equal(t, []*float64{nil, v(7), v(3)}, schema.PointValues(result.Points()))
	})

	t.Run("Array with points fallback by position", func(t *testing.T) {
		r := NewRegistry()
		fallback := pointsFixture(r, "fallback", []schema.Point{
			pt(5, v(7), schema.PointParams{}),
			pt(10, v(8), schema.PointParams{}),
		})
		result, err := r.EvaluateSeriesFunction(ctx, newTestContext(r), call("replaceEmpty", map[string]any{
			"inputDataProvider":     []any{nil, 1.0},
			"fallbackValueProvider": fallback,
		}))
		require.NoError(t, err)
		assert.Equal(t, []*float64{v(7), v(1)}, result.Data)
	})

	t.Run("Use previous", func(t *testing.T) {
		r := NewRegistry()
		result, err := r.EvaluateSeriesFunction(ctx, newTestContext(r), call("replaceEmpty", map[string]any{
			"inputDataProvider":     []any{nil, 1.0, nil, nil},
			"fallbackValueProvider": 0.0,
			"strategyProvider":      lit("usePrevious"),
		}))
		require.NoError(t, err)
		assert.Equal(t, []*float64{v(0), v(1), v(1), v(1)}, result.Data)
	})

	t.Run("Scalar with points fallback is invalid", func(t *testing.T) {
		r := NewRegistry()
		fallback := pointsFixture(r, "fallback", []schema.Point{pt(5, v(7), schema.PointParams{})})
		result, err := r.EvaluateSeriesFunction(ctx, newTestContext(r), call("replaceEmpty", map[string]any{
			"inputDataProvider":     nil,
			"fallbackValueProvider": fallback,
		}))
		require.NoError(t, err)
		assert.Equal(t, schema.NewBasicResult(nil), result)
	})

	t.Run("Missing arguments", func(t *testing.T) {
		r := NewRegistry()
		result, err := r.EvaluateSeriesFunction(ctx, newTestContext(r), call("replaceEmpty", map[string]any{
			"inputDataProvider": 1.0,
		}))
		require.NoError(t, err)
		assert.Equal(t, schema.NewBasicResult(nil), result)
	})
}
