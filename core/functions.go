package core

import (
	"context"
	"math"

	"github.com/huangsam/tschart/core/algo"
	"github.com/huangsam/tschart/schema"
)

// literal returns its data argument untouched.
func literal(_ context.Context, _ *SeriesContext, args map[string]any) (schema.FunctionResult, error) {
	return schema.NewBasicResult(args["data"]), nil
}

// getDynamicSeriesConfig reads a property of the dynamic series config in scope.
func getDynamicSeriesConfig(_ context.Context, sc *SeriesContext, args map[string]any) (schema.FunctionResult, error) {
	name, _ := args["propertyName"].(string)
	if sc.DynamicSeriesConfig == nil || name == "" {
		return schema.NewBasicResult(nil), nil
	}
	return schema.NewBasicResult(sc.DynamicSeriesConfig[name]), nil
}

func abs(ctx context.Context, sc *SeriesContext, args map[string]any) (schema.FunctionResult, error) {
	input, ok := args["inputDataProvider"]
	if !ok {
		return schema.NewBasicResult(nil), nil
	}
	result, err := sc.Evaluate(ctx, input)
	if err != nil {
		return schema.FunctionResult{}, err
	}
	return mapValues(result, func(v *float64, _ *schema.Point) *float64 {
		if v == nil {
			return nil
		}
		return schema.Float(math.Abs(*v))
	}), nil
}

// replaceEmpty fills nil values of the input with fallback values.
func replaceEmpty(ctx context.Context, sc *SeriesContext, args map[string]any) (schema.FunctionResult, error) {
	input, hasInput := args["inputDataProvider"]
	fallback, hasFallback := args["fallbackValueProvider"]
	if !hasInput || !hasFallback {
		return schema.NewBasicResult(nil), nil
	}

	results, err := sc.EvaluateAll(ctx, input, fallback, args["strategyProvider"])
	if err != nil {
		return schema.FunctionResult{}, err
	}
	data, fallbackResult := results[0], results[1]
	strategy := algo.NormalizeStrategy(results[2].Data)

	var fallbackValues any
	switch {
	case fallbackResult.IsPoints() && data.IsPoints():
		fallbackValues = matchByTimestamp(data.Points(), fallbackResult.Points())
	case fallbackResult.IsPoints():
		fallbackValues = schema.PointValues(fallbackResult.Points())
	default:
		fallbackValues = basicValues(fallbackResult.Data)
	}

	if data.IsPoints() {
		replaced, ok := algo.ReplaceEmpty(schema.PointValues(data.Points()), fallbackValues, strategy)
		if !ok {
			return schema.NewBasicResult(nil), nil
		}
		points := [][]schema.Point{data.Points()}
		return schema.NewPointsResult(algo.MergePointsArrays(points, replaced.([]*float64))), nil
	}

	replaced, ok := algo.ReplaceEmpty(basicValues(data.Data), fallbackValues, strategy)
	if !ok {
		return schema.NewBasicResult(nil), nil
	}
	return schema.NewBasicResult(replaced), nil
}

// matchByTimestamp returns, for every point of data, the value of the
// fallback point with the same timestamp. Both sequences are ascending.
func matchByTimestamp(data, fallback []schema.Point) []*float64 {
	values := make([]*float64, len(data))
	j := 0
	for i, p := range data {
		for j < len(fallback) && fallback[j].Timestamp < p.Timestamp {
			j++
		}
		if j < len(fallback) && fallback[j].Timestamp == p.Timestamp {
			values[i] = fallback[j].Value
		}
	}
	return values
}

// getDynamicSeriesGroupConfig reads a property of the dynamic series group config in scope.
func getDynamicSeriesGroupConfig(_ context.Context, sc *SeriesContext, args map[string]any) (schema.FunctionResult, error) {
	name, _ := args["propertyName"].(string)
	if sc.DynamicSeriesGroupConfig == nil || name == "" {
		return schema.NewBasicResult(nil), nil
	}
	return schema.NewBasicResult(sc.DynamicSeriesGroupConfig[name]), nil
}
