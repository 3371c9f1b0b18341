package core

import (
	"context"

	"github.com/huangsam/tschart/schema"
)

const defaultTimeSpan = 1.0

// rate converts values into change per time span, using the time covered by
// each point's measurements.
func rate(ctx context.Context, sc *SeriesContext, args map[string]any) (schema.FunctionResult, error) {
	input, ok := args["inputDataProvider"]
	if !ok || input == nil {
		return schema.NewBasicResult(nil), nil
	}

	results, err := sc.EvaluateAll(ctx, input, args["timeSpanProvider"])
	if err != nil {
		return schema.FunctionResult{}, err
	}
	timeSpan := normalizeTimeSpan(results[1])

	return mapValues(results[0], func(v *float64, p *schema.Point) *float64 {
		if v == nil {
			return nil
		}
		duration := sc.TimeResolution
		if p != nil {
			duration = p.MeasurementDuration()
		}
		// Basic values measured over no time resolution have no rate.
		if duration <= 0 {
			return nil
		}
		return schema.Float(*v / float64(duration) * timeSpan)
	}), nil
}

// timeDerivative computes the change between consecutive values per time span.
// One extra older value is loaded so the output keeps the requested length.
func timeDerivative(ctx context.Context, sc *SeriesContext, args map[string]any) (schema.FunctionResult, error) {
	input, ok := args["inputDataProvider"]
	if !ok || input == nil {
		return schema.NewBasicResult(nil), nil
	}

	results, err := EvaluateEach(ctx,
		func(ctx context.Context) (schema.FunctionResult, error) {
			return sc.WithPointsCount(sc.PointsCount+1).Evaluate(ctx, input)
		},
		func(ctx context.Context) (schema.FunctionResult, error) {
			return sc.Evaluate(ctx, args["timeSpanProvider"])
		},
	)
	if err != nil {
		return schema.FunctionResult{}, err
	}
	data := results[0]
	timeSpan := normalizeTimeSpan(results[1])

	if data.IsPoints() {
		points := data.Points()
		if len(points) == 0 {
			return schema.NewPointsResult(nil), nil
		}
		out := make([]schema.Point, 0, len(points)-1)
		for i := 1; i < len(points); i++ {
			cur, prev := points[i], points[i-1]
			out = append(out, cur.WithValue(pointDerivative(cur, prev, timeSpan)))
		}
		return schema.NewPointsResult(out), nil
	}

	values, isArray := basicValues(data.Data).([]*float64)
	if !isArray {
		return schema.NewBasicResult(nil), nil
	}
	if len(values) == 0 {
		return schema.NewBasicResult([]*float64{}), nil
	}
	out := make([]*float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		cur, prev := values[i], values[i-1]
		if cur == nil || prev == nil || sc.TimeResolution <= 0 {
			out = append(out, nil)
			continue
		}
		out = append(out, schema.Float((*cur-*prev)/float64(sc.TimeResolution)*timeSpan))
	}
	return schema.NewBasicResult(out), nil
}

func pointDerivative(cur, prev schema.Point, timeSpan float64) *float64 {
	value := finite(cur.Value)
	if value == nil {
		return nil
	}
	prevValue := finite(prev.Value)
	if prevValue == nil {
		// The very first measurement is a change from nothing.
		if !cur.Oldest || cur.Fake {
			return nil
		}
		prevValue = schema.Float(0)
	}
	return schema.Float((*value - *prevValue) / float64(cur.MeasurementDuration()) * timeSpan)
}

// normalizeTimeSpan extracts a positive finite time span from a result.
func normalizeTimeSpan(result schema.FunctionResult) float64 {
	var candidate any
	switch {
	case result.IsPoints():
		points := result.Points()
		if len(points) == 0 {
			return defaultTimeSpan
		}
		candidate = points[len(points)-1].Value
	case result.Type == schema.BasicResult:
		candidate = result.Data
	default:
		return defaultTimeSpan
	}
	n, ok := toNumber(candidate)
	if !ok || *n <= 0 {
		return defaultTimeSpan
	}
	return *n
}
