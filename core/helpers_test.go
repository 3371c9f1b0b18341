package core

import (
	"context"

	"github.com/huangsam/tschart/schema"
)

func pt(ts int64, value *float64, params schema.PointParams) schema.Point {
	return schema.NewPoint(ts, value, params)
}

func v(f float64) *float64 { return schema.Float(f) }

func lit(data any) map[string]any {
	return map[string]any{
		"functionName":      "literal",
		"functionArguments": map[string]any{"data": data},
	}
}

func call(name string, args map[string]any) map[string]any {
	return map[string]any{"functionName": name, "functionArguments": args}
}

// pointsFixture registers a function returning a copy of points and returns a call to it.
func pointsFixture(r *Registry, name string, points []schema.Point) map[string]any {
	r.RegisterFunction(name, func(context.Context, *SeriesContext, map[string]any) (schema.FunctionResult, error) {
		return schema.NewPointsResult(schema.ClonePoints(points)), nil
	})
	return call(name, nil)
}

func newTestContext(r *Registry) *SeriesContext {
	return &SeriesContext{
		TimeResolution: 5,
		PointsCount:    3,
		Evaluator:      r,
	}
}
