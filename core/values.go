package core

import (
	"math"

	"github.com/huangsam/tschart/schema"
)

// toNumber converts a decoded JSON value into a finite number.
func toNumber(v any) (*float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case *float64:
		if n == nil {
			return nil, false
		}
		f = *n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	default:
		return nil, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return &f, true
}

// toNumbers converts a decoded JSON array into numbers. Elements that are not
// finite numbers become nil. ok is false when v is not an array.
func toNumbers(v any) (values []*float64, ok bool) {
	switch arr := v.(type) {
	case []*float64:
		values = make([]*float64, len(arr))
		for i, x := range arr {
			values[i], _ = toNumber(x)
		}
	case []float64:
		values = make([]*float64, len(arr))
		for i, x := range arr {
			values[i], _ = toNumber(x)
		}
	case []any:
		values = make([]*float64, len(arr))
		for i, x := range arr {
			values[i], _ = toNumber(x)
		}
	default:
		return nil, false
	}
	return values, true
}

// basicValues normalizes basic result data into a scalar (*float64) or an
// array ([]*float64). Anything else is returned as a nil scalar.
func basicValues(data any) any {
	if values, ok := toNumbers(data); ok {
		return values
	}
	n, _ := toNumber(data)
	return n
}

// mapValues applies fn to every value of a result while keeping its shape.
func mapValues(result schema.FunctionResult, fn func(v *float64, p *schema.Point) *float64) schema.FunctionResult {
	if result.IsPoints() {
		points := result.Points()
		out := make([]schema.Point, len(points))
		for i := range points {
			out[i] = points[i].WithValue(fn(finite(points[i].Value), &points[i]))
		}
		return schema.NewPointsResult(out)
	}
	switch data := basicValues(result.Data).(type) {
	case []*float64:
		out := make([]*float64, len(data))
		for i, x := range data {
			out[i] = fn(x, nil)
		}
		return schema.NewBasicResult(out)
	case *float64:
		return schema.NewBasicResult(fn(data, nil))
	}
	return schema.NewBasicResult(nil)
}

func finite(v *float64) *float64 {
	n, _ := toNumber(v)
	return n
}

func toInt64(v any) (int64, bool) {
	n, ok := toNumber(v)
	if !ok {
		return 0, false
	}
	return int64(*n), true
}

func toBool(v any) bool {
	b, _ := v.(bool)
	return b
}
