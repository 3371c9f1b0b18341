package algo

import "github.com/huangsam/tschart/schema"

// NormalizeStrategy maps unknown strategies to useFallback.
func NormalizeStrategy(strategy any) schema.ReplaceEmptyStrategy {
	var s schema.ReplaceEmptyStrategy
	switch v := strategy.(type) {
	case string:
		s = schema.ReplaceEmptyStrategy(v)
	case schema.ReplaceEmptyStrategy:
		s = v
	}
	if s == schema.UsePreviousStrategy {
		return s
	}
	return schema.UseFallbackStrategy
}

// ReplaceEmptyValues replaces nil values of data. Fallbacks must have the
// same length as data, otherwise ok is false.
func ReplaceEmptyValues(data, fallbacks []*float64, strategy schema.ReplaceEmptyStrategy) (result []*float64, ok bool) {
	if len(data) != len(fallbacks) {
		return nil, false
	}
	result = make([]*float64, len(data))
	for i, v := range data {
		switch {
		case v != nil:
			result[i] = v
		case strategy == schema.UsePreviousStrategy && i > 0 && result[i-1] != nil:
			result[i] = result[i-1]
		default:
			result[i] = fallbacks[i]
		}
	}
	return result, true
}

// ReplaceEmpty applies ReplaceEmptyValues to scalar (*float64) or array
// ([]*float64) data and fallback. A scalar fallback is broadcast over array
// data. Scalar data with an array fallback is invalid.
func ReplaceEmpty(data, fallback any, strategy schema.ReplaceEmptyStrategy) (any, bool) {
	switch d := data.(type) {
	case []*float64:
		switch f := fallback.(type) {
		case []*float64:
			return ReplaceEmptyValues(d, f, strategy)
		case *float64:
			return ReplaceEmptyValues(d, repeatValue(f, len(d)), strategy)
		case nil:
			return ReplaceEmptyValues(d, make([]*float64, len(d)), strategy)
		default:
			return nil, false
		}
	case *float64:
		switch f := fallback.(type) {
		case []*float64:
			return nil, false
		case *float64:
			if d == nil {
				return f, true
			}
			return d, true
		case nil:
			return d, true
		default:
			return nil, false
		}
	case nil:
		switch f := fallback.(type) {
		case []*float64:
			return nil, false
		case *float64:
			return f, true
		default:
			return nil, true
		}
	default:
		return nil, false
	}
}

func repeatValue(v *float64, n int) []*float64 {
	values := make([]*float64, n)
	for i := range values {
		values[i] = v
	}
	return values
}
