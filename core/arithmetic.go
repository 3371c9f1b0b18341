package core

import (
	"context"

	"github.com/huangsam/tschart/core/algo"
	"github.com/huangsam/tschart/schema"
)

func multiply(ctx context.Context, sc *SeriesContext, args map[string]any) (schema.FunctionResult, error) {
	return combineOperands(ctx, sc, args, func(a, b float64) float64 { return a * b })
}

func add(ctx context.Context, sc *SeriesContext, args map[string]any) (schema.FunctionResult, error) {
	return combineOperands(ctx, sc, args, func(a, b float64) float64 { return a + b })
}

// combineOperands folds all operands slot by slot with op. Points operands are
// aligned on a common timeline, basic arrays are matched by position and
// scalars are applied to every slot.
func combineOperands(ctx context.Context, sc *SeriesContext, args map[string]any, op func(a, b float64) float64) (schema.FunctionResult, error) {
	providers, _ := args["operandProviders"].([]any)
	if len(providers) == 0 {
		return schema.NewBasicResult(nil), nil
	}
	operands, err := sc.EvaluateAll(ctx, providers...)
	if err != nil {
		return schema.FunctionResult{}, err
	}

	var pointsOperands [][]schema.Point
	for _, operand := range operands {
		if operand.IsPoints() {
			pointsOperands = append(pointsOperands, schema.ClonePoints(operand.Points()))
		}
	}
	if len(pointsOperands) > 0 {
		pointsOperands = algo.ReconcilePointsTiming(pointsOperands)
	}

	length := -1
	if len(pointsOperands) > 0 {
		length = len(pointsOperands[0])
	}
	slots := make([]any, len(operands))
	pointsIdx := 0
	for i, operand := range operands {
		if operand.IsPoints() {
			slots[i] = schema.PointValues(pointsOperands[pointsIdx])
			pointsIdx++
			continue
		}
		value := basicValues(operand.Data)
		if values, isArray := value.([]*float64); isArray {
			if length >= 0 && len(values) != length {
				return schema.NewBasicResult(nil), nil
			}
			length = len(values)
		}
		slots[i] = value
	}

	if length < 0 {
		return schema.NewBasicResult(foldSlot(slots, 0, op)), nil
	}
	values := make([]*float64, length)
	for i := range values {
		values[i] = foldSlot(slots, i, op)
	}
	if len(pointsOperands) > 0 {
		return schema.NewPointsResult(algo.MergePointsArrays(pointsOperands, values)), nil
	}
	return schema.NewBasicResult(values), nil
}

func foldSlot(slots []any, i int, op func(a, b float64) float64) *float64 {
	var acc *float64
	for _, slot := range slots {
		var v *float64
		switch s := slot.(type) {
		case []*float64:
			v = s[i]
		case *float64:
			v = s
		}
		if v = finite(v); v == nil {
			return nil
		}
		if acc == nil {
			acc = schema.Float(*v)
			continue
		}
		acc = schema.Float(op(*acc, *v))
	}
	return acc
}
