package core

import (
	"context"
	"slices"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"golang.org/x/sync/errgroup"
)

// Context keys for evaluation metadata
type contextKey string

const functionPathKey contextKey = "functionPath"

// withFunctionName appends a function name to the evaluation path in the context
func withFunctionName(ctx context.Context, name string) context.Context {
	path := slices.Clone(functionPath(ctx))
	return context.WithValue(ctx, functionPathKey, append(path, name))
}

// functionPath returns the names of the functions being evaluated, outermost first
func functionPath(ctx context.Context) []string {
	val := ctx.Value(functionPathKey)
	if val == nil {
		return nil
	}
	path, _ := val.([]string)
	return path
}

// Evaluator evaluates the building blocks of a chart definition.
type Evaluator interface {
	EvaluateSeriesFunction(ctx context.Context, sc *SeriesContext, spec any) (schema.FunctionResult, error)
	EvaluateSeries(ctx context.Context, sc *SeriesContext, template map[string]any) (schema.Series, error)
	EvaluateSeriesGroup(ctx context.Context, sc *SeriesContext, template map[string]any) (schema.SeriesGroup, error)
}

// SeriesContext is the evaluation environment of series functions and builders.
// It is treated as immutable: derive modified copies with the With* methods.
type SeriesContext struct {
	TimeResolution       int64
	PointsCount          int
	LastPointTimestamp   *int64
	NewestPointTimestamp *int64
	NewestEdgeTimestamp  *int64
	NowTimestamp         int64

	ExternalDataSources      map[string]contract.ExternalDataSource
	DynamicSeriesConfig      map[string]any
	DynamicSeriesGroupConfig map[string]any

	Evaluator Evaluator
}

func (sc *SeriesContext) clone() *SeriesContext {
	c := *sc
	return &c
}

// WithPointsCount returns a copy of the context with another points count.
func (sc *SeriesContext) WithPointsCount(pointsCount int) *SeriesContext {
	c := sc.clone()
	c.PointsCount = pointsCount
	return c
}

// WithDynamicSeriesConfig returns a copy of the context carrying a dynamic series config.
func (sc *SeriesContext) WithDynamicSeriesConfig(config map[string]any) *SeriesContext {
	c := sc.clone()
	c.DynamicSeriesConfig = config
	return c
}

// WithDynamicSeriesGroupConfig returns a copy of the context carrying a dynamic series group config.
func (sc *SeriesContext) WithDynamicSeriesGroupConfig(config map[string]any) *SeriesContext {
	c := sc.clone()
	c.DynamicSeriesGroupConfig = config
	return c
}

// DataSource returns the external data source registered under name.
func (sc *SeriesContext) DataSource(name string) (contract.ExternalDataSource, bool) {
	if sc.ExternalDataSources == nil || name == "" {
		return nil, false
	}
	source, ok := sc.ExternalDataSources[name]
	return source, ok && source != nil
}

// Evaluate evaluates a function spec. Values that are not functions evaluate
// to themselves as basic results.
func (sc *SeriesContext) Evaluate(ctx context.Context, spec any) (schema.FunctionResult, error) {
	if _, ok := schema.AsRawFunction(spec); !ok || sc.Evaluator == nil {
		return schema.NewBasicResult(spec), nil
	}
	return sc.Evaluator.EvaluateSeriesFunction(ctx, sc, spec)
}

// EvaluateAll evaluates specs concurrently. Results keep the order of specs.
func (sc *SeriesContext) EvaluateAll(ctx context.Context, specs ...any) ([]schema.FunctionResult, error) {
	fns := make([]func(context.Context) (schema.FunctionResult, error), len(specs))
	for i, spec := range specs {
		fns[i] = func(ctx context.Context) (schema.FunctionResult, error) {
			return sc.Evaluate(ctx, spec)
		}
	}
	return EvaluateEach(ctx, fns...)
}

// EvaluateEach runs evaluation callbacks concurrently. Results keep the order of fns.
func EvaluateEach(ctx context.Context, fns ...func(context.Context) (schema.FunctionResult, error)) ([]schema.FunctionResult, error) {
	results := make([]schema.FunctionResult, len(fns))
	g, gctx := errgroup.WithContext(ctx)
	for i, fn := range fns {
		g.Go(func() error {
			result, err := fn(gctx)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
