package core

import (
	"context"
	"fmt"

	"github.com/huangsam/tschart/schema"
	"golang.org/x/sync/errgroup"
)

// SeriesFunction computes a function result from its raw arguments.
type SeriesFunction func(ctx context.Context, sc *SeriesContext, args map[string]any) (schema.FunctionResult, error)

// SeriesBuilder expands a builder recipe into series.
type SeriesBuilder func(ctx context.Context, sc *SeriesContext, recipe map[string]any) ([]schema.Series, error)

// SeriesGroupBuilder expands a builder recipe into series groups.
type SeriesGroupBuilder func(ctx context.Context, sc *SeriesContext, recipe map[string]any) ([]schema.SeriesGroup, error)

// Registry holds the known series functions and builders. It implements Evaluator.
type Registry struct {
	functions           map[string]SeriesFunction
	seriesBuilders      map[string]SeriesBuilder
	seriesGroupBuilders map[string]SeriesGroupBuilder
}

var _ Evaluator = &Registry{}

// NewRegistry returns a registry with all built-in functions and builders.
func NewRegistry() *Registry {
	r := &Registry{
		functions:           map[string]SeriesFunction{},
		seriesBuilders:      map[string]SeriesBuilder{},
		seriesGroupBuilders: map[string]SeriesGroupBuilder{},
	}
	r.RegisterFunction("literal", literal)
	r.RegisterFunction("getDynamicSeriesConfig", getDynamicSeriesConfig)
	r.RegisterFunction("getDynamicSeriesGroupConfig", getDynamicSeriesGroupConfig)
	r.RegisterFunction("abs", abs)
	r.RegisterFunction("rate", rate)
	r.RegisterFunction("timeDerivative", timeDerivative)
	r.RegisterFunction("replaceEmpty", replaceEmpty)
	r.RegisterFunction("loadSeries", loadSeries)
	r.RegisterFunction("multiply", multiply)
	r.RegisterFunction("add", add)

	r.RegisterSeriesBuilder(schema.StaticBuilderType, staticSeriesBuilder)
	r.RegisterSeriesBuilder(schema.DynamicBuilderType, dynamicSeriesBuilder)
	r.RegisterSeriesGroupBuilder(schema.StaticBuilderType, staticSeriesGroupBuilder)
	r.RegisterSeriesGroupBuilder(schema.DynamicBuilderType, dynamicSeriesGroupBuilder)
	return r
}

// RegisterFunction adds or replaces a series function.
func (r *Registry) RegisterFunction(name string, fn SeriesFunction) {
	r.functions[name] = fn
}

// RegisterSeriesBuilder adds or replaces a series builder.
func (r *Registry) RegisterSeriesBuilder(builderType string, builder SeriesBuilder) {
	r.seriesBuilders[builderType] = builder
}

// RegisterSeriesGroupBuilder adds or replaces a series group builder.
func (r *Registry) RegisterSeriesGroupBuilder(builderType string, builder SeriesGroupBuilder) {
	r.seriesGroupBuilders[builderType] = builder
}

// EvaluateSeriesFunction evaluates a raw function. Non-function values
// evaluate to basic results holding the value itself.
func (r *Registry) EvaluateSeriesFunction(ctx context.Context, sc *SeriesContext, spec any) (schema.FunctionResult, error) {
	raw, ok := schema.AsRawFunction(spec)
	if !ok {
		return schema.NewBasicResult(spec), nil
	}
	fn, found := r.functions[raw.FunctionName]
	if !found {
		return schema.FunctionResult{}, &UnknownFunctionError{
			FunctionName: raw.FunctionName,
			Path:         functionPath(ctx),
		}
	}
	if err := ctx.Err(); err != nil {
		return schema.FunctionResult{}, err
	}
	args := raw.FunctionArguments
	if args == nil {
		args = map[string]any{}
	}
	return fn(withFunctionName(ctx, raw.FunctionName), r.bind(sc), args)
}

// BuildSeries runs a series builder.
func (r *Registry) BuildSeries(ctx context.Context, sc *SeriesContext, spec schema.BuilderSpec) ([]schema.Series, error) {
	builder, found := r.seriesBuilders[spec.BuilderType]
	if !found {
		return nil, &UnknownBuilderError{BuilderType: spec.BuilderType}
	}
	return builder(ctx, r.bind(sc), spec.BuilderRecipe)
}

// BuildSeriesGroups runs a series group builder.
func (r *Registry) BuildSeriesGroups(ctx context.Context, sc *SeriesContext, spec schema.BuilderSpec) ([]schema.SeriesGroup, error) {
	builder, found := r.seriesGroupBuilders[spec.BuilderType]
	if !found {
		return nil, &UnknownBuilderError{BuilderType: spec.BuilderType}
	}
	return builder(ctx, r.bind(sc), spec.BuilderRecipe)
}

// BuildAllSeries runs all series builders concurrently and reconciles the
// timing of the resulting series.
func (r *Registry) BuildAllSeries(ctx context.Context, sc *SeriesContext, specs []schema.BuilderSpec) ([]schema.Series, error) {
	built := make([][]schema.Series, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			series, err := r.BuildSeries(gctx, sc, spec)
			if err != nil {
				return fmt.Errorf("series builder %d: %w", i, err)
			}
			built[i] = series
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []schema.Series
	for _, series := range built {
		all = append(all, series...)
	}
	reconcileSeries(all)
	return all, nil
}

// BuildAllSeriesGroups runs all series group builders concurrently.
func (r *Registry) BuildAllSeriesGroups(ctx context.Context, sc *SeriesContext, specs []schema.BuilderSpec) ([]schema.SeriesGroup, error) {
	built := make([][]schema.SeriesGroup, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			groups, err := r.BuildSeriesGroups(gctx, sc, spec)
			if err != nil {
				return fmt.Errorf("series group builder %d: %w", i, err)
			}
			built[i] = groups
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []schema.SeriesGroup
	for _, groups := range built {
		all = append(all, groups...)
	}
	return all, nil
}

// bind makes nested evaluations go through this registry unless the context
// already carries an evaluator.
func (r *Registry) bind(sc *SeriesContext) *SeriesContext {
	if sc.Evaluator != nil {
		return sc
	}
	c := sc.clone()
	c.Evaluator = r
	return c
}
