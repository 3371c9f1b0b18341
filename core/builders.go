package core

import (
	"context"
	"fmt"
	"regexp"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"golang.org/x/sync/errgroup"
)

var colorPattern = regexp.MustCompile(`(?i)^#[0-9a-f]{3}([0-9a-f]([0-9a-f]{2}([0-9a-f]{2})?)?)?$`)

var (
	seriesFields      = []string{"id", "name", "type", "yAxisId", "color", "groupId", "data"}
	seriesGroupFields = []string{"id", "name", "stacked", "showSum", "subgroups"}
)

func staticSeriesBuilder(ctx context.Context, sc *SeriesContext, recipe map[string]any) ([]schema.Series, error) {
	template, ok := recipe["seriesTemplate"].(map[string]any)
	if !ok {
		return []schema.Series{}, nil
	}
	series, err := sc.Evaluator.EvaluateSeries(ctx, sc, template)
	if err != nil {
		return nil, err
	}
	return []schema.Series{series}, nil
}

func dynamicSeriesBuilder(ctx context.Context, sc *SeriesContext, recipe map[string]any) ([]schema.Series, error) {
	template, ok := recipe["seriesTemplate"].(map[string]any)
	if !ok {
		return []schema.Series{}, nil
	}
	source := configsSource(recipe, "dynamicSeriesConfigsSource", "dynamicSeriesConfigs")
	configs, err := fetchDynamicConfigs(ctx, sc, source, func(ds contract.ExternalDataSource) (configsFetch, bool) {
		f, ok := ds.(contract.DynamicSeriesConfigsFetcher)
		if !ok {
			return nil, false
		}
		return f.FetchDynamicSeriesConfigs, true
	})
	if err != nil {
		return nil, err
	}

	series := make([]schema.Series, len(configs))
	g, gctx := errgroup.WithContext(ctx)
	for i, config := range configs {
		g.Go(func() error {
			s, err := sc.Evaluator.EvaluateSeries(gctx, sc.WithDynamicSeriesConfig(config), template)
			if err != nil {
				return err
			}
			series[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return series, nil
}

func staticSeriesGroupBuilder(ctx context.Context, sc *SeriesContext, recipe map[string]any) ([]schema.SeriesGroup, error) {
	template, ok := recipe["seriesGroupTemplate"].(map[string]any)
	if !ok {
		return []schema.SeriesGroup{}, nil
	}
	group, err := sc.Evaluator.EvaluateSeriesGroup(ctx, sc, template)
	if err != nil {
		return nil, err
	}
	return []schema.SeriesGroup{group}, nil
}

func dynamicSeriesGroupBuilder(ctx context.Context, sc *SeriesContext, recipe map[string]any) ([]schema.SeriesGroup, error) {
	template, ok := recipe["seriesGroupTemplate"].(map[string]any)
	if !ok {
		return []schema.SeriesGroup{}, nil
	}
	source := configsSource(recipe, "dynamicSeriesGroupConfigsSource", "dynamicSeriesGroupConfigs")
	configs, err := fetchDynamicConfigs(ctx, sc, source, func(ds contract.ExternalDataSource) (configsFetch, bool) {
		f, ok := ds.(contract.DynamicSeriesGroupConfigsFetcher)
		if !ok {
			return nil, false
		}
		return f.FetchDynamicSeriesGroupConfigs, true
	})
	if err != nil {
		return nil, err
	}

	groups := make([]schema.SeriesGroup, len(configs))
	g, gctx := errgroup.WithContext(ctx)
	for i, config := range configs {
		g.Go(func() error {
			group, err := sc.Evaluator.EvaluateSeriesGroup(gctx, sc.WithDynamicSeriesGroupConfig(config), template)
			if err != nil {
				return err
			}
			groups[i] = group
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return groups, nil
}

type configsFetch func(ctx context.Context, params map[string]any) ([]map[string]any, error)

// configsSource reads a dynamic configs source under its current or legacy key.
func configsSource(recipe map[string]any, key, legacyKey string) map[string]any {
	if source, ok := recipe[key].(map[string]any); ok {
		return source
	}
	source, _ := recipe[legacyKey].(map[string]any)
	return source
}

// fetchDynamicConfigs resolves the configs of a dynamic builder. Unknown
// source types, missing sources and sources without the capability yield no configs.
func fetchDynamicConfigs(
	ctx context.Context,
	sc *SeriesContext,
	source map[string]any,
	capability func(contract.ExternalDataSource) (configsFetch, bool),
) ([]map[string]any, error) {
	if sourceType, _ := source["sourceType"].(string); sourceType != schema.ExternalSourceType {
		return nil, nil
	}
	spec, ok := source["sourceSpec"].(map[string]any)
	if !ok {
		spec, _ = source["sourceParameters"].(map[string]any)
	}
	name, _ := spec["externalSourceName"].(string)
	ds, ok := sc.DataSource(name)
	if !ok {
		return nil, nil
	}
	fetch, ok := capability(ds)
	if !ok {
		return nil, nil
	}
	params, _ := spec["externalSourceParameters"].(map[string]any)
	configs, err := fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetch dynamic configs from %q: %w", name, err)
	}
	return configs, nil
}

// evaluateTemplate evaluates every field of a template concurrently. A field
// is read from its "<field>Provider" key when present, else taken literally.
func evaluateTemplate(ctx context.Context, sc *SeriesContext, template map[string]any, fields []string) (map[string]schema.FunctionResult, error) {
	specs := make([]any, len(fields))
	for i, field := range fields {
		if provider, ok := template[field+"Provider"]; ok {
			specs[i] = provider
			continue
		}
		specs[i] = map[string]any{
			"functionName":      "literal",
			"functionArguments": map[string]any{"data": template[field]},
		}
	}
	results, err := sc.EvaluateAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	byField := make(map[string]schema.FunctionResult, len(fields))
	for i, field := range fields {
		byField[field] = results[i]
	}
	return byField, nil
}

// EvaluateSeries evaluates a series template.
func (r *Registry) EvaluateSeries(ctx context.Context, sc *SeriesContext, template map[string]any) (schema.Series, error) {
	sc = r.bind(sc)
	fields, err := evaluateTemplate(ctx, sc, template, seriesFields)
	if err != nil {
		return schema.Series{}, err
	}

	series := schema.Series{
		ID:      stringField(fields["id"]),
		Name:    stringField(fields["name"]),
		Type:    stringField(fields["type"]),
		YAxisID: stringField(fields["yAxisId"]),
		Data:    []schema.Point{},
	}
	if color := stringField(fields["color"]); colorPattern.MatchString(color) {
		series.Color = &color
	}
	if groupID, ok := fields["groupId"].Data.(string); ok && !fields["groupId"].IsPoints() {
		series.GroupID = &groupID
	}
	if data := fields["data"]; data.IsPoints() {
		series.Data = data.Points()
	}
	return series, nil
}

// EvaluateSeriesGroup evaluates a series group template, subgroups included.
func (r *Registry) EvaluateSeriesGroup(ctx context.Context, sc *SeriesContext, template map[string]any) (schema.SeriesGroup, error) {
	sc = r.bind(sc)
	fields, err := evaluateTemplate(ctx, sc, template, seriesGroupFields)
	if err != nil {
		return schema.SeriesGroup{}, err
	}

	group := schema.SeriesGroup{
		ID:        stringField(fields["id"]),
		Name:      stringField(fields["name"]),
		Stacked:   !fields["stacked"].IsPoints() && toBool(fields["stacked"].Data),
		ShowSum:   !fields["showSum"].IsPoints() && toBool(fields["showSum"].Data),
		Subgroups: []schema.SeriesGroup{},
	}

	subgroups, _ := fields["subgroups"].Data.([]any)
	for _, raw := range subgroups {
		subTemplate, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		subgroup, err := r.EvaluateSeriesGroup(ctx, sc, subTemplate)
		if err != nil {
			return schema.SeriesGroup{}, err
		}
		group.Subgroups = append(group.Subgroups, subgroup)
	}
	return group, nil
}

func stringField(result schema.FunctionResult) string {
	if result.IsPoints() {
		return ""
	}
	s, _ := result.Data.(string)
	return s
}
