package core

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/huangsam/tschart/core/algo"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// replaceEmptyParams controls how loadSeries fills slots without data.
type replaceEmptyParams struct {
	strategy schema.ReplaceEmptyStrategy
	fallback any
}

// loadSeries fetches points from an external data source and fits them to
// the time window described by the context.
func loadSeries(ctx context.Context, sc *SeriesContext, args map[string]any) (schema.FunctionResult, error) {
	if sc.TimeResolution <= 0 || sc.PointsCount <= 0 {
		return schema.NewPointsResult(nil), nil
	}

	results, err := sc.EvaluateAll(ctx, args["sourceType"], args["sourceSpecProvider"])
	if err != nil {
		return schema.FunctionResult{}, err
	}
	if sourceType, _ := results[0].Data.(string); sourceType != schema.ExternalSourceType {
		return schema.NewPointsResult(nil), nil
	}
	sourceSpec, _ := results[1].Data.(map[string]any)
	sourceName, _ := sourceSpec["externalSourceName"].(string)
	source, ok := sc.DataSource(sourceName)
	if !ok {
		return schema.NewPointsResult(nil), nil
	}
	fetcher, ok := source.(contract.SeriesFetcher)
	if !ok {
		return schema.NewPointsResult(nil), nil
	}

	replaceParams, err := evaluateReplaceEmptyParams(ctx, sc, args["replaceEmptyParametersProvider"])
	if err != nil {
		return schema.FunctionResult{}, err
	}

	sourceParams, _ := sourceSpec["externalSourceParameters"].(map[string]any)
	rawPoints, err := fetcher.FetchSeries(ctx, schema.FetchParams{
		LastPointTimestamp: sc.LastPointTimestamp,
		TimeResolution:     sc.TimeResolution,
		// one more point tells whether the beginning of the series was reached
		PointsCount: sc.PointsCount + 1,
	}, sourceParams)
	if err != nil {
		return schema.FunctionResult{}, fmt.Errorf("fetch series from %q: %w", sourceName, err)
	}

	points := make([]schema.Point, len(rawPoints))
	for i, raw := range rawPoints {
		points[i] = schema.NewPoint(raw.Timestamp, raw.Value, schema.PointParams{
			PointDuration:             sc.TimeResolution,
			FirstMeasurementTimestamp: raw.FirstMeasurementTimestamp,
			LastMeasurementTimestamp:  raw.LastMeasurementTimestamp,
		})
	}
	return schema.NewPointsResult(fitPointsToContext(sc, replaceParams, points)), nil
}

// evaluateReplaceEmptyParams accepts either a {strategyProvider,
// fallbackValueProvider} object or a function returning one.
func evaluateReplaceEmptyParams(ctx context.Context, sc *SeriesContext, spec any) (replaceEmptyParams, error) {
	params := replaceEmptyParams{strategy: schema.UseFallbackStrategy}
	if spec == nil {
		return params, nil
	}
	result, err := sc.Evaluate(ctx, spec)
	if err != nil {
		return params, err
	}
	providers, ok := result.Data.(map[string]any)
	if result.IsPoints() || !ok {
		return params, nil
	}

	results, err := sc.EvaluateAll(ctx, providers["strategyProvider"], providers["fallbackValueProvider"])
	if err != nil {
		return params, err
	}
	params.strategy = algo.NormalizeStrategy(results[0].Data)
	if results[1].IsPoints() {
		params.fallback = results[1].Points()
	} else {
		params.fallback = basicValues(results[1].Data)
	}
	return params, nil
}

func fitPointsToContext(sc *SeriesContext, params replaceEmptyParams, points []schema.Point) []schema.Point {
	res := sc.TimeResolution
	last := sc.LastPointTimestamp

	// newest first
	points = slices.Clone(points)
	slices.SortStableFunc(points, func(a, b schema.Point) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
	if last != nil {
		points = slices.DeleteFunc(points, func(p schema.Point) bool {
			return p.Timestamp > *last
		})
	}

	isLastPointNewest := last == nil || sc.NowTimestamp-*last < res

	// Fewer points than requested means the beginning of the series is known.
	var globallyOldest *int64
	if len(points) > 0 && len(points) < sc.PointsCount+1 {
		globallyOldest = schema.Int(points[len(points)-1].Timestamp)
	}

	points = slices.DeleteFunc(points, func(p schema.Point) bool {
		return p.Timestamp%res != 0
	})

	if len(points) == 0 {
		if last == nil {
			return []schema.Point{}
		}
		normalizedLast := *last - *last%res
		fakes := fitPointsToContext(sc, params, []schema.Point{
			schema.NewPoint(normalizedLast, nil, schema.PointParams{PointDuration: res}),
		})
		for i := range fakes {
			fakes[i].Fake = true
			fakes[i].Oldest = true
			fakes[i].Newest = isLastPointNewest
		}
		return fakes
	}

	// Pad slots newer than the newest received point.
	if last != nil && *last-res >= points[0].Timestamp {
		missing := *last - points[0].Timestamp
		next := points[0].Timestamp + missing - missing%res
		var newer []schema.Point
		for next > points[0].Timestamp && len(newer) < sc.PointsCount {
			newer = append(newer, fakePoint(next, res))
			next -= res
		}
		points = append(newer, points...)
	}

	// Fill gaps between and before received points.
	withGaps := points
	filled := make([]schema.Point, 0, sc.PointsCount)
	next := withGaps[0].Timestamp
	idx := 0
	for len(filled) < sc.PointsCount {
		if idx < len(withGaps) && withGaps[idx].Timestamp == next {
			filled = append(filled, withGaps[idx])
			idx++
		} else {
			filled = append(filled, fakePoint(next, res))
		}
		next -= res
	}

	// usePrevious needs the closest older value to fill the oldest slot.
	oldestFilled := filled[len(filled)-1].Timestamp
	previous := schema.NewPoint(0, nil, schema.PointParams{PointDuration: res})
	for _, p := range withGaps {
		if p.Timestamp < oldestFilled && p.Value != nil {
			previous = p
			break
		}
	}
	ascending := append(slices.Clone(filled), previous)
	slices.Reverse(ascending)
	ascending = applyReplaceEmpty(params, ascending)[1:]

	if isLastPointNewest {
		for i := len(ascending) - 1; i >= 0; i-- {
			ascending[i].Newest = true
			if !ascending[i].Fake {
				break
			}
		}
	}

	if globallyOldest != nil {
		for i := range ascending {
			if ascending[i].Timestamp > *globallyOldest {
				break
			}
			ascending[i].Oldest = true
		}
	}
	return ascending
}

// applyReplaceEmpty fills nil values of ascending points. Invalid fallbacks
// leave the points untouched.
func applyReplaceEmpty(params replaceEmptyParams, points []schema.Point) []schema.Point {
	fallback := params.fallback
	if fallbackPoints, ok := fallback.([]schema.Point); ok {
		fallback = matchByTimestamp(points, fallbackPoints)
	}
	replaced, ok := algo.ReplaceEmpty(schema.PointValues(points), fallback, params.strategy)
	if !ok {
		return points
	}
	values, _ := replaced.([]*float64)
	return algo.MergePointsArrays([][]schema.Point{points}, values)
}

func fakePoint(timestamp, duration int64) schema.Point {
	return schema.NewPoint(timestamp, nil, schema.PointParams{PointDuration: duration, Fake: true})
}
