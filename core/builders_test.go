package core

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEvaluateSeries(t *testing.T) {
	r := NewRegistry()
	data := pointsFixture(r, "data", []schema.Point{pt(0, v(1), schema.PointParams{})})

	series, err := r.EvaluateSeries(context.Background(), newTestContext(r), map[string]any{
		"id":           "s1",
		"nameProvider": lit("Series 1"),
		"type":         "line",
		"yAxisId":      "a1",
		"color":        "#ABCDEF",
		"groupId":      "g1",
		"dataProvider": data,
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", series.ID)
	assert.Equal(t, "Series 1", series.Name)
	assert.Equal(t, "line", series.Type)
	assert.Equal(t, "a1", series.YAxisID)
	require.NotNil(t, series.Color)
	assert.Equal(t, "#ABCDEF", *series.Color)
	require.NotNil(t, series.GroupID)
	assert.Equal(t, "g1", *series.GroupID)
	assert.Equal(t, []schema.Point{pt(0, v(1), schema.PointParams{})}, series.Data)
}

func TestEvaluateSeriesNormalizesFields(t *testing.T) {
	tests := []struct {
		color string
		valid bool
	}{
		{"#fff", true},
		{"#ffff", true},
		{"#ffffff", true},
		{"#ffffff80", true},
		{"#fffff", false},
		{"red", false},
		{"#ggg", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			r := NewRegistry()
			series, err := r.EvaluateSeries(context.Background(), newTestContext(r), map[string]any{
				"color": tt.color,
				"data":  []any{1.0, 2.0},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.valid, series.Color != nil)
			assert.Nil(t, series.GroupID)
			assert.Equal(t, []schema.Point{}, series.Data)
		})
	}
}

func TestEvaluateSeriesGroup(t *testing.T) {
	r := NewRegistry()
	group, err := r.EvaluateSeriesGroup(context.Background(), newTestContext(r), map[string]any{
		"id":      "g1",
		"stacked": true,
		"subgroups": []any{
			map[string]any{"id": "g2", "nameProvider": lit("Inner"), "showSum": true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, schema.SeriesGroup{
		ID:      "g1",
		Name:    "",
		Stacked: true,
		Subgroups: []schema.SeriesGroup{
			{ID: "g2", Name: "Inner", ShowSum: true, Subgroups: []schema.SeriesGroup{}},
		},
	}, group)
}

func TestStaticSeriesBuilder(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	series, err := r.BuildSeries(ctx, newTestContext(r), schema.BuilderSpec{
		BuilderType:   "static",
		BuilderRecipe: map[string]any{"seriesTemplate": map[string]any{"id": "s1"}},
	})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "s1", series[0].ID)

	series, err = r.BuildSeries(ctx, newTestContext(r), schema.BuilderSpec{BuilderType: "static"})
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestUnknownBuilder(t *testing.T) {
	r := NewRegistry()
	_, err := r.BuildSeries(context.Background(), newTestContext(r), schema.BuilderSpec{BuilderType: "magic"})
	assert.ErrorIs(t, err, ErrUnknownBuilder)

	var unknown *UnknownBuilderError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "magic", unknown.BuilderType)
	assert.Equal(t, UnknownBuilderErrorID, unknown.ID())

	_, err = r.BuildSeriesGroups(context.Background(), newTestContext(r), schema.BuilderSpec{BuilderType: "magic"})
	assert.ErrorIs(t, err, ErrUnknownBuilder)
}

func dynamicRecipe(sourceKey, specKey string) map[string]any {
	return map[string]any{
		sourceKey: map[string]any{
			"sourceType": "external",
			specKey: map[string]any{
				"externalSourceName":       "mySource",
				"externalSourceParameters": map[string]any{"prefix": "a"},
			},
		},
		"seriesTemplate": map[string]any{
			"idProvider": call("getDynamicSeriesConfig", map[string]any{"propertyName": "id"}),
			"name":       "series",
		},
	}
}

func TestDynamicSeriesBuilder(t *testing.T) {
	recipes := map[string]map[string]any{
		"Current spelling": dynamicRecipe("dynamicSeriesConfigsSource", "sourceSpec"),
		"Legacy spelling":  dynamicRecipe("dynamicSeriesConfigs", "sourceParameters"),
	}
	for name, recipe := range recipes {
		t.Run(name, func(t *testing.T) {
			source := &contract.MockExternalDataSource{}
			source.On("FetchDynamicSeriesConfigs", mock.Anything, map[string]any{"prefix": "a"}).
				Return([]map[string]any{{"id": "s1"}, {"id": "s2"}, {"id": "s3"}}, nil).Once()

			r := NewRegistry()
			sc := newTestContext(r)
			sc.ExternalDataSources = map[string]contract.ExternalDataSource{"mySource": source}

			series, err := r.BuildSeries(context.Background(), sc, schema.BuilderSpec{
				BuilderType:   "dynamic",
				BuilderRecipe: recipe,
			})
			require.NoError(t, err)
			require.Len(t, series, 3)
			for i, id := range []string{"s1", "s2", "s3"} {
				assert.Equal(t, id, series[i].ID)
				assert.Equal(t, "series", series[i].Name)
			}
			source.AssertExpectations(t)
		})
	}
}

func TestDynamicSeriesBuilderWithoutConfigs(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	t.Run("Unknown source type", func(t *testing.T) {
		recipe := dynamicRecipe("dynamicSeriesConfigsSource", "sourceSpec")
		recipe["dynamicSeriesConfigsSource"].(map[string]any)["sourceType"] = "internal"
		series, err := r.BuildSeries(ctx, newTestContext(r), schema.BuilderSpec{BuilderType: "dynamic", BuilderRecipe: recipe})
		require.NoError(t, err)
		assert.Empty(t, series)
	})

	t.Run("Missing source", func(t *testing.T) {
		recipe := dynamicRecipe("dynamicSeriesConfigsSource", "sourceSpec")
		series, err := r.BuildSeries(ctx, newTestContext(r), schema.BuilderSpec{BuilderType: "dynamic", BuilderRecipe: recipe})
		require.NoError(t, err)
		assert.Empty(t, series)
	})

	t.Run("Missing capability", func(t *testing.T) {
		sc := newTestContext(r)
		sc.ExternalDataSources = map[string]contract.ExternalDataSource{"mySource": struct{}{}}
		recipe := dynamicRecipe("dynamicSeriesConfigsSource", "sourceSpec")
		series, err := r.BuildSeries(ctx, sc, schema.BuilderSpec{BuilderType: "dynamic", BuilderRecipe: recipe})
		require.NoError(t, err)
		assert.Empty(t, series)
	})

	t.Run("Source error", func(t *testing.T) {
		source := &contract.MockExternalDataSource{}
		source.On("FetchDynamicSeriesConfigs", mock.Anything, mock.Anything).Return(nil, errors.New("offline"))
		sc := newTestContext(r)
		sc.ExternalDataSources = map[string]contract.ExternalDataSource{"mySource": source}
		recipe := dynamicRecipe("dynamicSeriesConfigsSource", "sourceSpec")
		_, err := r.BuildSeries(ctx, sc, schema.BuilderSpec{BuilderType: "dynamic", BuilderRecipe: recipe})
		assert.ErrorContains(t, err, "offline")
	})
}

func TestDynamicSeriesGroupBuilder(t *testing.T) {
	source := &contract.MockExternalDataSource{}
	source.On("FetchDynamicSeriesGroupConfigs", mock.Anything, map[string]any{"prefix": "g"}).
		Return([]map[string]any{{"id": "g1"}, {"id": "g2"}}, nil).Once()

	r := NewRegistry()
	sc := newTestContext(r)
	sc.ExternalDataSources = map[string]contract.ExternalDataSource{"mySource": source}

	groups, err := r.BuildSeriesGroups(context.Background(), sc, schema.BuilderSpec{
		BuilderType: "dynamic",
		BuilderRecipe: map[string]any{
			"dynamicSeriesGroupConfigsSource": map[string]any{
				"sourceType": "external",
				"sourceSpec": map[string]any{
					"externalSourceName":       "mySource",
					"externalSourceParameters": map[string]any{"prefix": "g"},
				},
			},
			"seriesGroupTemplate": map[string]any{
				"idProvider":   call("getDynamicSeriesGroupConfig", map[string]any{"propertyName": "id"}),
				"nameProvider": lit("group"),
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "g1", groups[0].ID)
	assert.Equal(t, "g2", groups[1].ID)
	assert.Equal(t, "group", groups[1].Name)
	source.AssertExpectations(t)
}

func TestBuildAllSeriesReconciles(t *testing.T) {
	r := NewRegistry()
	long := pointsFixture(r, "long", []schema.Point{
		pt(0, v(1), schema.PointParams{}),
		pt(5, v(2), schema.PointParams{}),
		pt(10, v(3), schema.PointParams{}),
	})
	short := pointsFixture(r, "short", []schema.Point{pt(10, v(4), schema.PointParams{})})

	series, err := r.BuildAllSeries(context.Background(), newTestContext(r), []schema.BuilderSpec{
		{BuilderType: "static", BuilderRecipe: map[string]any{"seriesTemplate": map[string]any{"id": "long", "dataProvider": long}}},
		{BuilderType: "static", BuilderRecipe: map[string]any{"seriesTemplate": map[string]any{"id": "short", "dataProvider": short}}},
	})
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "long", series[0].ID)
	require.Len(t, series[1].Data, 3)
	assert.Equal(t, []*float64{nil, nil, v(4)}, schema.PointValues(series[1].Data))
	assert.True(t, series[1].Data[0].Fake)
}

func TestBuildAllSeriesError(t *testing.T) {
	r := NewRegistry()
	_, err := r.BuildAllSeries(context.Background(), newTestContext(r), []schema.BuilderSpec{
		{BuilderType: "static", BuilderRecipe: map[string]any{"seriesTemplate": map[string]any{"dataProvider": call("nope", nil)}}},
	})
	assert.ErrorIs(t, err, ErrUnknownFunction)
	assert.ErrorContains(t, err, "series builder 0")
}
