package dashboard

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/huangsam/tschart/schema"
)

const defaultSeriesType = "line"

// PrefixedTimeSeriesRef selects the store time series a repeated series is
// stamped out for: every series whose name starts with TimeSeriesNameGenerator.
type PrefixedTimeSeriesRef struct {
	CollectionRef           string
	TimeSeriesNameGenerator string
	MetricNames             []string
}

// Series is a chart series. With RepeatPerPrefixedTimeSeries set it is dumped
// as a dynamic builder producing one series per matching time series.
type Series struct {
	elementBase

	ID                          string
	Name                        string
	Type                        string
	Color                       *string
	RepeatPerPrefixedTimeSeries bool
	PrefixedTimeSeriesRef       PrefixedTimeSeriesRef

	// Axis and Group reference elements owned by the same chart.
	Axis  *Axis
	Group *SeriesGroup

	DataProvider *Function
}

var _ Element = (*Series)(nil)

// NewSeries creates a line series with a generated id.
func NewSeries() *Series {
	s := &Series{
		ID:                    uuid.NewString(),
		Type:                  defaultSeriesType,
		PrefixedTimeSeriesRef: PrefixedTimeSeriesRef{MetricNames: []string{}},
	}
	s.elementBase = newElementBase(s, nil)
	return s
}

// chartRefs resolves axis and group ids while loading a chart.
type chartRefs struct {
	axes   map[string]*Axis
	groups map[string]*SeriesGroup
}

func (r chartRefs) axis(id any) *Axis {
	s, _ := id.(string)
	return r.axes[s]
}

func (r chartRefs) group(id any) *SeriesGroup {
	s, _ := id.(string)
	return r.groups[s]
}

func newSeriesFromBuilder(spec schema.BuilderSpec, parent Element, path string, refs chartRefs) (*Series, error) {
	s := NewSeries()
	s.parent = parent
	template := objectField(spec.BuilderRecipe, "seriesTemplate")

	switch spec.BuilderType {
	case schema.StaticBuilderType:
		if id := stringField(template, "id"); id != "" {
			s.ID = id
		}
		s.Name = stringField(template, "name")
		if seriesType := stringField(template, "type"); seriesType != "" {
			s.Type = seriesType
		}
		s.Color = optionalStringField(template, "color")
		s.Axis = refs.axis(template["yAxisId"])
		s.Group = refs.group(template["groupId"])
	case schema.DynamicBuilderType:
		s.RepeatPerPrefixedTimeSeries = true
		params := objectField(objectField(objectField(spec.BuilderRecipe, "dynamicSeriesConfigsSource"), "sourceSpec"), "externalSourceParameters")
		s.PrefixedTimeSeriesRef = PrefixedTimeSeriesRef{
			CollectionRef:           stringField(params, "collectionRef"),
			TimeSeriesNameGenerator: stringField(params, "timeSeriesNameGenerator"),
			MetricNames:             stringsField(params, "metricNames"),
		}
		if seriesType, ok := literalData(template["typeProvider"]).(string); ok && seriesType != "" {
			s.Type = seriesType
		}
		s.Axis = refs.axis(literalData(template["yAxisIdProvider"]))
		s.Group = refs.group(literalData(template["groupIdProvider"]))
	default:
		return nil, specErrorf(path, "unknown series builder type %q", spec.BuilderType)
	}

	if raw, ok := schema.AsRawFunction(template["dataProvider"]); ok {
		s.DataProvider = newFunctionFromSpec(raw, s)
	}
	return s, nil
}

func (s *Series) ElementType() ElementType {
	return SeriesElement
}

// SetDataProvider replaces the function producing series data. The old
// provider is destroyed. Parts of it reused by fn are moved out first.
func (s *Series) SetDataProvider(fn *Function) {
	if fn == s.DataProvider {
		return
	}
	old := s.DataProvider
	if fn != nil {
		_ = attach(s, fn)
	}
	if old != nil {
		old.Destroy()
	}
	s.DataProvider = fn
	s.NotifyAboutChange(nil)
}

func (s *Series) detachChild(child Element) bool {
	if fn, ok := child.(*Function); !ok || fn != s.DataProvider || fn == nil {
		return false
	}
	s.DataProvider = nil
	return true
}

func (s *Series) SetName(name string) {
	setField(s, &s.Name, name)
}

// SetType changes the series type, e.g. line or bar.
func (s *Series) SetType(seriesType string) {
	setField(s, &s.Type, seriesType)
}

// SetColor changes the color. Nil means the color is picked automatically.
func (s *Series) SetColor(color *string) {
	if (color == nil && s.Color == nil) || (color != nil && s.Color != nil && *color == *s.Color) {
		return
	}
	if color != nil {
		color = stringPtr(*color)
	}
	s.Color = color
	s.NotifyAboutChange(nil)
}

// SetAxis changes the axis the series is drawn against. The axis must
// belong to the chart of the series.
func (s *Series) SetAxis(axis *Axis) error {
	if axis != nil && (chartOf(s) == nil || !slices.Contains(chartOf(s).Axes, axis)) {
		return fmt.Errorf("%w: axis %s is not part of the series chart", ErrInvalidTree, axis.ID)
	}
	setField(s, &s.Axis, axis)
	return nil
}

// SetGroup moves the series into a group of its chart, nil for no group.
func (s *Series) SetGroup(group *SeriesGroup) error {
	if group != nil && (chartOf(s) == nil || !slices.Contains(chartOf(s).DeepSeriesGroups(), group)) {
		return fmt.Errorf("%w: group %s is not part of the series chart", ErrInvalidTree, group.ID)
	}
	setField(s, &s.Group, group)
	return nil
}

// SetRepeatPerPrefixedTimeSeries switches between a single series and one
// series per matching time series.
func (s *Series) SetRepeatPerPrefixedTimeSeries(repeat bool) {
	setField(s, &s.RepeatPerPrefixedTimeSeries, repeat)
}

// SetPrefixedTimeSeriesRef changes which time series a repeated series is
// stamped out for.
func (s *Series) SetPrefixedTimeSeriesRef(ref PrefixedTimeSeriesRef) {
	ref.MetricNames = slices.Clone(ref.MetricNames)
	if ref.MetricNames == nil {
		ref.MetricNames = []string{}
	}
	s.PrefixedTimeSeriesRef = ref
	s.NotifyAboutChange(nil)
}

func (s *Series) NestedElements() []Element {
	if s.DataProvider == nil {
		return []Element{}
	}
	return nestedOf(s.DataProvider)
}

// Clone copies the series under a fresh id. The clone uses the same axis and group.
func (s *Series) Clone() Element {
	return s.clone()
}

func (s *Series) clone() *Series {
	c := NewSeries()
	c.parent = s.parent
	c.dataSources = s.dataSources
	c.Name = s.Name
	c.Type = s.Type
	if s.Color != nil {
		c.Color = stringPtr(*s.Color)
	}
	c.RepeatPerPrefixedTimeSeries = s.RepeatPerPrefixedTimeSeries
	c.PrefixedTimeSeriesRef = s.PrefixedTimeSeriesRef
	c.PrefixedTimeSeriesRef.MetricNames = slices.Clone(s.PrefixedTimeSeriesRef.MetricNames)
	c.Axis = s.Axis
	c.Group = s.Group
	if s.DataProvider != nil {
		c.DataProvider = s.DataProvider.clone()
		c.DataProvider.parent = c
	}
	return c
}

func (s *Series) Destroy() {
	if s.DataProvider != nil {
		s.DataProvider.Destroy()
		s.DataProvider = nil
	}
	s.Axis = nil
	s.Group = nil
	s.destroyBase()
}

func (s *Series) ToJSON() any {
	return s.builder()
}

func (s *Series) builder() schema.BuilderSpec {
	var yAxisID, groupID any
	if s.Axis != nil {
		yAxisID = s.Axis.ID
	}
	if s.Group != nil {
		groupID = s.Group.ID
	}
	var dataProvider any
	if s.DataProvider != nil {
		dataProvider = s.DataProvider.spec()
	}

	if s.RepeatPerPrefixedTimeSeries {
		collectionRef := s.PrefixedTimeSeriesRef.CollectionRef
		if collectionRef == "" {
			if source := s.dataSources.Default(); source != nil {
				collectionRef = source.CollectionRef
			}
		}
		metricNames := s.PrefixedTimeSeriesRef.MetricNames
		if metricNames == nil {
			metricNames = []string{}
		}
		return schema.BuilderSpec{
			BuilderType: schema.DynamicBuilderType,
			BuilderRecipe: map[string]any{
				"dynamicSeriesConfigsSource": map[string]any{
					"sourceType": schema.ExternalSourceType,
					"sourceSpec": map[string]any{
						"externalSourceName": schema.StoreSourceName,
						"externalSourceParameters": map[string]any{
							"collectionRef":           collectionRef,
							"timeSeriesNameGenerator": s.PrefixedTimeSeriesRef.TimeSeriesNameGenerator,
							"metricNames":             slices.Clone(metricNames),
						},
					},
				},
				"seriesTemplate": map[string]any{
					"idProvider":      dynamicConfigProperty("id"),
					"nameProvider":    dynamicConfigProperty("name"),
					"typeProvider":    literal(s.Type),
					"yAxisIdProvider": literal(yAxisID),
					"groupIdProvider": literal(groupID),
					"colorProvider":   literal(nil),
					"dataProvider":    dataProvider,
				},
			},
		}
	}

	var color any
	if s.Color != nil {
		color = *s.Color
	}
	return schema.BuilderSpec{
		BuilderType: schema.StaticBuilderType,
		BuilderRecipe: map[string]any{
			"seriesTemplate": map[string]any{
				"id":           s.ID,
				"name":         s.Name,
				"type":         s.Type,
				"yAxisId":      yAxisID,
				"groupId":      groupID,
				"color":        color,
				"dataProvider": dataProvider,
			},
		},
	}
}

func dynamicConfigProperty(name string) map[string]any {
	return map[string]any{
		"functionName":      "getDynamicSeriesConfig",
		"functionArguments": map[string]any{"propertyName": name},
	}
}
