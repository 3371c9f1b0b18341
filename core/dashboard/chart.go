package dashboard

import (
	"slices"

	"github.com/huangsam/tschart/schema"
)

// Chart holds axes, series groups and series.
type Chart struct {
	elementBase

	Title        string
	TitleTip     string
	Axes         []*Axis
	SeriesGroups []*SeriesGroup
	Series       []*Series
}

var _ Element = (*Chart)(nil)

// NewChart creates an empty chart.
func NewChart() *Chart {
	c := &Chart{Axes: []*Axis{}, SeriesGroups: []*SeriesGroup{}, Series: []*Series{}}
	c.elementBase = newElementBase(c, nil)
	return c
}

func newChartFromSpec(spec schema.ChartSpec, parent Element, path string) (*Chart, error) {
	c := NewChart()
	c.parent = parent
	c.Title = spec.Title.Content
	c.TitleTip = spec.Title.Tip

	refs := chartRefs{axes: map[string]*Axis{}, groups: map[string]*SeriesGroup{}}
	for _, axisSpec := range spec.YAxes {
		axis := newAxisFromSpec(axisSpec, c)
		c.Axes = append(c.Axes, axis)
		refs.axes[axis.ID] = axis
	}
	for i, builder := range spec.SeriesGroupBuilders {
		group, err := newSeriesGroupFromBuilder(builder, c, indexPath(path, "seriesGroupBuilders", i))
		if err != nil {
			return nil, err
		}
		c.SeriesGroups = append(c.SeriesGroups, group)
	}
	for _, group := range c.DeepSeriesGroups() {
		refs.groups[group.ID] = group
	}
	for i, builder := range spec.SeriesBuilders {
		series, err := newSeriesFromBuilder(builder, c, indexPath(path, "seriesBuilders", i), refs)
		if err != nil {
			return nil, err
		}
		c.Series = append(c.Series, series)
	}
	return c, nil
}

func (c *Chart) ElementType() ElementType {
	return ChartElement
}

// AddAxis appends an axis to the chart, moving it out of its previous chart.
func (c *Chart) AddAxis(axis *Axis) {
	c.InsertAxis(len(c.Axes), axis)
}

// InsertAxis puts an axis at index, moving it out of its previous chart.
func (c *Chart) InsertAxis(index int, axis *Axis) {
	_ = attach(c, axis)
	c.Axes = insertAt(c.Axes, index, axis)
	c.NotifyAboutChange(axis)
}

// AddSeriesGroup appends a top-level series group to the chart.
func (c *Chart) AddSeriesGroup(group *SeriesGroup) {
	c.InsertSeriesGroup(len(c.SeriesGroups), group)
}

// InsertSeriesGroup puts a top-level series group at index, moving it out of
// its previous parent.
func (c *Chart) InsertSeriesGroup(index int, group *SeriesGroup) {
	_ = attach(c, group)
	c.SeriesGroups = insertAt(c.SeriesGroups, index, group)
	c.NotifyAboutChange(group)
}

// AddSeries appends a series to the chart.
func (c *Chart) AddSeries(series *Series) {
	c.InsertSeries(len(c.Series), series)
}

// InsertSeries puts a series at index, moving it out of its previous chart.
// References to axes and groups of another chart are dropped.
func (c *Chart) InsertSeries(index int, series *Series) {
	_ = attach(c, series)
	if !slices.Contains(c.Axes, series.Axis) {
		series.Axis = nil
	}
	if !slices.Contains(c.DeepSeriesGroups(), series.Group) {
		series.Group = nil
	}
	c.Series = insertAt(c.Series, index, series)
	c.NotifyAboutChange(series)
}

// RemoveAxis destroys an axis. Series using it lose their axis.
func (c *Chart) RemoveAxis(axis *Axis) bool {
	return axis != nil && remove(c, axis)
}

// RemoveSeriesGroup destroys a top-level series group. Series in it or in
// its subgroups lose their group.
func (c *Chart) RemoveSeriesGroup(group *SeriesGroup) bool {
	return group != nil && remove(c, group)
}

// RemoveSeries destroys a series.
func (c *Chart) RemoveSeries(series *Series) bool {
	return series != nil && remove(c, series)
}

func (c *Chart) detachChild(child Element) bool {
	var found bool
	switch el := child.(type) {
	case *Axis:
		c.Axes, found = without(c.Axes, el)
	case *SeriesGroup:
		c.SeriesGroups, found = without(c.SeriesGroups, el)
	case *Series:
		c.Series, found = without(c.Series, el)
	}
	return found
}

// dropReferences clears series references to an axis or group (with its
// subgroups) which left the chart.
func (c *Chart) dropReferences(el Element) {
	switch e := el.(type) {
	case *Axis:
		for _, series := range c.Series {
			if series.Axis == e {
				series.Axis = nil
			}
		}
	case *SeriesGroup:
		groups := append([]*SeriesGroup{e}, e.DeepSeriesGroups()...)
		for _, series := range c.Series {
			if slices.Contains(groups, series.Group) {
				series.Group = nil
			}
		}
	}
}

// SetTitle changes the title content.
func (c *Chart) SetTitle(title string) {
	setField(c, &c.Title, title)
}

// SetTitleTip changes the title tip.
func (c *Chart) SetTitleTip(tip string) {
	setField(c, &c.TitleTip, tip)
}

// chartOf returns el when it is a chart, else the closest chart above it.
func chartOf(el Element) *Chart {
	for ; el != nil; el = el.Parent() {
		if chart, ok := el.(*Chart); ok {
			return chart
		}
	}
	return nil
}

// DeepSeriesGroups returns top-level groups and their subgroups, depth-first.
func (c *Chart) DeepSeriesGroups() []*SeriesGroup {
	result := []*SeriesGroup{}
	for _, group := range c.SeriesGroups {
		result = append(result, group)
		result = append(result, group.DeepSeriesGroups()...)
	}
	return result
}

func (c *Chart) NestedElements() []Element {
	result := nestedOf(c.Axes...)
	result = append(result, nestedOf(c.SeriesGroups...)...)
	return append(result, nestedOf(c.Series...)...)
}

// Clone deep copies the chart. Series of the clone point at the cloned axes
// and groups.
func (c *Chart) Clone() Element {
	return c.clone()
}

func (c *Chart) clone() *Chart {
	clone := NewChart()
	clone.parent = c.parent
	clone.dataSources = c.dataSources
	clone.Title, clone.TitleTip = c.Title, c.TitleTip

	axes := map[*Axis]*Axis{}
	for _, axis := range c.Axes {
		ac := axis.clone()
		ac.parent = clone
		axes[axis] = ac
		clone.Axes = append(clone.Axes, ac)
	}
	for _, group := range c.SeriesGroups {
		gc := group.clone()
		gc.parent = clone
		clone.SeriesGroups = append(clone.SeriesGroups, gc)
	}
	groups := map[*SeriesGroup]*SeriesGroup{}
	oldGroups, newGroups := c.DeepSeriesGroups(), clone.DeepSeriesGroups()
	for i := range oldGroups {
		groups[oldGroups[i]] = newGroups[i]
	}
	for _, series := range c.Series {
		sc := series.clone()
		sc.parent = clone
		if axis, ok := axes[series.Axis]; ok {
			sc.Axis = axis
		}
		if group, ok := groups[series.Group]; ok {
			sc.Group = group
		}
		clone.Series = append(clone.Series, sc)
	}
	return clone
}

func (c *Chart) Destroy() {
	for _, axis := range c.Axes {
		axis.Destroy()
	}
	for _, group := range c.SeriesGroups {
		group.Destroy()
	}
	for _, series := range c.Series {
		series.Destroy()
	}
	c.Axes, c.SeriesGroups, c.Series = []*Axis{}, []*SeriesGroup{}, []*Series{}
	c.destroyBase()
}

func (c *Chart) ToJSON() any {
	return c.spec()
}

func (c *Chart) spec() schema.ChartSpec {
	spec := schema.ChartSpec{
		Title:               schema.TitleSpec{Content: c.Title, Tip: c.TitleTip},
		YAxes:               make([]schema.AxisSpec, len(c.Axes)),
		SeriesGroupBuilders: make([]schema.BuilderSpec, len(c.SeriesGroups)),
		SeriesBuilders:      make([]schema.BuilderSpec, len(c.Series)),
	}
	for i, axis := range c.Axes {
		spec.YAxes[i] = axis.spec()
	}
	for i, group := range c.SeriesGroups {
		spec.SeriesGroupBuilders[i] = group.builder()
	}
	for i, series := range c.Series {
		spec.SeriesBuilders[i] = series.builder()
	}
	return spec
}
