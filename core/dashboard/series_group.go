package dashboard

import (
	"github.com/google/uuid"
	"github.com/huangsam/tschart/schema"
)

// SeriesGroup groups series of a chart. Top-level groups are dumped as
// static builders, subgroups as bare templates inside their parent.
type SeriesGroup struct {
	elementBase

	ID        string
	Name      string
	Stacked   bool
	ShowSum   bool
	Subgroups []*SeriesGroup
}

var _ Element = (*SeriesGroup)(nil)

// NewSeriesGroup creates a series group with a generated id.
func NewSeriesGroup() *SeriesGroup {
	g := &SeriesGroup{ID: uuid.NewString(), Subgroups: []*SeriesGroup{}}
	g.elementBase = newElementBase(g, nil)
	return g
}

func newSeriesGroupFromBuilder(spec schema.BuilderSpec, parent Element, path string) (*SeriesGroup, error) {
	if spec.BuilderType != schema.StaticBuilderType {
		return nil, specErrorf(path, "unsupported series group builder type %q", spec.BuilderType)
	}
	return newSeriesGroupFromTemplate(objectField(spec.BuilderRecipe, "seriesGroupTemplate"), parent), nil
}

func newSeriesGroupFromTemplate(template map[string]any, parent Element) *SeriesGroup {
	g := NewSeriesGroup()
	g.parent = parent
	if id := stringField(template, "id"); id != "" {
		g.ID = id
	}
	g.Name = stringField(template, "name")
	g.Stacked = boolField(template, "stacked")
	g.ShowSum = boolField(template, "showSum")
	for _, subgroup := range objectsField(template, "subgroups") {
		g.Subgroups = append(g.Subgroups, newSeriesGroupFromTemplate(subgroup, g))
	}
	return g
}

func (g *SeriesGroup) ElementType() ElementType {
	return SeriesGroupElement
}

// AddSubgroup appends a subgroup and attaches it to g, moving it out of its
// previous parent.
func (g *SeriesGroup) AddSubgroup(subgroup *SeriesGroup) error {
	return g.InsertSubgroup(len(g.Subgroups), subgroup)
}

// InsertSubgroup puts a subgroup at index. It fails for g itself and for
// its ancestors.
func (g *SeriesGroup) InsertSubgroup(index int, subgroup *SeriesGroup) error {
	if err := attach(g, subgroup); err != nil {
		return err
	}
	g.Subgroups = insertAt(g.Subgroups, index, subgroup)
	g.NotifyAboutChange(subgroup)
	return nil
}

// RemoveSubgroup destroys a subgroup. Series in it lose their group.
func (g *SeriesGroup) RemoveSubgroup(subgroup *SeriesGroup) bool {
	return subgroup != nil && remove(g, subgroup)
}

func (g *SeriesGroup) detachChild(child Element) bool {
	subgroup, ok := child.(*SeriesGroup)
	if !ok {
		return false
	}
	var found bool
	g.Subgroups, found = without(g.Subgroups, subgroup)
	return found
}

func (g *SeriesGroup) SetName(name string) {
	setField(g, &g.Name, name)
}

// SetStacked changes whether series of the group are stacked.
func (g *SeriesGroup) SetStacked(stacked bool) {
	setField(g, &g.Stacked, stacked)
}

// SetShowSum changes whether the sum of the group is shown.
func (g *SeriesGroup) SetShowSum(showSum bool) {
	setField(g, &g.ShowSum, showSum)
}

// DeepSeriesGroups returns all subgroups at any depth, depth-first.
func (g *SeriesGroup) DeepSeriesGroups() []*SeriesGroup {
	result := []*SeriesGroup{}
	for _, subgroup := range g.Subgroups {
		result = append(result, subgroup)
		result = append(result, subgroup.DeepSeriesGroups()...)
	}
	return result
}

func (g *SeriesGroup) NestedElements() []Element {
	return nestedOf(g.Subgroups...)
}

// Clone copies the group and its subgroups under fresh ids.
func (g *SeriesGroup) Clone() Element {
	return g.clone()
}

func (g *SeriesGroup) clone() *SeriesGroup {
	c := NewSeriesGroup()
	c.parent = g.parent
	c.dataSources = g.dataSources
	c.Name, c.Stacked, c.ShowSum = g.Name, g.Stacked, g.ShowSum
	for _, subgroup := range g.Subgroups {
		sc := subgroup.clone()
		sc.parent = c
		c.Subgroups = append(c.Subgroups, sc)
	}
	return c
}

func (g *SeriesGroup) Destroy() {
	for _, subgroup := range g.Subgroups {
		subgroup.Destroy()
	}
	g.Subgroups = []*SeriesGroup{}
	g.destroyBase()
}

// ToJSON returns a builder spec for top-level groups and a template for subgroups.
func (g *SeriesGroup) ToJSON() any {
	if _, nested := g.parent.(*SeriesGroup); nested {
		return g.template()
	}
	return g.builder()
}

func (g *SeriesGroup) builder() schema.BuilderSpec {
	return schema.BuilderSpec{
		BuilderType:   schema.StaticBuilderType,
		BuilderRecipe: map[string]any{"seriesGroupTemplate": g.template()},
	}
}

func (g *SeriesGroup) template() map[string]any {
	subgroups := make([]any, len(g.Subgroups))
	for i, subgroup := range g.Subgroups {
		subgroups[i] = subgroup.template()
	}
	return map[string]any{
		"id":        g.ID,
		"name":      g.Name,
		"stacked":   g.Stacked,
		"showSum":   g.ShowSum,
		"subgroups": subgroups,
	}
}
