package dashboard

import (
	"fmt"

	"github.com/huangsam/tschart/schema"
)

// Section holds charts and nested sections. The root section contains the
// whole dashboard.
type Section struct {
	elementBase

	IsRoot          bool
	Title           string
	TitleTip        string
	Description     string
	ChartNavigation schema.ChartNavigation
	Charts          []*Chart
	Sections        []*Section
}

var _ Element = (*Section)(nil)

// NewSection creates an empty section with independent chart navigation.
func NewSection() *Section {
	s := &Section{
		ChartNavigation: schema.IndependentNavigation,
		Charts:          []*Chart{},
		Sections:        []*Section{},
	}
	s.elementBase = newElementBase(s, nil)
	return s
}

func newSectionFromSpec(spec schema.SectionSpec, parent Element, path string) (*Section, error) {
	s := NewSection()
	s.parent = parent
	s.Title = spec.Title.Content
	s.TitleTip = spec.Title.Tip
	s.Description = spec.Description
	if spec.ChartNavigation != "" {
		if _, ok := schema.ValidChartNavigations[spec.ChartNavigation]; !ok {
			return nil, specErrorf(path, "unknown chart navigation %q", spec.ChartNavigation)
		}
		s.ChartNavigation = spec.ChartNavigation
	}
	for i, chartSpec := range spec.Charts {
		chart, err := newChartFromSpec(chartSpec, s, indexPath(path, "charts", i))
		if err != nil {
			return nil, err
		}
		s.Charts = append(s.Charts, chart)
	}
	for i, sectionSpec := range spec.Sections {
		section, err := newSectionFromSpec(sectionSpec, s, indexPath(path, "sections", i))
		if err != nil {
			return nil, err
		}
		s.Sections = append(s.Sections, section)
	}
	return s, nil
}

func (s *Section) ElementType() ElementType {
	return SectionElement
}

// AddChart appends a chart to the section, moving it out of its previous parent.
func (s *Section) AddChart(chart *Chart) {
	s.InsertChart(len(s.Charts), chart)
}

// InsertChart puts a chart at index, moving it out of its previous parent.
func (s *Section) InsertChart(index int, chart *Chart) {
	// Charts never contain sections, so attaching one cannot fail.
	_ = attach(s, chart)
	s.Charts = insertAt(s.Charts, index, chart)
	s.NotifyAboutChange(chart)
}

// AddSection appends a nested section, moving it out of its previous parent.
func (s *Section) AddSection(section *Section) error {
	return s.InsertSection(len(s.Sections), section)
}

// InsertSection puts a nested section at index. It fails for s itself and
// for its ancestors.
func (s *Section) InsertSection(index int, section *Section) error {
	if err := attach(s, section); err != nil {
		return err
	}
	section.IsRoot = false
	s.Sections = insertAt(s.Sections, index, section)
	s.NotifyAboutChange(section)
	return nil
}

// RemoveChart destroys a chart of the section.
func (s *Section) RemoveChart(chart *Chart) bool {
	return chart != nil && remove(s, chart)
}

// RemoveSection destroys a nested section.
func (s *Section) RemoveSection(section *Section) bool {
	return section != nil && remove(s, section)
}

func (s *Section) detachChild(child Element) bool {
	var found bool
	switch c := child.(type) {
	case *Chart:
		s.Charts, found = without(s.Charts, c)
	case *Section:
		s.Sections, found = without(s.Sections, c)
	}
	return found
}

// SetTitle changes the title content.
func (s *Section) SetTitle(title string) {
	setField(s, &s.Title, title)
}

// SetTitleTip changes the title tip.
func (s *Section) SetTitleTip(tip string) {
	setField(s, &s.TitleTip, tip)
}

func (s *Section) SetDescription(description string) {
	setField(s, &s.Description, description)
}

// SetChartNavigation changes how charts of the section are navigated.
func (s *Section) SetChartNavigation(navigation schema.ChartNavigation) error {
	if _, ok := schema.ValidChartNavigations[navigation]; !ok {
		return fmt.Errorf("%w: unknown chart navigation %q", ErrInvalidTree, navigation)
	}
	setField(s, &s.ChartNavigation, navigation)
	return nil
}

// NestedElements lists sections before charts, each followed by its descendants.
func (s *Section) NestedElements() []Element {
	return append(nestedOf(s.Sections...), nestedOf(s.Charts...)...)
}

func (s *Section) Clone() Element {
	return s.clone()
}

func (s *Section) clone() *Section {
	c := NewSection()
	c.parent = s.parent
	c.dataSources = s.dataSources
	c.IsRoot = s.IsRoot
	c.Title, c.TitleTip, c.Description = s.Title, s.TitleTip, s.Description
	c.ChartNavigation = s.ChartNavigation
	for _, chart := range s.Charts {
		cc := chart.clone()
		cc.parent = c
		c.Charts = append(c.Charts, cc)
	}
	for _, section := range s.Sections {
		sc := section.clone()
		sc.parent = c
		c.Sections = append(c.Sections, sc)
	}
	return c
}

func (s *Section) Destroy() {
	for _, chart := range s.Charts {
		chart.Destroy()
	}
	for _, section := range s.Sections {
		section.Destroy()
	}
	s.Charts, s.Sections = []*Chart{}, []*Section{}
	s.destroyBase()
}

func (s *Section) ToJSON() any {
	return s.spec()
}

func (s *Section) spec() schema.SectionSpec {
	spec := schema.SectionSpec{
		Title:           schema.TitleSpec{Content: s.Title, Tip: s.TitleTip},
		Description:     s.Description,
		ChartNavigation: s.ChartNavigation,
		Charts:          make([]schema.ChartSpec, len(s.Charts)),
		Sections:        make([]schema.SectionSpec, len(s.Sections)),
	}
	for i, chart := range s.Charts {
		spec.Charts[i] = chart.spec()
	}
	for i, section := range s.Sections {
		spec.Sections[i] = section.spec()
	}
	return spec
}
