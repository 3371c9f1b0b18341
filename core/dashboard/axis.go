package dashboard

import (
	"github.com/google/uuid"
	"github.com/huangsam/tschart/schema"
)

const defaultUnitName = "none"

type unitOptionsKind int

const (
	noUnitOptions unitOptionsKind = iota
	bytesUnitOptions
	customUnitOptions
)

func unitOptionsKindFor(unitName string) unitOptionsKind {
	switch unitName {
	case "bytes", "bytesPerSec", "bits", "bitsPerSec":
		return bytesUnitOptions
	case "custom":
		return customUnitOptions
	default:
		return noUnitOptions
	}
}

func newUnitOptions(kind unitOptionsKind) *schema.UnitOptionsSpec {
	switch kind {
	case bytesUnitOptions:
		return &schema.UnitOptionsSpec{Format: stringPtr("iec")}
	case customUnitOptions:
		useMetricSuffix := false
		return &schema.UnitOptionsSpec{CustomName: stringPtr(""), UseMetricSuffix: &useMetricSuffix}
	default:
		return nil
	}
}

// Axis is a chart y axis.
type Axis struct {
	elementBase

	ID          string
	Name        string
	UnitName    string
	UnitOptions *schema.UnitOptionsSpec
	MinInterval *float64
	// ValueProvider formats axis labels. It defaults to currentValue.
	ValueProvider *Function

	// usedUnitOptions remembers options per kind, so switching units back
	// and forth keeps what was entered.
	usedUnitOptions map[unitOptionsKind]*schema.UnitOptionsSpec
}

var _ Element = (*Axis)(nil)

// NewAxis creates an axis with a generated id.
func NewAxis() *Axis {
	return newAxisFromSpec(schema.AxisSpec{}, nil)
}

func newAxisFromSpec(spec schema.AxisSpec, parent Element) *Axis {
	a := &Axis{
		ID:              spec.ID,
		Name:            spec.Name,
		UnitName:        spec.UnitName,
		UnitOptions:     cloneUnitOptions(spec.UnitOptions),
		usedUnitOptions: map[unitOptionsKind]*schema.UnitOptionsSpec{},
	}
	a.elementBase = newElementBase(a, parent)
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.UnitName == "" {
		a.UnitName = defaultUnitName
	}
	if spec.MinInterval != nil {
		minInterval := *spec.MinInterval
		a.MinInterval = &minInterval
	}
	if spec.ValueProvider != nil {
		a.ValueProvider = newFunctionFromSpec(spec.ValueProvider, a)
	} else {
		a.ValueProvider = NewFunction(currentValueFunctionName)
		a.ValueProvider.parent = a
	}
	a.configureUnitOptions()
	return a
}

func (a *Axis) ElementType() ElementType {
	return AxisElement
}

// SetUnitName changes the unit and reconfigures unit options to match it.
func (a *Axis) SetUnitName(unitName string) {
	a.UnitName = unitName
	a.configureUnitOptions()
	a.NotifyAboutChange(a)
}

func (a *Axis) SetName(name string) {
	setField(a, &a.Name, name)
}

// SetMinInterval changes the minimal distance between axis labels, nil for none.
func (a *Axis) SetMinInterval(minInterval *float64) {
	if (minInterval == nil && a.MinInterval == nil) || (minInterval != nil && a.MinInterval != nil && *minInterval == *a.MinInterval) {
		return
	}
	if minInterval != nil {
		v := *minInterval
		minInterval = &v
	}
	a.MinInterval = minInterval
	a.NotifyAboutChange(nil)
}

// SetValueProvider replaces the function formatting axis labels and destroys
// the old one.
func (a *Axis) SetValueProvider(fn *Function) {
	if fn == a.ValueProvider {
		return
	}
	old := a.ValueProvider
	if fn != nil {
		_ = attach(a, fn)
	}
	if old != nil {
		old.Destroy()
	}
	a.ValueProvider = fn
	a.NotifyAboutChange(nil)
}

func (a *Axis) detachChild(child Element) bool {
	if fn, ok := child.(*Function); !ok || fn == nil || fn != a.ValueProvider {
		return false
	}
	a.ValueProvider = nil
	return true
}

func (a *Axis) configureUnitOptions() {
	kind := unitOptionsKindFor(a.UnitName)
	if kind == noUnitOptions {
		a.UnitOptions = nil
		return
	}

	currentKind, found := noUnitOptions, false
	for k, options := range a.usedUnitOptions {
		if options == a.UnitOptions {
			currentKind, found = k, true
			break
		}
	}

	options := a.UnitOptions
	if options == nil || (found && currentKind != kind) {
		if options = a.usedUnitOptions[kind]; options == nil {
			options = newUnitOptions(kind)
		}
	}
	a.usedUnitOptions[kind] = options
	a.UnitOptions = options
}

func (a *Axis) NestedElements() []Element {
	if a.ValueProvider == nil {
		return []Element{}
	}
	return nestedOf(a.ValueProvider)
}

// Clone copies the axis under a fresh id. Series using the original are
// not moved to the clone.
func (a *Axis) Clone() Element {
	return a.clone()
}

func (a *Axis) clone() *Axis {
	c := &Axis{
		ID:              uuid.NewString(),
		Name:            a.Name,
		UnitName:        a.UnitName,
		UnitOptions:     cloneUnitOptions(a.UnitOptions),
		usedUnitOptions: map[unitOptionsKind]*schema.UnitOptionsSpec{},
	}
	c.elementBase = newElementBase(c, a.parent)
	c.dataSources = a.dataSources
	if a.MinInterval != nil {
		minInterval := *a.MinInterval
		c.MinInterval = &minInterval
	}
	if a.ValueProvider != nil {
		c.ValueProvider = a.ValueProvider.clone()
		c.ValueProvider.parent = c
	}
	c.configureUnitOptions()
	return c
}

func (a *Axis) Destroy() {
	if a.ValueProvider != nil {
		a.ValueProvider.Destroy()
		a.ValueProvider = nil
	}
	a.UnitOptions = nil
	a.destroyBase()
}

func (a *Axis) ToJSON() any {
	return a.spec()
}

func (a *Axis) spec() schema.AxisSpec {
	spec := schema.AxisSpec{
		ID:          a.ID,
		Name:        a.Name,
		UnitName:    a.UnitName,
		MinInterval: a.MinInterval,
	}
	if a.UnitOptions != nil {
		switch unitOptionsKindFor(a.UnitName) {
		case bytesUnitOptions:
			spec.UnitOptions = &schema.UnitOptionsSpec{Format: a.UnitOptions.Format}
		case customUnitOptions:
			spec.UnitOptions = &schema.UnitOptionsSpec{
				CustomName:      a.UnitOptions.CustomName,
				UseMetricSuffix: a.UnitOptions.UseMetricSuffix,
			}
		}
	}
	if a.ValueProvider != nil {
		spec.ValueProvider = a.ValueProvider.rawFunction()
	}
	return spec
}

func cloneUnitOptions(options *schema.UnitOptionsSpec) *schema.UnitOptionsSpec {
	if options == nil {
		return nil
	}
	c := *options
	if options.Format != nil {
		c.Format = stringPtr(*options.Format)
	}
	if options.CustomName != nil {
		c.CustomName = stringPtr(*options.CustomName)
	}
	if options.UseMetricSuffix != nil {
		v := *options.UseMetricSuffix
		c.UseMetricSuffix = &v
	}
	return &c
}
