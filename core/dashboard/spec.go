package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/huangsam/tschart/schema"
)

// ParseSpec decodes a JSON dashboard spec. JSON null gives a nil spec.
func ParseSpec(data []byte) (*schema.DashboardSpec, error) {
	var spec *schema.DashboardSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, &SpecError{Reason: err.Error()}
	}
	return spec, nil
}

// NewModelFromSpec builds a model from a dashboard spec. A nil spec or a
// spec without a root section gives an empty model.
func NewModelFromSpec(spec *schema.DashboardSpec, opts ...ModelOption) (*Model, error) {
	var root *Section
	if spec != nil && spec.RootSection != nil {
		var err error
		if root, err = newSectionFromSpec(*spec.RootSection, nil, "rootSection"); err != nil {
			return nil, err
		}
	}
	return NewModel(root, opts...), nil
}

// Normalize loads a JSON dashboard spec and dumps it again, filling defaults.
func Normalize(data []byte) (*schema.DashboardSpec, error) {
	spec, err := ParseSpec(data)
	if err != nil {
		return nil, err
	}
	model, err := NewModelFromSpec(spec)
	if err != nil {
		return nil, err
	}
	defer model.Destroy()
	return model.ToJSON(), nil
}

// CreateElement builds a single detached element from its JSON form.
// Series references to axes and groups cannot be resolved outside of a
// chart and are left empty.
func CreateElement(elementType ElementType, data json.RawMessage) (Element, error) {
	path := string(elementType)
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	decode := func(v any) error {
		if err := json.Unmarshal(data, v); err != nil {
			return &SpecError{Path: path, Reason: err.Error()}
		}
		return nil
	}

	switch elementType {
	case SectionElement:
		var spec schema.SectionSpec
		if err := decode(&spec); err != nil {
			return nil, err
		}
		e, err := newSectionFromSpec(spec, nil, path)
		if err != nil {
			return nil, err
		}
		return e, nil
	case ChartElement:
		var spec schema.ChartSpec
		if err := decode(&spec); err != nil {
			return nil, err
		}
		e, err := newChartFromSpec(spec, nil, path)
		if err != nil {
			return nil, err
		}
		return e, nil
	case AxisElement:
		var spec schema.AxisSpec
		if err := decode(&spec); err != nil {
			return nil, err
		}
		return newAxisFromSpec(spec, nil), nil
	case SeriesGroupElement:
		var spec map[string]any
		if err := decode(&spec); err != nil {
			return nil, err
		}
		if _, isBuilder := spec["builderType"]; !isBuilder {
			return newSeriesGroupFromTemplate(spec, nil), nil
		}
		var builder schema.BuilderSpec
		if err := decode(&builder); err != nil {
			return nil, err
		}
		e, err := newSeriesGroupFromBuilder(builder, nil, path)
		if err != nil {
			return nil, err
		}
		return e, nil
	case SeriesElement:
		var spec schema.BuilderSpec
		if err := decode(&spec); err != nil {
			return nil, err
		}
		e, err := newSeriesFromBuilder(spec, nil, path, chartRefs{})
		if err != nil {
			return nil, err
		}
		return e, nil
	case FunctionElement:
		var spec schema.RawFunction
		if err := decode(&spec); err != nil {
			return nil, err
		}
		if spec.FunctionName == "" {
			return nil, specErrorf(path, "missing function name")
		}
		return newFunctionFromSpec(&spec, nil), nil
	default:
		return nil, specErrorf("", "unknown element type %q", elementType)
	}
}

// Walk calls fn for root and all its descendants until fn returns an error.
func Walk(root Element, fn func(Element) error) error {
	if root == nil {
		return nil
	}
	for _, element := range append([]Element{root}, root.NestedElements()...) {
		if err := fn(element); err != nil {
			return fmt.Errorf("walk %s: %w", element.ElementType(), err)
		}
	}
	return nil
}
