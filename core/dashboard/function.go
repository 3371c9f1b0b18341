package dashboard

import (
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/huangsam/tschart/schema"
)

const (
	literalFunctionName      = "literal"
	currentValueFunctionName = "currentValue"
)

// Function is a series function call. Arguments hold raw JSON values,
// attached *Function elements or []*Function lists.
type Function struct {
	elementBase

	ID        string
	Name      string
	Arguments map[string]any
}

var _ Element = (*Function)(nil)

// NewFunction creates a function without arguments.
func NewFunction(name string) *Function {
	f := &Function{ID: uuid.NewString(), Name: name, Arguments: map[string]any{}}
	f.elementBase = newElementBase(f, nil)
	return f
}

// newFunctionFromSpec turns a raw function into an element tree. Arguments of
// literal functions are data and stay raw.
func newFunctionFromSpec(raw *schema.RawFunction, parent Element) *Function {
	f := NewFunction(raw.FunctionName)
	f.parent = parent
	for name, value := range raw.FunctionArguments {
		if raw.FunctionName == literalFunctionName {
			f.Arguments[name] = cloneJSON(value)
			continue
		}
		f.Arguments[name] = f.attachArgument(value)
	}
	return f
}

func (f *Function) attachArgument(value any) any {
	if nested, ok := schema.AsRawFunction(value); ok {
		return newFunctionFromSpec(nested, f)
	}
	items, ok := value.([]any)
	if !ok || len(items) == 0 {
		return cloneJSON(value)
	}
	nested := make([]*schema.RawFunction, len(items))
	for i, item := range items {
		if nested[i], ok = schema.AsRawFunction(item); !ok {
			return cloneJSON(value)
		}
	}
	functions := make([]*Function, len(nested))
	for i, raw := range nested {
		functions[i] = newFunctionFromSpec(raw, f)
	}
	return functions
}

func (f *Function) ElementType() ElementType {
	return FunctionElement
}

// SetArgument replaces an argument. Functions passed in, alone or as a
// []*Function list, are moved under f. Functions of the replaced value which
// are not reused get destroyed. Attaching f or one of its ancestors fails.
func (f *Function) SetArgument(name string, value any) error {
	functions := functionsOf(value)
	for _, fn := range functions {
		if contains(fn, f) {
			return fmt.Errorf("%w: function %s cannot be its own argument", ErrInvalidTree, fn.Name)
		}
	}
	old := functionsOf(f.Arguments[name])
	for _, fn := range functions {
		_ = attach(f, fn)
	}
	for _, fn := range old {
		if !slices.Contains(functions, fn) {
			fn.Destroy()
		}
	}
	if list, ok := value.([]*Function); ok {
		value = slices.Clone(list)
	}
	f.Arguments[name] = value
	f.NotifyAboutChange(nil)
	return nil
}

// RemoveArgument deletes an argument, destroying the functions it holds.
func (f *Function) RemoveArgument(name string) bool {
	value, ok := f.Arguments[name]
	if !ok {
		return false
	}
	delete(f.Arguments, name)
	for _, fn := range functionsOf(value) {
		fn.Destroy()
	}
	f.NotifyAboutChange(nil)
	return true
}

// SetName changes the called function.
func (f *Function) SetName(name string) {
	setField(f, &f.Name, name)
}

func (f *Function) detachChild(child Element) bool {
	target, ok := child.(*Function)
	if !ok || target == nil {
		return false
	}
	for name, value := range f.Arguments {
		switch v := value.(type) {
		case *Function:
			if v == target {
				delete(f.Arguments, name)
				return true
			}
		case []*Function:
			if list, found := without(v, target); found {
				f.Arguments[name] = list
				return true
			}
		}
	}
	return false
}

// functionsOf returns the functions held by an argument value.
func functionsOf(value any) []*Function {
	switch v := value.(type) {
	case *Function:
		if v != nil {
			return []*Function{v}
		}
	case []*Function:
		return slices.DeleteFunc(slices.Clone(v), func(fn *Function) bool { return fn == nil })
	}
	return nil
}

// AttachedFunctions returns functions used as arguments, ordered by argument name.
func (f *Function) AttachedFunctions() []*Function {
	var result []*Function
	for _, name := range slices.Sorted(maps.Keys(f.Arguments)) {
		switch v := f.Arguments[name].(type) {
		case *Function:
			if v != nil {
				result = append(result, v)
			}
		case []*Function:
			result = append(result, v...)
		}
	}
	return result
}

func (f *Function) NestedElements() []Element {
	return nestedOf(f.AttachedFunctions()...)
}

// Clone copies the function and all attached functions under fresh ids.
func (f *Function) Clone() Element {
	return f.clone()
}

func (f *Function) clone() *Function {
	c := NewFunction(f.Name)
	c.parent = f.parent
	c.dataSources = f.dataSources
	for name, value := range f.Arguments {
		switch v := value.(type) {
		case *Function:
			nested := v.clone()
			nested.parent = c
			c.Arguments[name] = nested
		case []*Function:
			list := make([]*Function, len(v))
			for i, fn := range v {
				list[i] = fn.clone()
				list[i].parent = c
			}
			c.Arguments[name] = list
		default:
			c.Arguments[name] = cloneJSON(v)
		}
	}
	return c
}

func (f *Function) Destroy() {
	for _, fn := range f.AttachedFunctions() {
		fn.Destroy()
	}
	f.Arguments = map[string]any{}
	f.destroyBase()
}

func (f *Function) ToJSON() any {
	return f.spec()
}

func (f *Function) spec() map[string]any {
	args := make(map[string]any, len(f.Arguments))
	for name, value := range f.Arguments {
		switch v := value.(type) {
		case *Function:
			args[name] = v.spec()
		case []*Function:
			list := make([]any, len(v))
			for i, fn := range v {
				list[i] = fn.spec()
			}
			args[name] = list
		default:
			args[name] = cloneJSON(v)
		}
	}
	return map[string]any{
		"functionName":      f.Name,
		"functionArguments": args,
	}
}

func (f *Function) rawFunction() *schema.RawFunction {
	spec := f.spec()
	args, _ := spec["functionArguments"].(map[string]any)
	return &schema.RawFunction{FunctionName: f.Name, FunctionArguments: args}
}

// cloneJSON deep copies decoded JSON containers.
func cloneJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		c := make(map[string]any, len(t))
		for k, item := range t {
			c[k] = cloneJSON(item)
		}
		return c
	case []any:
		c := make([]any, len(t))
		for i, item := range t {
			c[i] = cloneJSON(item)
		}
		return c
	default:
		return v
	}
}
