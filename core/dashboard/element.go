// Package dashboard is an editable in-memory model of a chart dashboard.
// Elements form a tree (sections, charts, axes, series groups, series and
// functions) which can be loaded from and dumped to its JSON spec.
//
// Every element has exactly one owner: attaching an element somewhere moves it
// out of its previous parent. Elements are not safe for concurrent use. Model
// listeners run on a timer goroutine unless another Scheduler is configured.
package dashboard

import (
	"fmt"
	"maps"
	"slices"

	"github.com/huangsam/tschart/schema"
)

// ElementType identifies the kind of a dashboard element.
type ElementType string

// All dashboard element types.
const (
	SectionElement     ElementType = "chartDashboardEditorSection"
	ChartElement       ElementType = "chartDashboardEditorChart"
	AxisElement        ElementType = "chartDashboardEditorAxis"
	SeriesGroupElement ElementType = "chartDashboardEditorSeriesGroup"
	SeriesElement      ElementType = "chartDashboardEditorSeries"
	FunctionElement    ElementType = "chartDashboardEditorFunction"
)

// ListenerID identifies a registered change listener.
type ListenerID int

// ChangeEvent describes a change. Target is the element which changed,
// CurrentTarget is the element whose listener is being called.
type ChangeEvent struct {
	Target        Element
	CurrentTarget Element
}

// ChangeListener is called with every change of an element or its descendants.
type ChangeListener func(ChangeEvent)

// Element is a node of the dashboard tree.
type Element interface {
	ElementType() ElementType
	Parent() Element
	SetParent(parent Element)
	DataSources() *DataSources
	SetDataSources(sources *DataSources)

	AddChangeListener(listener ChangeListener) ListenerID
	RemoveChangeListener(id ListenerID)
	// NotifyAboutChange calls the listeners of this element and bubbles the
	// event up to all ancestors.
	NotifyAboutChange(target Element)

	// NestedElements returns all descendants, depth-first.
	NestedElements() []Element
	Clone() Element
	Destroy()
	IsDestroyed() bool
	ToJSON() any

	// detachChild drops child from the element without destroying it.
	// It reports whether child was found.
	detachChild(child Element) bool
}

// DataSources are the data sources available to a dashboard.
// The list is shared by all elements of a model.
type DataSources struct {
	Sources []schema.DataSourceSpec
}

// NewDataSources wraps a list of data sources.
func NewDataSources(sources ...schema.DataSourceSpec) *DataSources {
	return &DataSources{Sources: sources}
}

// Default returns the only default data source, nil when there is none or
// more than one.
func (d *DataSources) Default() *schema.DataSourceSpec {
	if d == nil {
		return nil
	}
	var found *schema.DataSourceSpec
	for i := range d.Sources {
		if !d.Sources[i].IsDefault {
			continue
		}
		if found != nil {
			return nil
		}
		found = &d.Sources[i]
	}
	return found
}

// elementBase holds state common to all elements. self is the element
// embedding it, so events can name the concrete element.
type elementBase struct {
	self        Element
	parent      Element
	dataSources *DataSources
	listeners   map[ListenerID]ChangeListener
	nextID      ListenerID
	destroyed   bool
}

func newElementBase(self Element, parent Element) elementBase {
	return elementBase{self: self, parent: parent}
}

func (e *elementBase) Parent() Element {
	return e.parent
}

func (e *elementBase) SetParent(parent Element) {
	e.parent = parent
}

func (e *elementBase) DataSources() *DataSources {
	return e.dataSources
}

func (e *elementBase) SetDataSources(sources *DataSources) {
	e.dataSources = sources
}

func (e *elementBase) AddChangeListener(listener ChangeListener) ListenerID {
	if e.listeners == nil {
		e.listeners = map[ListenerID]ChangeListener{}
	}
	e.nextID++
	e.listeners[e.nextID] = listener
	return e.nextID
}

func (e *elementBase) RemoveChangeListener(id ListenerID) {
	delete(e.listeners, id)
}

func (e *elementBase) NotifyAboutChange(target Element) {
	if target == nil {
		target = e.self
	}
	event := ChangeEvent{Target: target, CurrentTarget: e.self}
	for _, id := range slices.Sorted(maps.Keys(e.listeners)) {
		if listener, ok := e.listeners[id]; ok {
			listener(event)
		}
	}
	if e.parent != nil {
		e.parent.NotifyAboutChange(target)
	}
}

func (e *elementBase) IsDestroyed() bool {
	return e.destroyed
}

// destroyBase detaches the element from the tree and its listeners.
func (e *elementBase) destroyBase() {
	e.destroyed = true
	e.parent = nil
	e.listeners = nil
}

// nestedOf flattens children and their descendants, depth-first.
func nestedOf[E Element](children ...E) []Element {
	result := []Element{}
	for _, child := range children {
		result = append(result, child)
		result = append(result, child.NestedElements()...)
	}
	return result
}

// attach makes parent the only owner of child. The child leaves its previous
// parent, which is notified, and takes over the data sources of parent along
// with all its descendants. Callers add child to their own lists afterwards.
func attach(parent, child Element) error {
	if contains(child, parent) {
		return fmt.Errorf("%w: %s cannot be attached below itself", ErrInvalidTree, child.ElementType())
	}
	chart := chartOf(child.Parent())
	if previous := child.Parent(); previous != nil && previous.detachChild(child) && previous != parent {
		previous.NotifyAboutChange(nil)
	}
	child.SetParent(parent)
	if chart != nil && chart != chartOf(parent) {
		chart.dropReferences(child)
	}
	propagateDataSources(child, parent.DataSources())
	return nil
}

// remove detaches child from parent, destroys it and notifies parent.
func remove(parent, child Element) bool {
	if child == nil || child.Parent() != parent || !parent.detachChild(child) {
		return false
	}
	if chart := chartOf(parent); chart != nil {
		chart.dropReferences(child)
	}
	child.Destroy()
	parent.NotifyAboutChange(nil)
	return true
}

// contains tells whether el is ancestor itself or one of its descendants.
func contains(ancestor, el Element) bool {
	for ; el != nil; el = el.Parent() {
		if el == ancestor {
			return true
		}
	}
	return false
}

func propagateDataSources(el Element, sources *DataSources) {
	el.SetDataSources(sources)
	for _, nested := range el.NestedElements() {
		nested.SetDataSources(sources)
	}
}

// insertAt inserts el at index, clamped to the bounds of list.
func insertAt[E any](list []E, index int, el E) []E {
	index = max(0, min(index, len(list)))
	return slices.Insert(list, index, el)
}

// without returns list minus el, never reusing the backing array.
func without[E comparable](list []E, el E) ([]E, bool) {
	i := slices.Index(list, el)
	if i < 0 {
		return list, false
	}
	return slices.Concat(list[:i], list[i+1:]), true
}

// setField assigns value and notifies e when it changed.
func setField[T comparable](e Element, field *T, value T) {
	if *field == value {
		return
	}
	*field = value
	e.NotifyAboutChange(nil)
}
