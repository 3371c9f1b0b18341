package dashboard

import (
	"maps"
	"slices"
	"sync"

	"github.com/huangsam/tschart/schema"
)

// Model is a whole dashboard: the root section and the data sources
// shared by all its elements.
type Model struct {
	rootSection  *Section
	rootListener ListenerID
	dataSources  *DataSources
	scheduler    Scheduler

	mu           sync.Mutex
	dirty        bool
	destroyed    bool
	flushPending bool
	listeners    map[ListenerID]func()
	nextID       ListenerID
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithScheduler sets how change notifications are batched.
// The default is a TickScheduler waiting DefaultTickDelay, which calls
// model listeners from a timer goroutine.
func WithScheduler(s Scheduler) ModelOption {
	return func(m *Model) {
		m.scheduler = s
	}
}

// WithDataSources sets the data sources of the model.
func WithDataSources(sources *DataSources) ModelOption {
	return func(m *Model) {
		m.dataSources = sources
	}
}

// NewModel creates a model for the given root section, which may be nil.
func NewModel(root *Section, opts ...ModelOption) *Model {
	m := &Model{
		scheduler: NewTickScheduler(DefaultTickDelay),
		listeners: map[ListenerID]func(){},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.dataSources == nil {
		m.dataSources = NewDataSources()
	}
	m.attachRoot(root)
	m.PropagateDataSources()
	return m
}

// RootSection returns the root section, nil for an empty dashboard.
func (m *Model) RootSection() *Section {
	return m.rootSection
}

// DataSources returns the data sources shared by all elements.
func (m *Model) DataSources() *DataSources {
	return m.dataSources
}

// SetRootSection replaces the root section. The old one is detached but
// not destroyed.
func (m *Model) SetRootSection(root *Section) {
	if root == m.rootSection {
		return
	}
	if m.rootSection != nil {
		m.rootSection.RemoveChangeListener(m.rootListener)
	}
	m.attachRoot(root)
	m.PropagateDataSources()
	m.onRootChange(ChangeEvent{Target: root, CurrentTarget: root})
}

func (m *Model) attachRoot(root *Section) {
	m.rootSection = root
	if root == nil {
		return
	}
	if parent := root.Parent(); parent != nil {
		if parent.detachChild(root) {
			parent.NotifyAboutChange(nil)
		}
		root.SetParent(nil)
	}
	root.IsRoot = true
	m.rootListener = root.AddChangeListener(m.onRootChange)
}

// SetDataSources replaces the data sources of all elements.
func (m *Model) SetDataSources(sources *DataSources) {
	if sources == nil {
		sources = NewDataSources()
	}
	m.dataSources = sources
	m.PropagateDataSources()
}

// PropagateDataSources hands the model data sources to every element
// holding a different reference.
func (m *Model) PropagateDataSources() {
	if m.rootSection == nil {
		return
	}
	elements := append([]Element{m.rootSection}, m.rootSection.NestedElements()...)
	for _, element := range elements {
		if element.DataSources() != m.dataSources {
			element.SetDataSources(m.dataSources)
		}
	}
}

// AddChangeListener registers a listener called at most once per batch of
// changes. Batches are delimited by the scheduler.
func (m *Model) AddChangeListener(listener func()) ListenerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.listeners[m.nextID] = listener
	return m.nextID
}

// RemoveChangeListener unregisters a listener. Unknown ids are ignored.
func (m *Model) RemoveChangeListener(id ListenerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listeners, id)
}

func (m *Model) onRootChange(ChangeEvent) {
	m.mu.Lock()
	m.dirty = true
	if m.flushPending || m.destroyed {
		m.mu.Unlock()
		return
	}
	m.flushPending = true
	m.mu.Unlock()

	m.scheduler.Schedule(m.notifyAboutChange)
}

func (m *Model) notifyAboutChange() {
	m.mu.Lock()
	m.flushPending = false
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	ids := slices.Sorted(maps.Keys(m.listeners))
	listeners := make([]func(), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, m.listeners[id])
	}
	m.mu.Unlock()

	for _, listener := range listeners {
		listener()
	}
}

// IsDirty tells whether the model changed since the last snapshot.
func (m *Model) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// Snapshot dumps the model and marks it clean.
func (m *Model) Snapshot() *schema.DashboardSpec {
	spec := m.ToJSON()
	m.mu.Lock()
	m.dirty = false
	m.mu.Unlock()
	return spec
}

// ToJSON dumps the model, nil when there is no root section.
func (m *Model) ToJSON() *schema.DashboardSpec {
	if m.rootSection == nil {
		return nil
	}
	root := m.rootSection.spec()
	return &schema.DashboardSpec{RootSection: &root}
}

// Destroy destroys the whole element tree. Pending notifications are dropped.
func (m *Model) Destroy() {
	m.mu.Lock()
	m.destroyed = true
	m.listeners = map[ListenerID]func(){}
	m.mu.Unlock()
	if m.rootSection != nil {
		m.rootSection.Destroy()
		m.rootSection = nil
	}
}
