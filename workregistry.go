package timetrigger

import (
	"fmt"
	"sync"
)

// WorkFactory builds a WorkFn out of string parameters.
type WorkFactory = func(param map[string]string) (WorkFn, error)

// WorkRegistry maps work kind names to WorkFactory.
type WorkRegistry struct {
	m sync.Map
}

func NewWorkRegistry() *WorkRegistry {
	return &WorkRegistry{}
}

func (m *WorkRegistry) Delete(kind string) {
	m.m.Delete(kind)
}

func (m *WorkRegistry) Load(kind string) (value WorkFactory, ok bool) {
	v, ok := m.m.Load(kind)
	if !ok {
		return
	}
	return v.(WorkFactory), ok
}

func (m *WorkRegistry) LoadOrStore(kind string, value WorkFactory) (actual WorkFactory, loaded bool) {
	v, loaded := m.m.LoadOrStore(kind, value)
	return v.(WorkFactory), loaded
}

func (m *WorkRegistry) Range(f func(kind string, value WorkFactory) bool) {
	m.m.Range(func(k, v any) bool {
		return f(k.(string), v.(WorkFactory))
	})
}

func (m *WorkRegistry) Store(kind string, value WorkFactory) {
	m.m.Store(kind, value)
}

// Build looks up kind and calls its factory with param.
func (m *WorkRegistry) Build(kind string, param map[string]string) (WorkFn, error) {
	factory, ok := m.Load(kind)
	if !ok {
		return nil, fmt.Errorf("%w: kind = %s", ErrWorkKindNotFound, kind)
	}
	work, err := factory(param)
	if err != nil {
		return nil, fmt.Errorf("building work of kind %s: %w", kind, err)
	}
	return work, nil
}
