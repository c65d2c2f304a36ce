package values

import (
	"sync"

	"golang.org/x/exp/maps"
)

// ObjectStructure is the hidden class ("shape") shared by every object
// that has added the same properties in the same order. Objects that begin
// empty and add properties "x" then "y" converge on the same *ObjectStructure
// as any other object that did the same, which is what lets inline caches
// validate a lookup with a single pointer comparison.
type ObjectStructure struct {
	mu          sync.RWMutex
	index       map[string]int // property name -> slot index
	order       []string       // slot index -> property name
	transitions map[string]*ObjectStructure
}

var rootStructure = &ObjectStructure{
	index:       make(map[string]int),
	transitions: make(map[string]*ObjectStructure),
}

// RootStructure returns the shared empty-shape structure every new object
// without a named ObjectStructure of its own starts from.
func RootStructure() *ObjectStructure { return rootStructure }

// IndexOf returns the slot index a property name occupies in this shape.
func (s *ObjectStructure) IndexOf(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.index[name]
	return idx, ok
}

// Transition returns the shape reached by adding name as the next
// property, reusing a previously-created transition when another object
// already took this exact path (the "shape tree" a hidden-class scheme
// depends on to keep the number of distinct shapes bounded).
func (s *ObjectStructure) Transition(name string) *ObjectStructure {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next, ok := s.transitions[name]; ok {
		return next
	}
	next := &ObjectStructure{
		index:       make(map[string]int, len(s.index)+1),
		order:       append(append([]string(nil), s.order...), name),
		transitions: make(map[string]*ObjectStructure),
	}
	maps.Copy(next.index, s.index)
	next.index[name] = len(s.order)
	s.transitions[name] = next
	return next
}

// PropertyNames returns the own-property names in insertion order, the
// order for-in enumeration and Object.keys rely on.
func (s *ObjectStructure) PropertyNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Size reports how many properties this shape has accumulated, used by
// inline caches to distinguish structures cheaply before falling back to
// pointer equality.
func (s *ObjectStructure) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
