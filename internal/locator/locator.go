// Package locator finds live objects for instance-method commands.
//
// The registry only needs "give me a live T right now"; how the host keeps
// its objects is its own business. Hosts either implement Locator directly
// or use Scene, a simple ordered object set.
package locator

import (
	"reflect"
	"slices"
	"sync"
)

// Locator finds a live instance of a type.
type Locator interface {
	FindInstance(t reflect.Type) (any, bool)
}

// Func adapts a function to Locator.
type Func func(t reflect.Type) (any, bool)

// FindInstance calls f.
func (f Func) FindInstance(t reflect.Type) (any, bool) { return f(t) }

// Find resolves t through loc, treating a nil locator as empty.
func Find(loc Locator, t reflect.Type) (any, bool) {
	if loc == nil || t == nil {
		return nil, false
	}
	return loc.FindInstance(t)
}

// Scene is the set of objects currently alive in the host application.
// FindInstance returns the earliest attached match, so with several live
// objects of one type the oldest wins.
type Scene struct {
	mu      sync.RWMutex
	name    string
	objects []any
}

// NewScene creates an empty scene.
func NewScene(name string) *Scene {
	return &Scene{name: name}
}

// Name returns the scene name.
func (s *Scene) Name() string {
	return s.name
}

// Attach adds live objects to the scene. Nil objects are ignored.
func (s *Scene) Attach(objs ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, obj := range objs {
		if obj != nil {
			s.objects = append(s.objects, obj)
		}
	}
}

// Detach removes obj, reporting whether it was attached. Objects of
// non-comparable types can only be removed with Clear.
func (s *Scene) Detach(obj any) bool {
	if obj == nil || !reflect.TypeOf(obj).Comparable() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.objects {
		if reflect.TypeOf(o) == reflect.TypeOf(obj) && o == obj {
			s.objects = slices.Delete(s.objects, i, i+1)
			return true
		}
	}
	return false
}

// Clear removes every object, as when the host unloads a scene.
func (s *Scene) Clear() {
	s.mu.Lock()
	s.objects = nil
	s.mu.Unlock()
}

// Objects returns a copy of the attached objects in attach order.
func (s *Scene) Objects() []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.objects)
}

// FindInstance returns the first attached object whose dynamic type is t,
// or that implements t when t is an interface type.
func (s *Scene) FindInstance(t reflect.Type) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, obj := range s.objects {
		ot := reflect.TypeOf(obj)
		if ot == t || (t.Kind() == reflect.Interface && ot.Implements(t)) {
			return obj, true
		}
	}
	return nil, false
}
