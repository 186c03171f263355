// Package registry holds the name→command table behind the console.
//
// Names are unique and the first registration wins: a later entry with an
// existing name is rejected and logged, never swapped in. Build binds
// scanned candidates and registers them, so running it again over the same
// candidates leaves the table unchanged and logs one benign duplicate
// warning per name.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/zjrosen/devconsole/internal/command"
	"github.com/zjrosen/devconsole/internal/log"
)

var (
	// ErrDuplicateName marks a registration rejected because the name is taken.
	ErrDuplicateName = errors.New("command name already registered")

	// ErrInstanceNotFound marks an instance command skipped because no live
	// object of its declaring type was found.
	ErrInstanceNotFound = errors.New("no live instance for command")
)

// Entry is one registered command. Entries are immutable.
type Entry struct {
	Name          string
	Static        bool
	DeclaringType string
	Action        command.Command
}

// Registry maps command names to entries. It is safe for concurrent use so
// a rescan never races a lookup.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register inserts e unless its name is already taken. It returns false and
// logs a warning when the entry is rejected.
func (r *Registry) Register(e Entry) bool {
	if err := r.Insert(e); err != nil {
		log.Warn(log.CatRegistry, "Command is already registered", "name", e.Name, "type", e.DeclaringType)
		return false
	}
	log.Info(log.CatRegistry, "Command registered successfully", "name", e.Name, "type", e.DeclaringType, "static", e.Static)
	return true
}

// Insert is Register without logging; it returns an error wrapping
// ErrDuplicateName when the name is taken.
func (r *Registry) Insert(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[e.Name]; exists {
		return fmt.Errorf("registering %q: %w", e.Name, ErrDuplicateName)
	}
	r.entries[e.Name] = e
	return nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Evict removes name from the table, reporting whether it was present.
func (r *Registry) Evict(name string) bool {
	r.mu.Lock()
	_, ok := r.entries[name]
	delete(r.entries, name)
	r.mu.Unlock()

	if ok {
		log.Warn(log.CatRegistry, "Command evicted", "name", name)
	}
	return ok
}

// Keys returns the registered names, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.entries))
	for name := range r.entries {
		keys = append(keys, name)
	}
	r.mu.RUnlock()

	slices.Sort(keys)
	return keys
}

// Entries returns all entries sorted by name.
func (r *Registry) Entries() []Entry {
	keys := r.Keys()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		if e, ok := r.entries[k]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Reset empties the table.
func (r *Registry) Reset() {
	r.mu.Lock()
	clear(r.entries)
	r.mu.Unlock()
}
