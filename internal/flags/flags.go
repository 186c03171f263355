// Package flags holds read-only feature flags loaded from the flags: config
// section. Unknown flags read as false.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/devconsole/internal/log"
)

const (
	// FlagEvictStale drops an instance command from the registry when a
	// rescan can no longer find its owner.
	FlagEvictStale = "evict-stale"

	// FlagHistoryPersistence records executions to the history store.
	// When disabled, history lives in memory for the process only.
	FlagHistoryPersistence = "history-persistence"
)

// defaults apply when the config does not mention a flag.
var defaults = map[string]bool{
	FlagEvictStale:         false,
	FlagHistoryPersistence: true,
}

// Registry holds feature flag state.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from the config map layered over the defaults.
// A nil map yields the defaults.
func New(configured map[string]bool) *Registry {
	flags := maps.Clone(defaults)
	maps.Copy(flags, configured)
	r := &Registry{flags: flags}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(flags), "flags", r.All())
	return r
}

// Enabled reports whether name is on. Unknown names and a nil Registry
// read as false.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	value, ok := r.flags[name]
	if !ok {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name)
		return false
	}
	return value
}

// All returns a copy of every flag.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.flags)
}

// Known returns the names of the built-in flags, sorted.
func Known() []string {
	return slices.Sorted(maps.Keys(defaults))
}
