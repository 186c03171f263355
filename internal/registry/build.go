package registry

import (
	"fmt"

	"github.com/zjrosen/devconsole/internal/command"
	"github.com/zjrosen/devconsole/internal/locator"
	"github.com/zjrosen/devconsole/internal/log"
)

// BuildOptions tunes a build pass.
type BuildOptions struct {
	// EvictStale drops an existing entry when its instance command fails to
	// resolve in this pass, instead of keeping a binding to an object that
	// may be gone.
	EvictStale bool
}

// Report summarizes one build pass.
type Report struct {
	Registered      []string
	Duplicates      []string
	MissingInstance []string
	BindFailed      []string
	Evicted         []string
}

// Build binds candidates in order and registers them. Instance candidates
// whose type has no live object in loc are skipped with a warning.
func (r *Registry) Build(candidates []command.Candidate, loc locator.Locator, opts BuildOptions) Report {
	var report Report

	for _, c := range candidates {
		var instance any
		if !c.Static {
			obj, ok := locator.Find(loc, c.Owner)
			if !ok {
				err := fmt.Errorf("%s (%s): %w", c.Name, c.DeclaringType, ErrInstanceNotFound)
				log.Warn(log.CatScan, "Instance not found for command", "name", c.Name, "type", c.DeclaringType, "error", err)
				report.MissingInstance = append(report.MissingInstance, c.Name)
				if opts.EvictStale && r.evictIfOwned(c) {
					report.Evicted = append(report.Evicted, c.Name)
				}
				continue
			}
			instance = obj
		}

		action, err := c.Bind(instance)
		if err != nil {
			log.ErrorErr(log.CatScan, "Failed to bind command", err, "name", c.Name)
			report.BindFailed = append(report.BindFailed, c.Name)
			continue
		}

		entry := Entry{
			Name:          c.Name,
			Static:        c.Static,
			DeclaringType: c.DeclaringType,
			Action:        action,
		}
		if r.Register(entry) {
			report.Registered = append(report.Registered, c.Name)
		} else {
			report.Duplicates = append(report.Duplicates, c.Name)
		}
	}

	log.Debug(log.CatRegistry, "Registry build complete",
		"registered", len(report.Registered),
		"duplicates", len(report.Duplicates),
		"missing_instance", len(report.MissingInstance),
		"total", r.Len())
	return report
}

// evictIfOwned removes the entry for c.Name when it was registered by the
// same declaring type, leaving another type's command of that name alone.
func (r *Registry) evictIfOwned(c command.Candidate) bool {
	e, ok := r.Lookup(c.Name)
	if !ok || e.Static || e.DeclaringType != c.DeclaringType {
		return false
	}
	return r.Evict(c.Name)
}
