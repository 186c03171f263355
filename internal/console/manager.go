package console

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/devconsole/internal/command"
	"github.com/zjrosen/devconsole/internal/dispatch"
	"github.com/zjrosen/devconsole/internal/locator"
	"github.com/zjrosen/devconsole/internal/log"
	"github.com/zjrosen/devconsole/internal/pubsub"
	"github.com/zjrosen/devconsole/internal/registry"
	"github.com/zjrosen/devconsole/internal/tracing"
)

// Manager ties the scanner, locator and registry together. It does not
// belong to any scene; SetLocator swaps the object graph it resolves from.
type Manager struct {
	mu         sync.RWMutex
	loc        locator.Locator
	lastReport registry.Report

	scanner    command.Scanner
	registry   *registry.Registry
	tracer     trace.Tracer
	rebuilds   pubsub.Publisher[registry.Report]
	evictStale bool
	dispatcher *dispatch.Dispatcher
}

func newManager(opts Options) *Manager {
	m := &Manager{
		loc:        opts.Locator,
		scanner:    opts.Scanner,
		registry:   opts.Registry,
		tracer:     opts.Tracer,
		rebuilds:   opts.Rebuilds,
		evictStale: opts.EvictStale,
	}
	if m.scanner == nil {
		m.scanner = command.NewScanner(nil)
	}
	if m.registry == nil {
		m.registry = defaultRegistry
	}
	if m.tracer == nil {
		m.tracer = noop.NewTracerProvider().Tracer("noop")
	}
	m.dispatcher = dispatch.New(dispatch.Config{
		Registry: m.registry,
		Rescan:   func(ctx context.Context) { m.Rescan(ctx) },
		Active:   func() bool { return current() == m },
		Tracer:   m.tracer,
		Events:   opts.Events,
		Recorder: opts.Recorder,
	})
	return m
}

// Execute dispatches name. See dispatch.Dispatcher.Execute.
func (m *Manager) Execute(ctx context.Context, name string) (dispatch.Outcome, error) {
	return m.dispatcher.Execute(ctx, name)
}

// ListCommandNames returns the registered names, sorted.
func (m *Manager) ListCommandNames() []string {
	return m.registry.Keys()
}

// Registry exposes the registry for introspection.
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

// SetLocator replaces the object graph used by later rescans. Existing
// entries keep their bindings.
func (m *Manager) SetLocator(loc locator.Locator) {
	m.mu.Lock()
	m.loc = loc
	m.mu.Unlock()
	log.Info(log.CatLifecycle, "Console locator replaced")
}

// Locator returns the current locator, possibly nil.
func (m *Manager) Locator() locator.Locator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loc
}

// LastReport returns the report of the most recent build pass.
func (m *Manager) LastReport() registry.Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastReport
}

// Rescan scans declarations and builds them into the registry.
func (m *Manager) Rescan(ctx context.Context) registry.Report {
	_, span := m.tracer.Start(ctx, tracing.SpanBuild)
	defer span.End()

	candidates := m.scanner.Scan()
	loc := m.Locator()
	report := m.registry.Build(candidates, loc, registry.BuildOptions{EvictStale: m.evictStale})

	span.SetAttributes(
		attribute.Int(tracing.AttrBuildCandidates, len(candidates)),
		attribute.Int(tracing.AttrBuildRegistered, len(report.Registered)),
		attribute.Int(tracing.AttrBuildDuplicates, len(report.Duplicates)),
		attribute.Int(tracing.AttrBuildMissing, len(report.MissingInstance)),
	)

	m.mu.Lock()
	m.lastReport = report
	m.mu.Unlock()

	if m.rebuilds != nil {
		m.rebuilds.Publish(pubsub.RebuiltEvent, report)
	}
	return report
}

// LogCommands writes every registered name to the log at info level.
func (m *Manager) LogCommands() {
	names := m.registry.Keys()
	log.Info(log.CatRegistry, "Registered console commands", "count", len(names))
	for _, name := range names {
		log.Info(log.CatRegistry, "Console command", "name", name)
	}
}

func (m *Manager) runAutoexec(ctx context.Context, names []string) {
	for _, name := range names {
		if _, err := m.Execute(ctx, name); err != nil {
			log.ErrorErr(log.CatLifecycle, "Autoexec command failed", err, "name", name)
		}
	}
}
