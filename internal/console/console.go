// Package console owns the process-wide command console: one Manager that
// scans declarations, builds the registry and dispatches commands by name.
//
// Typical host wiring:
//
//	mgr, err := console.Initialize(console.Options{Locator: scene})
//	...
//	_, err = console.Execute(ctx, "heal")
//
// Initialize is guarded: a second call keeps the first Manager and returns
// ErrAlreadyInitialized. Shutdown resets the lifecycle for process teardown
// and tests.
package console

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/devconsole/internal/command"
	"github.com/zjrosen/devconsole/internal/dispatch"
	"github.com/zjrosen/devconsole/internal/locator"
	"github.com/zjrosen/devconsole/internal/log"
	"github.com/zjrosen/devconsole/internal/pubsub"
	"github.com/zjrosen/devconsole/internal/registry"
)

var (
	// ErrAlreadyInitialized is returned by a second Initialize.
	ErrAlreadyInitialized = errors.New("console already initialized")

	// ErrNotInitialized is reported when the console is used before Initialize.
	ErrNotInitialized = dispatch.ErrNotInitialized
)

// State is the lifecycle state of the process-wide console.
type State int

const (
	Uninitialized State = iota
	Active
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// Options configures Initialize. Zero values fall back to the process-wide
// catalog and registry.
type Options struct {
	Scanner  command.Scanner
	Locator  locator.Locator
	Registry *registry.Registry

	Tracer   trace.Tracer
	Events   pubsub.Publisher[dispatch.Outcome]
	Rebuilds pubsub.Publisher[registry.Report]
	Recorder dispatch.Recorder

	// EvictStale is the evict-stale feature flag.
	EvictStale bool

	// Autoexec names run once, in order, after the first build.
	Autoexec []string
}

var (
	mu       sync.Mutex
	instance *Manager
	state    = Uninitialized

	// defaultRegistry outlives Shutdown, like any other package-level table.
	defaultRegistry = registry.New()
)

// Initialize creates the console Manager, marks it Active and runs the first
// scan. A second call while Active logs a warning and returns the existing
// Manager with ErrAlreadyInitialized.
func Initialize(opts Options) (*Manager, error) {
	mu.Lock()
	if instance != nil {
		existing := instance
		mu.Unlock()
		log.Warn(log.CatLifecycle, "Console already initialized, keeping existing instance")
		return existing, ErrAlreadyInitialized
	}

	m := newManager(opts)
	instance = m
	state = Active
	mu.Unlock()

	// The scanner, locator and autoexec commands may call back into this
	// package, so none of them run under mu.
	m.Rescan(context.Background())
	log.Info(log.CatLifecycle, "Console initialized", "commands", m.registry.Len())

	m.runAutoexec(context.Background(), opts.Autoexec)
	return m, nil
}

// Instance returns the active Manager. Before Initialize it logs
// ErrNotInitialized and returns nil.
func Instance() *Manager {
	m := current()
	if m == nil {
		log.ErrorErr(log.CatLifecycle, "Console accessed before initialization", ErrNotInitialized)
	}
	return m
}

// CurrentState reports the lifecycle state.
func CurrentState() State {
	mu.Lock()
	defer mu.Unlock()
	return state
}

// Shutdown returns the lifecycle to Uninitialized. The process-wide registry
// keeps its entries.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		return
	}
	instance = nil
	state = Uninitialized
	log.Info(log.CatLifecycle, "Console shut down")
}

// Execute runs name on the active Manager. Without one it reports
// ErrNotInitialized and dispatches best-effort against the process-wide
// registry and the default catalog; instance commands cannot resolve then.
func Execute(ctx context.Context, name string) (dispatch.Outcome, error) {
	if m := current(); m != nil {
		return m.Execute(ctx, name)
	}
	d := dispatch.New(dispatch.Config{
		Registry: defaultRegistry,
		Rescan: func(context.Context) {
			defaultRegistry.Build(command.NewScanner(nil).Scan(), nil, registry.BuildOptions{})
		},
		Active: func() bool { return false },
	})
	return d.Execute(ctx, name)
}

// ListCommandNames returns the registered names, sorted. Ordering carries
// no meaning beyond readability.
func ListCommandNames() []string {
	if m := current(); m != nil {
		return m.ListCommandNames()
	}
	return defaultRegistry.Keys()
}

func current() *Manager {
	mu.Lock()
	defer mu.Unlock()
	return instance
}
