// Package dispatch executes registered console commands by name.
//
// A miss triggers exactly one rescan followed by one more lookup; a name
// that is still unknown is reported and the call returns. Panics raised by a
// command body are not recovered: they reach the caller of Execute.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/devconsole/internal/log"
	"github.com/zjrosen/devconsole/internal/pubsub"
	"github.com/zjrosen/devconsole/internal/registry"
	"github.com/zjrosen/devconsole/internal/tracing"
)

var (
	// ErrCommandNotFound is returned when a name is unknown even after a rescan.
	ErrCommandNotFound = errors.New("command not found")

	// ErrNotInitialized is reported when dispatching before the console is active.
	ErrNotInitialized = errors.New("console not initialized")
)

// NotFoundError reports a name that stayed unknown after the rescan.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("command %q not found", e.Name)
}

// Unwrap lets errors.Is match ErrCommandNotFound.
func (e *NotFoundError) Unwrap() error { return ErrCommandNotFound }

// Status is the result of one dispatch.
type Status string

const (
	StatusExecuted Status = "executed"
	StatusNotFound Status = "not_found"
)

// Outcome describes one Execute call.
type Outcome struct {
	Name      string
	Status    Status
	Static    bool
	Rescanned bool
	At        time.Time
	Duration  time.Duration
}

// Recorder persists outcomes, e.g. to the history store.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

// Config wires a Dispatcher.
type Config struct {
	Registry *registry.Registry

	// Rescan re-runs discovery and rebuilds Registry. Required.
	Rescan func(ctx context.Context)

	// Active reports whether the console lifecycle is active. Nil means
	// always active.
	Active func() bool

	Tracer   trace.Tracer
	Events   pubsub.Publisher[Outcome]
	Recorder Recorder
}

// Dispatcher looks commands up and runs them on the calling goroutine.
type Dispatcher struct {
	registry *registry.Registry
	rescan   func(ctx context.Context)
	active   func() bool
	tracer   trace.Tracer
	events   pubsub.Publisher[Outcome]
	recorder Recorder
	now      func() time.Time
}

// New creates a Dispatcher.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		registry: cfg.Registry,
		rescan:   cfg.Rescan,
		active:   cfg.Active,
		tracer:   cfg.Tracer,
		events:   cfg.Events,
		recorder: cfg.Recorder,
		now:      time.Now,
	}
	if d.registry == nil {
		d.registry = registry.New()
	}
	if d.rescan == nil {
		d.rescan = func(context.Context) {}
	}
	if d.tracer == nil {
		d.tracer = noop.NewTracerProvider().Tracer("noop")
	}
	return d
}

// Execute runs the command registered under name.
//
// When the console is not active the problem is logged and dispatch goes on
// anyway. An unknown name costs one rescan; if the name is still unknown the
// returned error is a *NotFoundError wrapping ErrCommandNotFound.
func (d *Dispatcher) Execute(ctx context.Context, name string) (Outcome, error) {
	ctx, span := d.tracer.Start(ctx, tracing.SpanDispatch,
		trace.WithAttributes(attribute.String(tracing.AttrCommandName, name)))
	defer span.End()

	if d.active != nil && !d.active() {
		log.ErrorErr(log.CatDispatch, "Dispatching before console initialization", ErrNotInitialized, "name", name)
	}

	start := d.now()
	outcome := Outcome{Name: name, At: start}

	entry, ok := d.registry.Lookup(name)
	if !ok {
		log.Warn(log.CatDispatch, "Command not found, rescanning", "name", name)
		d.runRescan(ctx)
		outcome.Rescanned = true
		entry, ok = d.registry.Lookup(name)
	}
	span.SetAttributes(attribute.Bool(tracing.AttrCommandRescanned, outcome.Rescanned))

	if !ok {
		outcome.Status = StatusNotFound
		err := &NotFoundError{Name: name}
		log.Error(log.CatDispatch, "Command not found", "name", name)
		span.SetAttributes(attribute.String(tracing.AttrCommandOutcome, string(outcome.Status)))
		span.SetStatus(codes.Error, err.Error())
		d.finish(ctx, outcome)
		return outcome, err
	}

	outcome.Static = entry.Static
	span.SetAttributes(attribute.Bool(tracing.AttrCommandStatic, entry.Static))

	entry.Action.Invoke()

	outcome.Status = StatusExecuted
	outcome.Duration = d.now().Sub(start)
	log.Info(log.CatDispatch, "Command executed", "name", name, "duration", outcome.Duration)
	span.SetAttributes(attribute.String(tracing.AttrCommandOutcome, string(outcome.Status)))
	span.SetStatus(codes.Ok, "")
	d.finish(ctx, outcome)
	return outcome, nil
}

func (d *Dispatcher) runRescan(ctx context.Context) {
	ctx, span := d.tracer.Start(ctx, tracing.SpanRescan)
	defer span.End()
	d.rescan(ctx)
}

func (d *Dispatcher) finish(ctx context.Context, o Outcome) {
	if d.events != nil {
		d.events.Publish(pubsub.DispatchedEvent, o)
	}
	if d.recorder != nil {
		if err := d.recorder.Record(ctx, o); err != nil {
			log.ErrorErr(log.CatHistory, "Failed to record command execution", err, "name", o.Name)
		}
	}
}
