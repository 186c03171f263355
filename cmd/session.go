package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/zjrosen/devconsole/internal/config"
	"github.com/zjrosen/devconsole/internal/console"
	"github.com/zjrosen/devconsole/internal/demo"
	"github.com/zjrosen/devconsole/internal/dispatch"
	"github.com/zjrosen/devconsole/internal/flags"
	"github.com/zjrosen/devconsole/internal/history"
	"github.com/zjrosen/devconsole/internal/log"
	"github.com/zjrosen/devconsole/internal/pubsub"
	"github.com/zjrosen/devconsole/internal/registry"
	"github.com/zjrosen/devconsole/internal/tracing"
)

const defaultDebugLogPath = "debug.log"

// session is one initialized console with its supporting services.
type session struct {
	Manager  *console.Manager
	Store    history.Store
	Flags    *flags.Registry
	Tracing  *tracing.Provider
	Outcomes *pubsub.Broker[dispatch.Outcome]
	Rebuilds *pubsub.Broker[registry.Report]

	// Subscribed before the first build, so they also carry the initial
	// rebuild and autoexec outcomes. Nil unless requested.
	OutcomeEvents *pubsub.Listener[dispatch.Outcome]
	RebuildEvents *pubsub.Listener[registry.Report]

	closers []func()
}

// sessionOptions selects the event subscriptions a caller consumes.
type sessionOptions struct {
	ListenOutcomes bool
	ListenRebuilds bool
}

// startSession sets up logging, flags, tracing and history, then
// initializes the console over the demo scene.
func startSession(ctx context.Context, cfg config.Config, opts sessionOptions) (*session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &session{}
	if err := s.initLogging(cfg); err != nil {
		return nil, err
	}

	s.Flags = flags.New(cfg.Flags)

	if cfg.Tracing.Enabled {
		provider, err := tracing.NewProvider(cfg.TracingProviderConfig())
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("initializing tracing: %w", err)
		}
		s.Tracing = provider
	} else {
		s.Tracing = tracing.NewNoopProvider()
	}
	s.closers = append(s.closers, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Tracing.Shutdown(shutdownCtx); err != nil {
			log.ErrorErr(log.CatTrace, "Failed to shut down tracing", err)
		}
	})

	s.Store = openHistory(cfg, s.Flags)
	s.closers = append(s.closers, func() {
		if err := s.Store.Close(); err != nil {
			log.ErrorErr(log.CatHistory, "Failed to close history store", err)
		}
	})

	s.Outcomes = pubsub.NewBroker[dispatch.Outcome]()
	s.Rebuilds = pubsub.NewBroker[registry.Report]()
	s.closers = append(s.closers, s.Outcomes.Close, s.Rebuilds.Close)
	if opts.ListenOutcomes {
		s.OutcomeEvents = pubsub.NewListener[dispatch.Outcome](ctx, s.Outcomes)
	}
	if opts.ListenRebuilds {
		s.RebuildEvents = pubsub.NewListener[registry.Report](ctx, s.Rebuilds)
	}

	m, err := console.Initialize(console.Options{
		Locator:    demo.NewScene(),
		Tracer:     s.Tracing.Tracer(),
		Events:     s.Outcomes,
		Rebuilds:   s.Rebuilds,
		Recorder:   s.Store,
		EvictStale: s.Flags.Enabled(flags.FlagEvictStale),
		Autoexec:   cfg.Autoexec,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("initializing console: %w", err)
	}
	s.Manager = m
	s.closers = append(s.closers, console.Shutdown)

	log.Info(log.CatLifecycle, "Session started",
		"commands", m.Registry().Len(), "tracing", s.Tracing.Enabled(), "scene", demo.SceneName)
	return s, nil
}

// initLogging keeps entries in memory always and also writes a file in
// debug mode.
func (s *session) initLogging(cfg config.Config) error {
	path := cfg.LogPath
	debug := cfg.Debug || os.Getenv("DEVCONSOLE_DEBUG") != ""
	if debug && path == "" {
		path = defaultDebugLogPath
	}
	if !debug {
		path = ""
	}

	cleanup, err := log.Init(path, cfg.LogBuffer)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	s.closers = append(s.closers, cleanup)

	level, _ := log.ParseLevel(cfg.LogLevel)
	if debug {
		level = log.LevelDebug
	}
	log.SetMinLevel(level)
	log.Info(log.CatConfig, "Logging initialized", "debug", debug, "path", path, "level", level)
	return nil
}

// openHistory opens the configured store when persistence is on. It falls
// back to memory rather than failing startup.
func openHistory(cfg config.Config, f *flags.Registry) history.Store {
	if !f.Enabled(flags.FlagHistoryPersistence) {
		log.Info(log.CatHistory, "History persistence disabled, using memory store")
		return history.NewMemoryStore()
	}
	store, err := history.Open(cfg.History.Driver, cfg.HistoryPath())
	if err != nil {
		log.ErrorErr(log.CatHistory, "Failed to open history store, using memory store", err,
			"driver", cfg.History.Driver, "path", cfg.HistoryPath())
		return history.NewMemoryStore()
	}
	return store
}

// Close releases resources in reverse order of acquisition.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
