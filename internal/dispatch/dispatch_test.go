package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/devconsole/internal/command"
	"github.com/zjrosen/devconsole/internal/locator"
	"github.com/zjrosen/devconsole/internal/log"
	"github.com/zjrosen/devconsole/internal/pubsub"
	"github.com/zjrosen/devconsole/internal/registry"
)

type spawnController struct {
	spawned int
}

func (c *spawnController) SpawnEnemy() { c.spawned++ }

type fixture struct {
	catalog  *command.Catalog
	scene    *locator.Scene
	registry *registry.Registry
	rescans  int
	healed   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cleanup, err := log.Init("", 200)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	f := &fixture{
		catalog:  command.NewCatalog(),
		scene:    locator.NewScene("arena"),
		registry: registry.New(),
	}
	require.NoError(t, f.catalog.Add(command.FuncDeclaration("heal", func() { f.healed++ })))
	require.NoError(t, f.catalog.Add(command.MethodDeclaration("spawnEnemy", (*spawnController).SpawnEnemy)))
	return f
}

func (f *fixture) build() {
	f.registry.Build(command.NewScanner(f.catalog).Scan(), f.scene, registry.BuildOptions{})
}

func (f *fixture) dispatcher(cfg Config) *Dispatcher {
	cfg.Registry = f.registry
	cfg.Rescan = func(context.Context) {
		f.rescans++
		f.build()
	}
	return New(cfg)
}

func logged(substr string) bool {
	for _, entry := range log.GetRecentLogs(200) {
		if strings.Contains(entry, substr) {
			return true
		}
	}
	return false
}

func TestExecute_StaticAndInstanceCommands(t *testing.T) {
	f := newFixture(t)
	ctrl := &spawnController{}
	f.scene.Attach(ctrl)
	f.build()
	d := f.dispatcher(Config{})

	out, err := d.Execute(context.Background(), "heal")
	require.NoError(t, err)
	require.Equal(t, StatusExecuted, out.Status)
	require.True(t, out.Static)
	require.False(t, out.Rescanned)
	require.Equal(t, 1, f.healed)

	out, err = d.Execute(context.Background(), "spawnEnemy")
	require.NoError(t, err)
	require.False(t, out.Static)
	require.Equal(t, 1, ctrl.spawned)

	require.Equal(t, 0, f.rescans)
	require.True(t, logged("Command executed name=heal"))
}

func TestExecute_UnknownRescansExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.build()
	d := f.dispatcher(Config{})

	out, err := d.Execute(context.Background(), "doesNotExist")

	require.ErrorIs(t, err, ErrCommandNotFound)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "doesNotExist", nf.Name)
	require.Equal(t, StatusNotFound, out.Status)
	require.True(t, out.Rescanned)
	require.Equal(t, 1, f.rescans)
	require.True(t, logged("[WARN] [dispatch] Command not found, rescanning name=doesNotExist"))
	require.True(t, logged("[ERROR] [dispatch] Command not found name=doesNotExist"))
}

func TestExecute_RetrySucceedsWhenInstanceAppears(t *testing.T) {
	f := newFixture(t)
	f.build()
	_, ok := f.registry.Lookup("spawnEnemy")
	require.False(t, ok, "no controller yet")

	ctrl := &spawnController{}
	f.scene.Attach(ctrl)
	d := f.dispatcher(Config{})

	out, err := d.Execute(context.Background(), "spawnEnemy")

	require.NoError(t, err)
	require.True(t, out.Rescanned)
	require.Equal(t, 1, f.rescans)
	require.Equal(t, 1, ctrl.spawned)
}

func TestExecute_RetrySucceedsForLateDeclaration(t *testing.T) {
	f := newFixture(t)
	f.build()
	d := f.dispatcher(Config{})

	ran := false
	require.NoError(t, f.catalog.Add(command.FuncDeclaration("late", func() { ran = true })))

	_, err := d.Execute(context.Background(), "late")

	require.NoError(t, err)
	require.True(t, ran)
}

func TestExecute_NotFoundDoesNotPanic(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher(Config{})

	require.NotPanics(t, func() {
		_, err := d.Execute(context.Background(), "still-unknown")
		require.Error(t, err)
	})
}

func TestExecute_CommandPanicPropagates(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.catalog.Add(command.FuncDeclaration("boom", func() { panic("kaboom") })))
	f.build()
	d := f.dispatcher(Config{})

	require.PanicsWithValue(t, "kaboom", func() {
		_, _ = d.Execute(context.Background(), "boom")
	})
}

func TestExecute_NotActiveLogsAndContinues(t *testing.T) {
	f := newFixture(t)
	f.build()
	d := f.dispatcher(Config{Active: func() bool { return false }})

	_, err := d.Execute(context.Background(), "heal")

	require.NoError(t, err)
	require.Equal(t, 1, f.healed)
	require.True(t, logged("Dispatching before console initialization"))
}

func TestExecute_PublishesOutcome(t *testing.T) {
	f := newFixture(t)
	f.build()
	broker := pubsub.NewBroker[Outcome]()
	defer broker.Close()
	ch := broker.Subscribe(context.Background())
	d := f.dispatcher(Config{Events: broker})

	_, _ = d.Execute(context.Background(), "heal")

	select {
	case event := <-ch:
		require.Equal(t, pubsub.DispatchedEvent, event.Type)
		require.Equal(t, "heal", event.Payload.Name)
		require.Equal(t, StatusExecuted, event.Payload.Status)
	case <-time.After(time.Second):
		require.Fail(t, "no outcome published")
	}
}

type recorderFunc func(ctx context.Context, o Outcome) error

func (f recorderFunc) Record(ctx context.Context, o Outcome) error { return f(ctx, o) }

func TestExecute_RecordsOutcome(t *testing.T) {
	f := newFixture(t)
	f.build()
	var got []Outcome
	d := f.dispatcher(Config{Recorder: recorderFunc(func(_ context.Context, o Outcome) error {
		got = append(got, o)
		return nil
	})})

	_, _ = d.Execute(context.Background(), "heal")
	_, _ = d.Execute(context.Background(), "nope")

	require.Len(t, got, 2)
	require.Equal(t, StatusExecuted, got[0].Status)
	require.Equal(t, StatusNotFound, got[1].Status)
}

func TestExecute_RecorderErrorIsLogged(t *testing.T) {
	f := newFixture(t)
	f.build()
	d := f.dispatcher(Config{Recorder: recorderFunc(func(context.Context, Outcome) error {
		return errors.New("database is locked")
	})})

	_, err := d.Execute(context.Background(), "heal")

	require.NoError(t, err)
	require.True(t, logged("Failed to record command execution name=heal error=database is locked"))
}

func TestNew_Defaults(t *testing.T) {
	d := New(Config{})

	_, err := d.Execute(context.Background(), "anything")

	require.ErrorIs(t, err, ErrCommandNotFound)
}
