package consoleview

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/devconsole/internal/cachemanager"
	"github.com/zjrosen/devconsole/internal/command"
	"github.com/zjrosen/devconsole/internal/config"
	"github.com/zjrosen/devconsole/internal/dispatch"
	"github.com/zjrosen/devconsole/internal/log"
	"github.com/zjrosen/devconsole/internal/pubsub"
	"github.com/zjrosen/devconsole/internal/registry"
	"github.com/zjrosen/devconsole/internal/ui/toaster"
)

func TestMain(m *testing.M) {
	cleanup, err := log.Init("", 200)
	if err != nil {
		panic(err)
	}
	code := m.Run()
	cleanup()
	os.Exit(code)
}

type fixture struct {
	reg *registry.Registry
	ran []string
}

func newFixture() *fixture {
	f := &fixture{reg: registry.New()}
	for _, name := range []string{"heal", "healAll", "spawnEnemy"} {
		f.reg.Register(registry.Entry{
			Name:          name,
			Static:        name != "spawnEnemy",
			DeclaringType: "*demo.SpawnController",
			Action:        command.Func(func() { f.ran = append(f.ran, name) }),
		})
	}
	return f
}

func (f *fixture) config() Config {
	d := dispatch.New(dispatch.Config{Registry: f.reg})
	return Config{
		Execute: d.Execute,
		Entries: f.reg.Entries,
		UI:      config.Defaults().UI,
	}
}

func update(t *testing.T, m tea.Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m.(Model)
}

func typed(s string) tea.Msg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestSubmit_RunsCommandAndPrintsResult(t *testing.T) {
	f := newFixture()
	m := update(t, New(context.Background(), f.config()), typed("heal"), enter)

	require.Equal(t, []string{"heal"}, f.ran)
	require.Empty(t, m.Value())
	out := strings.Join(m.Output(), "\n")
	require.Contains(t, out, "> heal")
	require.Contains(t, out, "✓ heal")
	require.Contains(t, m.View(), "last: heal executed")
}

func TestSubmit_UnknownNameShowsError(t *testing.T) {
	f := newFixture()
	m := update(t, New(context.Background(), f.config()), typed("doesNotExist"), enter)

	require.Empty(t, f.ran)
	require.Contains(t, strings.Join(m.Output(), "\n"), `✗ command "doesNotExist" not found`)
	require.Contains(t, m.View(), "last: doesNotExist not_found")
}

func TestSubmit_BlankLineIgnored(t *testing.T) {
	f := newFixture()
	m := update(t, New(context.Background(), f.config()), typed("   "), enter)

	require.Empty(t, m.Output())
	require.Empty(t, f.ran)
}

func TestSubmit_WithoutExecutor(t *testing.T) {
	m := update(t, New(context.Background(), Config{}), typed("heal"), enter)
	require.Contains(t, strings.Join(m.Output(), "\n"), "no console attached")
}

func TestOutputIsCapped(t *testing.T) {
	f := newFixture()
	cfg := f.config()
	cfg.UI.OutputLines = 4
	m := New(context.Background(), cfg)

	for range 5 {
		m = update(t, m, typed("heal"), enter)
	}

	require.Len(t, m.Output(), 4)
	require.Len(t, f.ran, 5)
}

func TestClearOutput(t *testing.T) {
	f := newFixture()
	m := update(t, New(context.Background(), f.config()), typed("heal"), enter)
	require.NotEmpty(t, m.Output())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.Empty(t, m.Output())
}

func TestComplete_UniquePrefixFillsPrompt(t *testing.T) {
	f := newFixture()
	m := update(t, New(context.Background(), f.config()), typed("spa"), tab)

	require.False(t, m.PaletteOpen())
	require.Equal(t, "spawnEnemy", m.Value())
}

func TestComplete_AmbiguousOpensPaletteAndSelectFills(t *testing.T) {
	f := newFixture()
	m := update(t, New(context.Background(), f.config()), typed("hea"), tab)
	require.True(t, m.PaletteOpen())
	require.Contains(t, m.View(), "healAll")

	var cmd tea.Cmd
	var next tea.Model
	next, _ = m.Update(down)
	next, cmd = next.Update(enter)
	require.NotNil(t, cmd)
	m = update(t, next, cmd())

	require.False(t, m.PaletteOpen())
	require.Equal(t, "healAll", m.Value())
	require.Empty(t, f.ran, "selection fills the prompt without running")
}

func TestComplete_EscClosesPalette(t *testing.T) {
	f := newFixture()
	m := update(t, New(context.Background(), f.config()), tab)
	require.True(t, m.PaletteOpen())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = update(t, next, cmd())
	require.False(t, m.PaletteOpen())
}

func TestComplete_RecentRankedFirst(t *testing.T) {
	f := newFixture()
	cfg := f.config()
	cfg.Recent = cachemanager.NewRecentCommands(time.Minute)
	m := update(t, New(context.Background(), cfg), typed("spawnEnemy"), enter, tab)

	require.True(t, m.PaletteOpen())
	items := m.palette.FilteredItems()
	require.Equal(t, "spawnEnemy", items[0].Name)
	require.True(t, items[0].Recent)
}

func TestRecall_SessionThenStored(t *testing.T) {
	f := newFixture()
	cfg := f.config()
	loads := 0
	cfg.Recall = func(_ context.Context, limit int) ([]string, error) {
		loads++
		require.Equal(t, 50, limit)
		return []string{"healAll", "heal"}, nil
	}
	m := update(t, New(context.Background(), cfg), typed("spawnEnemy"), enter, typed("he"))

	m = update(t, m, up)
	require.Equal(t, "spawnEnemy", m.Value())
	m = update(t, m, up)
	require.Equal(t, "healAll", m.Value())
	m = update(t, m, up)
	require.Equal(t, "heal", m.Value())
	m = update(t, m, up)
	require.Equal(t, "heal", m.Value(), "stops at the oldest entry")

	m = update(t, m, down, down, down)
	require.Equal(t, "he", m.Value(), "walking past the newest restores the draft")
	require.Equal(t, 1, loads)

	m = update(t, m, enter, up)
	require.Equal(t, 2, loads, "a run invalidates the cached history")
}

func TestRecall_LoadErrorKeepsSession(t *testing.T) {
	f := newFixture()
	cfg := f.config()
	cfg.Recall = func(context.Context, int) ([]string, error) {
		return nil, errors.New("disk gone")
	}
	m := update(t, New(context.Background(), cfg), typed("heal"), enter, up)

	require.Equal(t, "heal", m.Value())
	require.Contains(t, strings.Join(log.GetRecentLogs(20), "\n"), "Failed to load command history")
}

func TestToggleLogs(t *testing.T) {
	f := newFixture()
	m := update(t, New(context.Background(), f.config()), tea.WindowSizeMsg{Width: 100, Height: 30})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	require.True(t, m.LogsVisible())
	require.Contains(t, m.View(), "Logs")

	m = update(t, m, typed("heal"))
	require.Empty(t, m.Value(), "keys go to the overlay while it is open")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = update(t, next, cmd())
	require.False(t, m.LogsVisible())
}

func TestLogMirror(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := f.config()
	cfg.Logs = log.NewListener(ctx)
	require.NotNil(t, cfg.Logs)
	m := New(ctx, cfg)

	m = update(t, m, typed("heal"), enter)

	cmd := cfg.Logs.Listen()
	msg := cmd()
	require.IsType(t, log.LogEvent{}, msg)
	next, again := m.Update(msg)
	require.NotNil(t, again)
	m = next.(Model)
	require.Contains(t, strings.Join(m.Output(), "\n"), "[dispatch]")
}

func TestLogMirrorDisabled(t *testing.T) {
	f := newFixture()
	cfg := f.config()
	cfg.UI.ShowLogs = false
	m := New(context.Background(), cfg)

	next, cmd := m.Update(log.LogEvent{Payload: "2025-01-02T10:00:00 [INFO] [ui] hi"})

	require.Nil(t, cmd)
	require.Empty(t, next.(Model).Output())
}

func TestRebuildShowsToast(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broker := pubsub.NewBroker[registry.Report]()
	defer broker.Close()
	cfg := f.config()
	cfg.Rebuilds = pubsub.NewListener[registry.Report](ctx, broker)
	cfg.ToastDuration = time.Millisecond
	m := New(ctx, cfg)

	broker.Publish(pubsub.RebuiltEvent, registry.Report{Registered: []string{"openPortal"}})
	next, cmd := m.Update(cfg.Rebuilds.Listen()())
	require.NotNil(t, cmd)
	m = next.(Model)
	require.Contains(t, m.View(), "Rescan: +1 registered (openPortal)")

	cancel() // unblocks the re-listen inside the batch
	m = update(t, m, toasterDismiss(t, cmd))
	require.NotContains(t, m.View(), "Rescan:")
}

// toasterDismiss digs the dismissal out of the batch returned with a toast.
func toasterDismiss(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(toaster.DismissMsg); ok {
			return msg
		}
	}
	require.Fail(t, "no dismissal scheduled")
	return nil
}

func TestOutcomeEventsUpdateStatusBar(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broker := pubsub.NewBroker[dispatch.Outcome]()
	defer broker.Close()
	cfg := f.config()
	cfg.Outcomes = pubsub.NewListener[dispatch.Outcome](ctx, broker)
	m := New(ctx, cfg)

	broker.Publish(pubsub.DispatchedEvent, dispatch.Outcome{Name: "spawnEnemy", Status: dispatch.StatusExecuted})
	next, cmd := m.Update(cfg.Outcomes.Listen()())

	require.NotNil(t, cmd)
	view := next.(Model).View()
	require.Contains(t, view, "1 runs")
	require.Contains(t, view, "last: spawnEnemy executed")
}

func TestHelpToggle(t *testing.T) {
	f := newFixture()
	m := update(t, New(context.Background(), f.config()), tea.WindowSizeMsg{Width: 120, Height: 30})
	short := m.viewport.Height

	m = update(t, m, tea.KeyMsg{Type: tea.KeyF1})
	require.Less(t, m.viewport.Height, short)
	require.Contains(t, m.View(), "clear output")
}

func TestProgram_RunAndQuit(t *testing.T) {
	f := newFixture()
	tm := teatest.NewTestModel(t, New(context.Background(), f.config()), teatest.WithInitialTermSize(80, 24))

	tm.Type("heal")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("✓ heal"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	final := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second)).(Model)

	require.Equal(t, []string{"heal"}, f.ran)
	require.Len(t, final.Output(), 2)
}
