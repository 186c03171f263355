// Package consoleview is the Bubble Tea front end of the developer console:
// a prompt, a scrolling output pane, name completion and a log overlay.
package consoleview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/devconsole/internal/cachemanager"
	"github.com/zjrosen/devconsole/internal/config"
	"github.com/zjrosen/devconsole/internal/dispatch"
	"github.com/zjrosen/devconsole/internal/keys"
	"github.com/zjrosen/devconsole/internal/log"
	"github.com/zjrosen/devconsole/internal/pubsub"
	"github.com/zjrosen/devconsole/internal/registry"
	"github.com/zjrosen/devconsole/internal/ui/commandpalette"
	"github.com/zjrosen/devconsole/internal/ui/logoverlay"
	"github.com/zjrosen/devconsole/internal/ui/styles"
	"github.com/zjrosen/devconsole/internal/ui/toaster"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	recallKey     = "recall"
)

// Executor runs one command by name.
type Executor func(ctx context.Context, name string) (dispatch.Outcome, error)

// RecallSource lists previously run names, most recent first.
type RecallSource func(ctx context.Context, limit int) ([]string, error)

// Config wires the console view.
type Config struct {
	Execute Executor
	Entries func() []registry.Entry

	// Recall feeds up/down history from a persistent store. Optional.
	Recall      RecallSource
	RecallLimit int
	RecallTTL   time.Duration

	// Recent ranks completions. Optional.
	Recent *cachemanager.RecentCommands

	// Logs mirrors log entries into the output pane when UI.ShowLogs is set.
	Logs *log.LogListener

	// Rebuilds shows a toast for each registry rebuild that changed
	// something. Optional.
	Rebuilds *pubsub.Listener[registry.Report]

	// ToastDuration defaults to toaster.DefaultDuration.
	ToastDuration time.Duration

	// Outcomes keeps the status bar current for every dispatch, including
	// autoexec runs when subscribed before the console is initialized.
	// Optional.
	Outcomes *pubsub.Listener[dispatch.Outcome]

	UI config.UIConfig
}

// Model is the console view state.
type Model struct {
	ctx    context.Context
	cfg    Config
	recall *cachemanager.ReadThroughCache[string, []string, int]

	input    textinput.Model
	output   []string
	viewport viewport.Model
	help     help.Model

	palette     commandpalette.Model
	paletteOpen bool
	logs        logoverlay.Model
	toast       toaster.Model

	session   []string // names run this session, oldest first
	history   []string // recall list, most recent first
	recallIdx int      // -1 when not recalling
	draft     string

	last   *dispatch.Outcome
	runs   int // outcomes seen on the Outcomes listener
	width  int
	height int
}

// New creates the console view.
func New(ctx context.Context, cfg Config) Model {
	if cfg.UI.Prompt == "" {
		cfg.UI.Prompt = "> "
	}
	if cfg.UI.OutputLines <= 0 {
		cfg.UI.OutputLines = 200
	}
	if cfg.RecallLimit <= 0 {
		cfg.RecallLimit = 50
	}
	if cfg.ToastDuration <= 0 {
		cfg.ToastDuration = toaster.DefaultDuration
	}
	if cfg.RecallTTL <= 0 {
		cfg.RecallTTL = cachemanager.DefaultExpiration
	}

	ti := textinput.New()
	ti.Prompt = styles.PromptStyle.Render(cfg.UI.Prompt)
	ti.Placeholder = "command name (tab to complete)"
	ti.Focus()

	m := Model{
		ctx:       ctx,
		cfg:       cfg,
		input:     ti,
		help:      help.New(),
		logs:      logoverlay.New(),
		toast:     toaster.New(),
		recallIdx: -1,
	}
	if cfg.Recall != nil {
		m.recall = cachemanager.NewReadThroughCache[string, []string, int](
			cachemanager.NewInMemoryCacheManager[string, []string]("console-recall", cfg.RecallTTL, cachemanager.DefaultCleanupInterval),
			func(ctx context.Context, limit int) ([]string, error) { return cfg.Recall(ctx, limit) },
			false,
		)
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

// Init starts the cursor blink and, when mirroring, the log listener.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.mirrorLogs() {
		cmds = append(cmds, m.cfg.Logs.Listen())
	}
	if m.cfg.Rebuilds != nil {
		cmds = append(cmds, m.cfg.Rebuilds.Listen())
	}
	if m.cfg.Outcomes != nil {
		cmds = append(cmds, m.cfg.Outcomes.Listen())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.logs.SetSize(msg.Width, msg.Height)
		m.palette = m.palette.SetSize(msg.Width, msg.Height)
		return m, nil

	case log.LogEvent:
		if m.logs.Visible() {
			m.logs.Refresh()
		}
		if m.mirrorLogs() {
			m.appendOutput(styles.LevelStyle(levelOf(msg.Payload)).Render(msg.Payload))
			return m, m.cfg.Logs.Listen()
		}
		return m, nil

	case pubsub.Event[registry.Report]:
		var cmds []tea.Cmd
		if text, kind := toaster.FromReport(msg.Payload); text != "" {
			var cmd tea.Cmd
			m.toast, cmd = m.toast.Show(text, kind, m.cfg.ToastDuration)
			cmds = append(cmds, cmd)
		}
		if m.cfg.Rebuilds != nil {
			cmds = append(cmds, m.cfg.Rebuilds.Listen())
		}
		return m, tea.Batch(cmds...)

	case pubsub.Event[dispatch.Outcome]:
		o := msg.Payload
		m.last = &o
		m.runs++
		if m.cfg.Outcomes != nil {
			return m, m.cfg.Outcomes.Listen()
		}
		return m, nil

	case toaster.DismissMsg:
		m.toast = m.toast.Update(msg)
		return m, nil

	case commandpalette.SelectMsg:
		m.paletteOpen = false
		m.input.SetValue(msg.Name)
		m.input.CursorEnd()
		return m, nil

	case commandpalette.CancelMsg:
		m.paletteOpen = false
		return m, nil

	case logoverlay.CloseMsg:
		return m, nil

	case tea.KeyMsg:
		if m.logs.Visible() {
			var cmd tea.Cmd
			m.logs, cmd = m.logs.Update(msg)
			return m, cmd
		}
		if m.paletteOpen {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Console.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Console.Execute):
		m.submit()
		return m, nil

	case key.Matches(msg, keys.Console.Complete):
		m.complete()
		return m, nil

	case key.Matches(msg, keys.Console.HistoryPrev):
		m.recallStep(1)
		return m, nil

	case key.Matches(msg, keys.Console.HistoryNext):
		m.recallStep(-1)
		return m, nil

	case key.Matches(msg, keys.Console.ScrollUp):
		m.viewport.ScrollUp(max(m.viewport.Height/2, 1))
		return m, nil

	case key.Matches(msg, keys.Console.ScrollDown):
		m.viewport.ScrollDown(max(m.viewport.Height/2, 1))
		return m, nil

	case key.Matches(msg, keys.Console.ClearOutput):
		m.output = nil
		m.viewport.SetContent("")
		return m, nil

	case key.Matches(msg, keys.Console.ToggleLogs):
		m.logs.Toggle()
		return m, nil

	case key.Matches(msg, keys.Console.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.recallIdx = -1
	return m, cmd
}

// submit runs the prompt text as a command name and prints the result.
// Commands run on the update goroutine, like every other caller of Execute.
func (m *Model) submit() {
	name := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	m.recallIdx = -1
	m.draft = ""
	if name == "" {
		return
	}

	m.appendOutput(styles.EchoStyle.Render(m.cfg.UI.Prompt + name))
	if m.cfg.Execute == nil {
		m.appendOutput(styles.ErrorStyle.Render("no console attached"))
		return
	}

	outcome, err := m.cfg.Execute(m.ctx, name)
	m.last = &outcome
	m.session = append(m.session, name)
	m.history = nil
	if m.recall != nil {
		m.recall.Invalidate(m.ctx, recallKey)
	}

	if err != nil {
		log.ErrorErr(log.CatUI, "Console command failed", err, "name", name)
		m.appendOutput(styles.ErrorStyle.Render("✗ " + err.Error()))
		return
	}
	if m.cfg.Recent != nil {
		m.cfg.Recent.Touch(m.ctx, name)
	}
	m.appendOutput(styles.SuccessStyle.Render(fmt.Sprintf("✓ %s (%s)", name, outcome.Duration.Round(time.Microsecond))))
}

// complete fills a unique prefix match, otherwise opens the palette.
func (m *Model) complete() {
	items := m.items()
	query := strings.TrimSpace(m.input.Value())
	if query != "" {
		var match []commandpalette.Item
		for _, item := range items {
			if strings.HasPrefix(item.Name, query) {
				match = append(match, item)
			}
		}
		if len(match) == 1 {
			m.input.SetValue(match[0].Name)
			m.input.CursorEnd()
			return
		}
	}
	m.palette = commandpalette.New(commandpalette.Config{
		Items:           items,
		Query:           query,
		MaxVisibleItems: m.cfg.UI.PaletteLimit,
	}).SetSize(m.width, m.height)
	m.paletteOpen = true
}

func (m Model) items() []commandpalette.Item {
	if m.cfg.Entries == nil {
		return nil
	}
	entries := m.cfg.Entries()
	var order []string
	recent := make(map[string]bool)
	if m.cfg.Recent != nil {
		for _, name := range m.cfg.Recent.Names(m.ctx) {
			recent[name] = true
		}
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name
		}
		order = m.cfg.Recent.Rank(m.ctx, names)
	}
	return commandpalette.ItemsFromEntries(entries, order, recent)
}

// recallStep moves through history; dir 1 is older, -1 is newer.
func (m *Model) recallStep(dir int) {
	if m.history == nil {
		m.history = m.loadHistory()
	}
	if len(m.history) == 0 {
		return
	}
	if m.recallIdx == -1 {
		if dir < 0 {
			return
		}
		m.draft = m.input.Value()
	}
	next := m.recallIdx + dir
	switch {
	case next < 0:
		m.recallIdx = -1
		m.input.SetValue(m.draft)
	case next >= len(m.history):
		return
	default:
		m.recallIdx = next
		m.input.SetValue(m.history[next])
	}
	m.input.CursorEnd()
}

// loadHistory merges this session's names with stored ones, most recent
// first, without repeats.
func (m Model) loadHistory() []string {
	var stored []string
	if m.recall != nil {
		names, err := m.recall.Get(m.ctx, recallKey, m.cfg.RecallLimit, m.cfg.RecallTTL)
		if err != nil {
			log.ErrorErr(log.CatUI, "Failed to load command history", err)
		}
		stored = names
	}
	seen := make(map[string]bool)
	out := make([]string, 0, len(m.session)+len(stored))
	for i := len(m.session) - 1; i >= 0; i-- {
		if name := m.session[i]; !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, name := range stored {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func (m *Model) appendOutput(line string) {
	m.output = append(m.output, line)
	if over := len(m.output) - m.cfg.UI.OutputLines; over > 0 {
		m.output = m.output[over:]
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(strings.Join(m.output, "\n"))
	if atBottom || len(m.output) <= m.viewport.Height {
		m.viewport.GotoBottom()
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.input.Width = max(width-lipgloss.Width(m.input.Prompt)-1, 1)

	chrome := 1 + lipgloss.Height(m.help.View(keys.Console))
	if m.cfg.UI.ShowStatusBar {
		chrome++
	}
	h := max(height-chrome, 1)
	if m.viewport.Width != width || m.viewport.Height != h {
		m.viewport = viewport.New(width, h)
		m.viewport.SetContent(strings.Join(m.output, "\n"))
		m.viewport.GotoBottom()
	}
}

func (m Model) mirrorLogs() bool {
	return m.cfg.UI.ShowLogs && m.cfg.Logs != nil
}

// View renders the console.
func (m Model) View() string {
	parts := []string{m.viewport.View(), m.input.View()}
	if m.cfg.UI.ShowStatusBar {
		parts = append(parts, m.statusBar())
	}
	parts = append(parts, m.help.View(keys.Console))
	view := strings.Join(parts, "\n")

	if m.toast.Visible() {
		view = m.toast.Overlay(view, m.width, m.height)
	}
	if m.paletteOpen {
		view = m.palette.Overlay(view)
	}
	if m.logs.Visible() {
		view = m.logs.Overlay(view)
	}
	return view
}

func (m Model) statusBar() string {
	count := 0
	if m.cfg.Entries != nil {
		count = len(m.cfg.Entries())
	}
	status := fmt.Sprintf("%d commands", count)
	if m.runs > 0 {
		status += fmt.Sprintf(" • %d runs", m.runs)
	}
	if m.last != nil {
		status += fmt.Sprintf(" • last: %s %s", m.last.Name, m.last.Status)
	}
	return styles.StatusBarStyle.Render(status)
}

// Output returns the output pane lines.
func (m Model) Output() []string { return m.output }

// Value returns the prompt text.
func (m Model) Value() string { return m.input.Value() }

// PaletteOpen reports whether completion is showing.
func (m Model) PaletteOpen() bool { return m.paletteOpen }

// LogsVisible reports whether the log overlay is showing.
func (m Model) LogsVisible() bool { return m.logs.Visible() }

func levelOf(entry string) string {
	level, _ := logoverlay.ParseEntry(entry)
	return level
}
