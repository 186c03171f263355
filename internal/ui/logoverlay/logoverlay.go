// Package logoverlay shows the in-memory log buffer in a box over the
// console, filtered by level and category.
package logoverlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/devconsole/internal/keys"
	"github.com/zjrosen/devconsole/internal/log"
	"github.com/zjrosen/devconsole/internal/ui/overlay"
	"github.com/zjrosen/devconsole/internal/ui/styles"
)

const (
	viewportMaxHeight = 25
	viewportMinHeight = 5
	boxMaxWidth       = 160
	boxMinWidth       = 40
	bufferReadLimit   = 10000
)

// categories cycled by the category filter; "" shows all.
var categories = []log.Category{
	"",
	log.CatRegistry,
	log.CatScan,
	log.CatDispatch,
	log.CatLifecycle,
	log.CatHistory,
	log.CatConfig,
	log.CatUI,
	log.CatCache,
	log.CatTrace,
	log.CatDemo,
}

// CloseMsg is sent when the overlay closes itself.
type CloseMsg struct{}

// Model is the log overlay state.
type Model struct {
	visible  bool
	minLevel log.Level
	category int // index into categories
	width    int
	height   int
	viewport viewport.Model
}

// New creates a hidden overlay showing every level.
func New() Model {
	return Model{minLevel: log.LevelDebug}
}

// Update handles keys while visible.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.LogOverlay.Close):
			m.visible = false
			return m, func() tea.Msg { return CloseMsg{} }
		case key.Matches(msg, keys.Common.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.LogOverlay.Clear):
			log.ClearBuffer()
		case key.Matches(msg, keys.LogOverlay.LevelDebug):
			m.minLevel = log.LevelDebug
		case key.Matches(msg, keys.LogOverlay.LevelInfo):
			m.minLevel = log.LevelInfo
		case key.Matches(msg, keys.LogOverlay.LevelWarn):
			m.minLevel = log.LevelWarn
		case key.Matches(msg, keys.LogOverlay.LevelError):
			m.minLevel = log.LevelError
		case key.Matches(msg, keys.LogOverlay.NextCategory):
			m.category = (m.category + 1) % len(categories)
		case key.Matches(msg, keys.LogOverlay.Down):
			m.viewport.ScrollDown(1)
			return m, nil
		case key.Matches(msg, keys.LogOverlay.Up):
			m.viewport.ScrollUp(1)
			return m, nil
		case key.Matches(msg, keys.LogOverlay.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, keys.LogOverlay.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		default:
			return m, nil
		}
		m.Refresh()

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}

	return m, nil
}

// View renders the box, or "" when hidden.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	width := m.boxWidth()
	divider := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", width))
	title := lipgloss.NewStyle().Bold(true).Foreground(styles.OverlayTitleColor).PaddingLeft(1).Render("Logs")
	if cat := categories[m.category]; cat != "" {
		title += styles.MutedStyle.Render(" [" + string(cat) + "]")
	}

	body := strings.Join([]string{title, divider, m.viewport.View(), divider, m.filterHint()}, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width).
		Render(body)
}

// Overlay draws the box centered over bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

// Visible reports whether the overlay is shown.
func (m Model) Visible() bool { return m.visible }

// Toggle flips visibility.
func (m *Model) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.Refresh()
	}
}

// Show makes the overlay visible.
func (m *Model) Show() {
	m.visible = true
	m.Refresh()
}

// Hide makes the overlay invisible.
func (m *Model) Hide() { m.visible = false }

// SetSize records the screen size and rebuilds the viewport.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.Refresh()
}

// Refresh reloads entries from the log buffer, keeping the view pinned to
// the bottom when it already was.
func (m *Model) Refresh() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// header 2, footer 2, borders 2
	h := max(min(viewportMaxHeight, m.height-6), viewportMinHeight)
	w := m.boxWidth() - 2
	atBottom := m.viewport.Height == 0 || m.viewport.AtBottom()
	if m.viewport.Width != w || m.viewport.Height != h {
		m.viewport = viewport.New(w, h)
	}
	m.viewport.SetContent(m.content(w))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// Filtered returns the buffered entries passing the current filters.
func (m Model) Filtered() []string {
	var out []string
	for _, entry := range log.GetRecentLogs(bufferReadLimit) {
		level, cat := ParseEntry(entry)
		if lv, err := log.ParseLevel(level); err == nil && lv < m.minLevel {
			continue
		}
		if want := categories[m.category]; want != "" && cat != string(want) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func (m Model) content(width int) string {
	entries := m.Filtered()
	if len(entries) == 0 {
		return styles.MutedStyle.Italic(true).Render("No logs to display")
	}
	lines := make([]string, len(entries))
	for i, entry := range entries {
		if ansi.StringWidth(entry) > width {
			entry = ansi.Truncate(entry, width-3, "...")
		}
		level, _ := ParseEntry(entry)
		lines[i] = styles.LevelStyle(level).Render(entry)
	}
	return strings.Join(lines, "\n")
}

func (m Model) filterHint() string {
	hint := styles.MutedStyle
	active := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(true)
	parts := []string{hint.Render("[c] Clear"), hint.Render("[f] Category")}
	for _, lv := range []struct {
		label string
		level log.Level
	}{
		{"[d] Debug", log.LevelDebug},
		{"[i] Info", log.LevelInfo},
		{"[w] Warn", log.LevelWarn},
		{"[e] Error", log.LevelError},
	} {
		if m.minLevel == lv.level {
			parts = append(parts, active.Render(lv.label))
		} else {
			parts = append(parts, hint.Render(lv.label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

// ParseEntry extracts the level and category tags from a formatted entry
// such as "2025-01-02T10:00:00 [WARN] [registry] msg". Missing tags are "".
func ParseEntry(entry string) (level, category string) {
	rest := entry
	var tags []string
	for len(tags) < 2 {
		open := strings.IndexByte(rest, '[')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], ']')
		if end < 0 {
			break
		}
		tags = append(tags, rest[open+1:open+end])
		rest = rest[open+end+1:]
	}
	if len(tags) > 0 {
		level = tags[0]
	}
	if len(tags) > 1 {
		category = tags[1]
	}
	return level, category
}
