// Package commandpalette is the completion picker opened from the console
// prompt. It lists registered command names, recently run ones first.
package commandpalette

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/devconsole/internal/keys"
	"github.com/zjrosen/devconsole/internal/registry"
	"github.com/zjrosen/devconsole/internal/ui/overlay"
	"github.com/zjrosen/devconsole/internal/ui/styles"
)

const (
	defaultMaxVisible = 8
	defaultWidth      = 48
)

// Item is one completion candidate.
type Item struct {
	Name   string
	Detail string // declaring type or "static"
	Recent bool
}

// ItemsFromEntries builds items from registry entries. order, when not
// nil, lists names in display order (e.g. recent first); entries missing
// from order follow in their input order.
func ItemsFromEntries(entries []registry.Entry, order []string, recent map[string]bool) []Item {
	byName := make(map[string]registry.Entry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}
	items := make([]Item, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	add := func(e registry.Entry) {
		if seen[e.Name] {
			return
		}
		seen[e.Name] = true
		detail := e.DeclaringType
		if e.Static {
			detail = "static"
		}
		items = append(items, Item{Name: e.Name, Detail: detail, Recent: recent[e.Name]})
	}
	for _, name := range order {
		if e, ok := byName[name]; ok {
			add(e)
		}
	}
	for _, e := range entries {
		add(e)
	}
	return items
}

// Config defines palette contents.
type Config struct {
	Items           []Item
	Query           string // initial filter, usually the prompt text
	Width           int    // default 48
	MaxVisibleItems int    // default 8
}

// SelectMsg is sent when a name is chosen.
type SelectMsg struct {
	Name string
}

// CancelMsg is sent on Esc.
type CancelMsg struct{}

// Model holds the palette state.
type Model struct {
	config         Config
	textInput      textinput.Model
	filtered       []Item
	cursor         int
	scrollOffset   int
	viewportWidth  int
	viewportHeight int
}

// New creates a palette filtered by cfg.Query.
func New(cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = "command name"
	ti.Prompt = ""
	ti.SetValue(cfg.Query)
	ti.CursorEnd()
	ti.Focus()

	m := Model{config: cfg, textInput: ti}
	return m.updateFilter()
}

// Update handles messages for the palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyDown, msg.Type == tea.KeyTab, key.Matches(msg, keys.Component.Next):
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				m = m.ensureCursorVisible()
			}
			return m, nil

		case msg.Type == tea.KeyUp, msg.Type == tea.KeyShiftTab, key.Matches(msg, keys.Component.Prev):
			if m.cursor > 0 {
				m.cursor--
				m = m.ensureCursorVisible()
			}
			return m, nil

		case key.Matches(msg, keys.Common.Enter):
			return m, m.selectCmd()

		case key.Matches(msg, keys.Common.Escape), key.Matches(msg, keys.Common.Quit):
			return m, func() tea.Msg { return CancelMsg{} }

		case msg.Type == tea.KeyCtrlU:
			m.textInput.SetValue("")
			return m.updateFilter(), nil

		default:
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			return m.updateFilter(), cmd
		}

	case tea.WindowSizeMsg:
		m.viewportWidth = msg.Width
		m.viewportHeight = msg.Height
	}

	return m, nil
}

// Filter ranks items for query: prefix matches, then substring matches,
// then detail-only matches. Matching is case-insensitive and each group
// keeps its input order.
func Filter(items []Item, query string) []Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}
	var prefix, contains, detail []Item
	for _, item := range items {
		name := strings.ToLower(item.Name)
		switch {
		case strings.HasPrefix(name, query):
			prefix = append(prefix, item)
		case strings.Contains(name, query):
			contains = append(contains, item)
		case strings.Contains(strings.ToLower(item.Detail), query):
			detail = append(detail, item)
		}
	}
	out := append(prefix, contains...)
	return append(out, detail...)
}

func (m Model) updateFilter() Model {
	m.filtered = Filter(m.config.Items, m.textInput.Value())
	if m.cursor >= len(m.filtered) {
		m.cursor = 0
		m.scrollOffset = 0
	}
	return m
}

// maxVisibleItems shrinks the configured count when the screen is short.
func (m Model) maxVisibleItems() int {
	target := m.config.MaxVisibleItems
	if target <= 0 {
		target = defaultMaxVisible
	}
	if m.viewportHeight > 0 {
		// border 2, search + divider 2, footer 1, prompt line 1
		if fit := max(m.viewportHeight-6, 1); fit < target {
			return fit
		}
	}
	return target
}

func (m Model) ensureCursorVisible() Model {
	maxVisible := m.maxVisibleItems()
	if m.cursor >= m.scrollOffset+maxVisible {
		m.scrollOffset = m.cursor - maxVisible + 1
	}
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	return m
}

func (m Model) selectCmd() tea.Cmd {
	if len(m.filtered) == 0 {
		return nil
	}
	name := m.filtered[m.cursor].Name
	return func() tea.Msg { return SelectMsg{Name: name} }
}

// SetSize sets the screen dimensions used by Overlay.
func (m Model) SetSize(width, height int) Model {
	m.viewportWidth = width
	m.viewportHeight = height
	return m
}

// Selected returns the highlighted item.
func (m Model) Selected() (Item, bool) {
	if m.cursor >= 0 && m.cursor < len(m.filtered) {
		return m.filtered[m.cursor], true
	}
	return Item{}, false
}

// FilteredItems returns the items matching the current query.
func (m Model) FilteredItems() []Item {
	return m.filtered
}

// Query returns the current filter text.
func (m Model) Query() string {
	return m.textInput.Value()
}

// View renders the palette box.
func (m Model) View() string {
	width := m.config.Width
	if width <= 0 {
		width = defaultWidth
	}
	divider := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", width))

	m.textInput.Width = width - 4
	var content strings.Builder
	content.WriteString(styles.MutedStyle.Render(" > ") + m.textInput.View())
	content.WriteString("\n")
	content.WriteString(divider)

	maxVisible := m.maxVisibleItems()
	if len(m.filtered) == 0 {
		content.WriteString("\n")
		content.WriteString(styles.MutedStyle.Italic(true).Render(" No matching commands"))
	} else {
		end := min(m.scrollOffset+maxVisible, len(m.filtered))
		for i := m.scrollOffset; i < end; i++ {
			content.WriteString("\n")
			content.WriteString(m.renderItem(m.filtered[i], i == m.cursor, width))
		}
	}

	content.WriteString("\n")
	content.WriteString(m.footer())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width).
		Render(content.String())
}

func (m Model) footer() string {
	total := len(m.filtered)
	if total == 0 {
		return styles.MutedStyle.Render(" ↑/↓ • Enter • Esc")
	}
	return styles.MutedStyle.Render(" ↑/↓ • Enter • Esc") +
		styles.MutedStyle.Render(fmt.Sprintf("  %d/%d", m.cursor+1, total))
}

func (m Model) renderItem(item Item, selected bool, width int) string {
	indicator := " "
	nameStyle := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)
	if selected {
		indicator = styles.SelectionIndicatorStyle.Render(">")
		nameStyle = nameStyle.Bold(true)
	}

	name := item.Name
	if item.Recent {
		name = "• " + name
	}
	detail := item.Detail
	avail := width - 2
	if dw := ansi.StringWidth(detail); dw > 0 && ansi.StringWidth(name)+dw+2 > avail {
		detail = ""
	}
	if ansi.StringWidth(name) > avail {
		name = ansi.Truncate(name, avail, "...")
	}

	line := indicator + nameStyle.Render(name)
	if detail != "" {
		pad := max(avail-ansi.StringWidth(name)-ansi.StringWidth(detail), 1)
		line += strings.Repeat(" ", pad) + styles.MutedStyle.Render(detail)
	}
	return line
}

// Overlay draws the palette just above the prompt line of background.
func (m Model) Overlay(background string) string {
	return overlay.Place(overlay.Config{
		Width:    m.viewportWidth,
		Height:   m.viewportHeight,
		Position: overlay.BottomLeft,
		PadX:     1,
		PadY:     1,
	}, m.View(), background)
}
