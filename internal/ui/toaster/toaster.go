// Package toaster shows short-lived notices over the console, such as a
// registry rebuild after a rescan.
package toaster

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/devconsole/internal/registry"
	"github.com/zjrosen/devconsole/internal/ui/overlay"
	"github.com/zjrosen/devconsole/internal/ui/styles"
)

// DefaultDuration is how long a toast stays up.
const DefaultDuration = 3 * time.Second

// Kind picks the border color and marker.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindWarn
	KindError
)

// DismissMsg hides the toast it was scheduled for. Toasts shown later
// carry a newer generation and ignore it.
type DismissMsg struct {
	generation int
}

// Model holds the current toast.
type Model struct {
	message    string
	kind       Kind
	visible    bool
	generation int
}

// New creates an empty toaster.
func New() Model {
	return Model{}
}

// Show replaces the current toast and schedules its dismissal after d.
func (m Model) Show(message string, kind Kind, d time.Duration) (Model, tea.Cmd) {
	m.message = message
	m.kind = kind
	m.visible = message != ""
	m.generation++
	gen := m.generation
	return m, tea.Tick(d, func(time.Time) tea.Msg { return DismissMsg{generation: gen} })
}

// Update hides the toast when its dismissal arrives.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.generation == m.generation {
		m.visible = false
		m.message = ""
	}
	return m
}

// Visible reports whether a toast is showing.
func (m Model) Visible() bool {
	return m.visible
}

// View renders the toast box, or "" when hidden.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	color, marker := styles.StatusInfoColor, "i"
	switch m.kind {
	case KindSuccess:
		color, marker = styles.StatusSuccessColor, "✓"
	case KindWarn:
		color, marker = styles.StatusWarningColor, "!"
	case KindError:
		color, marker = styles.StatusErrorColor, "✗"
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Render(lipgloss.NewStyle().Foreground(color).Render(marker) + " " + m.message)
}

// Overlay draws the toast centered at the top of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.Top,
		PadY:     1,
	}, m.View(), bg)
}

// FromReport summarizes a rebuild. A rebuild that changed nothing yields
// an empty message.
func FromReport(r registry.Report) (string, Kind) {
	var parts []string
	if n := len(r.Registered); n > 0 {
		parts = append(parts, fmt.Sprintf("+%d registered (%s)", n, strings.Join(r.Registered, ", ")))
	}
	if n := len(r.Evicted); n > 0 {
		parts = append(parts, fmt.Sprintf("%d evicted", n))
	}
	if n := len(r.MissingInstance) + len(r.BindFailed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unresolved", n))
	}
	if len(parts) == 0 {
		return "", KindInfo
	}

	kind := KindSuccess
	switch {
	case len(r.BindFailed) > 0:
		kind = KindError
	case len(r.MissingInstance) > 0 || len(r.Evicted) > 0:
		kind = KindWarn
	}
	return "Rescan: " + strings.Join(parts, ", "), kind
}
