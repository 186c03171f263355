// Package overlay composites a foreground box over a rendered background
// without clearing the rest of the screen.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position anchors the foreground.
type Position int

const (
	Center Position = iota
	Top
	Bottom
	// BottomLeft anchors above the prompt line, PadX columns in.
	BottomLeft
)

// Config controls placement.
type Config struct {
	Width    int
	Height   int
	Position Position
	PadX     int // used by BottomLeft
	PadY     int // used by Top, Bottom and BottomLeft
}

// Place draws fg over bg. Both may contain ANSI styling; cells of bg that
// fg does not cover keep their styling.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, strings.Repeat(" ", cfg.Width))
	}

	x, y := origin(cfg, lipgloss.Width(fg), len(fgLines))
	for i, line := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = splice(bgLines[row], line, x)
	}
	return strings.Join(bgLines, "\n")
}

// splice replaces the cells of bg starting at column x with fg.
func splice(bg, fg string, x int) string {
	left := ansi.Truncate(bg, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	var right string
	if end := x + ansi.StringWidth(fg); end < ansi.StringWidth(bg) {
		right = ansi.TruncateLeft(bg, end, "")
	}
	return left + fg + right
}

func origin(cfg Config, w, h int) (x, y int) {
	centerX := (cfg.Width - w) / 2
	switch cfg.Position {
	case Top:
		x, y = centerX, cfg.PadY
	case Bottom:
		x, y = centerX, cfg.Height-h-cfg.PadY
	case BottomLeft:
		x, y = cfg.PadX, cfg.Height-h-cfg.PadY
	default:
		x, y = centerX, (cfg.Height-h)/2
	}
	return max(x, 0), max(y, 0)
}
