// Package styles contains Lip Gloss style definitions for the console.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BBBBBB"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // hints, log mirror

	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#D4A017", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	StatusInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#8C8C8C"}

	PromptColor = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#54A0FF"}

	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	PromptStyle  = lipgloss.NewStyle().Foreground(PromptColor).Bold(true)
	EchoStyle    = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	SuccessStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(TextMutedColor)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)
)

// LevelStyle colors a formatted log entry by its [LEVEL] tag.
func LevelStyle(level string) lipgloss.Style {
	switch level {
	case "ERROR":
		return lipgloss.NewStyle().Foreground(StatusErrorColor)
	case "WARN":
		return lipgloss.NewStyle().Foreground(StatusWarningColor)
	case "INFO":
		return lipgloss.NewStyle().Foreground(StatusInfoColor)
	case "DEBUG":
		return MutedStyle
	default:
		return lipgloss.NewStyle().Foreground(TextPrimaryColor)
	}
}
