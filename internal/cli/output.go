package cli

import "github.com/charmbracelet/lipgloss"

// ANSI colors for command output outside the dashboard, so they follow the
// user's terminal palette.
const (
	colorSuccess lipgloss.Color = "2" // Green
	colorError   lipgloss.Color = "1" // Red
	colorWarning lipgloss.Color = "3" // Yellow
	colorMuted   lipgloss.Color = "8" // Gray (bright black)
)

// Status symbols
const (
	symbolPass = "✓"
	symbolWarn = "⚠"
	symbolFail = "✗"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle  = lipgloss.NewStyle().Bold(true)
)
