// pkg/healthcheck/styles.go

package healthcheck

import "github.com/charmbracelet/lipgloss"

// Shared palette for status rendering.
var (
	colorSuccess = lipgloss.Color("#00ff00")
	colorWarning = lipgloss.Color("#ffaa00")
	colorError   = lipgloss.Color("#ff0000")
	colorMuted   = lipgloss.Color("#666666")
	colorBorder  = lipgloss.Color("#3d5a80")
	colorHeader  = lipgloss.Color("#00ffff")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleError   = lipgloss.NewStyle().Foreground(colorError)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
)

// State classifies a component row for coloring.
type State int

const (
	StateOK State = iota
	StateWarn
	StateBad
	StateInfo
)

func (s State) icon() string {
	switch s {
	case StateOK:
		return "✅"
	case StateWarn:
		return "⚠️"
	case StateBad:
		return "❌"
	default:
		return "·"
	}
}

func (s State) style() lipgloss.Style {
	switch s {
	case StateOK:
		return styleSuccess
	case StateWarn:
		return styleWarning
	case StateBad:
		return styleError
	default:
		return styleMuted
	}
}
