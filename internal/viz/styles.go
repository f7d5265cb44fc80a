package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// canvas padding in cells; mouse coordinates are offset by it.
const (
	padTop  = 1
	padLeft = 2
)

func (t Theme) header() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1)
}

func (t Theme) status(running bool) lipgloss.Style {
	if running {
		return lipgloss.NewStyle().Bold(true).Foreground(t.Running)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(t.Paused)
}

// Bar renders fraction (clamped to [0,1]) as a fixed-width bar.
func Bar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
