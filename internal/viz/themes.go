package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the particle canvas and the stats panel.
type Theme struct {
	Name      string
	Particles lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Running   lipgloss.Color
	Paused    lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Particles: lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ff00ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
		Running:   lipgloss.Color("#00ff88"),
		Paused:    lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Particles: lipgloss.Color("#00ff00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Running:   lipgloss.Color("#88ff88"),
		Paused:    lipgloss.Color("#ffff00"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Particles: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Running:   lipgloss.Color("#00ff88"),
		Paused:    lipgloss.Color("#ffcc00"),
	}

	Themes = []Theme{ThemeCyberpunk, ThemeRetroGreen, ThemeOcean}
)

// GetTheme returns the named theme, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// ThemeNames lists the built-in themes in cycle order.
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// nextTheme cycles through Themes in order.
func nextTheme(current string) Theme {
	for i, t := range Themes {
		if t.Name == current {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
