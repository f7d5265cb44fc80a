package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/physics"
	"github.com/san-kum/particlesim/internal/sim"
)

const (
	cols            = 80
	rows            = 24
	historyCapacity = 300

	clickRadius   = 120.0
	clickStrength = 40.0
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives one simulation from the bubbletea event loop. All physics
// calls happen inside Update, so the world is only touched by one goroutine.
type Model struct {
	world     *physics.Simulation
	cfg       *config.Config
	canvas    *Canvas
	theme     Theme
	t         float64
	running   bool
	gravityOn bool
	energy    []float64
	peak      float64
	lastEvent string
	err       error
	showHelp  bool
}

func NewModel(world *physics.Simulation, cfg *config.Config) Model {
	return Model{
		world:     world,
		cfg:       cfg,
		canvas:    NewCanvas(cols, rows),
		theme:     Themes[0],
		running:   true,
		gravityOn: cfg.Gravity.X != 0 || cfg.Gravity.Y != 0,
		energy:    make([]float64, 0, historyCapacity),
	}
}

// Run opens the viewer in the alternate screen with mouse reporting on.
func Run(world *physics.Simulation, cfg *config.Config, theme Theme) error {
	m := NewModel(world, cfg)
	m.theme = theme
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "g":
			m.gravityOn = !m.gravityOn
		case "b":
			w, h := m.world.Bounds()
			m.push(w/2, h/2, clickStrength*2)
		case "t":
			m.theme = nextTheme(m.theme.Name)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			break
		}
		wx, wy, ok := m.ScreenToWorld(msg.X, msg.Y)
		if !ok {
			break
		}
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.push(wx, wy, clickStrength)
		case tea.MouseButtonRight:
			m.push(wx, wy, -clickStrength)
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	if m.gravityOn {
		if m.cfg.Gravity.Mode == sim.GravityTime {
			m.world.ApplyGravityDt(m.cfg.Gravity.X, m.cfg.Gravity.Y, m.cfg.Dt)
		} else {
			m.world.ApplyGravity(m.cfg.Gravity.X, m.cfg.Gravity.Y)
		}
	}

	w, h := m.world.Bounds()
	if err := m.world.Step(m.cfg.Dt, w, h); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.t += m.cfg.Dt

	ke := m.world.View().KineticEnergy()
	if ke > m.peak {
		m.peak = ke
	}
	m.energy = append(m.energy, ke)
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

func (m *Model) push(x, y, strength float64) {
	if err := m.world.ApplyForce(x, y, clickRadius, strength); err != nil {
		m.err = err
		return
	}
	verb := "push"
	if strength < 0 {
		verb = "pull"
	}
	m.lastEvent = fmt.Sprintf("%s at (%.0f, %.0f)", verb, x, y)
}

func (m *Model) reset() {
	w, h := m.world.Bounds()
	if err := m.world.Initialize(m.cfg.Count, w, h, m.world.Damping()); err != nil {
		m.err = err
		return
	}
	m.t = 0
	m.peak = 0
	m.err = nil
	m.energy = m.energy[:0]
	m.lastEvent = "reset"
}

// ScreenToWorld maps a terminal cell to the world point under its centre.
func (m Model) ScreenToWorld(x, y int) (wx, wy float64, ok bool) {
	col, row := x-padLeft, y-padTop
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		return 0, 0, false
	}
	w, h := m.world.Bounds()
	wx = (float64(col) + 0.5) / float64(m.canvas.Width) * w
	wy = (float64(row) + 0.5) / float64(m.canvas.Height) * h
	return wx, wy, true
}

func (m *Model) draw() {
	m.canvas.Clear()
	w, h := m.world.Bounds()
	dw, dh := m.canvas.Dots()
	sx, sy := float64(dw)/w, float64(dh)/h

	v := m.world.View()
	for i := 0; i < v.Len(); i++ {
		x, y := v.Position(i)
		m.canvas.Disc(x*sx, y*sy, v.Radius(i)*sx)
	}

	// gravity indicator in the top-left corner
	if m.gravityOn {
		gx, gy := m.cfg.Gravity.X, m.cfg.Gravity.Y
		if gx != 0 || gy != 0 {
			norm := 6 / (abs(gx) + abs(gy))
			m.canvas.Line(2, 2, 2+int(gx*norm), 2+int(gy*norm))
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Foreground(m.theme.Particles).Render(m.canvas.String())

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = "HALTED"
	case !m.running:
		status = "PAUSED"
	}

	var s strings.Builder
	s.WriteString(m.theme.header().Render("PARTICLES") + "\n")
	s.WriteString(m.theme.status(m.running && m.err == nil).Render(status) + "\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	stats := m.world.LastStats()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.t))
	row("Particles", fmt.Sprintf("%d", m.world.Len()))
	row("Contacts", fmt.Sprintf("%d", stats.Contacts))
	row("Wall hits", fmt.Sprintf("%d", stats.WallHits))
	row("Off-grid", fmt.Sprintf("%d", stats.Dropped))

	gravity := "off"
	if m.gravityOn {
		gravity = fmt.Sprintf("(%.2f, %.2f) %s", m.cfg.Gravity.X, m.cfg.Gravity.Y, m.cfg.Gravity.Mode)
	}
	row("Gravity", gravity)

	if len(m.energy) > 0 && m.peak > 0 {
		row("Energy", Bar(m.energy[len(m.energy)-1]/m.peak, 20))
	}
	if m.lastEvent != "" {
		row("Last", m.lastEvent)
	}
	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset G:Gravity\nB:Blast T:Theme ?:Help Q:Quit\nClick: push  Right-click: pull"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Respawn particles        ║
║  G        - Toggle gravity           ║
║  B        - Blast from the centre    ║
║  T        - Cycle themes             ║
║  Mouse    - Left push, right pull    ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
