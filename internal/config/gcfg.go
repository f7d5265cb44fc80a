package config

import (
	"fmt"
	"sort"

	"gopkg.in/gcfg.v1"

	"github.com/san-kum/particlesim/internal/sim"
)

// ExampleGcfgFile documents the INI layout accepted by Load.
const ExampleGcfgFile = `[world]
count = 800
width = 800
height = 600
damping = 0.99

[run]
dt = 0.0166667
duration = 10
seed = 1
sample-every = 1

[gravity]
x = 0
y = 0.5
mode = frame

[physics]
cell-size = 20
wall-restitution = 0.8
collision-restitution = 0.9
min-radius = 3
max-radius = 8
max-speed = 25

# Each force section fires once at time "at".
[force "blast"]
at = 1.5
x = 400
y = 300
radius = 150
strength = 40`

type worldSection struct {
	Count   int
	Width   float64
	Height  float64
	Damping float64
}

type runSection struct {
	Dt          float64
	Duration    float64
	Seed        int64
	SampleEvery int `gcfg:"sample-every"`
}

type gravitySection struct {
	X    float64
	Y    float64
	Mode string
}

type physicsSection struct {
	CellSize             float64 `gcfg:"cell-size"`
	WallRestitution      float64 `gcfg:"wall-restitution"`
	CollisionRestitution float64 `gcfg:"collision-restitution"`
	MinRadius            float64 `gcfg:"min-radius"`
	MaxRadius            float64 `gcfg:"max-radius"`
	MaxSpeed             float64 `gcfg:"max-speed"`
}

type forceSection struct {
	At       float64
	X        float64
	Y        float64
	Radius   float64
	Strength float64
}

type gcfgWrapper struct {
	World   worldSection
	Run     runSection
	Gravity gravitySection
	Physics physicsSection
	Force   map[string]*forceSection
}

func defaultWrapper() *gcfgWrapper {
	d := DefaultConfig()
	return &gcfgWrapper{
		World:   worldSection{Count: d.Count, Width: d.Width, Height: d.Height, Damping: d.Damping},
		Run:     runSection{Dt: d.Dt, Duration: d.Duration, Seed: d.Seed, SampleEvery: d.SampleEvery},
		Gravity: gravitySection{X: d.Gravity.X, Y: d.Gravity.Y, Mode: d.Gravity.Mode},
		Physics: physicsSection{
			CellSize:             d.Physics.CellSize,
			WallRestitution:      d.Physics.WallRestitution,
			CollisionRestitution: d.Physics.CollisionRestitution,
			MinRadius:            d.Physics.MinRadius,
			MaxRadius:            d.Physics.MaxRadius,
			MaxSpeed:             d.Physics.MaxSpeed,
		},
	}
}

func loadGcfg(path string) (*Config, error) {
	w := defaultWrapper()
	if err := gcfg.ReadFileInto(w, path); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return w.config(), nil
}

func loadGcfgString(s string) (*Config, error) {
	w := defaultWrapper()
	if err := gcfg.ReadStringInto(w, s); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return w.config(), nil
}

func (w *gcfgWrapper) config() *Config {
	cfg := &Config{
		Count:       w.World.Count,
		Width:       w.World.Width,
		Height:      w.World.Height,
		Damping:     w.World.Damping,
		Dt:          w.Run.Dt,
		Duration:    w.Run.Duration,
		Seed:        w.Run.Seed,
		SampleEvery: w.Run.SampleEvery,
		Gravity:     GravityConfig(w.Gravity),
		Physics:     PhysicsConfig(w.Physics),
	}

	names := make([]string, 0, len(w.Force))
	for name := range w.Force {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := w.Force[name]
		cfg.Forces = append(cfg.Forces, sim.Pulse{At: f.At, X: f.X, Y: f.Y, Radius: f.Radius, Strength: f.Strength})
	}
	return cfg
}
