package config

import (
	"sort"

	"github.com/san-kum/particlesim/internal/sim"
)

var Presets = map[string]*Config{
	// A sparse cloud drifting without gravity.
	"gas": preset(func(c *Config) {
		c.Count = 400
		c.Gravity.Y = 0
		c.Damping = 1.0
		c.Physics.CollisionRestitution = 1.0
		c.Physics.WallRestitution = 1.0
	}),
	"rain": preset(func(c *Config) {
		c.Count = 1200
		c.Gravity.Y = 0.3
		c.Physics.MinRadius = 2
		c.Physics.MaxRadius = 4
		c.Physics.CellSize = 10
		c.Physics.MaxSpeed = 5
	}),
	// Settled pile hit by a scripted explosion halfway through.
	"blast": preset(func(c *Config) {
		c.Count = 600
		c.Duration = 12
		c.Forces = []sim.Pulse{
			{At: 6, X: DefaultWidth / 2, Y: DefaultHeight - 50, Radius: 200, Strength: 60},
		}
	}),
	"dense": preset(func(c *Config) {
		c.Count = 3000
		c.Width = 1200
		c.Height = 900
		c.Damping = 0.98
		c.Physics.MinRadius = 3
		c.Physics.MaxRadius = 5
		c.Physics.CellSize = 10
	}),
}

func preset(mod func(*Config)) *Config {
	c := DefaultConfig()
	mod(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
