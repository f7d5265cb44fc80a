package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/particlesim/internal/physics"
	"github.com/san-kum/particlesim/internal/sim"
)

const (
	DefaultCount       = 800
	DefaultWidth       = 800.0
	DefaultHeight      = 600.0
	DefaultDamping     = 0.99
	DefaultDt          = 1.0 / 60
	DefaultDuration    = 10.0
	DefaultGravityY    = 0.5
	DefaultSampleEvery = 1
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Count       int           `yaml:"count"`
	Width       float64       `yaml:"width"`
	Height      float64       `yaml:"height"`
	Damping     float64       `yaml:"damping"`
	Dt          float64       `yaml:"dt"`
	Duration    float64       `yaml:"duration"`
	Seed        int64         `yaml:"seed"`
	SampleEvery int           `yaml:"sample_every"`
	Gravity     GravityConfig `yaml:"gravity"`
	Physics     PhysicsConfig `yaml:"physics"`
	Forces      []sim.Pulse   `yaml:"forces,omitempty"`
}

type GravityConfig struct {
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Mode string  `yaml:"mode"`
}

type PhysicsConfig struct {
	CellSize             float64 `yaml:"cell_size"`
	WallRestitution      float64 `yaml:"wall_restitution"`
	CollisionRestitution float64 `yaml:"collision_restitution"`
	MinRadius            float64 `yaml:"min_radius"`
	MaxRadius            float64 `yaml:"max_radius"`
	MaxSpeed             float64 `yaml:"max_speed"`
}

func DefaultConfig() *Config {
	p := physics.DefaultParams()
	return &Config{
		Count:       DefaultCount,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Damping:     DefaultDamping,
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Seed:        1,
		SampleEvery: DefaultSampleEvery,
		Gravity: GravityConfig{
			Y:    DefaultGravityY,
			Mode: sim.GravityFrame,
		},
		Physics: PhysicsConfig{
			CellSize:             p.CellSize,
			WallRestitution:      p.WallRestitution,
			CollisionRestitution: p.CollisionRestitution,
			MinRadius:            p.MinRadius,
			MaxRadius:            p.MaxRadius,
			MaxSpeed:             p.MaxSpeed,
		},
	}
}

// Load reads a config file. The format is picked from the extension: .gcfg
// and .ini are read as git-config style sections, anything else as YAML.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gcfg", ".ini":
		return loadGcfg(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Count < 0:
		return fmt.Errorf("%w: count %d", ErrInvalid, c.Count)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: world %gx%g", ErrInvalid, c.Width, c.Height)
	case c.Damping <= 0 || c.Damping > 1:
		return fmt.Errorf("%w: damping %g", ErrInvalid, c.Damping)
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt %g", ErrInvalid, c.Dt)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration %g", ErrInvalid, c.Duration)
	case c.Gravity.Mode != "" && c.Gravity.Mode != sim.GravityFrame && c.Gravity.Mode != sim.GravityTime:
		return fmt.Errorf("%w: gravity mode %q", ErrInvalid, c.Gravity.Mode)
	}
	for i, f := range c.Forces {
		if f.Radius <= 0 {
			return fmt.Errorf("%w: force %d radius %g", ErrInvalid, i, f.Radius)
		}
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c *Config) Params() physics.Params {
	return physics.Params{
		CellSize:             c.Physics.CellSize,
		WallRestitution:      c.Physics.WallRestitution,
		CollisionRestitution: c.Physics.CollisionRestitution,
		MinRadius:            c.Physics.MinRadius,
		MaxRadius:            c.Physics.MaxRadius,
		MaxSpeed:             c.Physics.MaxSpeed,
	}
}

// RunConfig converts the file config into the frame loop's settings.
func (c *Config) RunConfig() sim.Config {
	rc := sim.DefaultConfig()
	rc.Dt = c.Dt
	rc.Duration = c.Duration
	rc.Width = c.Width
	rc.Height = c.Height
	rc.GravityX = c.Gravity.X
	rc.GravityY = c.Gravity.Y
	if c.Gravity.Mode != "" {
		rc.GravityMode = c.Gravity.Mode
	}
	if c.SampleEvery > 0 {
		rc.SampleEvery = c.SampleEvery
	}
	rc.Pulses = append([]sim.Pulse(nil), c.Forces...)
	return rc
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Forces = append([]sim.Pulse(nil), c.Forces...)
	return &cp
}
