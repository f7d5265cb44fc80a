package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/physics"
	"github.com/san-kum/particlesim/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// NewWorld validates cfg and returns an initialized simulation seeded with
// seed. The population is drawn from the seeded generator, so equal seeds
// give equal worlds.
func NewWorld(cfg *config.Config, seed int64) (*physics.Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	world, err := physics.New(cfg.Params(), rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	if err := world.Initialize(cfg.Count, cfg.Width, cfg.Height, cfg.Damping); err != nil {
		return nil, err
	}
	return world, nil
}

func (e *Experiment) Setup(metrics []sim.Metric) error {
	world, err := NewWorld(e.cfg, e.cfg.Seed)
	if err != nil {
		return err
	}
	e.simulator = sim.New(world)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.RunConfig())
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}

// Factory builds ensemble members from cfg, each with the registry's default
// metrics and its own seed.
func Factory(cfg *config.Config, reg *Registry) sim.Factory {
	return func(seed int64) (*sim.Simulator, error) {
		world, err := NewWorld(cfg, seed)
		if err != nil {
			return nil, err
		}
		s := sim.New(world)
		for _, m := range reg.DefaultMetrics(cfg) {
			s.AddMetric(m)
		}
		return s, nil
	}
}
