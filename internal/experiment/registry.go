package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/metrics"
	"github.com/san-kum/particlesim/internal/sim"
)

type Registry struct {
	metrics map[string]func(cfg *config.Config) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(cfg *config.Config) sim.Metric),
	}

	r.metrics["kinetic_energy"] = func(*config.Config) sim.Metric { return metrics.NewKineticEnergy() }
	r.metrics["energy_loss"] = func(*config.Config) sim.Metric { return metrics.NewEnergyLoss() }
	r.metrics["momentum"] = func(*config.Config) sim.Metric { return metrics.NewMomentum() }
	r.metrics["contacts_per_step"] = func(*config.Config) sim.Metric { return metrics.NewContacts() }
	r.metrics["containment"] = func(cfg *config.Config) sim.Metric {
		return metrics.NewContainment(cfg.Physics.MaxRadius)
	}
	r.metrics["max_penetration"] = func(cfg *config.Config) sim.Metric {
		return metrics.NewPenetration(cfg.Physics.CellSize)
	}

	return r
}

func (r *Registry) GetMetric(name string, cfg *config.Config) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics builds the set recorded by a plain run.
func (r *Registry) DefaultMetrics(cfg *config.Config) []sim.Metric {
	names := []string{"kinetic_energy", "energy_loss", "momentum", "contacts_per_step", "containment"}
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, r.metrics[name](cfg))
	}
	return out
}
