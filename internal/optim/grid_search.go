package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/sim"
)

// setters are the config knobs a sweep may vary.
var setters = map[string]func(c *config.Config, v float64){
	"damping":               func(c *config.Config, v float64) { c.Damping = v },
	"collision_restitution": func(c *config.Config, v float64) { c.Physics.CollisionRestitution = v },
	"wall_restitution":      func(c *config.Config, v float64) { c.Physics.WallRestitution = v },
	"cell_size":             func(c *config.Config, v float64) { c.Physics.CellSize = v },
	"gravity_x":             func(c *config.Config, v float64) { c.Gravity.X = v },
	"gravity_y":             func(c *config.Config, v float64) { c.Gravity.Y = v },
	"count":                 func(c *config.Config, v float64) { c.Count = int(v) },
}

func Params() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Runner executes one configuration and returns its result.
type Runner func(ctx context.Context, cfg *config.Config) (*sim.Result, error)

type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch evaluates every combination of the given parameter values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64, maximize bool) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if _, ok := setters[name]; !ok {
			return nil, fmt.Errorf("optim: unknown parameter %s (available: %v)", name, Params())
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: no values for %s", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, maximize: maximize}, nil
}

// Search runs base with each combination applied. Trials whose config is
// invalid or whose run fails are reported with Err set and never win.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, run Runner, metricName string) ([]Trial, *Trial, error) {
	trials := make([]Trial, 0)
	idx := make([]int, len(g.paramNames))

	for {
		if err := ctx.Err(); err != nil {
			return trials, g.best(trials), err
		}

		cfg := base.Clone()
		params := make(map[string]float64, len(g.paramNames))
		for i, name := range g.paramNames {
			v := g.ranges[i][idx[i]]
			setters[name](cfg, v)
			params[name] = v
		}
		trials = append(trials, g.evaluate(ctx, cfg, params, run, metricName))

		// odometer increment over the value indices
		d := len(idx) - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < len(g.ranges[d]) {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			break
		}
	}

	return trials, g.best(trials), nil
}

func (g *GridSearch) evaluate(ctx context.Context, cfg *config.Config, params map[string]float64, run Runner, metricName string) Trial {
	t := Trial{Params: params, Value: math.NaN()}
	if err := cfg.Validate(); err != nil {
		t.Err = err
		return t
	}
	result, err := run(ctx, cfg)
	if err != nil {
		t.Err = err
		return t
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		t.Err = fmt.Errorf("optim: run did not record %s", metricName)
		return t
	}
	t.Value = val
	return t
}

func (g *GridSearch) best(trials []Trial) *Trial {
	var best *Trial
	for i := range trials {
		t := &trials[i]
		if t.Err != nil || math.IsNaN(t.Value) {
			continue
		}
		if best == nil || (g.maximize && t.Value > best.Value) || (!g.maximize && t.Value < best.Value) {
			best = t
		}
	}
	return best
}
