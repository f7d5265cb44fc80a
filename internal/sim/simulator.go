package sim

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/particlesim/internal/physics"
)

// Simulator is the frame loop around a physics.Simulation: forces, then
// Step, then metrics and observers, strictly in that order.
type Simulator struct {
	world     *physics.Simulation
	metrics   []Metric
	observers []Observer
}

func New(world *physics.Simulation) *Simulator {
	return &Simulator{
		world:     world,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) World() *physics.Simulation { return s.world }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	cfg = s.withBounds(cfg)

	steps := int(cfg.Duration/cfg.Dt + 1e-9)
	every := cfg.SampleEvery
	if every < 1 {
		every = 1
	}
	result := &Result{
		Times:   make([]float64, 0, steps/every+1),
		Series:  make(map[string][]float64),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	pulses := sortedPulses(cfg.Pulses)
	t := 0.0

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		pulses = s.firePulses(pulses, t)
		s.applyGravity(cfg)

		if err := s.world.Step(cfg.Dt, cfg.Width, cfg.Height); err != nil {
			return result, &StepError{Step: i, Time: t, Wrapped: err}
		}
		t += cfg.Dt
		result.StepsTaken++

		if cfg.ValidateState && !s.world.View().Valid() {
			result.Errors = append(result.Errors, &StepError{Step: i, Time: t, Wrapped: ErrInvalidState})
			break
		}

		f := s.frame(i, t, cfg)
		result.Contacts += f.Stats.Contacts
		result.WallHits += f.Stats.WallHits
		s.observe(f)

		if i%every == 0 {
			result.Times = append(result.Times, t)
			for _, m := range s.metrics {
				result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
			}
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = s.world.Snapshot(nil)

	if len(result.Errors) > 0 {
		return result, result.Errors[0]
	}
	return result, nil
}

// RunWithCallback drives the loop until cfg.Duration (which may be +Inf),
// the context ends, or callback returns false. callback runs before each
// step, on the loop goroutine, and is the place to apply external input.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(f Frame) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}
	cfg = s.withBounds(cfg)

	pulses := sortedPulses(cfg.Pulses)
	t := 0.0
	f := s.frame(-1, t, cfg)

	for i := 0; t < cfg.Duration; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(f) {
			return nil
		}

		pulses = s.firePulses(pulses, t)
		s.applyGravity(cfg)

		if err := s.world.Step(cfg.Dt, cfg.Width, cfg.Height); err != nil {
			return &StepError{Step: i, Time: t, Wrapped: err}
		}
		t += cfg.Dt

		if cfg.ValidateState && !s.world.View().Valid() {
			return &StepError{Step: i, Time: t, Wrapped: ErrInvalidState}
		}

		f = s.frame(i, t, cfg)
		s.observe(f)
	}

	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return fmt.Errorf("%w: negative world size %gx%g", ErrInvalidConfig, cfg.Width, cfg.Height)
	}
	switch cfg.GravityMode {
	case "", GravityFrame, GravityTime:
	default:
		return fmt.Errorf("%w: unknown gravity mode %q", ErrInvalidConfig, cfg.GravityMode)
	}
	for _, p := range cfg.Pulses {
		if !(p.Radius > 0) {
			return fmt.Errorf("%w: pulse at t=%g: %v", ErrInvalidConfig, p.At, physics.ErrInvalidForceRadius)
		}
	}
	return nil
}

func (s *Simulator) withBounds(cfg Config) Config {
	w, h := s.world.Bounds()
	if cfg.Width == 0 {
		cfg.Width = w
	}
	if cfg.Height == 0 {
		cfg.Height = h
	}
	return cfg
}

func (s *Simulator) applyGravity(cfg Config) {
	if cfg.GravityX == 0 && cfg.GravityY == 0 {
		return
	}
	if cfg.GravityMode == GravityTime {
		s.world.ApplyGravityDt(cfg.GravityX, cfg.GravityY, cfg.Dt)
		return
	}
	s.world.ApplyGravity(cfg.GravityX, cfg.GravityY)
}

// firePulses applies every pending pulse due at t and returns the rest.
func (s *Simulator) firePulses(pending []Pulse, t float64) []Pulse {
	for len(pending) > 0 && pending[0].At <= t+1e-12 {
		p := pending[0]
		// radius was validated up front
		_ = s.world.ApplyForce(p.X, p.Y, p.Radius, p.Strength)
		pending = pending[1:]
	}
	return pending
}

func (s *Simulator) frame(step int, t float64, cfg Config) Frame {
	return Frame{
		View:   s.world.View(),
		Stats:  s.world.LastStats(),
		Step:   step,
		Time:   t,
		Width:  cfg.Width,
		Height: cfg.Height,
	}
}

func (s *Simulator) observe(f Frame) {
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, obs := range s.observers {
		obs.OnStep(f)
	}
}

func sortedPulses(in []Pulse) []Pulse {
	out := make([]Pulse, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	return out
}
