package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/physics"
)

func newWorld(t *testing.T, n int, seed int64) *physics.Simulation {
	t.Helper()
	w, err := physics.New(physics.DefaultParams(), rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	if err := w.Initialize(n, 200, 200, 0.99); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return w
}

type countMetric struct {
	count int
	last  float64
}

func (c *countMetric) Name() string { return "count" }
func (c *countMetric) Observe(f Frame) {
	c.count++
	c.last = f.Time
}
func (c *countMetric) Value() float64 { return float64(c.count) }
func (c *countMetric) Reset()         { c.count = 0 }

func TestSimulatorRun(t *testing.T) {
	sim := New(newWorld(t, 50, 1))
	metric := &countMetric{}
	sim.AddMetric(metric)

	cfg := DefaultConfig()
	cfg.Dt = 0.1
	cfg.Duration = 1.0

	result, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if len(result.Times) != 10 {
		t.Errorf("expected 10 samples, got %d", len(result.Times))
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
	if math.Abs(metric.last-1.0) > 1e-9 {
		t.Errorf("expected last frame at t=1, got %f", metric.last)
	}
	if got := result.Metrics["count"]; got != 10 {
		t.Errorf("final metric = %v, want 10", got)
	}
	if len(result.Series["count"]) != 10 {
		t.Errorf("series length = %d", len(result.Series["count"]))
	}
	if len(result.Final) != 50*particle.Stride {
		t.Errorf("final snapshot length = %d", len(result.Final))
	}
}

func TestSimulatorSampleEvery(t *testing.T) {
	sim := New(newWorld(t, 10, 1))
	cfg := DefaultConfig()
	cfg.Dt = 0.1
	cfg.Duration = 2.0
	cfg.SampleEvery = 5

	result, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Times) != 4 {
		t.Errorf("expected 4 samples, got %d", len(result.Times))
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(newWorld(t, 1, 1))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"bad gravity mode", Config{Dt: 0.1, Duration: 1.0, GravityMode: "sometimes"}},
		{"pulse radius", Config{Dt: 0.1, Duration: 1.0, Pulses: []Pulse{{Radius: 0}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorGravityModes(t *testing.T) {
	tests := []struct {
		mode string
		want float64
	}{
		{GravityFrame, 10 * 2.0},
		{GravityTime, 10 * 2.0 * 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			w, _ := physics.New(physics.DefaultParams(), nil)
			_ = w.InitializeFrom([]particle.Particle{{X: 500, Y: 50, Radius: 3}}, 1000, 100000, 1)

			sim := New(w)
			cfg := Config{Dt: 0.01, Duration: 0.1, GravityY: 2, GravityMode: tt.mode}
			if _, err := sim.Run(context.Background(), cfg); err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if got := w.View().At(0).VY; math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("vy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimulatorPulses(t *testing.T) {
	w, _ := physics.New(physics.DefaultParams(), nil)
	_ = w.InitializeFrom([]particle.Particle{{X: 60, Y: 50, Radius: 3}}, 1000, 1000, 1)

	sim := New(w)
	cfg := Config{
		Dt:       0.1,
		Duration: 1.0,
		Pulses: []Pulse{
			{At: 0.5, X: 50, Y: 50, Radius: 20, Strength: 10},
			{At: 0.0, X: 50, Y: 50, Radius: 20, Strength: 10},
		},
	}

	if _, err := sim.Run(context.Background(), cfg); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	// the particle starts 10 away at half strength, then has moved further
	// away by the time the second pulse fires
	vx := w.View().At(0).VX
	if vx <= 5 || vx >= 10 {
		t.Errorf("vx = %v, want between 5 and 10", vx)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := New(newWorld(t, 10, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Run(ctx, DefaultConfig())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunWithCallbackStops(t *testing.T) {
	sim := New(newWorld(t, 10, 1))
	cfg := DefaultConfig()
	cfg.Duration = math.Inf(1)

	calls := 0
	err := sim.RunWithCallback(context.Background(), cfg, func(f Frame) bool {
		calls++
		return calls < 5
	})
	if err != nil {
		t.Fatalf("callback run failed: %v", err)
	}
	if sim.World().Steps() != 4 {
		t.Errorf("expected 4 steps, got %d", sim.World().Steps())
	}
}

func TestStepError(t *testing.T) {
	err := &StepError{Time: 1.5, Step: 150, Wrapped: ErrInvalidState}
	expected := "step 150 (t=1.5000): sim: invalid particle state (NaN or Inf detected)"
	if err.Error() != expected {
		t.Errorf("StepError.Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("StepError should unwrap to ErrInvalidState")
	}
}

func TestSimulatorRunSurfacesInvalidState(t *testing.T) {
	w, err := physics.New(physics.DefaultParams(), nil)
	if err != nil {
		t.Fatal(err)
	}
	err = w.InitializeFrom([]particle.Particle{
		{X: 50, Y: 50, Radius: 4},
		{X: math.NaN(), Y: 50, Radius: 4},
	}, 200, 200, 0.99)
	if err != nil {
		t.Fatal(err)
	}

	sim := New(w)
	metric := &countMetric{}
	sim.AddMetric(metric)

	cfg := DefaultConfig()
	cfg.Dt = 0.1
	cfg.Duration = 1.0

	result, err := sim.Run(context.Background(), cfg)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != 0 {
		t.Errorf("expected a StepError at step 0, got %v", err)
	}
	if result == nil || result.StepsTaken != 1 || len(result.Errors) != 1 {
		t.Errorf("expected partial result with one error, got %+v", result)
	}
	if metric.count != 0 {
		t.Errorf("corrupt frame should not be observed, got %d", metric.count)
	}
}
