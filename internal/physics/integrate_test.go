package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/particlesim/internal/particle"
)

func newRand(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

func TestIntegrateMotionAndDamping(t *testing.T) {
	s := newStore(t, particle.Particle{X: 50, Y: 50, VX: 10, VY: -20, Radius: 5})
	Integrate(s.Data(), 0.5, 0.9, 100, 100, 0.8)

	p := s.View().At(0)
	if p.X != 55 || p.Y != 40 {
		t.Errorf("position = (%v, %v), want (55, 40)", p.X, p.Y)
	}
	if math.Abs(p.VX-9) > 1e-12 || math.Abs(p.VY+18) > 1e-12 {
		t.Errorf("velocity = (%v, %v), want (9, -18)", p.VX, p.VY)
	}
}

func TestIntegrateWalls(t *testing.T) {
	tests := []struct {
		name           string
		in             particle.Particle
		wantX, wantY   float64
		wantVX, wantVY float64
	}{
		{"left", particle.Particle{X: 5, Y: 50, VX: -10, Radius: 5}, 5, 50, 8, 0},
		{"right", particle.Particle{X: 95, Y: 50, VX: 10, Radius: 5}, 95, 50, -8, 0},
		{"top", particle.Particle{X: 50, Y: 5, VY: -10, Radius: 5}, 50, 5, 0, 8},
		{"bottom", particle.Particle{X: 50, Y: 95, VY: 10, Radius: 5}, 50, 95, 0, -8},
		// wrong-sign velocity outside the wall is still pointed inward
		{"outside moving in", particle.Particle{X: -3, Y: 50, VX: 4, Radius: 5}, 5, 50, 4 * 0.8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, tt.in)
			Integrate(s.Data(), 0.1, 1, 100, 100, 0.8)
			p := s.View().At(0)
			if math.Abs(p.X-tt.wantX) > 1e-9 || math.Abs(p.Y-tt.wantY) > 1e-9 {
				t.Errorf("position = (%v, %v), want (%v, %v)", p.X, p.Y, tt.wantX, tt.wantY)
			}
			if math.Abs(p.VX-tt.wantVX) > 1e-9 || math.Abs(p.VY-tt.wantVY) > 1e-9 {
				t.Errorf("velocity = (%v, %v), want (%v, %v)", p.VX, p.VY, tt.wantVX, tt.wantVY)
			}
		})
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"cell too small", func(p *Params) { p.CellSize = 10 }},
		{"zero radius", func(p *Params) { p.MinRadius = 0 }},
		{"inverted radii", func(p *Params) { p.MinRadius, p.MaxRadius = 8, 3 }},
		{"wall restitution", func(p *Params) { p.WallRestitution = 1.5 }},
		{"collision restitution", func(p *Params) { p.CollisionRestitution = -0.1 }},
	}

	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func BenchmarkStep1000(b *testing.B) { benchmarkStep(b, 1000, 800, 600) }
func BenchmarkStep5000(b *testing.B) { benchmarkStep(b, 5000, 1600, 1200) }

func benchmarkStep(b *testing.B, n int, w, h float64) {
	s, err := New(DefaultParams(), newRand(1))
	if err != nil {
		b.Fatal(err)
	}
	if err := s.Initialize(n, w, h, 0.99); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.ApplyGravity(0, 0.5)
		_ = s.Step(1.0/60, w, h)
	}
}
