package physics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/particlesim/internal/particle"
)

// StepStats describes what the last Step did.
type StepStats struct {
	Contacts int // pairs resolved
	WallHits int // axis reflections at the walls
	Dropped  int // particles left out of the grid
}

// Simulation is the context for one independent world.
type Simulation struct {
	params  Params
	rng     *rand.Rand
	store   *particle.Store
	grid    *Grid
	damping float64
	width   float64
	height  float64
	steps   int
	stats   StepStats
}

// New creates an empty simulation. A nil rng is seeded with 1.
func New(params Params, rng *rand.Rand) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Simulation{
		params: params,
		rng:    rng,
		store:  particle.NewStore(),
		grid:   NewGrid(params.CellSize),
	}, nil
}

// Initialize replaces the population with count random particles. It is the
// only operation that changes the particle count.
func (s *Simulation) Initialize(count int, width, height, damping float64) error {
	if count < 0 {
		return ErrNegativeCount
	}
	if err := checkWorld(width, height, damping); err != nil {
		return err
	}
	if err := s.store.Initialize(count, width, height, s.rng, s.params.ranges()); err != nil {
		return err
	}
	s.reset(width, height, damping)
	return nil
}

// InitializeFrom replaces the population with the given particles. Mass is
// re-derived from each radius.
func (s *Simulation) InitializeFrom(ps []particle.Particle, width, height, damping float64) error {
	if err := checkWorld(width, height, damping); err != nil {
		return err
	}
	for i, p := range ps {
		if !(p.Radius > 0) {
			return fmt.Errorf("physics: particle %d has radius %g", i, p.Radius)
		}
	}
	if err := s.store.Reset(len(ps)); err != nil {
		return err
	}
	for i, p := range ps {
		s.store.Place(i, p.X, p.Y, p.VX, p.VY, p.Radius)
	}
	s.reset(width, height, damping)
	return nil
}

func (s *Simulation) reset(width, height, damping float64) {
	s.width, s.height, s.damping = width, height, damping
	s.steps = 0
	s.stats = StepStats{}
}

func checkWorld(width, height, damping float64) error {
	if err := checkBounds(width, height); err != nil {
		return err
	}
	if !(damping > 0 && damping <= 1) {
		return ErrInvalidDamping
	}
	return nil
}

func checkBounds(width, height float64) error {
	if !(width > 0 && height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return ErrInvalidBounds
	}
	return nil
}

// Step integrates and bounds every particle, rebuilds the grid and resolves
// collisions. width and height may change between steps.
func (s *Simulation) Step(dt, width, height float64) error {
	if !(dt >= 0) || math.IsInf(dt, 0) {
		return ErrNegativeDt
	}
	if err := checkBounds(width, height); err != nil {
		return err
	}
	s.width, s.height = width, height

	data := s.store.Data()
	hits := Integrate(data, dt, s.damping, width, height, s.params.WallRestitution)
	s.grid.Build(s.store.View(), width, height)
	contacts := Resolve(data, s.grid, s.params.CollisionRestitution)

	s.stats = StepStats{Contacts: contacts, WallHits: hits, Dropped: s.grid.Dropped()}
	s.steps++
	return nil
}

// ApplyGravity adds (gx, gy) to every velocity, once per call.
func (s *Simulation) ApplyGravity(gx, gy float64) {
	ApplyGravity(s.store.Data(), gx, gy)
}

// ApplyGravityDt treats (gx, gy) as an acceleration and adds g*dt, which
// makes gravity independent of the frame rate.
func (s *Simulation) ApplyGravityDt(gx, gy, dt float64) {
	ApplyGravity(s.store.Data(), gx*dt, gy*dt)
}

// ApplyForce applies a radial impulse with linear falloff around (px, py).
func (s *Simulation) ApplyForce(px, py, radius, strength float64) error {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return ErrInvalidForceRadius
	}
	if !finite(px, py, strength) {
		return ErrNonFiniteForce
	}
	ApplyForce(s.store.Data(), px, py, radius, strength)
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// View exposes the particle buffer read-only. It reflects the latest Step.
func (s *Simulation) View() particle.View { return s.store.View() }

func (s *Simulation) Len() int               { return s.store.Len() }
func (s *Simulation) Params() Params         { return s.params }
func (s *Simulation) Damping() float64       { return s.damping }
func (s *Simulation) Bounds() (w, h float64) { return s.width, s.height }
func (s *Simulation) Steps() int             { return s.steps }
func (s *Simulation) LastStats() StepStats   { return s.stats }
func (s *Simulation) Grid() *Grid            { return s.grid }

// Snapshot copies the particle buffer into dst.
func (s *Simulation) Snapshot(dst []float64) []float64 {
	return s.store.Snapshot(dst)
}
