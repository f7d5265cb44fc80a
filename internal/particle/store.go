package particle

import (
	"errors"
	"math/rand"
)

// Record layout.
const (
	OffX = iota
	OffY
	OffVX
	OffVY
	OffRadius
	OffMass
	Stride
)

var ErrNegativeCount = errors.New("particle: negative particle count")

// Ranges bounds the random values drawn by Initialize.
type Ranges struct {
	MinRadius float64
	MaxRadius float64
	MaxSpeed  float64 // velocity components are drawn from [-MaxSpeed, MaxSpeed)
}

func DefaultRanges() Ranges {
	return Ranges{MinRadius: 3, MaxRadius: 8, MaxSpeed: 25}
}

type Store struct {
	data  []float64
	count int
}

func NewStore() *Store {
	return &Store{}
}

// Initialize replaces any prior state with count freshly drawn particles.
// Positions are uniform in [0,width) x [0,height) and mass is radius².
func (s *Store) Initialize(count int, width, height float64, rng *rand.Rand, r Ranges) error {
	if count < 0 {
		return ErrNegativeCount
	}

	n := count * Stride
	if cap(s.data) >= n {
		s.data = s.data[:n]
	} else {
		s.data = make([]float64, n)
	}
	s.count = count

	for i := 0; i < count; i++ {
		p := s.data[i*Stride : i*Stride+Stride]
		p[OffX] = rng.Float64() * width
		p[OffY] = rng.Float64() * height
		p[OffVX] = (rng.Float64()*2 - 1) * r.MaxSpeed
		p[OffVY] = (rng.Float64()*2 - 1) * r.MaxSpeed
		radius := r.MinRadius + rng.Float64()*(r.MaxRadius-r.MinRadius)
		p[OffRadius] = radius
		p[OffMass] = radius * radius
	}
	return nil
}

// Place overwrites slot i with an explicit particle. Mass is derived from the
// radius, so callers cannot set it independently.
func (s *Store) Place(i int, x, y, vx, vy, radius float64) {
	p := s.data[i*Stride : i*Stride+Stride]
	p[OffX], p[OffY] = x, y
	p[OffVX], p[OffVY] = vx, vy
	p[OffRadius] = radius
	p[OffMass] = radius * radius
}

// Reset allocates count zeroed slots. Used when a caller places every
// particle itself.
func (s *Store) Reset(count int) error {
	if count < 0 {
		return ErrNegativeCount
	}
	s.data = make([]float64, count*Stride)
	s.count = count
	return nil
}

func (s *Store) Len() int { return s.count }

// Data returns the mutable buffer. Only the owning simulation writes to it.
func (s *Store) Data() []float64 { return s.data }

func (s *Store) View() View { return View{data: s.data, count: s.count} }

// Snapshot copies the buffer into dst, growing it when needed.
func (s *Store) Snapshot(dst []float64) []float64 {
	if cap(dst) < len(s.data) {
		dst = make([]float64, len(s.data))
	}
	dst = dst[:len(s.data)]
	copy(dst, s.data)
	return dst
}
