package metrics

import (
	"math"

	"github.com/san-kum/particlesim/internal/physics"
	"github.com/san-kum/particlesim/internal/sim"
)

// Contacts is the mean number of pairs resolved per step.
type Contacts struct {
	name    string
	sum     int
	samples int
}

func NewContacts() *Contacts {
	return &Contacts{name: "contacts_per_step"}
}

func (c *Contacts) Name() string { return c.name }

func (c *Contacts) Observe(f sim.Frame) {
	c.sum += f.Stats.Contacts
	c.samples++
}

func (c *Contacts) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.sum) / float64(c.samples)
}

func (c *Contacts) Reset() {
	c.sum = 0
	c.samples = 0
}

// Penetration is the deepest overlap between any two particles seen after a
// step. Overlaps left behind are expected: positional correction is first
// order and converges over several frames.
type Penetration struct {
	name    string
	grid    *physics.Grid
	near    []int32
	deepest float64
}

func NewPenetration(cellSize float64) *Penetration {
	return &Penetration{
		name: "max_penetration",
		grid: physics.NewGrid(cellSize),
		near: make([]int32, 0, 64),
	}
}

func (p *Penetration) Name() string { return p.name }

func (p *Penetration) Observe(f sim.Frame) {
	v := f.View
	p.grid.Build(v, f.Width, f.Height)
	for i := 0; i < v.Len(); i++ {
		a := v.At(i)
		p.near = p.grid.Near(p.near[:0], a.X, a.Y)
		for _, j := range p.near {
			if int(j) <= i {
				continue
			}
			b := v.At(int(j))
			depth := a.Radius + b.Radius - math.Hypot(a.X-b.X, a.Y-b.Y)
			if depth > p.deepest {
				p.deepest = depth
			}
		}
	}
}

func (p *Penetration) Value() float64 { return p.deepest }
func (p *Penetration) Reset()         { p.deepest = 0 }

