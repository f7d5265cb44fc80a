package metrics

import (
	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/sim"
)

// Containment is the fraction of observed frames in which every particle
// centre lay inside the world extended by margin.
type Containment struct {
	name       string
	margin     float64
	violations int
	samples    int
}

func NewContainment(margin float64) *Containment {
	return &Containment{
		name:   "containment",
		margin: margin,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(f sim.Frame) {
	c.samples++
	data := f.View.Raw()
	for i := 0; i < len(data); i += particle.Stride {
		x, y := data[i+particle.OffX], data[i+particle.OffY]
		if x < -c.margin || x > f.Width+c.margin || y < -c.margin || y > f.Height+c.margin {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
