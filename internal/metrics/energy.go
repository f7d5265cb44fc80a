package metrics

import (
	"math"

	"github.com/san-kum/particlesim/internal/sim"
)

// KineticEnergy reports the total kinetic energy of the latest frame.
type KineticEnergy struct {
	name    string
	current float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(f sim.Frame) {
	e.current = f.View.KineticEnergy()
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	return e.current
}

func (e *KineticEnergy) Reset() {
	e.current = 0
	e.samples = 0
}

// EnergyLoss reports the fraction of the first observed kinetic energy that
// has been dissipated by damping, walls and inelastic collisions.
type EnergyLoss struct {
	name    string
	initial float64
	current float64
	samples int
}

func NewEnergyLoss() *EnergyLoss {
	return &EnergyLoss{name: "energy_loss"}
}

func (e *EnergyLoss) Name() string { return e.name }

func (e *EnergyLoss) Observe(f sim.Frame) {
	energy := f.View.KineticEnergy()
	if e.samples == 0 {
		e.initial = energy
	}
	e.current = energy
	e.samples++
}

func (e *EnergyLoss) Value() float64 {
	if e.initial == 0 {
		return 0
	}
	return (e.initial - e.current) / math.Abs(e.initial)
}

func (e *EnergyLoss) Reset() {
	e.initial = 0
	e.current = 0
	e.samples = 0
}

// Momentum reports the magnitude of total linear momentum.
type Momentum struct {
	name    string
	current float64
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(f sim.Frame) {
	px, py := f.View.Momentum()
	m.current = math.Hypot(px, py)
}

func (m *Momentum) Value() float64 { return m.current }
func (m *Momentum) Reset()         { m.current = 0 }
