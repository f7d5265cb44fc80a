package particle

import "math"

// Particle is a decoded copy of one record.
type Particle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
	Mass   float64 `json:"mass"`
}

// View is a read-only window onto a Store. It aliases the store's memory.
type View struct {
	data  []float64
	count int
}

// NewView wraps a flat buffer, e.g. one loaded from disk. len(data) must be a
// multiple of Stride.
func NewView(data []float64) View {
	return View{data: data, count: len(data) / Stride}
}

func (v View) Len() int { return v.count }

// Raw returns the flat buffer, len = Len()*Stride. Callers must not mutate it.
func (v View) Raw() []float64 { return v.data }

func (v View) At(i int) Particle {
	p := v.data[i*Stride : i*Stride+Stride]
	return Particle{
		X: p[OffX], Y: p[OffY],
		VX: p[OffVX], VY: p[OffVY],
		Radius: p[OffRadius], Mass: p[OffMass],
	}
}

func (v View) Position(i int) (x, y float64) {
	return v.data[i*Stride+OffX], v.data[i*Stride+OffY]
}

func (v View) Radius(i int) float64 { return v.data[i*Stride+OffRadius] }

// Float32s packs x, y and radius per particle for GPU-style consumers.
func (v View) Float32s(dst []float32) []float32 {
	n := v.count * 3
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := 0; i < v.count; i++ {
		dst[i*3] = float32(v.data[i*Stride+OffX])
		dst[i*3+1] = float32(v.data[i*Stride+OffY])
		dst[i*3+2] = float32(v.data[i*Stride+OffRadius])
	}
	return dst
}

// Valid reports whether every value is finite.
func (v View) Valid() bool {
	for _, f := range v.data {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (v View) Momentum() (px, py float64) {
	for i := 0; i < v.count; i++ {
		m := v.data[i*Stride+OffMass]
		px += m * v.data[i*Stride+OffVX]
		py += m * v.data[i*Stride+OffVY]
	}
	return
}

func (v View) KineticEnergy() float64 {
	ke := 0.0
	for i := 0; i < v.count; i++ {
		p := v.data[i*Stride : i*Stride+Stride]
		ke += 0.5 * p[OffMass] * (p[OffVX]*p[OffVX] + p[OffVY]*p[OffVY])
	}
	return ke
}
