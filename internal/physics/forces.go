package physics

import (
	"math"

	"github.com/san-kum/particlesim/internal/particle"
)

// minDistSq guards the normalisations below against coincident points.
const minDistSq = 0.01

// ApplyGravity adds (gx, gy) to every velocity. The vector is a per-call
// delta, not an acceleration: calling it once per frame makes gravity
// frame-rate dependent.
func ApplyGravity(data []float64, gx, gy float64) {
	for i := 0; i < len(data); i += particle.Stride {
		data[i+particle.OffVX] += gx
		data[i+particle.OffVY] += gy
	}
}

// ApplyForce pushes every particle within radius of (px, py) away from the
// point, scaled by strength*(1 - dist/radius). A negative strength attracts.
// Only particles strictly inside radius are touched. It returns the number
// of particles affected.
func ApplyForce(data []float64, px, py, radius, strength float64) int {
	r2 := radius * radius
	hit := 0
	for i := 0; i < len(data); i += particle.Stride {
		dx := data[i+particle.OffX] - px
		dy := data[i+particle.OffY] - py
		distSq := dx*dx + dy*dy
		if !(distSq < r2 && distSq > minDistSq) {
			continue
		}
		dist := math.Sqrt(distSq)
		f := strength * (1 - dist/radius)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		data[i+particle.OffVX] += dx / dist * f
		data[i+particle.OffVY] += dy / dist * f
		hit++
	}
	return hit
}
