package physics

import (
	"math"

	"github.com/san-kum/particlesim/internal/particle"
)

// Integrate moves every particle by v*dt, applies damping, then confines it
// to [0,width] x [0,height]. A particle whose edge crosses a wall is clamped
// so the edge touches the wall and the velocity component is reflected away
// from that wall, scaled by restitution. It returns the number of wall hits.
//
// There is no sub-stepping: with a large dt a fast particle can still jump a
// wall's worth of distance in one step; the clamp then puts it back inside.
func Integrate(data []float64, dt, damping, width, height, restitution float64) int {
	hits := 0
	for i := 0; i < len(data); i += particle.Stride {
		p := data[i : i+particle.Stride]

		p[particle.OffX] += p[particle.OffVX] * dt
		p[particle.OffY] += p[particle.OffVY] * dt

		p[particle.OffVX] *= damping
		p[particle.OffVY] *= damping

		r := p[particle.OffRadius]
		if bounce(&p[particle.OffX], &p[particle.OffVX], r, width, restitution) {
			hits++
		}
		if bounce(&p[particle.OffY], &p[particle.OffVY], r, height, restitution) {
			hits++
		}
	}
	return hits
}

// bounce confines one axis. The sign of the reflected velocity is taken
// from the wall that was hit, never from the incoming velocity.
func bounce(pos, vel *float64, r, limit, restitution float64) bool {
	switch {
	case *pos-r < 0:
		*pos = r
		*vel = math.Abs(*vel) * restitution
	case *pos+r > limit:
		*pos = limit - r
		*vel = -math.Abs(*vel) * restitution
	default:
		return false
	}
	return true
}
