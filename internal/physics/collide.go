package physics

import (
	"math"

	"github.com/san-kum/particlesim/internal/particle"
)

// Resolve walks every particle in ascending slot order, scans the 3x3 cells
// around the cell it was bucketed into, and resolves each candidate j > i.
// Both bodies of a pair are updated immediately, so later pairs in the same
// pass see the corrected state. It returns the number of pairs resolved.
func Resolve(data []float64, g *Grid, restitution float64) int {
	contacts := 0
	n := len(data) / particle.Stride
	for i := 0; i < n; i++ {
		cx, cy, ok := g.Owner(i)
		if !ok {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				for _, j := range g.Cell(cx+dx, cy+dy) {
					if int(j) <= i {
						continue
					}
					if resolvePair(data, i, int(j), restitution) {
						contacts++
					}
				}
			}
		}
	}
	return contacts
}

// resolvePair applies the unequal-mass impulse along the contact normal and
// a first-order positional correction. Separating pairs are left untouched.
func resolvePair(data []float64, i, j int, restitution float64) bool {
	a := data[i*particle.Stride : i*particle.Stride+particle.Stride]
	b := data[j*particle.Stride : j*particle.Stride+particle.Stride]

	dx := a[particle.OffX] - b[particle.OffX]
	dy := a[particle.OffY] - b[particle.OffY]
	distSq := dx*dx + dy*dy
	minDist := a[particle.OffRadius] + b[particle.OffRadius]
	if !(distSq < minDist*minDist && distSq > minDistSq) {
		return false
	}

	dist := math.Sqrt(distSq)
	// normal points from b to a
	nx, ny := dx/dist, dy/dist

	dvn := (b[particle.OffVX]-a[particle.OffVX])*nx + (b[particle.OffVY]-a[particle.OffVY])*ny
	if dvn < 0 {
		return false
	}

	ma, mb := a[particle.OffMass], b[particle.OffMass]
	total := ma + mb
	impulse := 2 * dvn * restitution / total

	a[particle.OffVX] += impulse * mb * nx
	a[particle.OffVY] += impulse * mb * ny
	b[particle.OffVX] -= impulse * ma * nx
	b[particle.OffVY] -= impulse * ma * ny

	overlap := minDist - dist
	a[particle.OffX] += nx * overlap * mb / total
	a[particle.OffY] += ny * overlap * mb / total
	b[particle.OffX] -= nx * overlap * ma / total
	b[particle.OffY] -= ny * overlap * ma / total
	return true
}
