package physics

import "github.com/san-kum/particlesim/internal/particle"

// Params are the tuning constants of a world. They are fixed for the lifetime
// of a Simulation.
type Params struct {
	// CellSize is the broad-phase cell edge. It must be at least the largest
	// particle diameter, otherwise the 3x3 neighbourhood misses pairs.
	CellSize float64

	// WallRestitution scales the reflected velocity component at a wall.
	WallRestitution float64

	// CollisionRestitution scales the pair impulse. 1 is perfectly elastic.
	CollisionRestitution float64

	MinRadius float64
	MaxRadius float64
	MaxSpeed  float64
}

func DefaultParams() Params {
	r := particle.DefaultRanges()
	return Params{
		CellSize:             20,
		WallRestitution:      0.8,
		CollisionRestitution: 0.9,
		MinRadius:            r.MinRadius,
		MaxRadius:            r.MaxRadius,
		MaxSpeed:             r.MaxSpeed,
	}
}

func (p Params) Validate() error {
	switch {
	case p.MinRadius <= 0 || p.MaxRadius < p.MinRadius:
		return paramError("radius range [%g, %g]", p.MinRadius, p.MaxRadius)
	case p.CellSize < 2*p.MaxRadius:
		return paramError("cell size %g smaller than max diameter %g", p.CellSize, 2*p.MaxRadius)
	case p.WallRestitution < 0 || p.WallRestitution > 1:
		return paramError("wall restitution %g", p.WallRestitution)
	case p.CollisionRestitution < 0 || p.CollisionRestitution > 1:
		return paramError("collision restitution %g", p.CollisionRestitution)
	case p.MaxSpeed < 0:
		return paramError("max speed %g", p.MaxSpeed)
	}
	return nil
}

func (p Params) ranges() particle.Ranges {
	return particle.Ranges{MinRadius: p.MinRadius, MaxRadius: p.MaxRadius, MaxSpeed: p.MaxSpeed}
}
