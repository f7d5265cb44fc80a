// Package physics advances a population of circular particles under gravity,
// damping, user forces, wall confinement and pairwise elastic collisions.
//
// A [Simulation] is the explicit context for one world. It owns a
// [particle.Store] and a [Grid], and every operation goes through it:
//
//   - [Simulation.ApplyGravity], [Simulation.ApplyForce]: velocity impulses
//   - [Simulation.Step]: integrate and bound, rebuild the grid, resolve collisions
//   - [Simulation.View]: read-only access for renderers
//
// # Example
//
//	s, _ := physics.New(physics.DefaultParams(), rand.New(rand.NewSource(1)))
//	_ = s.Initialize(1000, 800, 600, 0.99)
//	for frame := 0; frame < 600; frame++ {
//	    s.ApplyGravity(0, 0.5)
//	    _ = s.Step(1.0/60, 800, 600)
//	}
//
// # Determinism
//
// Collisions are resolved with sequential impulses in ascending slot order and
// both bodies are updated immediately. When a particle touches several others
// in one step the outcome depends on that order, so the order is part of the
// contract: the same seed and inputs always yield the same buffer.
//
// # Thread Safety
//
// A Simulation is NOT thread-safe. Each step runs to completion on the calling
// goroutine. Independent simulations may run concurrently.
package physics
