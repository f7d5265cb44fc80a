// Package particle holds the flat particle buffer shared by every stage of a
// simulation step.
//
// Each particle occupies [Stride] consecutive float64 values laid out as
//
//	[x, y, vx, vy, radius, mass]
//
// and is addressed by its slot index. The population is fixed once
// [Store.Initialize] returns; nothing is added or removed afterwards.
//
// # Ownership
//
// A [Store] is owned by exactly one simulation. Renderers and recorders get a
// [View], which exposes the same memory without copying. Views must be treated
// as read-only and are only valid until the next step mutates the store.
package particle
