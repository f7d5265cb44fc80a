// Package viz renders a running particle world in the terminal.
//
// The viewer is a Bubble Tea program: particles are drawn as filled discs on
// a braille [Canvas] (2x4 dots per cell) and a side panel shows step
// statistics with an asciigraph kinetic energy chart.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Respawn the population
//	G     - Toggle gravity
//	B     - Radial blast from the world centre
//	T     - Cycle color themes
//	?     - Show help overlay
//
// Left click pushes particles away from the cursor, right click pulls them
// in.
package viz
