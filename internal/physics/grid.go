package physics

import (
	"math"

	"github.com/san-kum/particlesim/internal/particle"
)

// Grid is a uniform-cell broad-phase index rebuilt from scratch every step.
//
// Cells are stored as one arena of slot indices sorted by cell (a counting
// sort): cell c holds items[start[c]:start[c+1]]. Within a cell, slots are in
// ascending order. Backing slices are reused across builds and only
// reallocated when the grid dimensions or the particle count change.
type Grid struct {
	cellSize   float64
	cols, rows int

	start  []int32 // len cols*rows+1
	cursor []int32 // fill cursors, len cols*rows
	items  []int32 // slot indices grouped by cell
	cellOf []int32 // owning cell per slot, -1 when dropped

	dropped int
	allocs  int
}

func NewGrid(cellSize float64) *Grid {
	return &Grid{cellSize: cellSize}
}

// Dims returns the grid size derived from the last Build.
func (g *Grid) Dims() (cols, rows int) { return g.cols, g.rows }

func (g *Grid) CellSize() float64 { return g.cellSize }

// Dropped is the number of particles left out of the last Build because
// their centre lay outside the grid.
func (g *Grid) Dropped() int { return g.dropped }

// Build recomputes the grid dimensions from the world bounds and re-buckets
// every particle by the cell containing its centre.
func (g *Grid) Build(v particle.View, width, height float64) {
	cols := int(math.Ceil(width/g.cellSize)) + 1
	rows := int(math.Ceil(height/g.cellSize)) + 1
	n := cols * rows

	if cols != g.cols || rows != g.rows || g.start == nil {
		g.cols, g.rows = cols, rows
		g.start = make([]int32, n+1)
		g.cursor = make([]int32, n)
		g.allocs++
	} else {
		clear(g.start)
	}

	count := v.Len()
	if cap(g.cellOf) < count {
		g.cellOf = make([]int32, count)
		g.items = make([]int32, count)
		g.allocs++
	}
	g.cellOf = g.cellOf[:count]
	g.items = g.items[:count]
	g.dropped = 0

	for i := 0; i < count; i++ {
		x, y := v.Position(i)
		cx, cy, ok := g.CellCoords(x, y)
		if !ok {
			g.cellOf[i] = -1
			g.dropped++
			continue
		}
		c := cy*cols + cx
		g.cellOf[i] = int32(c)
		g.start[c+1]++
	}

	for c := 0; c < n; c++ {
		g.start[c+1] += g.start[c]
	}
	copy(g.cursor, g.start[:n])

	for i := 0; i < count; i++ {
		c := g.cellOf[i]
		if c < 0 {
			continue
		}
		g.items[g.cursor[c]] = int32(i)
		g.cursor[c]++
	}
	g.items = g.items[:count-g.dropped]
}

// CellCoords maps a world position to cell coordinates. ok is false when the
// position falls outside the grid (including NaN).
func (g *Grid) CellCoords(x, y float64) (cx, cy int, ok bool) {
	fx := math.Floor(x / g.cellSize)
	fy := math.Floor(y / g.cellSize)
	if !(fx >= 0 && fx < float64(g.cols) && fy >= 0 && fy < float64(g.rows)) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}

// Cell returns the slots bucketed in cell (cx, cy), or nil when the cell is
// out of range. The slice aliases the grid and is valid until the next Build.
func (g *Grid) Cell(cx, cy int) []int32 {
	if cx < 0 || cx >= g.cols || cy < 0 || cy >= g.rows {
		return nil
	}
	c := cy*g.cols + cx
	return g.items[g.start[c]:g.start[c+1]]
}

// Owner returns the cell slot i was bucketed into by the last Build.
func (g *Grid) Owner(i int) (cx, cy int, ok bool) {
	c := int(g.cellOf[i])
	if c < 0 {
		return 0, 0, false
	}
	return c % g.cols, c / g.cols, true
}

// Near appends to dst every slot bucketed in the 3x3 neighbourhood of the
// cell containing (x, y).
func (g *Grid) Near(dst []int32, x, y float64) []int32 {
	fx := math.Floor(x / g.cellSize)
	fy := math.Floor(y / g.cellSize)
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return dst
	}
	if fx < -1 || fy < -1 || fx > float64(g.cols) || fy > float64(g.rows) {
		return dst
	}
	cx, cy := int(fx), int(fy)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			dst = append(dst, g.Cell(cx+dx, cy+dy)...)
		}
	}
	return dst
}
