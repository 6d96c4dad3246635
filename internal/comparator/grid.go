package comparator

import "image"

// FailureGrid records, per macroblock, whether the block differed beyond
// tolerance. Cells are addressed by block column and row.
type FailureGrid struct {
	Cols, Rows int
	cells      []bool
}

// NewFailureGrid returns an empty grid covering a width×height image.
func NewFailureGrid(width, height int) *FailureGrid {
	cols, rows := blockCount(width), blockCount(height)
	return &FailureGrid{Cols: cols, Rows: rows, cells: make([]bool, cols*rows)}
}

// At reports whether the block at (col, row) failed. Out-of-range cells
// read as false.
func (g *FailureGrid) At(col, row int) bool {
	if col < 0 || row < 0 || col >= g.Cols || row >= g.Rows {
		return false
	}
	return g.cells[row*g.Cols+col]
}

// Set marks the block at (col, row).
func (g *FailureGrid) Set(col, row int, failed bool) {
	g.cells[row*g.Cols+col] = failed
}

// Count returns the number of failed blocks.
func (g *FailureGrid) Count() int {
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}

// Failed lists failed blocks in row-major order, as block coordinates.
func (g *FailureGrid) Failed() []image.Point {
	var pts []image.Point
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if g.At(col, row) {
				pts = append(pts, image.Point{X: col, Y: row})
			}
		}
	}
	return pts
}

// Clone returns an independent copy of the grid.
func (g *FailureGrid) Clone() *FailureGrid {
	cells := make([]bool, len(g.cells))
	copy(cells, g.cells)
	return &FailureGrid{Cols: g.Cols, Rows: g.Rows, cells: cells}
}
