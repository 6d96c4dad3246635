package comparator

import "image"

// ErrorRegion is a rectangle of failed blocks. X and Y are the pixel
// coordinates of its top-left corner; Width and Height count blocks.
type ErrorRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Bounds returns the region in pixels, clipped to a width×height image.
func (r ErrorRegion) Bounds(width, height int) image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width*BlockSize, r.Y+r.Height*BlockSize).
		Intersect(image.Rect(0, 0, width, height))
}

// aggregateRegions groups the failed blocks of grid into rectangles and
// clears every cell it claims, so each failed cell lands in exactly one
// region. Seeds are taken in row-major order. A rectangle first grows to
// the right along its seed row, then downwards for as long as the next row
// has a failed cell under its span, widening sideways to absorb failed
// cells adjacent to the span in that row.
//
// The result is a readable bounding-box decomposition, not a minimal one.
func aggregateRegions(grid *FailureGrid) []ErrorRegion {
	var regions []ErrorRegion
	steps := grid.Rows * grid.Cols
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			if !grid.At(col, row) {
				continue
			}
			x0, x1, y1 := col, col, row
			for x1+1 < grid.Cols && grid.At(x1+1, row) {
				x1++
			}
			for steps > 0 && y1+1 < grid.Rows && anyFailed(grid, x0, x1, y1+1) {
				steps--
				y1++
				for x0 > 0 && grid.At(x0-1, y1) {
					x0--
				}
				for x1+1 < grid.Cols && grid.At(x1+1, y1) {
					x1++
				}
			}
			for y := row; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					grid.Set(x, y, false)
				}
			}
			regions = append(regions, ErrorRegion{
				X:      x0 * BlockSize,
				Y:      row * BlockSize,
				Width:  x1 - x0 + 1,
				Height: y1 - row + 1,
			})
		}
	}
	return regions
}

func anyFailed(grid *FailureGrid, x0, x1, row int) bool {
	for x := x0; x <= x1; x++ {
		if grid.At(x, row) {
			return true
		}
	}
	return false
}
