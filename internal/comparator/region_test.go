package comparator

import (
	"image"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func gridOf(cols, rows int, failed ...image.Point) *FailureGrid {
	g := NewFailureGrid(cols*BlockSize, rows*BlockSize)
	for _, p := range failed {
		g.Set(p.X, p.Y, true)
	}
	return g
}

func TestAggregateRegions(t *testing.T) {
	tests := []struct {
		name   string
		failed []image.Point
		want   []ErrorRegion
	}{
		{
			name: "Empty",
		},
		{
			name:   "TwoDisjointBlocks",
			failed: []image.Point{{0, 0}, {2, 2}},
			want:   []ErrorRegion{{X: 0, Y: 0, Width: 1, Height: 1}, {X: 32, Y: 32, Width: 1, Height: 1}},
		},
		{
			name:   "DiagonalNeighboursStaySeparate",
			failed: []image.Point{{0, 0}, {1, 1}},
			want:   []ErrorRegion{{X: 0, Y: 0, Width: 1, Height: 1}, {X: 16, Y: 16, Width: 1, Height: 1}},
		},
		{
			name:   "HorizontalRun",
			failed: []image.Point{{1, 1}, {2, 1}},
			want:   []ErrorRegion{{X: 16, Y: 16, Width: 2, Height: 1}},
		},
		{
			name:   "VerticalRun",
			failed: []image.Point{{3, 0}, {3, 1}, {3, 2}},
			want:   []ErrorRegion{{X: 48, Y: 0, Width: 1, Height: 3}},
		},
		{
			name:   "GrowsRightBelowSeed",
			failed: []image.Point{{0, 0}, {0, 1}, {1, 1}},
			want:   []ErrorRegion{{X: 0, Y: 0, Width: 2, Height: 2}},
		},
		{
			name:   "GrowsLeftBelowSeed",
			failed: []image.Point{{2, 0}, {0, 1}, {1, 1}, {2, 1}},
			want:   []ErrorRegion{{X: 0, Y: 0, Width: 3, Height: 2}},
		},
		{
			name:   "GapRowEndsRegion",
			failed: []image.Point{{0, 0}, {0, 2}},
			want:   []ErrorRegion{{X: 0, Y: 0, Width: 1, Height: 1}, {X: 0, Y: 32, Width: 1, Height: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gridOf(4, 4, tt.failed...)
			assert.Equal(t, tt.want, aggregateRegions(g))
			assert.Zero(t, g.Count(), "every claimed cell is cleared")
		})
	}
}

func TestAggregateRegions_CoversEveryFailure(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 50; round++ {
		g := gridOf(12, 9)
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				g.Set(col, row, rng.IntN(3) == 0)
			}
		}
		failed := g.Failed()
		regions := aggregateRegions(g)

		assert.Zero(t, g.Count())
		for _, p := range failed {
			px := image.Pt(p.X*BlockSize, p.Y*BlockSize)
			covered := false
			for _, r := range regions {
				if px.In(r.Bounds(12*BlockSize, 9*BlockSize)) {
					covered = true
					break
				}
			}
			assert.True(t, covered, "round %d: block %v not in any region", round, p)
		}
		for _, r := range regions {
			assert.GreaterOrEqual(t, r.Width, 1)
			assert.GreaterOrEqual(t, r.Height, 1)
		}
	}
}

func TestErrorRegion_Bounds(t *testing.T) {
	r := ErrorRegion{X: 16, Y: 32, Width: 2, Height: 1}
	assert.Equal(t, image.Rect(16, 32, 48, 48), r.Bounds(100, 100))
	assert.Equal(t, image.Rect(16, 32, 40, 45), r.Bounds(40, 45))
}
