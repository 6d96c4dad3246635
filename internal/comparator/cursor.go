package comparator

// MaxCursorYBlocks is how many block rows a blinking caret may span.
const MaxCursorYBlocks = 3

const (
	cursorDarkMax   = 80
	cursorBrightMin = 150
	minCursorHeight = 5
)

// CursorSpan is a one pixel wide vertical run in image coordinates.
// Y1 is inclusive.
type CursorSpan struct {
	X, Y0, Y1 int
}

// Height returns the number of pixels in the span.
func (s CursorSpan) Height() int { return s.Y1 - s.Y0 + 1 }

// cursorWindow is the pixel rectangle searched for a caret, with both
// images sampled into row-major buffers of stride w.
type cursorWindow struct {
	x0, y0, w, h int
	ref, cand    []uint32
}

// cursorBlock returns the first failed block when every other failure lies
// in the same block column no more than MaxCursorYBlocks-1 rows below it.
func cursorBlock(grid *FailureGrid) (col, row int, ok bool) {
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			if !grid.At(c, r) {
				continue
			}
			if !ok {
				col, row, ok = c, r, true
				continue
			}
			if c != col || r > row+MaxCursorYBlocks-1 {
				return 0, 0, false
			}
		}
	}
	return col, row, ok
}

func sampleCursorWindow(ref, cand Source, col, row int) *cursorWindow {
	x0, y0 := col*BlockSize, row*BlockSize
	w := min(BlockSize, ref.Width()-x0)
	h := min(BlockSize*MaxCursorYBlocks, ref.Height()-y0)
	win := &cursorWindow{
		x0: x0, y0: y0, w: w, h: h,
		ref:  make([]uint32, w*h),
		cand: make([]uint32, w*h),
	}
	ref.ReadRect(x0, y0, w, h, win.ref)
	cand.ReadRect(x0, y0, w, h, win.cand)
	return win
}

func (win *cursorWindow) contrastAt(x, y int) bool {
	i := y*win.w + x
	return contrasting(win.ref[i], win.cand[i])
}

func luminance(p uint32) float64 {
	return 0.299*float64(red(p)) + 0.587*float64(green(p)) + 0.114*float64(blue(p))
}

// contrasting reports whether one pixel is dark and the other bright.
func contrasting(a, b uint32) bool {
	la, lb := luminance(a), luminance(b)
	return (la <= cursorDarkMax && lb >= cursorBrightMin) ||
		(lb <= cursorDarkMax && la >= cursorBrightMin)
}

// findCursor looks for a caret in the failed blocks of grid. A candidate
// pixel must contrast in two consecutive rows so horizontal lines are not
// mistaken for a caret. Short runs are accepted only when they touch the
// top or bottom of the window, where the rest of the caret may sit in a
// block that stayed within tolerance.
func findCursor(ref, cand Source, grid *FailureGrid) (CursorSpan, *cursorWindow, bool) {
	col, row, ok := cursorBlock(grid)
	if !ok {
		return CursorSpan{}, nil, false
	}
	win := sampleCursorWindow(ref, cand, col, row)

	for y := 0; y+1 < win.h; y++ {
		for x := 0; x < win.w; x++ {
			if !win.contrastAt(x, y) || !win.contrastAt(x, y+1) {
				continue
			}
			y1 := y + 1
			for y1+1 < win.h && win.contrastAt(x, y1+1) {
				y1++
			}
			if y1-y+1 < minCursorHeight && y != 0 && y1 != win.h-1 {
				return CursorSpan{}, nil, false
			}
			return CursorSpan{X: win.x0 + x, Y0: win.y0 + y, Y1: win.y0 + y1}, win, true
		}
	}
	return CursorSpan{}, nil, false
}

// cursorDiscounted re-compares the blocks of win after copying the caret
// pixels from the reference into a private copy of the candidate block.
func cursorDiscounted(ref, cand Source, win *cursorWindow, span CursorSpan, tolerance float64, metric Metric, s *scratch) bool {
	for by := win.y0; by < win.y0+win.h; by += BlockSize {
		bw, bh := sampleBlock(ref, win.x0, by, s.ref)
		sampleBlock(cand, win.x0, by, s.cand)
		for py := max(by, span.Y0); py <= min(by+bh-1, span.Y1); py++ {
			i := (py-by)*bw + span.X - win.x0
			s.cand[i] = s.ref[i]
		}
		if blocksDiffer(s.ref, s.cand, tolerance, metric) {
			return false
		}
	}
	return true
}
