package comparator

// BlockSize is the edge length of a macroblock, the unit of comparison.
const BlockSize = 16

const blockLen = BlockSize * BlockSize

// blockCount returns how many blocks cover n pixels.
func blockCount(n int) int {
	return (n + BlockSize - 1) / BlockSize
}

// scratch holds the working buffers of a single comparison. It is never
// shared between calls.
type scratch struct {
	ref, cand []uint32
}

func newScratch() *scratch {
	return &scratch{
		ref:  make([]uint32, blockLen),
		cand: make([]uint32, blockLen),
	}
}

// sampleBlock reads the block whose top-left pixel is (x, y) into dst.
// Near the right and bottom edges only the in-bounds part is read; the
// tail of dst is zeroed. It returns the clipped width and height.
func sampleBlock(src Source, x, y int, dst []uint32) (w, h int) {
	w = min(BlockSize, src.Width()-x)
	h = min(BlockSize, src.Height()-y)
	n := w * h
	src.ReadRect(x, y, w, h, dst[:n])
	clear(dst[n:])
	return w, h
}

// identical reports whether both blocks hold exactly the same pixels.
func identical(ref, cand []uint32) bool {
	for i := range ref {
		if ref[i] != cand[i] {
			return false
		}
	}
	return true
}

// blocksDiffer reports whether cand departs from ref by more than tolerance
// under metric.
func blocksDiffer(ref, cand []uint32, tolerance float64, metric Metric) bool {
	if identical(ref, cand) {
		return false
	}
	return metric.Distance(ref, cand) > tolerance
}
