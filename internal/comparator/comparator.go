// Package comparator decides whether a screenshot matches its reference
// image. Both images are split into 16×16 macroblocks. Blocks are compared
// against a tolerance, a lone blinking text caret may be discounted, and
// failing blocks are grouped into rectangles for reporting.
package comparator

import (
	"fmt"
	"image"
)

// DefaultTolerance is the block tolerance used when none is configured.
const DefaultTolerance = 0.01

// Options configures a single comparison.
type Options struct {
	// Tolerance is the largest block distance still considered equal, in [0, 1].
	Tolerance float64
	// CursorDetection discounts a single blinking caret as the only difference.
	CursorDetection bool
	// Metric measures block distance. Nil selects RGBMetric.
	Metric Metric
}

// DefaultOptions returns the options used by the CLI when no flags are set.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance, Metric: RGBMetric{}}
}

// Outcome is the verdict of one comparison plus its diagnostics.
type Outcome struct {
	Equal bool
	// SizeMismatch is set when the images differ in size. It always
	// implies Equal == false.
	SizeMismatch bool
	// FailureGrid is nil when the images are equal.
	FailureGrid *FailureGrid
	// FailedBlocks counts failed blocks before any caret was discounted.
	FailedBlocks int
	// Regions groups failed blocks for reporting. Empty on success.
	Regions []ErrorRegion
	// Cursor is the caret that was discounted, if any.
	Cursor *CursorSpan
}

// Compare compares candidate against reference. It never returns an error
// because the images differ; errors are reserved for unusable input.
func Compare(reference, candidate Source, opts Options) (*Outcome, error) {
	if err := validate(reference, candidate, opts); err != nil {
		return nil, err
	}
	metric := opts.Metric
	if metric == nil {
		metric = RGBMetric{}
	}

	ref, cand, mismatch := reconcileSize(reference, candidate)
	s := newScratch()
	grid := NewFailureGrid(ref.Width(), ref.Height())
	equal := true
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			x, y := col*BlockSize, row*BlockSize
			sampleBlock(ref, x, y, s.ref)
			sampleBlock(cand, x, y, s.cand)
			if blocksDiffer(s.ref, s.cand, opts.Tolerance, metric) {
				grid.Set(col, row, true)
				equal = false
			}
		}
	}

	out := &Outcome{SizeMismatch: mismatch, FailedBlocks: grid.Count()}
	switch {
	case mismatch:
	case equal:
		out.Equal = true
		return out, nil
	case opts.CursorDetection:
		if span, win, ok := findCursor(ref, cand, grid); ok && cursorDiscounted(ref, cand, win, span, opts.Tolerance, metric, s) {
			out.Equal = true
			out.Cursor = &span
			return out, nil
		}
	}

	out.FailureGrid = grid
	out.Regions = aggregateRegions(grid.Clone())
	return out, nil
}

func validate(reference, candidate Source, opts Options) error {
	for _, src := range []struct {
		name string
		img  Source
	}{{"reference", reference}, {"candidate", candidate}} {
		if m, ok := src.img.(*Image); src.img == nil || (ok && m == nil) {
			return fmt.Errorf("%s: %w", src.name, ErrNilImage)
		}
		if src.img.Width() <= 0 || src.img.Height() <= 0 {
			return fmt.Errorf("%s: %w: %dx%d", src.name, ErrEmptyImage, src.img.Width(), src.img.Height())
		}
	}
	if !(opts.Tolerance >= 0 && opts.Tolerance <= 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidTolerance, opts.Tolerance)
	}
	return nil
}

// CompareImages wraps both decoded images with NewImage and compares them.
func CompareImages(reference, candidate image.Image, opts Options) (*Outcome, error) {
	ref, err := NewImage(reference)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	cand, err := NewImage(candidate)
	if err != nil {
		return nil, fmt.Errorf("candidate: %w", err)
	}
	return Compare(ref, cand, opts)
}
