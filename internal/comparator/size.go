package comparator

// reconcileSize returns a pair of equally sized sources. When the inputs
// differ in size both are cropped to their common top-left rectangle and
// mismatch is true. No rescaling takes place.
func reconcileSize(ref, cand Source) (r, c Source, mismatch bool) {
	if ref.Width() == cand.Width() && ref.Height() == cand.Height() {
		return ref, cand, false
	}
	w := min(ref.Width(), cand.Width())
	h := min(ref.Height(), cand.Height())
	return cropped{Source: ref, w: w, h: h}, cropped{Source: cand, w: w, h: h}, true
}
