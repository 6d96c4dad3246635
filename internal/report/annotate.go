// Package report persists the artifacts of a failed screenshot comparison:
// the candidate, its reference, an annotated diff and a JSON summary that
// an HTML report can be rendered from.
package report

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/sokinpui/shotcmp/internal/comparator"
)

const (
	outlineWidth = 2.0
	fillAlpha    = 0.25
)

// RegionColor returns the overlay colour of the i-th region. Hues are
// spread by the golden angle so neighbouring regions stay distinguishable.
func RegionColor(i int) colorful.Color {
	hue := math.Mod(float64(i)*137.508, 360)
	return colorful.Hsv(hue, 0.85, 0.95)
}

// Annotate draws every region as a translucent, outlined rectangle over a
// copy of candidate. The candidate itself is left untouched.
func Annotate(candidate image.Image, regions []comparator.ErrorRegion) image.Image {
	b := candidate.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(candidate, -b.Min.X, -b.Min.Y)

	for i, r := range regions {
		rect := r.Bounds(b.Dx(), b.Dy())
		if rect.Empty() {
			continue
		}
		c := RegionColor(i)
		x, y := float64(rect.Min.X), float64(rect.Min.Y)
		w, h := float64(rect.Dx()), float64(rect.Dy())

		dc.DrawRectangle(x, y, w, h)
		dc.SetRGBA(c.R, c.G, c.B, fillAlpha)
		dc.Fill()

		dc.DrawRectangle(x+outlineWidth/2, y+outlineWidth/2, w-outlineWidth, h-outlineWidth)
		dc.SetColor(c)
		dc.SetLineWidth(outlineWidth)
		dc.Stroke()
	}
	return dc.Image()
}

// Severity is the mean CIEDE2000 difference between reference and
// candidate over rect. Pixels outside either image are skipped.
func Severity(reference, candidate image.Image, rect image.Rectangle) float64 {
	rb, cb := reference.Bounds(), candidate.Bounds()
	var total float64
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			rp := image.Pt(rb.Min.X+x, rb.Min.Y+y)
			cp := image.Pt(cb.Min.X+x, cb.Min.Y+y)
			if !rp.In(rb) || !cp.In(cb) {
				continue
			}
			rc, ok1 := colorful.MakeColor(opaque(reference.At(rp.X, rp.Y)))
			cc, ok2 := colorful.MakeColor(opaque(candidate.At(cp.X, cp.Y)))
			if !ok1 || !ok2 {
				continue
			}
			total += rc.DistanceCIEDE2000(cc)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// opaque drops alpha so colorful.MakeColor accepts fully transparent pixels.
func opaque(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xff
	return n
}
