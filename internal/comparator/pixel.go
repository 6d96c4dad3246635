package comparator

import (
	"fmt"
	"image"
	"image/color"
)

// Layout describes the channel order of a packed pixel buffer.
type Layout int

const (
	// LayoutGeneric reads pixels one at a time through image.Image.At.
	LayoutGeneric Layout = iota
	LayoutRGB
	LayoutBGR
	LayoutARGB
	LayoutABGR
	// LayoutRGBA is the non-premultiplied byte order used by *image.NRGBA.
	LayoutRGBA
	// LayoutPremultiplied is the alpha-premultiplied order used by *image.RGBA.
	LayoutPremultiplied
)

func (l Layout) String() string {
	switch l {
	case LayoutRGB:
		return "RGB"
	case LayoutBGR:
		return "BGR"
	case LayoutARGB:
		return "ARGB"
	case LayoutABGR:
		return "ABGR"
	case LayoutRGBA:
		return "RGBA"
	case LayoutPremultiplied:
		return "RGBA (premultiplied)"
	default:
		return "generic"
	}
}

// Source is a decoded raster image that can hand out rectangles of packed
// 0xAARRGGBB pixels.
type Source interface {
	Width() int
	Height() int
	// ReadRect copies the w×h rectangle at (x, y) into dst, row-major with
	// stride w. The rectangle must lie inside the image.
	ReadRect(x, y, w, h int, dst []uint32)
}

// Image is an immutable Source whose pixel reader is chosen once, when the
// image is constructed.
type Image struct {
	width, height int
	layout        Layout
	reader        rowReader
}

// rowReader reads n pixels of row y starting at column x.
type rowReader interface {
	readRow(x, y, n int, dst []uint32)
}

// NewImage wraps a decoded image. *image.NRGBA and *image.RGBA are read
// straight from their Pix slices; every other type goes through At.
func NewImage(img image.Image) (*Image, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, b.Dx(), b.Dy())
	}

	switch src := img.(type) {
	case *image.NRGBA:
		if src.Pix == nil {
			return nil, ErrNilImage
		}
		return &Image{
			width:  b.Dx(),
			height: b.Dy(),
			layout: LayoutRGBA,
			reader: newPackedReader(src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride, LayoutRGBA),
		}, nil
	case *image.RGBA:
		if src.Pix == nil {
			return nil, ErrNilImage
		}
		return &Image{
			width:  b.Dx(),
			height: b.Dy(),
			layout: LayoutPremultiplied,
			reader: newPackedReader(src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride, LayoutPremultiplied),
		}, nil
	default:
		return &Image{
			width:  b.Dx(),
			height: b.Dy(),
			layout: LayoutGeneric,
			reader: genericReader{img: img, min: b.Min},
		}, nil
	}
}

// NewPacked wraps a raw pixel buffer laid out as described by layout.
// stride is the number of bytes between the starts of consecutive rows.
func NewPacked(pix []byte, width, height, stride int, layout Layout) (*Image, error) {
	if pix == nil {
		return nil, ErrNilImage
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, width, height)
	}
	bpp := bytesPerPixel(layout)
	if bpp == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownLayout, layout)
	}
	if stride < width*bpp {
		return nil, fmt.Errorf("%w: stride %d is smaller than a %d pixel row", ErrShortBuffer, stride, width)
	}
	if need := stride*(height-1) + width*bpp; len(pix) < need {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(pix), need)
	}
	return &Image{
		width:  width,
		height: height,
		layout: layout,
		reader: newPackedReader(pix, stride, layout),
	}, nil
}

// Width returns the image width in pixels.
func (m *Image) Width() int { return m.width }

// Height returns the image height in pixels.
func (m *Image) Height() int { return m.height }

// Layout reports which reader strategy backs the image.
func (m *Image) Layout() Layout { return m.layout }

// ReadRect implements Source.
func (m *Image) ReadRect(x, y, w, h int, dst []uint32) {
	for row := 0; row < h; row++ {
		m.reader.readRow(x, y+row, w, dst[row*w:(row+1)*w])
	}
}

// ARGB returns the packed pixel at (x, y).
func (m *Image) ARGB(x, y int) uint32 {
	var px [1]uint32
	m.reader.readRow(x, y, 1, px[:])
	return px[0]
}

func bytesPerPixel(l Layout) int {
	switch l {
	case LayoutRGB, LayoutBGR:
		return 3
	case LayoutARGB, LayoutABGR, LayoutRGBA, LayoutPremultiplied:
		return 4
	default:
		return 0
	}
}

// packedReader serves every byte-interleaved layout. Offsets locate each
// channel within one pixel; aOff is negative when the layout has no alpha.
type packedReader struct {
	pix                    []byte
	stride, bpp            int
	rOff, gOff, bOff, aOff int
	premultiplied          bool
}

func newPackedReader(pix []byte, stride int, layout Layout) *packedReader {
	p := &packedReader{pix: pix, stride: stride, bpp: bytesPerPixel(layout), aOff: -1}
	switch layout {
	case LayoutRGB:
		p.rOff, p.gOff, p.bOff = 0, 1, 2
	case LayoutBGR:
		p.rOff, p.gOff, p.bOff = 2, 1, 0
	case LayoutARGB:
		p.aOff, p.rOff, p.gOff, p.bOff = 0, 1, 2, 3
	case LayoutABGR:
		p.aOff, p.bOff, p.gOff, p.rOff = 0, 1, 2, 3
	case LayoutRGBA:
		p.rOff, p.gOff, p.bOff, p.aOff = 0, 1, 2, 3
	case LayoutPremultiplied:
		p.rOff, p.gOff, p.bOff, p.aOff = 0, 1, 2, 3
		p.premultiplied = true
	}
	return p
}

func (p *packedReader) readRow(x, y, n int, dst []uint32) {
	i := y*p.stride + x*p.bpp
	for k := 0; k < n; k++ {
		px := p.pix[i : i+p.bpp : i+p.bpp]
		r, g, b := uint32(px[p.rOff]), uint32(px[p.gOff]), uint32(px[p.bOff])
		a := uint32(0xff)
		if p.aOff >= 0 {
			a = uint32(px[p.aOff])
		}
		if p.premultiplied && a != 0xff {
			if a == 0 {
				r, g, b = 0, 0, 0
			} else {
				r, g, b = min(r*0xff/a, 0xff), min(g*0xff/a, 0xff), min(b*0xff/a, 0xff)
			}
		}
		dst[k] = a<<24 | r<<16 | g<<8 | b
		i += p.bpp
	}
}

// genericReader converts through color.NRGBAModel, one pixel at a time.
type genericReader struct {
	img image.Image
	min image.Point
}

func (g genericReader) readRow(x, y, n int, dst []uint32) {
	for k := 0; k < n; k++ {
		c := color.NRGBAModel.Convert(g.img.At(g.min.X+x+k, g.min.Y+y)).(color.NRGBA)
		dst[k] = packARGB(c.R, c.G, c.B, c.A)
	}
}

func packARGB(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func alpha(p uint32) uint32 { return p >> 24 }
func red(p uint32) uint32   { return (p >> 16) & 0xff }
func green(p uint32) uint32 { return (p >> 8) & 0xff }
func blue(p uint32) uint32  { return p & 0xff }

// cropped limits a Source to its top-left w×h corner.
type cropped struct {
	Source
	w, h int
}

func (c cropped) Width() int  { return c.w }
func (c cropped) Height() int { return c.h }
