package comparator

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solid creates a uniformly coloured NRGBA test image.
func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func mustImage(t *testing.T, img image.Image) *Image {
	t.Helper()
	m, err := NewImage(img)
	require.NoError(t, err)
	return m
}

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.NRGBA{A: 255}
)

func TestNewImage_InvalidInput(t *testing.T) {
	_, err := NewImage(nil)
	assert.ErrorIs(t, err, ErrNilImage)

	_, err = NewImage(image.NewNRGBA(image.Rect(0, 0, 0, 10)))
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = NewImage(&image.NRGBA{Rect: image.Rect(0, 0, 2, 2)})
	assert.ErrorIs(t, err, ErrNilImage)
}

func TestNewImage_SelectsReader(t *testing.T) {
	tests := []struct {
		name   string
		img    image.Image
		layout Layout
	}{
		{"nrgba", image.NewNRGBA(image.Rect(0, 0, 2, 2)), LayoutRGBA},
		{"rgba", image.NewRGBA(image.Rect(0, 0, 2, 2)), LayoutPremultiplied},
		{"gray", image.NewGray(image.Rect(0, 0, 2, 2)), LayoutGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.layout, mustImage(t, tt.img).Layout())
		})
	}
}

func TestImage_ARGB(t *testing.T) {
	t.Run("NRGBA", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
		img.SetNRGBA(1, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
		assert.Equal(t, uint32(0x280a141e), mustImage(t, img).ARGB(1, 2))
	})

	t.Run("Premultiplied", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, color.RGBA{R: 64, A: 128})
		assert.Equal(t, uint32(0x807f0000), mustImage(t, img).ARGB(0, 0))
	})

	t.Run("GenericIsOpaque", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 1, 1))
		img.SetGray(0, 0, color.Gray{Y: 200})
		assert.Equal(t, uint32(0xffc8c8c8), mustImage(t, img).ARGB(0, 0))
	})

	t.Run("SubImageOrigin", func(t *testing.T) {
		img := solid(4, 4, white)
		img.SetNRGBA(2, 3, black)
		sub := img.SubImage(image.Rect(2, 2, 4, 4))
		m := mustImage(t, sub)
		assert.Equal(t, 2, m.Width())
		assert.Equal(t, uint32(0xff000000), m.ARGB(0, 1))
		assert.Equal(t, uint32(0xffffffff), m.ARGB(0, 0))
	})
}

func TestNewPacked_Layouts(t *testing.T) {
	tests := []struct {
		layout Layout
		pix    []byte
	}{
		{LayoutRGB, []byte{10, 20, 30}},
		{LayoutBGR, []byte{30, 20, 10}},
		{LayoutARGB, []byte{255, 10, 20, 30}},
		{LayoutABGR, []byte{255, 30, 20, 10}},
		{LayoutRGBA, []byte{10, 20, 30, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.layout.String(), func(t *testing.T) {
			m, err := NewPacked(tt.pix, 1, 1, len(tt.pix), tt.layout)
			require.NoError(t, err)
			assert.Equal(t, uint32(0xff0a141e), m.ARGB(0, 0))
		})
	}
}

func TestNewPacked_Stride(t *testing.T) {
	// Two RGB pixels per row with two bytes of padding.
	pix := []byte{
		1, 1, 1, 2, 2, 2, 0, 0,
		3, 3, 3, 4, 4, 4,
	}
	m, err := NewPacked(pix, 2, 2, 8, LayoutRGB)
	require.NoError(t, err)

	dst := make([]uint32, 4)
	m.ReadRect(0, 0, 2, 2, dst)
	assert.Equal(t, []uint32{0xff010101, 0xff020202, 0xff030303, 0xff040404}, dst)
}

func TestNewPacked_InvalidInput(t *testing.T) {
	_, err := NewPacked(nil, 1, 1, 3, LayoutRGB)
	assert.ErrorIs(t, err, ErrNilImage)

	_, err = NewPacked([]byte{}, 0, 1, 3, LayoutRGB)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = NewPacked(make([]byte, 5), 2, 1, 6, LayoutRGB)
	assert.ErrorIs(t, err, ErrShortBuffer)

	_, err = NewPacked(make([]byte, 12), 2, 2, 4, LayoutRGB)
	assert.ErrorIs(t, err, ErrShortBuffer)

	_, err = NewPacked(make([]byte, 4), 1, 1, 4, LayoutGeneric)
	assert.ErrorIs(t, err, ErrUnknownLayout)
}
