package reference

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned when a forced image format is unknown.
var ErrUnsupportedFormat = errors.New("reference: unsupported image format")

// Decode decodes encoded image bytes. An empty format sniffs the data;
// otherwise format forces one of jpeg, png, bmp or webp.
func Decode(data []byte, format string) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("reference: empty image data")
	}
	r := bytes.NewReader(data)

	var (
		img image.Image
		err error
	)
	switch strings.ToLower(format) {
	case "":
		img, _, err = image.Decode(r)
	case "jpeg", "jpg":
		img, err = jpeg.Decode(r)
	case "png":
		img, err = png.Decode(r)
	case "bmp":
		img, err = bmp.Decode(r)
	case "webp":
		img, err = webp.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("could not decode image: %w", err)
	}
	return img, nil
}
