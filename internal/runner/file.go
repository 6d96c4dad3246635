package runner

import (
	"fmt"
	"image"
	"os"

	"github.com/sokinpui/shotcmp/internal/reference"
)

// loadImage opens and decodes an image from the given file path.
func loadImage(path string, imageType string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	img, err := reference.Decode(data, imageType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// loadStore reads every reference file listed in the manifest into an
// in-memory store keyed by its reference key.
func loadStore(entries []ReferenceEntry) (*reference.MapStore, error) {
	store := reference.NewMapStore()
	for _, e := range entries {
		data, err := os.ReadFile(e.Path)
		if err != nil {
			return nil, fmt.Errorf("could not read reference %s: %w", e.Key, err)
		}
		store.Put(e.Key, data)
	}
	return store, nil
}
