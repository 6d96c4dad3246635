package runner

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/shotcmp/internal/comparator"
	"github.com/sokinpui/shotcmp/internal/reference"
)

func encode(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// recordingSink remembers what it was asked to write.
type recordingSink struct {
	written []string
	missing []string
	regions []comparator.ErrorRegion
}

func (s *recordingSink) Write(name string, _, _ image.Image, regions []comparator.ErrorRegion) error {
	s.written = append(s.written, name)
	s.regions = regions
	return nil
}

func (s *recordingSink) WriteMissing(name string, _ image.Image) error {
	s.missing = append(s.missing, name)
	return nil
}

func checkerboard(w, h, cell int) *image.NRGBA {
	img := solid(w, h, color.White)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestVerifier_Match(t *testing.T) {
	store := reference.NewMapStore()
	store.Put("page", encode(t, solid(32, 32, color.White)))
	sink := &recordingSink{}
	v := NewVerifier(reference.NewRepository(store), reference.Qualifiers{}, sink)

	res, err := v.Verify("page", solid(32, 32, color.White), comparator.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, StatusMatch, res.Status)
	assert.Equal(t, "page", res.ReferenceKey)
	assert.Empty(t, sink.written)
}

func TestVerifier_MatchesAlternative(t *testing.T) {
	store := reference.NewMapStore()
	store.Put("page", encode(t, checkerboard(64, 64, 8)))
	store.Put("page_1", encode(t, solid(64, 64, color.White)))
	v := NewVerifier(reference.NewRepository(store), reference.Qualifiers{}, nil)

	res, err := v.Verify("page", solid(64, 64, color.White), comparator.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, StatusMatch, res.Status)
	assert.Equal(t, "page_1", res.ReferenceKey)
}

// noise returns a deterministic grey-level noise image and its negative.
func noise(w, h int) (img, negative *image.NRGBA) {
	rng := rand.New(rand.NewPCG(7, 11))
	img, negative = solid(w, h, color.White), solid(w, h, color.White)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(rng.IntN(256))
			img.Set(x, y, color.Gray{Y: v})
			negative.Set(x, y, color.Gray{Y: 255 - v})
		}
	}
	return img, negative
}

func TestVerifier_MismatchReportsClosestReference(t *testing.T) {
	ref, negative := noise(64, 64)
	shot := image.NewNRGBA(ref.Bounds())
	copy(shot.Pix, ref.Pix)
	shot.Set(20, 5, color.RGBA{R: 255, A: 255})

	store := reference.NewMapStore()
	store.Put("page", encode(t, negative))
	store.Put("page_1", encode(t, ref))
	sink := &recordingSink{}
	v := NewVerifier(reference.NewRepository(store), reference.Qualifiers{}, sink)

	res, err := v.Verify("page", shot, comparator.Options{Tolerance: 0})
	require.NoError(t, err)
	assert.Equal(t, StatusMismatch, res.Status)
	assert.Equal(t, "page_1", res.ReferenceKey)
	assert.Equal(t, []string{"page"}, sink.written)
	assert.Equal(t, []comparator.ErrorRegion{{X: 16, Y: 0, Width: 1, Height: 1}}, sink.regions)
}

func TestVerifier_NoBaseline(t *testing.T) {
	sink := &recordingSink{}
	v := NewVerifier(reference.NewRepository(reference.NewMapStore()), reference.Qualifiers{Browser: "firefox", Version: 2}, sink)

	res, err := v.Verify("page", solid(8, 8, color.White), comparator.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, StatusNoBaseline, res.Status)
	assert.Nil(t, res.Outcome)
	assert.Equal(t, []string{"page"}, sink.missing)
}

func TestVerifier_InvalidTolerance(t *testing.T) {
	store := reference.NewMapStore()
	store.Put("page", encode(t, solid(8, 8, color.White)))
	v := NewVerifier(reference.NewRepository(store), reference.Qualifiers{}, nil)

	_, err := v.Verify("page", solid(8, 8, color.White), comparator.Options{Tolerance: 2})
	assert.ErrorIs(t, err, comparator.ErrInvalidTolerance)
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.yaml")
	writeFile(t, path, `
tolerance: 0.05
metric: ciede2000
references:
  - key: a
    path: refs/a.png
checks:
  - name: a
    screenshot: /abs/a.png
    cursor_detection: true
`)
	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.NotNil(t, m.Tolerance)
	assert.Equal(t, 0.05, *m.Tolerance)
	assert.Equal(t, "ciede2000", m.Metric)
	assert.Equal(t, filepath.Join(dir, "refs", "a.png"), m.References[0].Path)
	assert.Equal(t, "/abs/a.png", m.Checks[0].Screenshot)
	require.NotNil(t, m.Checks[0].CursorDetection)
	assert.True(t, *m.Checks[0].CursorDetection)
}

func TestLoadManifest_Invalid(t *testing.T) {
	tests := map[string]string{
		"NoChecks":       "tolerance: 0.1\n",
		"BadTolerance":   "tolerance: 3\nchecks:\n  - name: a\n    screenshot: a.png\n",
		"DuplicateCheck": "checks:\n  - name: a\n    screenshot: a.png\n  - name: a\n    screenshot: b.png\n",
		"MissingPath":    "references:\n  - key: a\nchecks:\n  - name: a\n    screenshot: a.png\n",
		"NotYAML":        "checks: [",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "m.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			_, err := LoadManifest(path)
			assert.Error(t, err)
		})
	}
}
