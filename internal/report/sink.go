package report

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sokinpui/shotcmp/internal/comparator"
)

// Sink receives the artifacts of failed comparisons.
type Sink interface {
	// Write records a mismatch between candidate and reference.
	Write(name string, candidate, reference image.Image, regions []comparator.ErrorRegion) error
	// WriteMissing records a screenshot that had no reference to compare
	// against, so it can be reviewed and promoted to a baseline.
	WriteMissing(name string, candidate image.Image) error
}

// Size is an image size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Region is one error region in pixel coordinates, with its mean colour
// difference and overlay colour.
type Region struct {
	Blocks   comparator.ErrorRegion `json:"blocks"`
	Pixels   Rect                   `json:"pixels"`
	Severity float64                `json:"severity"`
	Color    string                 `json:"color"`
}

// Rect is a pixel rectangle.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Summary is everything a comparison report needs besides the images.
type Summary struct {
	Name      string   `json:"name"`
	Candidate Size     `json:"candidate"`
	Reference *Size    `json:"reference,omitempty"`
	Missing   bool     `json:"missing_reference,omitempty"`
	Regions   []Region `json:"regions"`
	Files     []string `json:"files"`
}

// NewSummary builds the summary of a mismatch.
func NewSummary(name string, candidate, reference image.Image, regions []comparator.ErrorRegion) Summary {
	cb, rb := candidate.Bounds(), reference.Bounds()
	s := Summary{
		Name:      name,
		Candidate: Size{Width: cb.Dx(), Height: cb.Dy()},
		Reference: &Size{Width: rb.Dx(), Height: rb.Dy()},
		Regions:   make([]Region, 0, len(regions)),
	}
	w, h := min(cb.Dx(), rb.Dx()), min(cb.Dy(), rb.Dy())
	for i, r := range regions {
		rect := r.Bounds(w, h)
		s.Regions = append(s.Regions, Region{
			Blocks:   r,
			Pixels:   Rect{X: rect.Min.X, Y: rect.Min.Y, Width: rect.Dx(), Height: rect.Dy()},
			Severity: Severity(reference, candidate, rect),
			Color:    RegionColor(i).Hex(),
		})
	}
	return s
}

// Dir writes artifacts as files into a directory.
type Dir struct {
	Path string
}

// NewDir returns a Dir sink rooted at path.
func NewDir(path string) *Dir {
	return &Dir{Path: path}
}

// Write implements Sink. It writes <name>.png, <name>.reference.png,
// <name>.diff.png and <name>.json.
func (d *Dir) Write(name string, candidate, reference image.Image, regions []comparator.ErrorRegion) error {
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return fmt.Errorf("could not create error directory: %w", err)
	}
	base := fileBase(name)
	summary := NewSummary(name, candidate, reference, regions)
	files := []struct {
		name string
		img  image.Image
	}{
		{base + ".png", candidate},
		{base + ".reference.png", reference},
		{base + ".diff.png", Annotate(candidate, regions)},
	}
	for _, f := range files {
		if err := savePNG(filepath.Join(d.Path, f.name), f.img); err != nil {
			return err
		}
		summary.Files = append(summary.Files, f.name)
	}
	if err := saveJSON(filepath.Join(d.Path, base+".json"), summary); err != nil {
		return err
	}
	log.Printf("Saved comparison artifacts for %s to %s", name, d.Path)
	return nil
}

// WriteMissing implements Sink. It writes <name>.png and <name>.json.
func (d *Dir) WriteMissing(name string, candidate image.Image) error {
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return fmt.Errorf("could not create error directory: %w", err)
	}
	base := fileBase(name)
	if err := savePNG(filepath.Join(d.Path, base+".png"), candidate); err != nil {
		return err
	}
	cb := candidate.Bounds()
	summary := Summary{
		Name:      name,
		Candidate: Size{Width: cb.Dx(), Height: cb.Dy()},
		Missing:   true,
		Regions:   []Region{},
		Files:     []string{base + ".png"},
	}
	if err := saveJSON(filepath.Join(d.Path, base+".json"), summary); err != nil {
		return err
	}
	log.Printf("Saved screenshot without reference for %s to %s", name, d.Path)
	return nil
}

// fileBase turns a logical name into a safe file name.
func fileBase(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("could not encode %s: %w", path, err)
	}
	return nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return nil
}
