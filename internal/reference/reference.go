// Package reference resolves a logical screenshot name to the reference
// images it should be compared against.
//
// Keys have the form name[_platform][_browser][_version]. When no image is
// stored for the running browser version, progressively older versions are
// tried, then the unversioned key, then the bare name. Every key may also
// carry accepted alternatives stored as key_1, key_2 and so on.
package reference

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// ErrNoBaseline is returned when no reference exists for a name. It is not
// a comparison failure; callers decide whether to seed a new baseline.
var ErrNoBaseline = errors.New("reference: no baseline image")

// maxAlternatives bounds the key_1, key_2, ... probe.
const maxAlternatives = 32

// Qualifiers narrow a reference to a platform and browser.
type Qualifiers struct {
	Platform string `yaml:"platform"`
	Browser  string `yaml:"browser"`
	// Version is the browser major version. Zero means unknown.
	Version int `yaml:"version"`
}

// Key builds the storage key of name for the given qualifiers and version.
// A non-positive version is left out.
func Key(name string, q Qualifiers, version int) string {
	parts := []string{name}
	if p := strings.ToLower(strings.TrimSpace(q.Platform)); p != "" {
		parts = append(parts, p)
	}
	if b := strings.ToLower(strings.TrimSpace(q.Browser)); b != "" {
		parts = append(parts, b)
	}
	if version > 0 {
		parts = append(parts, strconv.Itoa(version))
	}
	return strings.Join(parts, "_")
}

// Variants lists the keys tried for name, most specific first.
func Variants(name string, q Qualifiers) []string {
	var keys []string
	seen := map[string]bool{}
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for v := q.Version; v > 0; v-- {
		add(Key(name, q, v))
	}
	add(Key(name, q, 0))
	add(name)
	return keys
}

// Store is a read-only view over stored reference bytes.
type Store interface {
	Lookup(key string) ([]byte, bool)
}

// Candidate is one decoded reference image and the key it was stored under.
type Candidate struct {
	Key   string
	Image image.Image
}

// Repository resolves names against a Store.
type Repository struct {
	store Store
}

// NewRepository returns a Repository reading from store.
func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

// Resolve returns every reference stored under the first key variant of
// name that has any. It returns ErrNoBaseline when no variant matches.
func (r *Repository) Resolve(name string, q Qualifiers) ([]Candidate, error) {
	for _, key := range Variants(name, q) {
		cands, err := r.load(key)
		if err != nil {
			return nil, err
		}
		if len(cands) > 0 {
			return cands, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoBaseline, name)
}

// load decodes key and its alternatives key_1, key_2, ... up to the first gap.
func (r *Repository) load(key string) ([]Candidate, error) {
	var cands []Candidate
	for i := 0; i <= maxAlternatives; i++ {
		k := key
		if i > 0 {
			k = key + "_" + strconv.Itoa(i)
		}
		data, ok := r.store.Lookup(k)
		if !ok {
			if i == 0 {
				continue
			}
			break
		}
		img, err := Decode(data, "")
		if err != nil {
			return nil, fmt.Errorf("reference %s: %w", k, err)
		}
		cands = append(cands, Candidate{Key: k, Image: img})
	}
	return cands, nil
}
