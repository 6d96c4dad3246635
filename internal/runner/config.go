package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sokinpui/shotcmp/internal/reference"
)

// Config holds all the configuration parameters for a run, parsed from
// command-line flags.
type Config struct {
	ReferencePath   string
	CandidatePath   string
	ManifestPath    string
	OutputDirectory string
	Tolerance       float64
	CursorDetection bool
	Metric          string
	Workers         int
	ImageType       string
	Qualifiers      reference.Qualifiers
	// Quiet disables the spinner and the styled summary.
	Quiet bool
}

// Manifest describes a batch of screenshot checks. Values set in the
// manifest take precedence over flags; values set on a check take
// precedence over the manifest.
type Manifest struct {
	Tolerance       *float64             `yaml:"tolerance"`
	CursorDetection *bool                `yaml:"cursor_detection"`
	Metric          string               `yaml:"metric"`
	Output          string               `yaml:"output"`
	Qualifiers      reference.Qualifiers `yaml:"qualifiers"`
	References      []ReferenceEntry     `yaml:"references"`
	Checks          []Check              `yaml:"checks"`
}

// ReferenceEntry maps a reference key to an image file.
type ReferenceEntry struct {
	Key  string `yaml:"key"`
	Path string `yaml:"path"`
}

// Check compares one screenshot against the references resolved for Name.
type Check struct {
	Name            string   `yaml:"name"`
	Screenshot      string   `yaml:"screenshot"`
	Tolerance       *float64 `yaml:"tolerance"`
	CursorDetection *bool    `yaml:"cursor_detection"`
}

// LoadManifest reads and validates a YAML manifest. Relative paths are
// resolved against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("could not parse manifest %s: %w", path, err)
	}
	m.resolvePaths(filepath.Dir(path))
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) resolvePaths(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	m.Output = abs(m.Output)
	for i := range m.References {
		m.References[i].Path = abs(m.References[i].Path)
	}
	for i := range m.Checks {
		m.Checks[i].Screenshot = abs(m.Checks[i].Screenshot)
	}
}

func (m *Manifest) validate() error {
	if len(m.Checks) == 0 {
		return fmt.Errorf("no checks defined")
	}
	if err := checkTolerance(m.Tolerance); err != nil {
		return err
	}
	for i, r := range m.References {
		if r.Key == "" || r.Path == "" {
			return fmt.Errorf("reference %d: key and path are required", i)
		}
	}
	names := make(map[string]bool, len(m.Checks))
	for i, c := range m.Checks {
		if c.Name == "" || c.Screenshot == "" {
			return fmt.Errorf("check %d: name and screenshot are required", i)
		}
		if names[c.Name] {
			return fmt.Errorf("check %q is defined twice", c.Name)
		}
		names[c.Name] = true
		if err := checkTolerance(c.Tolerance); err != nil {
			return fmt.Errorf("check %q: %w", c.Name, err)
		}
	}
	return nil
}

func checkTolerance(t *float64) error {
	if t != nil && !(*t >= 0 && *t <= 1) {
		return fmt.Errorf("tolerance %g is outside [0, 1]", *t)
	}
	return nil
}

// pairManifest turns a single --reference/--candidate pair into a manifest
// with one check named after the candidate file.
func pairManifest(cfg *Config) *Manifest {
	name := strings.TrimSuffix(filepath.Base(cfg.CandidatePath), filepath.Ext(cfg.CandidatePath))
	return &Manifest{
		References: []ReferenceEntry{{Key: name, Path: cfg.ReferencePath}},
		Checks:     []Check{{Name: name, Screenshot: cfg.CandidatePath}},
	}
}
