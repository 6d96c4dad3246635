package runner

import (
	"errors"
	"fmt"
	"image"
	"log"
	"slices"

	"github.com/corona10/goimagehash"

	"github.com/sokinpui/shotcmp/internal/comparator"
	"github.com/sokinpui/shotcmp/internal/reference"
	"github.com/sokinpui/shotcmp/internal/report"
)

// Status is the verdict of a single screenshot check.
type Status int

const (
	StatusMatch Status = iota
	StatusMismatch
	// StatusNoBaseline means no reference exists yet. It is reported
	// separately from mismatches.
	StatusNoBaseline
	// StatusError means the check could not run, e.g. the screenshot
	// failed to decode.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusMatch:
		return "match"
	case StatusMismatch:
		return "mismatch"
	case StatusNoBaseline:
		return "no baseline"
	default:
		return "error"
	}
}

// Result is the outcome of one check.
type Result struct {
	Name   string
	Status Status
	// Outcome is the comparison that decided the verdict: the matching
	// reference on success, the closest reference on failure.
	Outcome      *comparator.Outcome
	ReferenceKey string
	Err          error
}

// Verifier compares screenshots against the references a repository
// resolves for them.
type Verifier struct {
	repo       *reference.Repository
	qualifiers reference.Qualifiers
	sink       report.Sink
}

// NewVerifier returns a Verifier. sink may be nil to skip artifacts.
func NewVerifier(repo *reference.Repository, q reference.Qualifiers, sink report.Sink) *Verifier {
	return &Verifier{repo: repo, qualifiers: q, sink: sink}
}

// Verify checks screenshot against every reference resolved for name and
// succeeds on the first match. References are tried closest first by
// perceptual hash, and a failure is reported against the closest one.
func (v *Verifier) Verify(name string, screenshot image.Image, opts comparator.Options) (*Result, error) {
	cands, err := v.repo.Resolve(name, v.qualifiers)
	if errors.Is(err, reference.ErrNoBaseline) {
		log.Printf("No reference found for %s", name)
		if v.sink != nil {
			if err := v.sink.WriteMissing(name, screenshot); err != nil {
				return nil, err
			}
		}
		return &Result{Name: name, Status: StatusNoBaseline}, nil
	}
	if err != nil {
		return nil, err
	}

	shot, err := comparator.NewImage(screenshot)
	if err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", name, err)
	}

	cands = rankByHash(screenshot, cands)
	var closest *comparator.Outcome
	for i, c := range cands {
		ref, err := comparator.NewImage(c.Image)
		if err != nil {
			return nil, fmt.Errorf("reference %s: %w", c.Key, err)
		}
		out, err := comparator.Compare(ref, shot, opts)
		if err != nil {
			return nil, fmt.Errorf("comparing %s with %s: %w", name, c.Key, err)
		}
		if out.Equal {
			if out.Cursor != nil {
				log.Printf("%s matches %s after discounting a cursor at x=%d", name, c.Key, out.Cursor.X)
			}
			return &Result{Name: name, Status: StatusMatch, Outcome: out, ReferenceKey: c.Key}, nil
		}
		if i == 0 {
			closest = out
		}
	}

	log.Printf("%s does not match %d reference(s); %d block(s) differ from %s",
		name, len(cands), closest.FailedBlocks, cands[0].Key)
	if v.sink != nil {
		if err := v.sink.Write(name, screenshot, cands[0].Image, closest.Regions); err != nil {
			return nil, err
		}
	}
	return &Result{Name: name, Status: StatusMismatch, Outcome: closest, ReferenceKey: cands[0].Key}, nil
}

// rankByHash orders candidates by perceptual-hash distance to screenshot.
// The original order is kept when hashing fails or there is nothing to rank.
func rankByHash(screenshot image.Image, cands []reference.Candidate) []reference.Candidate {
	if len(cands) < 2 {
		return cands
	}
	target, err := goimagehash.PerceptionHash(screenshot)
	if err != nil {
		return cands
	}
	dist := make(map[string]int, len(cands))
	for _, c := range cands {
		h, err := goimagehash.PerceptionHash(c.Image)
		if err != nil {
			return cands
		}
		d, err := target.Distance(h)
		if err != nil {
			return cands
		}
		dist[c.Key] = d
	}
	ranked := slices.Clone(cands)
	slices.SortStableFunc(ranked, func(a, b reference.Candidate) int {
		return dist[a.Key] - dist[b.Key]
	})
	return ranked
}
