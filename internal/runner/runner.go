// Package runner verifies screenshots against reference images in
// parallel, writing artifacts for every failure.
package runner

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/shotcmp/internal/comparator"
	"github.com/sokinpui/shotcmp/internal/reference"
	"github.com/sokinpui/shotcmp/internal/report"
)

// Summary aggregates the results of a run.
type Summary struct {
	Results  []*Result
	Duration time.Duration
}

// Count returns how many results have the given status.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Failed reports whether any check did not match.
func (s *Summary) Failed() bool {
	return s.Count(StatusMatch) != len(s.Results)
}

var (
	matchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mismatchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	missingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	durationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("202"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// Run is the main application logic.
func Run(cfg *Config) (*Summary, error) {
	m, err := manifestFor(cfg)
	if err != nil {
		return nil, err
	}
	metricName := cfg.Metric
	if m.Metric != "" {
		metricName = m.Metric
	}
	metric, err := comparator.NewMetric(metricName)
	if err != nil {
		return nil, err
	}
	q := cfg.Qualifiers
	if m.Qualifiers != (reference.Qualifiers{}) {
		q = m.Qualifiers
	}
	output := cfg.OutputDirectory
	if m.Output != "" {
		output = m.Output
	}

	store, err := loadStore(m.References)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d reference image(s); running %d check(s) with %d workers.", store.Len(), len(m.Checks), cfg.Workers)

	var sink report.Sink
	if output != "" {
		sink = report.NewDir(output)
	}
	verifier := NewVerifier(reference.NewRepository(store), q, sink)

	jobs := make(chan job, len(m.Checks))
	results := make(chan *Result, len(m.Checks))
	var processed int64
	total := int64(len(m.Checks))

	var wg sync.WaitGroup
	for i := 0; i < max(cfg.Workers, 1); i++ {
		wg.Add(1)
		go worker(&wg, jobs, results, &processed, verifier)
	}

	done := make(chan struct{})
	var spinnerWg sync.WaitGroup
	startTime := time.Now()
	if !cfg.Quiet {
		spinnerWg.Add(1)
		go showProgress(&spinnerWg, done, &processed, total)
	}

	for _, c := range m.Checks {
		jobs <- job{check: c, opts: optionsFor(cfg, m, c, metric), imageType: cfg.ImageType}
	}
	close(jobs)

	wg.Wait()
	close(done)
	spinnerWg.Wait()
	close(results)

	summary := &Summary{Duration: time.Since(startTime)}
	for r := range results {
		summary.Results = append(summary.Results, r)
		if r.Err != nil {
			log.Printf("Check %s failed to run: %v", r.Name, r.Err)
		} else {
			log.Printf("Check %s: %s", r.Name, r.Status)
		}
	}
	sort.Slice(summary.Results, func(i, j int) bool {
		return summary.Results[i].Name < summary.Results[j].Name
	})
	log.Printf("Verification of %d check(s) took %s.", total, summary.Duration)

	if !cfg.Quiet {
		printSummary(summary)
	}
	return summary, nil
}

func manifestFor(cfg *Config) (*Manifest, error) {
	if cfg.ManifestPath != "" {
		return LoadManifest(cfg.ManifestPath)
	}
	return pairManifest(cfg), nil
}

// optionsFor layers flag, manifest and check settings, later ones winning.
func optionsFor(cfg *Config, m *Manifest, c Check, metric comparator.Metric) comparator.Options {
	opts := comparator.Options{
		Tolerance:       cfg.Tolerance,
		CursorDetection: cfg.CursorDetection,
		Metric:          metric,
	}
	if m.Tolerance != nil {
		opts.Tolerance = *m.Tolerance
	}
	if m.CursorDetection != nil {
		opts.CursorDetection = *m.CursorDetection
	}
	if c.Tolerance != nil {
		opts.Tolerance = *c.Tolerance
	}
	if c.CursorDetection != nil {
		opts.CursorDetection = *c.CursorDetection
	}
	return opts
}

func showProgress(wg *sync.WaitGroup, done <-chan struct{}, processed *int64, total int64) {
	defer wg.Done()
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			fmt.Printf("\r%s Verification complete. %d/%d checks processed.\n", "✓", atomic.LoadInt64(processed), total)
			return
		case <-ticker.C:
			s, _ = s.Update(s.Tick())
			fmt.Printf("\r%s Verifying screenshots %d/%d...", s.View(), atomic.LoadInt64(processed), total)
		}
	}
}

func printSummary(s *Summary) {
	for _, r := range s.Results {
		switch r.Status {
		case StatusMatch:
			fmt.Printf("%s %s\n", matchStyle.Render("✓"), r.Name)
		case StatusMismatch:
			detail := fmt.Sprintf("%d region(s) differ from %s", len(r.Outcome.Regions), r.ReferenceKey)
			if r.Outcome.SizeMismatch {
				detail = "image size differs from " + r.ReferenceKey
			}
			fmt.Printf("%s %s: %s\n", mismatchStyle.Render("✗"), r.Name, detail)
		case StatusNoBaseline:
			fmt.Printf("%s %s: no reference image\n", missingStyle.Render("?"), r.Name)
		default:
			fmt.Printf("%s %s: %v\n", mismatchStyle.Render("!"), r.Name, r.Err)
		}
	}
	fmt.Printf("%s matched, %s mismatched, %s without reference, %s errors in %s\n",
		matchStyle.Render(fmt.Sprint(s.Count(StatusMatch))),
		mismatchStyle.Render(fmt.Sprint(s.Count(StatusMismatch))),
		missingStyle.Render(fmt.Sprint(s.Count(StatusNoBaseline))),
		mismatchStyle.Render(fmt.Sprint(s.Count(StatusError))),
		durationStyle.Render(fmt.Sprintf("%.4fs", s.Duration.Seconds())),
	)
}
