// Package bench runs synthesis over a directory of fixtures in
// parallel and aggregates the results into a runlog.Log, the way the
// teacher's pipeline package scans a directory of source images and
// aggregates a manifest.Manifest.
package bench

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/resynth/resynth/internal/encoder"
	"github.com/resynth/resynth/internal/runlog"
	"github.com/resynth/resynth/internal/synth/params"
)

// Config holds all parameters for a bench run.
type Config struct {
	FixtureDir string
	OutDir     string
	Preset     string
	Parameters params.Parameters
	OutFormat  string // "png", "webp", "jpeg"; empty defaults to "png"
	Workers    int
	Verbose    bool
}

// Bench orchestrates fixture-directory synthesis runs.
type Bench struct {
	cfg      Config
	registry *encoder.Registry
}

// New creates a configured bench runner.
func New(cfg Config) *Bench {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.OutFormat == "" {
		cfg.OutFormat = "png"
	}
	return &Bench{cfg: cfg, registry: encoder.NewRegistry()}
}

// Run executes the full bench over cfg.FixtureDir and returns the log.
func (b *Bench) Run() (*runlog.Log, error) {
	if b.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[resynth] %s\n", b.registry.String())
	}

	sources, err := ScanFixtures(b.cfg.FixtureDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no image+mask fixture pairs found in %s", b.cfg.FixtureDir)
	}

	if b.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[resynth] found %d fixtures\n", len(sources))
	}

	results := make([]jobResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, b.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if b.cfg.Verbose {
				fmt.Fprintf(os.Stderr, "[resynth] processing: %s\n", s.Key)
			}

			results[idx] = runJob(s, b.cfg.Parameters, b.cfg.OutFormat, b.cfg.OutDir, b.registry)

			if b.cfg.Verbose && results[idx].err == nil {
				fmt.Fprintf(os.Stderr, "[resynth] done: %s (%d passes)\n", s.Key, results[idx].job.PassesRun)
			}
		}(i, src)
	}
	wg.Wait()

	l := runlog.New(b.cfg.Preset)
	l.RunInfo = &runlog.RunInfo{Workers: b.cfg.Workers}

	var errs []error
	for _, r := range results {
		l.Jobs[r.key] = r.job
		if r.err != nil {
			errs = append(errs, r.err)
		}
	}

	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "[resynth] error: %v\n", e)
		}
		if len(errs) == len(sources) {
			return nil, fmt.Errorf("all %d fixtures failed to synthesize", len(errs))
		}
		fmt.Fprintf(os.Stderr, "[resynth] warning: %d of %d fixtures had errors\n", len(errs), len(sources))
	}

	l.ComputeStats()
	return l, nil
}
