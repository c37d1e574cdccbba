package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/resynth/resynth/internal/bench"
	"github.com/resynth/resynth/internal/runlog"
	"github.com/resynth/resynth/internal/synth/params"
	"github.com/spf13/cobra"
)

var (
	benchOutDir  string
	benchPreset  string
	benchWorkers int
	benchFormat  string
)

var benchCmd = &cobra.Command{
	Use:   "bench <fixture_dir>",
	Short: "Run synthesis over a directory of image+mask fixtures",
	Long: `Scans fixture_dir for "<key>.<ext>" / "<key>.mask.<ext>" pairs, runs
synthesis on each, and writes a run log plus the synthesized outputs.

Useful for regression testing the engine against a corpus of known
scenes, or for sweeping parameter presets across many images at once.`,
	Args: cobra.ExactArgs(1),
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringVarP(&benchOutDir, "out", "o", "./resynth_out", "output directory")
	benchCmd.Flags().StringVarP(&benchPreset, "preset", "p", "default", "parameter preset: default, fast, hq")
	benchCmd.Flags().IntVarP(&benchWorkers, "workers", "w", 0, "parallel fixture workers (0 = NumCPU)")
	benchCmd.Flags().StringVar(&benchFormat, "format", "png", "output format: png, webp, jpeg")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	fixtureDir := args[0]
	start := time.Now()

	absFixtures, err := filepath.Abs(fixtureDir)
	if err != nil {
		return fmt.Errorf("resolve fixture path: %w", err)
	}
	absOutput, err := filepath.Abs(benchOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	p := params.Get(benchPreset)

	logVerbose("fixtures: %s", absFixtures)
	logVerbose("output:   %s", absOutput)
	logVerbose("preset:   %s (neighbors=%d trys=%d)", benchPreset, p.Neighbors, p.Trys)

	b := bench.New(bench.Config{
		FixtureDir: absFixtures,
		OutDir:     absOutput,
		Preset:     benchPreset,
		Parameters: p,
		OutFormat:  benchFormat,
		Workers:    benchWorkers,
		Verbose:    verbose,
	})

	l, err := b.Run()
	if err != nil {
		return fmt.Errorf("bench: %w", err)
	}

	logPath := filepath.Join(absOutput, "resynth.runlog.json")
	if err := runlog.WriteJSON(l, logPath); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}

	printBenchReport(l, time.Since(start))
	return nil
}

func printBenchReport(l *runlog.Log, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║              resynth bench complete               ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	s := l.Stats
	fmt.Printf("  Jobs:     %d\n", s.TotalJobs)
	fmt.Printf("  Failures: %d\n", s.TotalFailures)
	fmt.Printf("  Passes:   %d total\n", s.TotalPasses)
	fmt.Printf("  Input:    %s\n", formatBytes(s.TotalBytesIn))
	fmt.Printf("  Time:     %s\n", elapsed.Round(time.Millisecond))
	if l.RunInfo != nil {
		fmt.Printf("  Workers:  %d\n", l.RunInfo.Workers)
	}
	fmt.Println()

	type jobRow struct {
		key   string
		job   runlog.Job
	}
	var rows []jobRow
	for key, job := range l.Jobs {
		rows = append(rows, jobRow{key, job})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].key < rows[j].key })

	fmt.Println("  Jobs:")
	for _, r := range rows {
		status := "ok"
		if r.job.ErrorCode != "ok" {
			status = "FAIL: " + r.job.ErrorCode
		}
		fmt.Printf("    %-30s %-20s passes=%d  %dms\n",
			truncKey(r.key, 30), status, r.job.PassesRun, r.job.DurationMs)
	}
	fmt.Println()

	data, _ := json.Marshal(l)
	fmt.Printf("  Run log:  resynth.runlog.json (%s)\n", formatBytes(int64(len(data))))
	fmt.Println()
}
