package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/resynth/resynth/internal/runlog"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <runlog_path>",
	Short: "Validate a resynth run log and check it's internally consistent",
	Long: `Reads a resynth.runlog.json written by "resynth bench",
checks its internal consistency — schema
version, per-job pass/betters/hash sanity, and the aggregate Stats
totals actually matching the per-job records — the way "tgimg-cli
validate" checks a tgimg manifest, and reports any error found.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	logPath := args[0]

	data, err := os.ReadFile(logPath)
	if err != nil {
		return fmt.Errorf("read run log: %w", err)
	}

	var l runlog.Log
	if err := json.Unmarshal(data, &l); err != nil {
		return fmt.Errorf("parse run log: %w", err)
	}

	errs := validateRunLog(&l)

	if len(errs) == 0 {
		fmt.Println("  ✓ Run log is valid")
		fmt.Printf("  ✓ %d job(s), %d failure(s), %d total pass(es)\n", l.Stats.TotalJobs, l.Stats.TotalFailures, l.Stats.TotalPasses)
		return nil
	}

	fmt.Printf("  ✗ Run log has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

// validateRunLog checks a runlog.Log for internal consistency: schema
// version, per-job pass/betters/hash sanity, and the aggregate Stats
// totals actually matching the per-job records — the run-log analogue
// of tgimg-cli's validateManifest asset/variant/stats checks.
func validateRunLog(l *runlog.Log) []string {
	var errs []string

	if l.Version != runlog.SupportedLogVersion {
		errs = append(errs, fmt.Sprintf("unsupported run log version: %d", l.Version))
	}
	if len(l.Jobs) == 0 {
		errs = append(errs, "run log has no jobs")
	}

	var computedFailures int
	var computedPasses int64
	for key, job := range l.Jobs {
		if job.ErrorCode == "" {
			errs = append(errs, fmt.Sprintf("job %q: missing error_code", key))
		}
		succeeded := job.ErrorCode == "" || job.ErrorCode == "ok"
		if !succeeded {
			computedFailures++
		}

		if job.PassesRun < 0 {
			errs = append(errs, fmt.Sprintf("job %q: negative passes_run %d", key, job.PassesRun))
		}
		computedPasses += int64(job.PassesRun)

		if succeeded && job.OutputHash == "" {
			errs = append(errs, fmt.Sprintf("job %q: successful but missing output_hash", key))
		}
		if job.Input.Width <= 0 || job.Input.Height <= 0 {
			errs = append(errs, fmt.Sprintf("job %q: invalid input dimensions %dx%d", key, job.Input.Width, job.Input.Height))
		}
		if job.DurationMs < 0 {
			errs = append(errs, fmt.Sprintf("job %q: negative duration_ms %d", key, job.DurationMs))
		}

		seenPass := map[int]bool{}
		for i, ps := range job.Passes {
			if seenPass[ps.PassIndex] {
				errs = append(errs, fmt.Sprintf("job %q: duplicate pass_index %d at passes[%d]", key, ps.PassIndex, i))
			}
			seenPass[ps.PassIndex] = true
			if ps.Betters < 0 {
				errs = append(errs, fmt.Sprintf("job %q: negative betters %d at passes[%d]", key, ps.Betters, i))
			}
			if ps.EndTargetIndex < 0 {
				errs = append(errs, fmt.Sprintf("job %q: negative end_target_index %d at passes[%d]", key, ps.EndTargetIndex, i))
			}
		}
		if succeeded && len(job.Passes) > 0 && job.Passes[len(job.Passes)-1].PassIndex+1 != job.PassesRun {
			errs = append(errs, fmt.Sprintf("job %q: passes_run=%d but last recorded pass_index is %d",
				key, job.PassesRun, job.Passes[len(job.Passes)-1].PassIndex))
		}
	}

	if l.Stats.TotalJobs != len(l.Jobs) {
		errs = append(errs, fmt.Sprintf("stats.total_jobs mismatch: %d != %d", l.Stats.TotalJobs, len(l.Jobs)))
	}
	if l.Stats.TotalFailures != computedFailures {
		errs = append(errs, fmt.Sprintf("stats.total_failures mismatch: %d != %d", l.Stats.TotalFailures, computedFailures))
	}
	if l.Stats.TotalPasses != computedPasses {
		errs = append(errs, fmt.Sprintf("stats.total_passes mismatch: %d != %d", l.Stats.TotalPasses, computedPasses))
	}

	return errs
}
