// Package runlog is the synthesis counterpart of the teacher's
// manifest package: a JSON record of what a bench invocation did,
// suitable for diffing across runs or feeding a dashboard.
package runlog

// Log is the top-level output of a resynth bench invocation.
type Log struct {
	Version     int            `json:"version"`
	GeneratedAt string         `json:"generated_at"`
	Preset      string         `json:"preset"`
	RunInfo     *RunInfo       `json:"run_info,omitempty"`
	Jobs        map[string]Job `json:"jobs"`
	Stats       Stats          `json:"stats"`
}

// RunInfo captures run-time parameters for diagnostics.
type RunInfo struct {
	Workers int `json:"workers"`
}

// Job describes one synthesized image: its input geometry, the
// outcome, and per-pass refinement statistics.
type Job struct {
	Input      InputInfo  `json:"input"`
	OutputHash string     `json:"output_hash"` // content hash of the encoded output file
	ErrorCode  string     `json:"error_code"`  // "ok" on success, "decode error"/"decode mask error" when an input fails to decode, else the synth.ErrorCode string
	PassesRun  int        `json:"passes_run"`
	Cancelled  bool       `json:"cancelled"`
	Passes     []PassStat `json:"passes,omitempty"`
	DurationMs int64      `json:"duration_ms"`
	Thumbnail  string     `json:"thumbnail,omitempty"` // base64 thumbhash of the output, for quick visual diffing
}

// PassStat mirrors refiner.PassStats for the parts worth persisting.
type PassStat struct {
	PassIndex      int   `json:"pass_index"`
	EndTargetIndex int   `json:"end_target_index"`
	Betters        int64 `json:"betters"`
}

// InputInfo holds metadata about the source image.
type InputInfo struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	HasAlpha bool   `json:"has_alpha"`
}

// Stats aggregates run metrics.
type Stats struct {
	TotalJobs     int   `json:"total_jobs"`
	TotalFailures int   `json:"total_failures"`
	TotalBytesIn  int64 `json:"total_bytes_in"`
	TotalPasses   int64 `json:"total_passes"`
}

// SupportedLogVersion is the current schema version.
const SupportedLogVersion = 1
