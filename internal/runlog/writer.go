package runlog

import (
	"encoding/json"
	"os"
	"time"
)

// New creates an empty log with defaults.
func New(preset string) *Log {
	return &Log{
		Version:     SupportedLogVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Preset:      preset,
		Jobs:        make(map[string]Job),
	}
}

// ComputeStats recalculates aggregate statistics from jobs.
func (l *Log) ComputeStats() {
	var s Stats
	s.TotalJobs = len(l.Jobs)
	for _, j := range l.Jobs {
		s.TotalBytesIn += j.Input.Size
		s.TotalPasses += int64(j.PassesRun)
		if j.ErrorCode != "" && j.ErrorCode != "ok" {
			s.TotalFailures++
		}
	}
	l.Stats = s
}

// WriteJSON serializes the log to a JSON file with stable ordering.
func WriteJSON(l *Log, path string) error {
	l.ComputeStats()

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
