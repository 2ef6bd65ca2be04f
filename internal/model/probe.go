package model

import "time"

// ProbeRecord is one probe that was actually started, as kept in the
// `probe_history` table, the Redis recent list and probe.completed events.
// Validation failures never produce a record.
//
// Fields:
//
//	ID        – random UUID assigned when the probe finished.
//	Host      – the validated host candidate.
//	Args      – argument vector passed to the probe binary.
//	Succeeded – whether the process exited with status 0.
//	ExitCode  – process exit status, -1 when it never started.
//	Stdout    – captured standard output.
//	Stderr    – captured standard error.
//	StartedAt – when the process was started (UTC).
//	Duration  – wall time until the process exited.
type ProbeRecord struct {
	ID        string        `json:"id"`
	Host      string        `json:"host"`
	Args      []string      `json:"args"`
	Succeeded bool          `json:"succeeded"`
	ExitCode  int           `json:"exit_code"`
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}
