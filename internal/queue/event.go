// Package queue defines message payloads exchanged over the message broker.
package queue

// ProbeCompletedQueue is the durable queue probe events are published to.
const ProbeCompletedQueue = "probe.completed"

// ProbeCompletedEvent is published after every probe process that was
// started, whether it succeeded or not.  It carries the outcome but not the
// full output; the history store keeps that.
type ProbeCompletedEvent struct {
	ProbeID     string   `json:"probe_id"`
	Host        string   `json:"host"`
	Args        []string `json:"args"`
	Succeeded   bool     `json:"succeeded"`
	ExitCode    int      `json:"exit_code"`
	StdoutBytes int      `json:"stdout_bytes"`
	StderrBytes int      `json:"stderr_bytes"`
	DurationMS  int64    `json:"duration_ms"`
	StartedAt   string   `json:"started_at"`
}
