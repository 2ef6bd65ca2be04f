package probe

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Output holds what a probe process wrote before it exited.
type Output struct {
	Stdout []byte
	Stderr []byte
}

//go:generate mockgen -source=runner.go -destination=mock_probe/mock_runner.go -package=mock_probe

// Runner starts one process from an argument vector and waits for it.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (Output, error)
}

type execRunner struct{}

// NewExecRunner returns a Runner backed by os/exec. The process is started
// directly from name and args, never through a shell.
func NewExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args []string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, err
}

// ExitCode collects the exit status of a finished probe from the error Run
// returned. A nil error is 0; an error that is not an exit status (missing
// binary, cancelled context before start) is -1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
