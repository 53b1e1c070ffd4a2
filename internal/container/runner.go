// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

var (
	// ErrSpawnFailed is the sentinel error wrapped by SpawnError.
	ErrSpawnFailed = errors.New("failed to spawn engine binary")
)

type (
	// CommandResult captures the outcome of one external process execution.
	CommandResult struct {
		// ExitCode is the process exit status (0 on success).
		ExitCode int
		// Stdout is the captured standard output.
		Stdout []byte
		// Stderr is the captured standard error.
		Stderr []byte
	}

	// CommandRunner executes an external binary with an argument list and
	// optional stdin payload, blocking until the process exits. A nonzero
	// exit status is reported through CommandResult.ExitCode, not the error;
	// the error is reserved for failures to run the process at all
	// (binary missing, not executable, context canceled).
	CommandRunner interface {
		Run(ctx context.Context, argv []string, input []byte) (CommandResult, error)
	}

	// ExecRunner is the production CommandRunner backed by os/exec.
	ExecRunner struct{}

	// SpawnError is returned when the engine binary cannot be started.
	// It is the only condition that makes an engine unavailable.
	SpawnError struct {
		Binary string
		Cause  error
	}
)

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %q: %v", e.Binary, e.Cause)
}

// Unwrap returns ErrSpawnFailed plus the underlying cause so callers can use
// errors.Is against either (e.g. exec.ErrNotFound).
func (e *SpawnError) Unwrap() []error { return []error{ErrSpawnFailed, e.Cause} }

// NewExecRunner creates the default os/exec-backed runner.
func NewExecRunner() *ExecRunner { return &ExecRunner{} }

// Run executes argv[0] with argv[1:], feeding input on stdin when non-nil.
// Stdout and stderr are captured into buffers, so stdin submission and output
// draining proceed concurrently inside os/exec and cannot deadlock on pipe
// buffers regardless of payload size.
func (r *ExecRunner) Run(ctx context.Context, argv []string, input []byte) (CommandResult, error) {
	if len(argv) == 0 {
		return CommandResult{}, &SpawnError{Cause: errors.New("empty argv")}
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if input != nil {
		cmd.Stdin = bytes.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := CommandResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, &SpawnError{Binary: argv[0], Cause: err}
	}
	return res, nil
}
