// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBuildFailed is the sentinel error wrapped by BuildError.
	ErrBuildFailed = errors.New("image build failed")

	// ErrParseFailed is the sentinel error wrapped by ParseError.
	ErrParseFailed = errors.New("no image identifier in build output")

	// ErrRemoveFailed is the sentinel error wrapped by RemoveImageError.
	ErrRemoveFailed = errors.New("image remove failed")
)

type (
	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides the shared implementation for CLI-based
	// container engines. Docker and Podman engines embed this struct; all
	// per-backend variation is carried by the BackendConfig record, so the
	// invocation-building and output-parsing logic stays in one place.
	BaseCLIEngine struct {
		backend BackendConfig
		binary  string // engine binary; defaults to backend.Binary
		runner  CommandRunner
	}

	// BuildError is returned when the engine build exits nonzero. It
	// carries the captured stderr for diagnosis.
	BuildError struct {
		Engine   string
		Tag      string
		ExitCode int
		Stderr   string
	}

	// ParseError is returned when a build apparently succeeded but no image
	// identifier was recoverable from stdout.
	ParseError struct {
		Engine string
		Stdout string
	}

	// RemoveImageError is returned when rmi exits nonzero. Callers treat it
	// as non-fatal but it is always surfaced, never swallowed.
	RemoveImageError struct {
		Engine   string
		ImageID  string
		ExitCode int
		Stderr   string
	}
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	msg := fmt.Sprintf("%s build of %q failed with exit code %d", e.Engine, e.Tag, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Unwrap returns ErrBuildFailed for errors.Is() compatibility.
func (e *BuildError) Unwrap() error { return ErrBuildFailed }

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s build succeeded but no image identifier was found in output", e.Engine)
}

// Unwrap returns ErrParseFailed for errors.Is() compatibility.
func (e *ParseError) Unwrap() error { return ErrParseFailed }

// Error implements the error interface.
func (e *RemoveImageError) Error() string {
	msg := fmt.Sprintf("%s rmi %s failed with exit code %d", e.Engine, e.ImageID, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Unwrap returns ErrRemoveFailed for errors.Is() compatibility.
func (e *RemoveImageError) Unwrap() error { return ErrRemoveFailed }

// WithRunner sets a custom CommandRunner. Tests inject recording fakes here.
func WithRunner(r CommandRunner) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.runner = r
	}
}

// WithBinary overrides the engine binary name or path.
func WithBinary(binary string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		if binary != "" {
			e.binary = binary
		}
	}
}

// NewBaseCLIEngine creates a base engine for the given backend record.
// Construction performs no I/O; availability is probed lazily.
func NewBaseCLIEngine(backend BackendConfig, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		backend: backend,
		binary:  backend.Binary,
		runner:  NewExecRunner(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Backend returns the backend configuration record.
func (e *BaseCLIEngine) Backend() BackendConfig { return e.backend }

// Binary returns the engine binary in use.
func (e *BaseCLIEngine) Binary() string { return e.binary }

// --- Argument Builders ---

// BuildArgs constructs the full argv for a build invocation. Exactly one of
// the two shapes is produced:
//
//	<binary> build -f <dockerfile> -t <tag> <context_dir>   (path mode)
//	<binary> build -t <tag> -                               (stream mode)
func (e *BaseCLIEngine) BuildArgs(m MaterializedBuild, tag string) []string {
	args := []string{e.binary, "build"}
	switch b := m.(type) {
	case PathBuild:
		args = append(args, "-f", b.DockerfilePath, "-t", tag, b.ContextDir)
	case StreamBuild:
		args = append(args, "-t", tag, "-")
	}
	return args
}

// RemoveImageArgs constructs the argv for an image remove invocation.
func (e *BaseCLIEngine) RemoveImageArgs(imageID string, force bool) []string {
	args := []string{e.binary, "rmi"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, imageID)
	return args
}

// versionArgs constructs the argv for the version/availability probe.
func (e *BaseCLIEngine) versionArgs() []string {
	return append([]string{e.binary}, e.backend.VersionArgs...)
}

// --- Engine Operations ---

// Build materializes the build context, invokes the engine, and returns the
// normalized image identifier parsed from stdout. A spawn failure during a
// build is a hard failure; callers probe Available() beforehand if they want
// to avoid it. No retries happen here: a failed build may leave partial
// state, so retry policy belongs to the caller.
func (e *BaseCLIEngine) Build(ctx context.Context, c BuildContext, tag string) (string, error) {
	materialized, err := Materialize(c, e.backend)
	if err != nil {
		return "", err
	}

	var input []byte
	if stream, ok := materialized.(StreamBuild); ok {
		input = stream.Tar
	}

	res, err := e.runner.Run(ctx, e.BuildArgs(materialized, tag), input)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &BuildError{
			Engine:   string(e.backend.Type),
			Tag:      tag,
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
		}
	}

	id, ok := e.backend.ParseImageID(string(res.Stdout))
	if !ok {
		return "", &ParseError{Engine: string(e.backend.Type), Stdout: string(res.Stdout)}
	}
	return id, nil
}

// RemoveImage removes an image by identifier.
func (e *BaseCLIEngine) RemoveImage(ctx context.Context, imageID string, force bool) error {
	res, err := e.runner.Run(ctx, e.RemoveImageArgs(imageID, force), nil)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &RemoveImageError{
			Engine:   string(e.backend.Type),
			ImageID:  imageID,
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
		}
	}
	return nil
}

// Version returns the engine version string.
func (e *BaseCLIEngine) Version(ctx context.Context) (string, error) {
	res, err := e.runner.Run(ctx, e.versionArgs(), nil)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%s version probe exited with code %d: %s",
			e.backend.Type, res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// Available reports whether the engine binary can be spawned at all. A
// spawned binary that exits nonzero (daemon down, bad flags) still counts as
// available; only a spawn failure makes this false.
func (e *BaseCLIEngine) Available() bool {
	_, err := e.runner.Run(context.Background(), e.versionArgs(), nil)
	return !errors.Is(err, ErrSpawnFailed)
}
