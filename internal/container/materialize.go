// SPDX-License-Identifier: MPL-2.0

package container

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

var (
	// ErrNotFound is the sentinel error wrapped by NotFoundError.
	ErrNotFound = errors.New("build input not found")
)

type (
	// MaterializedBuild is the ephemeral, per-call resolution of a
	// BuildContext: either a PathBuild or a StreamBuild, never both.
	MaterializedBuild interface {
		isMaterializedBuild()
	}

	// PathBuild references a Dockerfile and context directory on disk.
	// Both must exist at invocation time.
	PathBuild struct {
		DockerfilePath string
		ContextDir     string
	}

	// StreamBuild is a self-contained tar archive delivered over stdin.
	// It has no filesystem side effects.
	StreamBuild struct {
		Tar []byte
	}

	// NotFoundError is returned when a referenced Dockerfile or context
	// directory does not exist. It wraps ErrNotFound for errors.Is.
	NotFoundError struct {
		Kind string
		Path string
	}
)

func (PathBuild) isMaterializedBuild()   {}
func (StreamBuild) isMaterializedBuild() {}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Path)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Materialize resolves a BuildContext into a PathBuild or StreamBuild for
// the given backend. The mapping is deterministic; filesystem writes happen
// only when a context directory is determinable, and only as plain
// create-or-overwrite writes scoped to that directory. Written files are not
// cleaned up here: on-disk context ownership stays with the caller.
func Materialize(c BuildContext, backend BackendConfig) (MaterializedBuild, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if !c.Dockerfile.IsInline() {
		return materializePath(c)
	}
	if c.ContextDir != "" {
		return materializeInline(c, backend)
	}
	return materializeStream(c, backend)
}

// materializePath handles a Dockerfile referenced by path. The context
// directory defaults to the Dockerfile's parent when not given explicitly.
func materializePath(c BuildContext) (MaterializedBuild, error) {
	dockerfile := c.Dockerfile.Path()
	if _, err := os.Stat(dockerfile); err != nil {
		return nil, &NotFoundError{Kind: "dockerfile", Path: dockerfile}
	}

	contextDir := c.ContextDir
	if contextDir == "" {
		contextDir = filepath.Dir(dockerfile)
	} else if err := statDir(contextDir); err != nil {
		return nil, err
	}

	if err := writeAuxFiles(contextDir, c.Files); err != nil {
		return nil, err
	}

	return PathBuild{DockerfilePath: dockerfile, ContextDir: contextDir}, nil
}

// materializeInline writes inline Dockerfile text into an existing context
// directory under the backend's convention filename.
func materializeInline(c BuildContext, backend BackendConfig) (MaterializedBuild, error) {
	if err := statDir(c.ContextDir); err != nil {
		return nil, err
	}

	dockerfile := filepath.Join(c.ContextDir, backend.DockerfileName)
	if err := os.WriteFile(dockerfile, []byte(c.Dockerfile.Contents()), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", backend.DockerfileName, err)
	}

	if err := writeAuxFiles(c.ContextDir, c.Files); err != nil {
		return nil, err
	}

	return PathBuild{DockerfilePath: dockerfile, ContextDir: c.ContextDir}, nil
}

// materializeStream synthesizes an in-memory tar archive holding the inline
// Dockerfile text plus every aux file entry. No filesystem writes occur.
func materializeStream(c BuildContext, backend BackendConfig) (MaterializedBuild, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	if err := writeTarEntry(tw, backend.DockerfileName, []byte(c.Dockerfile.Contents())); err != nil {
		return nil, err
	}

	// Deterministic entry order keeps repeated materializations identical.
	names := make([]string, 0, len(c.Files))
	for name := range c.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writeTarEntry(tw, name, c.Files[name]); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("finalize build context tar: %w", err)
	}
	return StreamBuild{Tar: buf.Bytes()}, nil
}

// writeTarEntry appends one regular-file entry to the archive.
func writeTarEntry(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o644,
		Size:    int64(len(content)),
		ModTime: time.Unix(0, 0),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write tar header for %s: %w", name, err)
	}
	if _, err := tw.Write(content); err != nil {
		return fmt.Errorf("write tar entry %s: %w", name, err)
	}
	return nil
}

// writeAuxFiles writes each files entry under dir as a plain
// create-or-overwrite binary write.
func writeAuxFiles(dir string, files map[string][]byte) error {
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("write aux file %s: %w", name, err)
		}
	}
	return nil
}

// statDir verifies that path exists and is a directory.
func statDir(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return &NotFoundError{Kind: "context directory", Path: path}
	}
	return nil
}
