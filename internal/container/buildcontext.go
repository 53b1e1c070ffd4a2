// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBuildContext is the sentinel error wrapped by InvalidBuildContextError.
	ErrInvalidBuildContext = errors.New("invalid build context")
)

type (
	// DockerfileSource is the Dockerfile of a build request, given either as
	// inline text or as a filesystem path to an existing Dockerfile. Exactly
	// one form is active; which form determines whether the build runs in
	// path mode or stream mode downstream.
	DockerfileSource struct {
		path   string
		text   string
		inline bool
	}

	// BuildContext is an immutable, caller-constructed description of one
	// image build request.
	BuildContext struct {
		// Dockerfile is the Dockerfile source (inline text or path).
		Dockerfile DockerfileSource
		// ContextDir is an optional directory to use as build context.
		// When empty, the context defaults to the Dockerfile's parent
		// directory (path form) or to an in-memory tar stream (inline form).
		ContextDir string
		// Files maps relative file names to byte content; entries are
		// placed alongside the Dockerfile in the resolved context.
		Files map[string][]byte
	}

	// InvalidBuildContextError is returned when a BuildContext has no
	// Dockerfile source set. It wraps ErrInvalidBuildContext for errors.Is.
	InvalidBuildContextError struct {
		Reason string
	}
)

// DockerfileContents returns a DockerfileSource holding inline Dockerfile
// text. Empty text is accepted and forwarded; syntax validation belongs to
// the external engine.
func DockerfileContents(text string) DockerfileSource {
	return DockerfileSource{text: text, inline: true}
}

// DockerfileFile returns a DockerfileSource referencing a Dockerfile on disk.
func DockerfileFile(path string) DockerfileSource {
	return DockerfileSource{path: path}
}

// IsInline reports whether the source holds inline text.
func (s DockerfileSource) IsInline() bool { return s.inline }

// Path returns the Dockerfile path (path form only).
func (s DockerfileSource) Path() string { return s.path }

// Contents returns the inline Dockerfile text (inline form only).
func (s DockerfileSource) Contents() string { return s.text }

// isSet reports whether either form was chosen. The zero value is unset and
// fails validation.
func (s DockerfileSource) isSet() bool { return s.inline || s.path != "" }

// Error implements the error interface.
func (e *InvalidBuildContextError) Error() string {
	return fmt.Sprintf("invalid build context: %s", e.Reason)
}

// Unwrap returns ErrInvalidBuildContext for errors.Is() compatibility.
func (e *InvalidBuildContextError) Unwrap() error { return ErrInvalidBuildContext }

// Validate returns an error if the BuildContext has no Dockerfile source.
func (c BuildContext) Validate() error {
	if !c.Dockerfile.isSet() {
		return &InvalidBuildContextError{Reason: "dockerfile source not set"}
	}
	return nil
}
