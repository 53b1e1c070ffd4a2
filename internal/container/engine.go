// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoEngineAvailable is the sentinel error wrapped by EngineNotAvailableError.
	ErrNoEngineAvailable = errors.New("no container engine available")

	// ErrUnknownEngineType is returned when an EngineType is not recognized.
	ErrUnknownEngineType = errors.New("unknown container engine type")
)

type (
	// Engine is the engine-agnostic image-build API. Implementations are
	// safe for concurrent use: every call derives its own state.
	Engine interface {
		// Name returns the engine name (docker or podman).
		Name() string
		// Available reports whether the engine binary can be spawned.
		Available() bool
		// Version returns the engine version.
		Version(ctx context.Context) (string, error)
		// Build builds an image and returns its identifier.
		Build(ctx context.Context, c BuildContext, tag string) (string, error)
		// RemoveImage removes an image by identifier.
		RemoveImage(ctx context.Context, imageID string, force bool) error
	}

	// DockerEngine implements Engine using the Docker CLI.
	DockerEngine struct {
		*BaseCLIEngine
	}

	// PodmanEngine implements Engine using the Podman CLI.
	PodmanEngine struct {
		*BaseCLIEngine
	}

	// EngineNotAvailableError is returned when no requested engine can be
	// spawned. It wraps ErrNoEngineAvailable for errors.Is.
	EngineNotAvailableError struct {
		Engine string
		Reason string
	}
)

// Error implements the error interface.
func (e *EngineNotAvailableError) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// Unwrap returns ErrNoEngineAvailable for errors.Is() compatibility.
func (e *EngineNotAvailableError) Unwrap() error { return ErrNoEngineAvailable }

// NewDockerEngine creates a Docker engine. Construction is pure: no process
// is spawned and no filesystem is touched until an operation runs.
func NewDockerEngine(opts ...BaseCLIEngineOption) *DockerEngine {
	return &DockerEngine{BaseCLIEngine: NewBaseCLIEngine(DockerBackend(), opts...)}
}

// NewPodmanEngine creates a Podman engine. Construction is pure.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	return &PodmanEngine{BaseCLIEngine: NewBaseCLIEngine(PodmanBackend(), opts...)}
}

// Name returns the engine name.
func (e *DockerEngine) Name() string { return string(EngineTypeDocker) }

// Name returns the engine name.
func (e *PodmanEngine) Name() string { return string(EngineTypePodman) }

// newEngineForType constructs the concrete engine for a backend type.
func newEngineForType(t EngineType, opts ...BaseCLIEngineOption) (Engine, error) {
	switch t {
	case EngineTypeDocker:
		return NewDockerEngine(opts...), nil
	case EngineTypePodman:
		return NewPodmanEngine(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngineType, t)
	}
}

// NewEngine creates a container engine based on preference, falling back to
// the other backend when the preferred binary cannot be spawned.
func NewEngine(preferred EngineType, opts ...BaseCLIEngineOption) (Engine, error) {
	engine, err := newEngineForType(preferred, opts...)
	if err != nil {
		return nil, err
	}
	if engine.Available() {
		return engine, nil
	}

	fallbackType := EngineTypeDocker
	if preferred == EngineTypeDocker {
		fallbackType = EngineTypePodman
	}
	fallback, err := newEngineForType(fallbackType, opts...)
	if err != nil {
		return nil, err
	}
	if fallback.Available() {
		return fallback, nil
	}

	return nil, &EngineNotAvailableError{
		Engine: string(preferred),
		Reason: fmt.Sprintf("%s is not installed or not accessible, and %s fallback is also not available",
			preferred, fallbackType),
	}
}

// AutoDetectEngine finds an available container engine without a preference.
// Podman is tried first (more commonly available in rootless setups).
func AutoDetectEngine(opts ...BaseCLIEngineOption) (Engine, error) {
	podman := NewPodmanEngine(opts...)
	if podman.Available() {
		return podman, nil
	}

	docker := NewDockerEngine(opts...)
	if docker.Available() {
		return docker, nil
	}

	return nil, &EngineNotAvailableError{
		Engine: "any",
		Reason: "no container engine (podman or docker) is available on this system",
	}
}
