// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// EnginePodman prefers Podman as the container engine.
	EnginePodman EnginePreference = "podman"
	// EngineDocker prefers Docker as the container engine.
	EngineDocker EnginePreference = "docker"
	// EngineAuto auto-detects an available engine (Podman first).
	EngineAuto EnginePreference = "auto"
)

var (
	// ErrInvalidEnginePreference is the sentinel error wrapped by InvalidEnginePreferenceError.
	ErrInvalidEnginePreference = errors.New("invalid engine preference")
	// ErrInvalidBinaryPath is returned when a configured binary path is whitespace-only.
	ErrInvalidBinaryPath = errors.New("invalid engine binary path")
)

type (
	// EnginePreference selects which container engine to use.
	EnginePreference string

	// InvalidEnginePreferenceError is returned when an EnginePreference value
	// is not recognized. It wraps ErrInvalidEnginePreference for errors.Is.
	InvalidEnginePreferenceError struct {
		Value EnginePreference
	}

	// EngineConfig holds per-engine settings.
	EngineConfig struct {
		// Binary overrides the engine binary name or path. Empty means the
		// backend default ("docker"/"podman").
		Binary string `mapstructure:"binary"`
	}

	// Config is the loaded tool configuration.
	Config struct {
		// Engine is the preferred container engine (docker, podman, auto).
		Engine EnginePreference `mapstructure:"engine"`
		// Docker holds Docker-specific settings.
		Docker EngineConfig `mapstructure:"docker"`
		// Podman holds Podman-specific settings.
		Podman EngineConfig `mapstructure:"podman"`
		// Verbose enables verbose diagnostic output.
		Verbose bool `mapstructure:"verbose"`
	}
)

// Error implements the error interface.
func (e *InvalidEnginePreferenceError) Error() string {
	return fmt.Sprintf("invalid engine preference %q (valid: docker, podman, auto)", e.Value)
}

// Unwrap returns ErrInvalidEnginePreference for errors.Is() compatibility.
func (e *InvalidEnginePreferenceError) Unwrap() error { return ErrInvalidEnginePreference }

// Validate returns an error if the EnginePreference is not one of the
// defined values. The zero value ("") is valid and means auto.
func (p EnginePreference) Validate() error {
	switch p {
	case EngineDocker, EnginePodman, EngineAuto, "":
		return nil
	default:
		return &InvalidEnginePreferenceError{Value: p}
	}
}

// String returns the string representation of the EnginePreference.
func (p EnginePreference) String() string { return string(p) }

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineAuto,
	}
}

// Validate returns an error if any typed field of the Config is invalid.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}
	for name, ec := range map[string]EngineConfig{"docker": c.Docker, "podman": c.Podman} {
		if ec.Binary != "" && strings.TrimSpace(ec.Binary) == "" {
			errs = append(errs, fmt.Errorf("%w: %s.binary is whitespace-only", ErrInvalidBinaryPath, name))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
