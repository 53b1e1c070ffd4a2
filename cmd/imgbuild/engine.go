// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"imgbuild-cli/internal/config"
	"imgbuild-cli/internal/container"
)

// newDockerEngine constructs the Docker engine with any configured binary override.
func newDockerEngine() container.Engine {
	return container.NewDockerEngine(container.WithBinary(cfg.Docker.Binary))
}

// newPodmanEngine constructs the Podman engine with any configured binary override.
func newPodmanEngine() container.Engine {
	return container.NewPodmanEngine(container.WithBinary(cfg.Podman.Binary))
}

// resolveEngine picks the engine for this invocation. An explicit preference
// is tried first with fallback to the other backend; auto tries Podman first.
// Availability means only that the binary can be spawned.
func resolveEngine(pref config.EnginePreference) (container.Engine, error) {
	var candidates []container.Engine
	switch pref {
	case config.EngineDocker:
		candidates = []container.Engine{newDockerEngine(), newPodmanEngine()}
	case config.EnginePodman:
		candidates = []container.Engine{newPodmanEngine(), newDockerEngine()}
	case config.EngineAuto, "":
		candidates = []container.Engine{newPodmanEngine(), newDockerEngine()}
	default:
		return nil, &config.InvalidEnginePreferenceError{Value: pref}
	}

	for _, engine := range candidates {
		if engine.Available() {
			return engine, nil
		}
	}

	return nil, &container.EngineNotAvailableError{
		Engine: pref.String(),
		Reason: fmt.Sprintf("no container engine (%s or %s) is available on this system",
			candidates[0].Name(), candidates[1].Name()),
	}
}
