// SPDX-License-Identifier: MPL-2.0

package container

import "strings"

const (
	// EngineTypePodman selects the Podman backend.
	EngineTypePodman EngineType = "podman"
	// EngineTypeDocker selects the Docker backend.
	EngineTypeDocker EngineType = "docker"

	// dockerSuccessMarker prefixes the image ID on the legacy docker builder's
	// success line. Podman's docker-compat output can emit it too.
	dockerSuccessMarker = "Successfully built "
)

type (
	// EngineType identifies the container engine backend.
	EngineType string

	// ImageIDParser extracts the built image identifier from the stdout of a
	// successful build. It reports false when no identifier is recoverable.
	ImageIDParser func(stdout string) (string, bool)

	// BackendConfig is the per-backend variation record: everything that
	// differs between Docker and Podman lives here, so BaseCLIEngine can run
	// one shared algorithm against it. Synthetic configs are used in tests.
	BackendConfig struct {
		// Type tags the backend variant.
		Type EngineType
		// Binary is the default engine binary name.
		Binary string
		// DockerfileName is the file name used when inline Dockerfile text
		// must be written into a context directory or tar stream.
		DockerfileName string
		// VersionArgs is the subcommand used for version/availability probes.
		VersionArgs []string
		// ParseImageID extracts the image identifier from build stdout.
		ParseImageID ImageIDParser
	}
)

// DockerBackend returns the Docker configuration record.
func DockerBackend() BackendConfig {
	return BackendConfig{
		Type:           EngineTypeDocker,
		Binary:         "docker",
		DockerfileName: "Dockerfile",
		VersionArgs:    []string{"version", "--format", "{{.Server.Version}}"},
		ParseImageID:   parseDockerImageID,
	}
}

// PodmanBackend returns the Podman configuration record.
func PodmanBackend() BackendConfig {
	return BackendConfig{
		Type:           EngineTypePodman,
		Binary:         "podman",
		DockerfileName: "Containerfile",
		VersionArgs:    []string{"version", "--format", "{{.Version}}"},
		ParseImageID:   parsePodmanImageID,
	}
}

// parseDockerImageID scans stdout for the legacy builder's
// "Successfully built <id>" line and returns the bare ID token.
func parseDockerImageID(stdout string) (string, bool) {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, dockerSuccessMarker); ok {
			if id := firstToken(rest); id != "" {
				return id, true
			}
		}
	}
	return "", false
}

// parsePodmanImageID returns the image ID printed by podman build as the last
// non-empty stdout line. Docker-style success lines are accepted as well for
// podman's docker-compat output.
func parsePodmanImageID(stdout string) (string, bool) {
	if id, ok := parseDockerImageID(stdout); ok {
		return id, true
	}
	lines := strings.Split(stdout, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if isImageID(line) {
			return line, true
		}
		return "", false
	}
	return "", false
}

// isImageID reports whether s looks like an engine image identifier: a
// (possibly sha256:-prefixed) hex token.
func isImageID(s string) bool {
	s = strings.TrimPrefix(s, "sha256:")
	if len(s) < 12 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// firstToken returns the first whitespace-delimited token of s.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
