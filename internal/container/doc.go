// SPDX-License-Identifier: MPL-2.0

// Package container turns logical image-build requests into invocations of a
// container engine CLI (Docker/Podman) and normalizes the results.
//
// A BuildContext describes one build request: a Dockerfile given either as
// inline text or as a filesystem path, an optional context directory, and a
// map of auxiliary files to place alongside the Dockerfile. Materialize
// resolves a BuildContext into either a PathBuild (Dockerfile + context
// directory referenced by path) or a StreamBuild (a synthesized tar archive
// delivered over stdin), depending on which fields are set.
//
// The Engine interface defines the image operations: Build, RemoveImage,
// Version, and Available. DockerEngine and PodmanEngine both embed
// BaseCLIEngine, which holds the single shared build algorithm; everything
// backend-specific (binary name, inline Dockerfile filename, image-ID
// parsing) lives in a BackendConfig record selected by EngineType.
//
// Engine selection uses NewEngine(EngineType) with automatic fallback if the
// preferred engine is unavailable, or AutoDetectEngine() for preference-less
// detection (Podman is tried first).
//
// The package holds no shared mutable state: every Build call derives its own
// materialized context and argv, so concurrent builds for distinct tags on
// distinct directories never contend. Two concurrent builds that share a
// context directory race on shared filenames (last write wins); callers own
// directory exclusivity.
package container
