// SPDX-License-Identifier: MPL-2.0

package container

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// mustPathBuild asserts the materialization produced a PathBuild.
func mustPathBuild(t *testing.T, m MaterializedBuild) PathBuild {
	t.Helper()
	b, ok := m.(PathBuild)
	if !ok {
		t.Fatalf("materialized build is %T, want PathBuild", m)
	}
	return b
}

// mustStreamBuild asserts the materialization produced a StreamBuild.
func mustStreamBuild(t *testing.T, m MaterializedBuild) StreamBuild {
	t.Helper()
	b, ok := m.(StreamBuild)
	if !ok {
		t.Fatalf("materialized build is %T, want StreamBuild", m)
	}
	return b
}

// readTar returns the archive's entries as a name → content map.
func readTar(t *testing.T, data []byte) map[string]string {
	t.Helper()
	entries := make(map[string]string)
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read tar: %v", err)
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("read tar entry %s: %v", hdr.Name, err)
		}
		entries[hdr.Name] = string(content)
	}
	return entries
}

func writeDockerfile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMaterialize_PathDefaultsContextToParent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dockerfile := writeDockerfile(t, dir, "Dockerfile", "FROM alpine")

	m, err := Materialize(BuildContext{Dockerfile: DockerfileFile(dockerfile)}, DockerBackend())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	b := mustPathBuild(t, m)
	if b.DockerfilePath != dockerfile {
		t.Errorf("DockerfilePath = %q, want %q", b.DockerfilePath, dockerfile)
	}
	if b.ContextDir != dir {
		t.Errorf("ContextDir = %q, want Dockerfile parent %q", b.ContextDir, dir)
	}
}

func TestMaterialize_PathWithExplicitContext(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	other := filepath.Join(base, "other")
	if err := os.Mkdir(other, 0o755); err != nil {
		t.Fatal(err)
	}
	dockerfile := writeDockerfile(t, other, "Dockerfile", "FROM alpine")

	contextDir := filepath.Join(base, "context")
	if err := os.Mkdir(contextDir, 0o755); err != nil {
		t.Fatal(err)
	}

	m, err := Materialize(BuildContext{
		Dockerfile: DockerfileFile(dockerfile),
		ContextDir: contextDir,
	}, DockerBackend())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	b := mustPathBuild(t, m)
	if b.ContextDir != contextDir {
		t.Errorf("ContextDir = %q, want explicit %q", b.ContextDir, contextDir)
	}
}

func TestMaterialize_MissingDockerfile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "Dockerfile")

	_, err := Materialize(BuildContext{Dockerfile: DockerfileFile(missing)}, DockerBackend())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("error should be a *NotFoundError, got %T", err)
	}
	if nfe.Path != missing {
		t.Errorf("NotFoundError.Path = %q, want %q", nfe.Path, missing)
	}
}

func TestMaterialize_MissingContextDir(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "ctx")

	_, err := Materialize(BuildContext{
		Dockerfile: DockerfileContents("FROM alpine"),
		ContextDir: missing,
	}, DockerBackend())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestMaterialize_InlineWithContextWritesDockerfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		backend  BackendConfig
		wantFile string
	}{
		{name: "docker writes Dockerfile", backend: DockerBackend(), wantFile: "Dockerfile"},
		{name: "podman writes Containerfile", backend: PodmanBackend(), wantFile: "Containerfile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			contextDir := t.TempDir()
			m, err := Materialize(BuildContext{
				Dockerfile: DockerfileContents("FROM alpine"),
				ContextDir: contextDir,
			}, tt.backend)
			if err != nil {
				t.Fatalf("Materialize() error = %v", err)
			}

			b := mustPathBuild(t, m)
			want := filepath.Join(contextDir, tt.wantFile)
			if b.DockerfilePath != want {
				t.Errorf("DockerfilePath = %q, want %q", b.DockerfilePath, want)
			}

			// Write/read round-trip: content equals the inline text exactly.
			content, err := os.ReadFile(want)
			if err != nil {
				t.Fatalf("read written Dockerfile: %v", err)
			}
			if string(content) != "FROM alpine" {
				t.Errorf("written Dockerfile content = %q, want %q", content, "FROM alpine")
			}
		})
	}
}

func TestMaterialize_AuxFilesWrittenInPathMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dockerfile := writeDockerfile(t, dir, "Dockerfile", "FROM alpine")

	_, err := Materialize(BuildContext{
		Dockerfile: DockerfileFile(dockerfile),
		Files:      map[string][]byte{"extra.txt": []byte("content")},
	}, DockerBackend())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "extra.txt"))
	if err != nil {
		t.Fatalf("aux file not written: %v", err)
	}
	if string(got) != "content" {
		t.Errorf("aux file content = %q, want %q", got, "content")
	}
}

func TestMaterialize_StreamHasNoFilesystemEffects(t *testing.T) {
	t.Parallel()

	m, err := Materialize(BuildContext{
		Dockerfile: DockerfileContents("FROM alpine"),
		Files: map[string][]byte{
			"extra.txt": []byte("content"),
			"app.conf":  []byte("key=value"),
		},
	}, DockerBackend())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	b := mustStreamBuild(t, m)
	entries := readTar(t, b.Tar)

	want := map[string]string{
		"Dockerfile": "FROM alpine",
		"extra.txt":  "content",
		"app.conf":   "key=value",
	}
	if len(entries) != len(want) {
		t.Errorf("tar has %d entries, want %d", len(entries), len(want))
	}
	for name, content := range want {
		if entries[name] != content {
			t.Errorf("tar entry %q = %q, want %q", name, entries[name], content)
		}
	}
}

func TestMaterialize_StreamUsesBackendDockerfileName(t *testing.T) {
	t.Parallel()

	m, err := Materialize(BuildContext{
		Dockerfile: DockerfileContents("FROM alpine"),
	}, PodmanBackend())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	entries := readTar(t, mustStreamBuild(t, m).Tar)
	if _, ok := entries["Containerfile"]; !ok {
		t.Errorf("podman tar should contain a Containerfile entry, got %v", entries)
	}
}

func TestMaterialize_EmptyInlineTextAccepted(t *testing.T) {
	t.Parallel()

	m, err := Materialize(BuildContext{Dockerfile: DockerfileContents("")}, DockerBackend())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	entries := readTar(t, mustStreamBuild(t, m).Tar)
	if content, ok := entries["Dockerfile"]; !ok || content != "" {
		t.Errorf("tar should contain an empty Dockerfile entry, got %v", entries)
	}
}

func TestMaterialize_Idempotent(t *testing.T) {
	t.Parallel()

	contextDir := t.TempDir()
	c := BuildContext{
		Dockerfile: DockerfileContents("FROM alpine"),
		ContextDir: contextDir,
		Files:      map[string][]byte{"extra.txt": []byte("content")},
	}

	for range 2 {
		if _, err := Materialize(c, DockerBackend()); err != nil {
			t.Fatalf("Materialize() error = %v", err)
		}
	}

	names, err := os.ReadDir(contextDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Errorf("context dir has %d entries after two materializations, want 2", len(names))
	}
	content, err := os.ReadFile(filepath.Join(contextDir, "Dockerfile"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "FROM alpine" {
		t.Errorf("Dockerfile content = %q, want %q", content, "FROM alpine")
	}
}

func TestMaterialize_StreamDeterministic(t *testing.T) {
	t.Parallel()

	c := BuildContext{
		Dockerfile: DockerfileContents("FROM alpine"),
		Files: map[string][]byte{
			"b.txt": []byte("b"),
			"a.txt": []byte("a"),
			"c.txt": []byte("c"),
		},
	}

	first, err := Materialize(c, DockerBackend())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Materialize(c, DockerBackend())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(mustStreamBuild(t, first).Tar, mustStreamBuild(t, second).Tar) {
		t.Error("materializing the same BuildContext twice should produce identical tar bytes")
	}
}

func TestMaterialize_UnsetDockerfileRejected(t *testing.T) {
	t.Parallel()

	_, err := Materialize(BuildContext{}, DockerBackend())
	if !errors.Is(err, ErrInvalidBuildContext) {
		t.Errorf("error = %v, want ErrInvalidBuildContext", err)
	}
}
