// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"imgbuild-cli/internal/container"
	"imgbuild-cli/internal/issue"
)

func TestMakeBuildContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		dockerfile string
		inline     string
		fromStdin  bool
		contextDir string
		stdin      string
		wantInline bool
		wantText   string
		wantPath   string
		wantErr    bool
	}{
		{
			name:       "dockerfile path",
			dockerfile: "/tmp/x/Dockerfile",
			wantPath:   "/tmp/x/Dockerfile",
		},
		{
			name:       "inline text",
			inline:     "FROM alpine",
			wantInline: true,
			wantText:   "FROM alpine",
		},
		{
			name:       "stdin text",
			fromStdin:  true,
			stdin:      "FROM scratch",
			wantInline: true,
			wantText:   "FROM scratch",
		},
		{
			name:       "bare context dir implies its Dockerfile",
			contextDir: "/tmp/ctx",
			wantPath:   filepath.Join("/tmp/ctx", "Dockerfile"),
		},
		{
			name:    "no source at all",
			wantErr: true,
		},
		{
			name:       "conflicting sources",
			dockerfile: "/tmp/x/Dockerfile",
			inline:     "FROM alpine",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := makeBuildContext(tt.dockerfile, tt.inline, tt.fromStdin, tt.contextDir, strings.NewReader(tt.stdin))
			if (err != nil) != tt.wantErr {
				t.Fatalf("makeBuildContext() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Dockerfile.IsInline() != tt.wantInline {
				t.Errorf("IsInline() = %v, want %v", got.Dockerfile.IsInline(), tt.wantInline)
			}
			if tt.wantInline && got.Dockerfile.Contents() != tt.wantText {
				t.Errorf("Contents() = %q, want %q", got.Dockerfile.Contents(), tt.wantText)
			}
			if !tt.wantInline && got.Dockerfile.Path() != tt.wantPath {
				t.Errorf("Path() = %q, want %q", got.Dockerfile.Path(), tt.wantPath)
			}
			if got.ContextDir != tt.contextDir {
				t.Errorf("ContextDir = %q, want %q", got.ContextDir, tt.contextDir)
			}
		})
	}
}

func TestReadAddFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "payload.bin")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := readAddFiles([]string{"extra.txt=" + path})
	if err != nil {
		t.Fatalf("readAddFiles() error = %v", err)
	}
	if string(files["extra.txt"]) != "content" {
		t.Errorf("files[extra.txt] = %q, want %q", files["extra.txt"], "content")
	}
}

func TestReadAddFiles_BadSpec(t *testing.T) {
	t.Parallel()

	for _, spec := range []string{"noequals", "=path", "name="} {
		if _, err := readAddFiles([]string{spec}); err == nil {
			t.Errorf("readAddFiles(%q) should fail", spec)
		}
	}
}

func TestReadAddFiles_Empty(t *testing.T) {
	t.Parallel()

	files, err := readAddFiles(nil)
	if err != nil || files != nil {
		t.Errorf("readAddFiles(nil) = (%v, %v), want (nil, nil)", files, err)
	}
}

func TestWrapBuildError_Suggestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantHint string
	}{
		{
			name:     "not found",
			err:      &container.NotFoundError{Kind: "dockerfile", Path: "/x"},
			wantHint: "paths exist",
		},
		{
			name:     "spawn failure",
			err:      &container.SpawnError{Binary: "docker", Cause: errors.New("not found")},
			wantHint: "Install docker",
		},
		{
			name:     "parse failure",
			err:      &container.ParseError{Engine: "docker"},
			wantHint: "--verbose",
		},
		{
			name:     "build failure",
			err:      &container.BuildError{Engine: "docker", Tag: "t", ExitCode: 1},
			wantHint: "Dockerfile syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wrapped := wrapBuildError(tt.err, "docker",
				container.BuildContext{Dockerfile: container.DockerfileContents("FROM alpine")}, "t")

			var ae *issue.ActionableError
			if !errors.As(wrapped, &ae) {
				t.Fatalf("wrapped error is %T, want *issue.ActionableError", wrapped)
			}
			if !strings.Contains(ae.Format(false), tt.wantHint) {
				t.Errorf("Format() = %q, want hint containing %q", ae.Format(false), tt.wantHint)
			}
			if !errors.Is(wrapped, tt.err) {
				t.Error("wrapped error should preserve the cause for errors.Is")
			}
		})
	}
}
