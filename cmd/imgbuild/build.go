// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"imgbuild-cli/internal/config"
	"imgbuild-cli/internal/container"
	"imgbuild-cli/internal/issue"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	buildTag        string
	buildDockerfile string
	buildInline     string
	buildStdin      bool
	buildAddFiles   []string
	buildEngine     string

	buildCmd = &cobra.Command{
		Use:   "build [context-dir]",
		Short: "Build an image and print its identifier",
		Long: `Build a container image and print the engine-assigned image identifier.

The Dockerfile source is one of:
  -f PATH    an existing Dockerfile on disk (context defaults to its parent)
  --inline   Dockerfile text given on the command line
  --stdin    Dockerfile text read from standard input

With inline text and no context directory, the build context is synthesized
as a tar stream and piped to the engine; no files are written to disk.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().StringVarP(&buildTag, "tag", "t", "", "image tag (required)")
	buildCmd.Flags().StringVarP(&buildDockerfile, "file", "f", "", "path to an existing Dockerfile")
	buildCmd.Flags().StringVar(&buildInline, "inline", "", "inline Dockerfile text")
	buildCmd.Flags().BoolVar(&buildStdin, "stdin", false, "read inline Dockerfile text from stdin")
	buildCmd.Flags().StringArrayVar(&buildAddFiles, "add-file", nil, "auxiliary file to place in the context, as NAME=PATH (repeatable)")
	buildCmd.Flags().StringVar(&buildEngine, "engine", "", "container engine (docker, podman, auto)")
	_ = buildCmd.MarkFlagRequired("tag")
}

func runBuild(cmd *cobra.Command, args []string) error {
	contextDir := ""
	if len(args) == 1 {
		contextDir = args[0]
	}

	buildContext, err := makeBuildContext(buildDockerfile, buildInline, buildStdin, contextDir, cmd.InOrStdin())
	if err != nil {
		return fail(cmd, err)
	}

	files, err := readAddFiles(buildAddFiles)
	if err != nil {
		return fail(cmd, err)
	}
	buildContext.Files = files

	engine, err := resolveEngine(enginePreference())
	if err != nil {
		return fail(cmd, issue.NewErrorContext().
			WithOperation("select container engine").
			WithSuggestion("Install docker or podman, or point the config at the binary").
			Wrap(err).
			BuildError())
	}
	log.Debug("resolved container engine", "engine", engine.Name())

	imageID, err := engine.Build(cmd.Context(), buildContext, buildTag)
	if err != nil {
		return fail(cmd, wrapBuildError(err, engine.Name(), buildContext, buildTag))
	}

	log.Debug("image built", "tag", buildTag, "id", imageID)
	fmt.Fprintln(cmd.OutOrStdout(), imageID)
	return nil
}

// enginePreference resolves the engine choice: flag wins over config.
func enginePreference() config.EnginePreference {
	if buildEngine != "" {
		return config.EnginePreference(buildEngine)
	}
	return cfg.Engine
}

// makeBuildContext assembles the BuildContext from the mutually exclusive
// Dockerfile source flags.
func makeBuildContext(dockerfilePath, inline string, fromStdin bool, contextDir string, stdin io.Reader) (container.BuildContext, error) {
	sources := 0
	for _, set := range []bool{dockerfilePath != "", inline != "", fromStdin} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return container.BuildContext{}, errors.New("only one of -f, --inline, --stdin may be given")
	}

	var source container.DockerfileSource
	switch {
	case dockerfilePath != "":
		source = container.DockerfileFile(dockerfilePath)
	case fromStdin:
		text, err := io.ReadAll(stdin)
		if err != nil {
			return container.BuildContext{}, fmt.Errorf("read Dockerfile from stdin: %w", err)
		}
		source = container.DockerfileContents(string(text))
	case inline != "":
		source = container.DockerfileContents(inline)
	default:
		// Bare context dir: use the Dockerfile inside it, like the engines do.
		if contextDir == "" {
			return container.BuildContext{}, errors.New("a Dockerfile source (-f, --inline, --stdin) or a context directory is required")
		}
		source = container.DockerfileFile(filepath.Join(contextDir, "Dockerfile"))
	}

	return container.BuildContext{Dockerfile: source, ContextDir: contextDir}, nil
}

// readAddFiles loads NAME=PATH specs into the aux files map.
func readAddFiles(specs []string) (map[string][]byte, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	files := make(map[string][]byte, len(specs))
	for _, spec := range specs {
		name, path, ok := strings.Cut(spec, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --add-file %q: expected NAME=PATH", spec)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read --add-file %q: %w", spec, err)
		}
		files[name] = content
	}
	return files, nil
}

// wrapBuildError decorates a build failure with actionable suggestions.
func wrapBuildError(err error, engineName string, c container.BuildContext, tag string) error {
	ctx := issue.NewErrorContext().
		WithOperation("build container image").
		Wrap(err)

	switch {
	case c.Dockerfile.Path() != "":
		ctx.WithResource(c.Dockerfile.Path())
	case c.ContextDir != "":
		ctx.WithResource(c.ContextDir)
	default:
		ctx.WithResource(tag)
	}

	switch {
	case errors.Is(err, container.ErrNotFound):
		ctx.WithSuggestion("Verify the Dockerfile and context paths exist and are readable")
	case errors.Is(err, container.ErrSpawnFailed):
		ctx.WithSuggestion("Install " + engineName + " or point the config at its binary")
	case errors.Is(err, container.ErrParseFailed):
		ctx.WithSuggestion("Run with --verbose to see the full build output")
	default:
		ctx.WithSuggestion("Check Dockerfile syntax for errors")
		ctx.WithSuggestion("Ensure base images are available (try: " + engineName + " pull <base-image>)")
	}

	return ctx.BuildError()
}
