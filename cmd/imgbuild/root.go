// SPDX-License-Identifier: MPL-2.0

// Command imgbuild builds container images through Docker or Podman from a
// Dockerfile path, inline Dockerfile text, or a synthesized stdin context.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"imgbuild-cli/internal/config"
	"imgbuild-cli/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// cfg is the loaded configuration, populated by initRootConfig.
	cfg = config.DefaultConfig()

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "imgbuild",
		Short: "Build container images through Docker or Podman",
		Long: TitleStyle.Render("imgbuild") + SubtitleStyle.Render(" - container image build orchestration") + `

imgbuild turns a logical build request into the exact Docker or Podman
invocation and prints the resulting image identifier. The Dockerfile can be
given as a path (built against its parent directory or an explicit context
directory) or as inline text (written into the context directory, or packed
into a tar stream sent over stdin when no context directory exists).

` + SubtitleStyle.Render("Examples:") + `
  imgbuild build -t myimg ./app            Build ./app/Dockerfile
  imgbuild build -t myimg -f ./Dockerfile  Build an explicit Dockerfile
  echo "FROM alpine" | imgbuild build -t myimg --stdin
  imgbuild rmi -f myimg                    Remove an image
  imgbuild engines                         Probe engine availability`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/imgbuild/config.toml)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(rmiCmd)
	rootCmd.AddCommand(enginesCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	loaded, err := config.Load()
	if err != nil {
		// Config problems are surfaced but never fatal; defaults still apply.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}
	if loaded != nil {
		cfg = loaded
	}

	if !verbose {
		verbose = cfg.Verbose
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// fail prints a formatted error and returns a silent error so cobra does not
// double-print it.
func fail(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return err
}
