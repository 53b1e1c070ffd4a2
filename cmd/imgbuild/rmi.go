// SPDX-License-Identifier: MPL-2.0

package main

import (
	"imgbuild-cli/internal/config"
	"imgbuild-cli/internal/issue"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	rmiForce  bool
	rmiEngine string

	rmiCmd = &cobra.Command{
		Use:   "rmi IMAGE",
		Short: "Remove an image",
		Args:  cobra.ExactArgs(1),
		RunE:  runRmi,
	}
)

func init() {
	rmiCmd.Flags().BoolVarP(&rmiForce, "force", "f", false, "force removal")
	rmiCmd.Flags().StringVar(&rmiEngine, "engine", "", "container engine (docker, podman, auto)")
}

func runRmi(cmd *cobra.Command, args []string) error {
	pref := cfg.Engine
	if rmiEngine != "" {
		pref = config.EnginePreference(rmiEngine)
	}

	engine, err := resolveEngine(pref)
	if err != nil {
		return fail(cmd, err)
	}
	log.Debug("resolved container engine", "engine", engine.Name())

	if err := engine.RemoveImage(cmd.Context(), args[0], rmiForce); err != nil {
		return fail(cmd, issue.NewErrorContext().
			WithOperation("remove image").
			WithResource(args[0]).
			WithSuggestion("Use -f to force removal of tagged or in-use images").
			Wrap(err).
			BuildError())
	}
	return nil
}
