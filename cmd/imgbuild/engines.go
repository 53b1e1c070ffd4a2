// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"imgbuild-cli/internal/container"

	"github.com/spf13/cobra"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Probe container engine availability and versions",
	Args:  cobra.NoArgs,
	RunE:  runEngines,
}

func runEngines(cmd *cobra.Command, _ []string) error {
	engines := []container.Engine{newDockerEngine(), newPodmanEngine()}

	for _, engine := range engines {
		if !engine.Available() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				WarningStyle.Render("✗"), engine.Name()+" (not available)")
			continue
		}

		version, err := engine.Version(cmd.Context())
		if err != nil {
			// Spawnable but erroring (e.g. daemon down) still counts as available.
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				SuccessStyle.Render("✓"), engine.Name()+" (version unavailable)")
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
			SuccessStyle.Render("✓"), engine.Name(), version)
	}
	return nil
}
