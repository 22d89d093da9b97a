package main

import (
	"fmt"

	"github.com/aretw0/toolshed/internal/cli"
	"github.com/aretw0/toolshed/internal/presentation/graph"
	"github.com/aretw0/toolshed/pkg/wizard"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the screen map visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the screens, the sign-in redirects of
protected screens and the wizard flows. With --session the stored session's
current screen and completed wizard steps are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var overlay *graph.Overlay
		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			persistence, err := cli.BuildStore(cfg.Store)
			if err != nil {
				return err
			}
			defer persistence.Close()

			snap, err := persistence.Store.Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("load session %q: %w", sessionID, err)
			}
			overlay = graph.OverlayFor(snap, wizard.Defaults())
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(wizard.Defaults(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the state of a stored session")
}
