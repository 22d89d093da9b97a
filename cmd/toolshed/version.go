package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/toolshed"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of toolshed",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "toolshed version %s\n", strings.TrimSpace(toolshed.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
