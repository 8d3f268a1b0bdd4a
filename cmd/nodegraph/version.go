package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/nodegraph"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of nodegraph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nodegraph version %s\n", strings.TrimSpace(nodegraph.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
