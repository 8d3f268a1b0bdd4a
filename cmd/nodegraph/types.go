package main

import (
	"fmt"

	"github.com/aretw0/nodegraph/internal/presentation/tui"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the available node types",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := registry.Builtin()
		profile := termenv.NewOutput(cmd.OutOrStdout()).Profile
		for _, info := range catalog.Types() {
			t, err := catalog.Resolve(info.Name)
			if err != nil {
				return err
			}
			dt := domain.DataTypeGeneral
			if len(t.Outputs) > 0 {
				dt = t.Outputs[0].DataType
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-18s %-12s %s\n", info.Name, info.Category, tui.Styled(profile, dt, string(dt)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
