package main

import (
	"fmt"

	"github.com/aretw0/nodegraph/internal/validator"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [document...]",
	Short: "Check documents for consistency",
	Long: `Loads each document and reports broken links, boundary mistakes, cycles,
unknown node types and nodes that do not reach any output. Without arguments
every document in --dir is checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := registry.Builtin()
		loader := newLoader(cmd, catalog)
		out := cmd.OutOrStdout()

		names := args
		if len(names) == 0 {
			var err error
			if names, err = loader.ListDocuments(cmd.Context()); err != nil {
				return err
			}
		}

		failed := 0
		for _, name := range names {
			network, err := loader.LoadDocument(cmd.Context(), name)
			if err != nil {
				failed++
				fmt.Fprintf(out, "✗ %s: %v\n", name, err)
				continue
			}
			report := validator.Validate(network, catalog)
			fmt.Fprintf(out, "✓ %s\n", name)
			for _, w := range report.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed validation", failed, len(names))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
