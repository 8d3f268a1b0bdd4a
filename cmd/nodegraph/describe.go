package main

import (
	"fmt"

	"github.com/aretw0/nodegraph/internal/presentation/tui"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <document>",
	Short: "Render a document as a table of nodes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := openDocument(cmd, args[0])
		if err != nil {
			return err
		}
		return printMarkdown(cmd, tui.NetworkMarkdown(args[0], doc.Network(), doc.Catalog()))
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
}

func printMarkdown(cmd *cobra.Command, markdown string) error {
	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		fmt.Fprint(cmd.OutOrStdout(), markdown)
		return nil
	}
	render, err := tui.NewRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return err
	}
	out, err := render(markdown)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
