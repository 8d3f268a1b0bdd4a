package main

import (
	"fmt"

	"github.com/aretw0/nodegraph"
	"github.com/aretw0/nodegraph/internal/presentation/tui"
	"github.com/aretw0/nodegraph/internal/runtime"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <document>",
	Short: "Evaluate a document and print its outputs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, _ := cmd.Flags().GetFloat64Slice("input")
		detail, _ := cmd.Flags().GetBool("detail")

		inputs := make([]domain.TaggedValue, len(values))
		for i, v := range values {
			inputs[i] = domain.Number(v)
		}
		doc, err := openDocument(cmd, args[0], nodegraph.WithInputs(inputs...))
		if err != nil {
			return err
		}
		res, evalErr := doc.Evaluate(cmd.Context())
		if res == nil {
			return evalErr
		}

		out := cmd.OutOrStdout()
		if detail {
			if err := printMarkdown(cmd, tui.ResultMarkdown(res)); err != nil {
				return err
			}
			return evalErr
		}
		if len(res.Outputs) == 0 {
			fmt.Fprintln(out, runtime.Describe(res.Output))
		}
		for i, v := range res.Outputs {
			if err := res.Errors[i]; err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, runtime.Describe(v))
		}
		return evalErr
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().Float64Slice("input", nil, "Number fed to the network inputs, in order (repeatable)")
	evalCmd.Flags().Bool("detail", false, "Render every intermediate value")
	evalCmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
}
