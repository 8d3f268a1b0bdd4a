package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/nodegraph/internal/compiler"
	"github.com/aretw0/nodegraph/internal/runtime"
	"github.com/spf13/cobra"
)

var flattenCmd = &cobra.Command{
	Use:   "flatten <document>",
	Short: "Print the flat executable graph of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := openDocument(cmd, args[0])
		if err != nil {
			return err
		}
		proto, err := doc.Flatten(cmd.Context())
		if err != nil {
			return err
		}
		printProto(cmd.OutOrStdout(), proto, "")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flattenCmd)
}

func printProto(w io.Writer, p *compiler.ProtoNetwork, indent string) {
	for _, n := range p.Nodes {
		inputs := make([]string, len(n.Inputs))
		for i, in := range n.Inputs {
			inputs[i] = protoInput(in)
		}
		fmt.Fprintf(w, "%s#%d %s [%s] (%s)\n", indent, n.ID, n.Type, compiler.PathKey(n.Path), strings.Join(inputs, ", "))
		for _, in := range n.Inputs {
			if l, ok := in.(compiler.Lambda); ok {
				printProto(w, l.Body, indent+"    ")
			}
		}
	}
	outputs := make([]string, len(p.Outputs))
	for i, out := range p.Outputs {
		outputs[i] = protoInput(out)
	}
	fmt.Fprintf(w, "%soutputs: %s\n", indent, strings.Join(outputs, ", "))
	for _, path := range p.Dropped {
		fmt.Fprintf(w, "%sdropped: %s\n", indent, compiler.PathKey(path))
	}
}

func protoInput(in compiler.ProtoInput) string {
	switch x := in.(type) {
	case compiler.Const:
		return "const " + runtime.Describe(x.Value)
	case compiler.Ref:
		return fmt.Sprintf("ref #%d:%d", x.Node, x.Output)
	case compiler.Argument:
		return "argument"
	case compiler.Lambda:
		return "lambda"
	default:
		return "?"
	}
}
