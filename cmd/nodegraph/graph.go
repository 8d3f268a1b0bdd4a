package main

import (
	"fmt"

	"github.com/aretw0/nodegraph/internal/presentation/graph"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <document>",
	Short: "Export the network as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph LR) of the document. Nested networks are drawn as subgraphs.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := openDocument(cmd, args[0])
		if err != nil {
			return err
		}

		overlay := &graph.GraphOverlay{}
		selected, _ := cmd.Flags().GetUintSlice("select")
		for _, id := range selected {
			overlay.Selected = append(overlay.Selected, domain.NodeID(id))
		}
		if failed, _ := cmd.Flags().GetBool("failed"); failed {
			res, _ := doc.Evaluate(cmd.Context())
			if res != nil {
				for _, f := range res.Failures {
					overlay.Failed = append(overlay.Failed, f.Path)
				}
			}
		}
		if len(overlay.Selected) == 0 && len(overlay.Failed) == 0 {
			overlay = nil
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(doc.Network(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().UintSlice("select", nil, "Highlight these node ids")
	graphCmd.Flags().Bool("failed", false, "Evaluate the document and mark the nodes that failed")
}
