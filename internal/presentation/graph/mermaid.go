package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/nodegraph/pkg/domain"
)

// GraphOverlay contains editor state to visualize on the graph.
type GraphOverlay struct {
	Selected []domain.NodeID
	// Failed holds document paths of nodes whose evaluation failed.
	Failed [][]domain.NodeID
}

// GenerateMermaid produces a Mermaid flowchart of n. Nested networks become
// subgraphs. Shapes:
// - network input: ([Stadium])
// - network output: [[Subroutine]]
// - other nodes: [Rectangle]
// Lambda links are dotted; disabled nodes are greyed out.
func GenerateMermaid(n *domain.NodeNetwork, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	var disabled []string
	writeNetwork(&sb, n, nil, 1, &disabled)

	if len(disabled) > 0 || overlay != nil {
		sb.WriteString("\n    %% Styles\n")
		sb.WriteString("    classDef disabled fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#757575;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
	}
	for _, id := range disabled {
		fmt.Fprintf(&sb, "    class %s disabled;\n", id)
	}
	if overlay != nil {
		for _, id := range overlay.Selected {
			fmt.Fprintf(&sb, "    class %s selected;\n", mermaidID([]domain.NodeID{id}))
		}
		for _, path := range overlay.Failed {
			fmt.Fprintf(&sb, "    class %s failed;\n", mermaidID(path))
		}
	}
	return sb.String()
}

func writeNetwork(sb *strings.Builder, n *domain.NodeNetwork, prefix []domain.NodeID, depth int, disabled *[]string) {
	indent := strings.Repeat("    ", depth)

	for _, id := range n.SortedIDs() {
		node := n.Nodes[id]
		path := append(slices.Clone(prefix), id)
		safeID := mermaidID(path)
		label := strings.ReplaceAll(fmt.Sprintf("%s #%d", node.Name, id), "\"", "'")

		if inner := node.Network(); inner != nil {
			fmt.Fprintf(sb, "%ssubgraph %s[\"%s\"]\n", indent, safeID, label)
			writeNetwork(sb, inner, path, depth+1, disabled)
			fmt.Fprintf(sb, "%send\n", indent)
		} else {
			opener, closer := "[", "]"
			switch {
			case n.IsInput(id):
				opener, closer = "([", "])"
			case n.OutputsContain(id):
				opener, closer = "[[", "]]"
			}
			fmt.Fprintf(sb, "%s%s%s\"%s\"%s\n", indent, safeID, opener, label, closer)
		}
		if n.IsDisabled(id) {
			*disabled = append(*disabled, safeID)
		}
	}

	for _, id := range n.SortedIDs() {
		to := mermaidID(append(slices.Clone(prefix), id))
		for i, in := range n.Nodes[id].Inputs {
			link, ok := in.(domain.Link)
			if !ok {
				continue
			}
			from := mermaidID(append(slices.Clone(prefix), link.Target))
			switch {
			case link.Lambda:
				fmt.Fprintf(sb, "%s%s -. \"λ %d\" .-> %s\n", indent, from, i, to)
			case link.OutputIndex != 0:
				fmt.Fprintf(sb, "%s%s -- \"%d:%d\" --> %s\n", indent, from, link.OutputIndex, i, to)
			default:
				fmt.Fprintf(sb, "%s%s --> %s\n", indent, from, to)
			}
		}
	}
}

func mermaidID(path []domain.NodeID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = fmt.Sprint(id)
	}
	return "n" + strings.Join(parts, "_")
}
