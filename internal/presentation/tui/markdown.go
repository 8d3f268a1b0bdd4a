package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/nodegraph/internal/compiler"
	"github.com/aretw0/nodegraph/internal/runtime"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/registry"
)

// NetworkMarkdown describes n as a markdown table per nesting level.
func NetworkMarkdown(title string, n *domain.NodeNetwork, catalog *registry.Registry) string {
	var sb strings.Builder
	writeNetwork(&sb, title, n, catalog)
	return sb.String()
}

func writeNetwork(sb *strings.Builder, title string, n *domain.NodeNetwork, catalog *registry.Registry) {
	fmt.Fprintf(sb, "# %s\n\n", title)
	if len(n.Nodes) == 0 {
		sb.WriteString("_empty network_\n\n")
		return
	}

	sb.WriteString("| ID | Name | Type | Inputs | Flags |\n")
	sb.WriteString("|---:|------|------|--------|-------|\n")
	var nested []domain.NodeID
	for _, id := range n.SortedIDs() {
		node := n.Nodes[id]
		if node.Network() != nil {
			nested = append(nested, id)
		}
		var slots []registry.InputSlot
		if catalog != nil {
			slots = catalog.InputSlots(node)
		}
		inputs := make([]string, len(node.Inputs))
		for i, in := range node.Inputs {
			name := fmt.Sprint(i)
			if i < len(slots) {
				name = slots[i].Name
			}
			inputs[i] = name + ": " + describeInput(in)
		}
		fmt.Fprintf(sb, "| %d | %s | %s | %s | %s |\n", id, escape(node.Name), escape(node.TypeName()),
			escape(strings.Join(inputs, "; ")), strings.Join(flags(n, id), " "))
	}
	sb.WriteString("\n")

	for _, id := range nested {
		node := n.Nodes[id]
		writeNetwork(sb, fmt.Sprintf("%s / %s (%d)", title, node.Name, id), node.Network(), catalog)
	}
}

func describeInput(in domain.NodeInput) string {
	switch x := in.(type) {
	case domain.Literal:
		s := runtime.Describe(x.Value)
		if x.Exposed {
			s += " (exposed)"
		}
		return s
	case domain.Link:
		if x.Lambda {
			return fmt.Sprintf("λ #%d", x.Target)
		}
		return fmt.Sprintf("#%d:%d", x.Target, x.OutputIndex)
	case domain.Boundary:
		return "boundary"
	default:
		return "?"
	}
}

func flags(n *domain.NodeNetwork, id domain.NodeID) []string {
	var out []string
	if n.IsInput(id) {
		out = append(out, "input")
	}
	if n.OutputsContain(id) {
		out = append(out, "output")
	}
	if n.IsDisabled(id) {
		out = append(out, "disabled")
	}
	return out
}

// ResultMarkdown summarizes an evaluation.
func ResultMarkdown(res *runtime.Result) string {
	var sb strings.Builder
	sb.WriteString("# Result\n\n")
	fmt.Fprintf(&sb, "**Output:** `%s`\n\n", runtime.Describe(res.Output))
	if len(res.Outputs) > 1 {
		for i, out := range res.Outputs {
			fmt.Fprintf(&sb, "%d. `%s`\n", i, runtime.Describe(out))
		}
		sb.WriteString("\n")
	}
	if len(res.Failures) > 0 {
		sb.WriteString("## Failures\n\n")
		for _, f := range res.Failures {
			fmt.Fprintf(&sb, "- `%s` (%s): %s\n", compiler.PathKey(f.Path), f.Type, escape(f.Err.Error()))
		}
		sb.WriteString("\n")
	}
	if len(res.Intermediates) == 0 {
		return sb.String()
	}

	keys := make([]string, 0, len(res.Intermediates))
	for k := range res.Intermediates {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	sb.WriteString("| Node | Kind | Value |\n|------|------|-------|\n")
	for _, k := range keys {
		v := res.Intermediates[k].Value
		kind := "none"
		if v != nil {
			kind = string(v.Kind())
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", k, kind, escape(runtime.Describe(v)))
	}
	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
