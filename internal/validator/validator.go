// Package validator checks documents for broken links, dangling boundary
// declarations, cycles and unknown node types before they are edited or run.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/nodegraph/internal/compiler"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/registry"
)

// Catalog resolves node types by name.
type Catalog interface {
	Resolve(name string) (registry.NodeType, error)
}

// Report lists what Validate found. Errors break store invariants; warnings
// only degrade evaluation.
type Report struct {
	Errors   []string
	Warnings []string
}

// Err folds the errors into one, or returns nil.
func (r Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Errors), strings.Join(r.Errors, "\n- "))
}

func (r *Report) errorf(path []domain.NodeID, format string, args ...any) {
	r.Errors = append(r.Errors, at(path)+fmt.Sprintf(format, args...))
}

func (r *Report) warnf(path []domain.NodeID, format string, args ...any) {
	r.Warnings = append(r.Warnings, at(path)+fmt.Sprintf(format, args...))
}

func at(path []domain.NodeID) string {
	if len(path) == 0 {
		return ""
	}
	return "in " + compiler.PathKey(path) + ": "
}

// Validate checks network and every nested network below it.
func Validate(network *domain.NodeNetwork, catalog Catalog) Report {
	var r Report
	validate(&r, network, catalog, nil)
	return r
}

func validate(r *Report, n *domain.NodeNetwork, catalog Catalog, path []domain.NodeID) {
	for _, id := range n.Inputs {
		if _, ok := n.Nodes[id]; !ok {
			r.errorf(path, "input node %d does not exist", id)
		}
	}
	checkOutputs := func(kind string, outputs []domain.NodeOutput) {
		for _, out := range outputs {
			node, ok := n.Nodes[out.Node]
			if !ok {
				r.errorf(path, "%s node %d does not exist", kind, out.Node)
				continue
			}
			if count, known := outputCount(node, catalog); known && (out.Index < 0 || out.Index >= count) {
				r.errorf(path, "%s (%d, %d) addresses a missing output", kind, out.Node, out.Index)
			}
		}
	}
	checkOutputs("output", n.Outputs)
	checkOutputs("stashed output", n.PreviousOutputs)

	for _, id := range n.Disabled {
		if _, ok := n.Nodes[id]; !ok {
			r.errorf(path, "disabled node %d does not exist", id)
		} else if n.IsBoundary(id) {
			r.errorf(path, "boundary node %d cannot be disabled", id)
		}
	}

	for _, id := range n.SortedIDs() {
		node := n.Nodes[id]
		for i, input := range node.Inputs {
			link, ok := input.(domain.Link)
			if !ok {
				continue
			}
			target, ok := n.Nodes[link.Target]
			if !ok {
				r.errorf(path, "node %d input %d links to missing node %d", id, i, link.Target)
				continue
			}
			if count, known := outputCount(target, catalog); known && (link.OutputIndex < 0 || link.OutputIndex >= count) {
				r.errorf(path, "node %d input %d links to missing output %d of node %d", id, i, link.OutputIndex, link.Target)
			}
		}

		switch impl := node.Implementation.(type) {
		case domain.Primitive:
			if _, err := catalog.Resolve(impl.Type); err != nil {
				r.warnf(path, "node %d has unknown type %q and will be dropped", id, impl.Type)
			}
		case domain.Nested:
			if impl.Network == nil {
				r.errorf(path, "node %d has an empty nested network", id)
				continue
			}
			validate(r, impl.Network, catalog, append(append([]domain.NodeID(nil), path...), id))
		default:
			r.errorf(path, "node %d has no implementation", id)
		}
	}

	if !n.IsAcyclic() {
		r.errorf(path, "network contains a cycle")
		return
	}

	for _, id := range n.SortedIDs() {
		if !n.ConnectedToOutput(id) && !n.IsInput(id) {
			r.warnf(path, "node %d does not reach any output", id)
		}
	}
}

// outputCount reports how many outputs node has, when that is knowable.
func outputCount(node *domain.DocumentNode, catalog Catalog) (int, bool) {
	if nested := node.Network(); nested != nil {
		return len(nested.Outputs), true
	}
	t, err := catalog.Resolve(node.TypeName())
	if err != nil {
		return 0, false
	}
	if t.IsComposite() {
		return len(t.Network().Outputs), true
	}
	return len(t.Outputs), true
}
