package dsl

import (
	"fmt"
	"slices"

	"github.com/aretw0/nodegraph/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	id       domain.NodeID
	typeName string
	name     string
	position domain.IVec2
	inputs   map[int]domain.NodeInput
	inner    *Builder
	builder  *Builder
}

// At sets the layout position.
func (n *NodeBuilder) At(x, y int) *NodeBuilder {
	n.position = domain.IVec2{X: x, Y: y}
	return n
}

// Name overrides the display name.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.name = name
	return n
}

// Set stores a hidden literal into input i.
func (n *NodeBuilder) Set(i int, v domain.TaggedValue) *NodeBuilder {
	n.inputs[i] = domain.Value(v, false)
	return n
}

// Expose stores an exposed literal into input i.
func (n *NodeBuilder) Expose(i int, v domain.TaggedValue) *NodeBuilder {
	n.inputs[i] = domain.Value(v, true)
	return n
}

// Link connects output 0 of target (or the given output) into input i.
func (n *NodeBuilder) Link(i int, target domain.NodeID, output ...int) *NodeBuilder {
	link := domain.LinkTo(target, 0)
	if len(output) > 0 {
		link.OutputIndex = output[0]
	}
	n.inputs[i] = link
	return n
}

// Lambda passes target into input i as a function, evaluated per call.
func (n *NodeBuilder) Lambda(i int, target domain.NodeID) *NodeBuilder {
	n.inputs[i] = domain.Link{Target: target, Lambda: true}
	return n
}

// Boundary feeds input i from the enclosing network.
func (n *NodeBuilder) Boundary(i int) *NodeBuilder {
	n.inputs[i] = domain.Boundary{}
	return n
}

// Disable hides the node; it then passes its primary input through.
func (n *NodeBuilder) Disable() *NodeBuilder {
	if !slices.Contains(n.builder.disabled, n.id) {
		n.builder.disabled = append(n.builder.disabled, n.id)
	}
	return n
}

func (n *NodeBuilder) build() (*domain.DocumentNode, error) {
	if n.inner != nil {
		return n.buildNested()
	}

	node, err := n.builder.catalog.NewNode(n.typeName, n.position)
	if err != nil {
		return nil, err
	}
	if n.name != "" {
		node.Name = n.name
	}
	for i, input := range n.inputs {
		if i < 0 || i >= len(node.Inputs) {
			return nil, fmt.Errorf("%w: %s has no input %d", domain.ErrInvalidInputIndex, n.typeName, i)
		}
		node.Inputs[i] = input
	}
	return node, nil
}

// buildNested sizes the call-site inputs by the highest index set. Unset ones
// are exposed None literals.
func (n *NodeBuilder) buildNested() (*domain.DocumentNode, error) {
	network, err := n.inner.assemble()
	if err != nil {
		return nil, err
	}
	count := 0
	for i := range n.inputs {
		if i < 0 {
			return nil, fmt.Errorf("%w: %d", domain.ErrInvalidInputIndex, i)
		}
		count = max(count, i+1)
	}
	inputs := make([]domain.NodeInput, count)
	for i := range inputs {
		if input, ok := n.inputs[i]; ok {
			inputs[i] = input
		} else {
			inputs[i] = domain.Value(domain.None{}, true)
		}
	}
	return &domain.DocumentNode{
		Name:           n.name,
		Inputs:         inputs,
		Implementation: domain.Nested{Network: network},
		Position:       n.position,
	}, nil
}
