package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/nodegraph/internal/validator"
	"github.com/aretw0/nodegraph/pkg/adapters/memory"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/registry"
)

// Builder manages the network construction.
type Builder struct {
	catalog  *registry.Registry
	order    []domain.NodeID
	nodes    map[domain.NodeID]*NodeBuilder
	inputs   []domain.NodeID
	outputs  []domain.NodeOutput
	disabled []domain.NodeID
}

// New creates a builder resolving node types through catalog.
func New(catalog *registry.Registry) *Builder {
	return &Builder{
		catalog: catalog,
		nodes:   make(map[domain.NodeID]*NodeBuilder),
	}
}

// Add places a node of a catalog type.
// If the id already exists, it returns the existing builder.
func (b *Builder) Add(id domain.NodeID, typeName string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{id: id, typeName: typeName, inputs: make(map[int]domain.NodeInput), builder: b}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Nested places a node holding its own network, built by fn.
func (b *Builder) Nested(id domain.NodeID, name string, fn func(inner *Builder)) *NodeBuilder {
	nb := b.Add(id, "")
	nb.name = name
	nb.inner = New(b.catalog)
	fn(nb.inner)
	return nb
}

// Input declares id as fed by the enclosing network.
func (b *Builder) Input(id domain.NodeID) *Builder {
	b.inputs = append(b.inputs, id)
	return b
}

// Output appends output index of node id to the network outputs.
func (b *Builder) Output(id domain.NodeID, index int) *Builder {
	b.outputs = append(b.outputs, domain.NodeOutput{Node: id, Index: index})
	return b
}

// Build assembles and validates the network.
func (b *Builder) Build() (*domain.NodeNetwork, error) {
	n, err := b.assemble()
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(n, b.catalog).Err(); err != nil {
		return nil, err
	}
	return n, nil
}

// Loader builds the network and serves it under name from memory.
func (b *Builder) Loader(name string) (*memory.Loader, error) {
	n, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", name, err)
	}
	return memory.NewLoader(map[string]*domain.NodeNetwork{name: n}), nil
}

func (b *Builder) assemble() (*domain.NodeNetwork, error) {
	n := domain.NewNetwork()
	n.Inputs = b.inputs
	n.Outputs = b.outputs
	n.Disabled = b.disabled

	var errs []error
	for _, id := range b.order {
		node, err := b.nodes[id].build()
		if err != nil {
			errs = append(errs, fmt.Errorf("node %d: %w", id, err))
			continue
		}
		n.Nodes[id] = node
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return n, nil
}
