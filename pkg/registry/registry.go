package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/nodegraph/pkg/domain"
)

// Operation computes the outputs of a primitive node from its resolved inputs.
// It must not retain args beyond the call.
type Operation func(ctx context.Context, args Args) ([]domain.TaggedValue, error)

// InputSlot describes one ordered input of a node type.
type InputSlot struct {
	Name     string
	DataType domain.DataType
	// Default is the input a fresh node starts with, and what a link falls back
	// to when its target disappears.
	Default domain.NodeInput
}

// OutputSlot describes one ordered output of a node type.
type OutputSlot struct {
	Name     string
	DataType domain.DataType
}

// NodeType is a catalog entry. Exactly one of Operation (primitive) or
// Network (composite) is set.
type NodeType struct {
	Name     string
	Category string
	Inputs   []InputSlot
	Outputs  []OutputSlot
	// Operation implements a primitive type.
	Operation Operation
	// Network builds a fresh copy of a composite type's implementation.
	Network func() *domain.NodeNetwork
}

// IsComposite reports whether the type is implemented by a nested network.
func (t NodeType) IsComposite() bool {
	return t.Network != nil
}

// TypeInfo is the summary of a type listed to the graph UI.
type TypeInfo struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// ErrInvalidNodeType is returned by Register for malformed descriptors.
var ErrInvalidNodeType = errors.New("invalid node type")

// Registry manages the available node types.
type Registry struct {
	mu    sync.RWMutex
	types map[string]NodeType
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]NodeType),
	}
}

// Register adds a node type to the registry.
// If a type with the same name exists, it is overwritten.
func (r *Registry) Register(t NodeType) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidNodeType)
	}
	if (t.Operation == nil) == (t.Network == nil) {
		return fmt.Errorf("%w: %q must have exactly one of operation or network", ErrInvalidNodeType, t.Name)
	}
	for i, slot := range t.Inputs {
		if slot.Default == nil {
			return fmt.Errorf("%w: %q input %d has no default", ErrInvalidNodeType, t.Name, i)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Name] = t
	return nil
}

// Resolve looks up a node type by name.
func (r *Registry) Resolve(name string) (NodeType, error) {
	r.mu.RLock()
	t, ok := r.types[name]
	r.mu.RUnlock()

	if !ok {
		return NodeType{}, fmt.Errorf("%w: %s", domain.ErrUnknownNodeType, name)
	}
	return t, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[name]
	return ok
}

// Types lists every registered type sorted by category, then name.
func (r *Registry) Types() []TypeInfo {
	r.mu.RLock()
	infos := make([]TypeInfo, 0, len(r.types))
	for _, t := range r.types {
		infos = append(infos, TypeInfo{Name: t.Name, Category: t.Category})
	}
	r.mu.RUnlock()

	slices.SortFunc(infos, func(a, b TypeInfo) int {
		if c := strings.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return infos
}

// DefaultInput returns the registered default for input index of node.
// It satisfies domain.DefaultInputFunc.
func (r *Registry) DefaultInput(node *domain.DocumentNode, index int) (domain.NodeInput, bool) {
	t, err := r.Resolve(node.TypeName())
	if err != nil || index < 0 || index >= len(t.Inputs) {
		return nil, false
	}
	return t.Inputs[index].Default, true
}

// NewNode builds a DocumentNode of the named type with every input at its default.
func (r *Registry) NewNode(name string, position domain.IVec2) (*domain.DocumentNode, error) {
	t, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}

	node := &domain.DocumentNode{
		Name:     t.Name,
		Inputs:   make([]domain.NodeInput, len(t.Inputs)),
		Position: position,
	}
	for i, slot := range t.Inputs {
		node.Inputs[i] = slot.Default
	}
	if t.IsComposite() {
		node.Implementation = domain.Nested{Network: t.Network()}
	} else {
		node.Implementation = domain.Primitive{Type: t.Name}
	}
	return node, nil
}

// InputSlots returns the input descriptors for node, or nil if its type is unknown.
func (r *Registry) InputSlots(node *domain.DocumentNode) []InputSlot {
	t, err := r.Resolve(node.TypeName())
	if err != nil {
		return nil
	}
	return t.Inputs
}

// OutputSlots returns the output descriptors for node, or nil if its type is unknown.
func (r *Registry) OutputSlots(node *domain.DocumentNode) []OutputSlot {
	t, err := r.Resolve(node.TypeName())
	if err != nil {
		return nil
	}
	return t.Outputs
}
