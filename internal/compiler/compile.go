// Package compiler flattens document networks into proto networks: flat lists
// of primitive operations with every input resolved to a constant or a
// reference, ready for the runtime executor.
package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/nodegraph/internal/logging"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/registry"
)

// maxNesting bounds recursion through composite types that contain themselves.
const maxNesting = 64

// Catalog resolves node types by name.
type Catalog interface {
	Resolve(name string) (registry.NodeType, error)
	DefaultInput(node *domain.DocumentNode, index int) (domain.NodeInput, bool)
}

// Option configures a compilation.
type Option func(*compiler)

// WithLogger configures a logger for the compiler.
func WithLogger(logger *slog.Logger) Option {
	return func(c *compiler) {
		c.logger = logger
	}
}

// WithInputs supplies the values of the root network's boundary inputs, in
// order. Missing values resolve to None.
func WithInputs(values ...domain.TaggedValue) Option {
	return func(c *compiler) {
		c.inputs = values
	}
}

type compiler struct {
	ctx     context.Context
	catalog Catalog
	logger  *slog.Logger
	inputs  []domain.TaggedValue

	next    ProtoID
	sink    *ProtoNetwork
	dropped map[string]bool
	root    *ProtoNetwork
}

// Compile lowers network into a ProtoNetwork. Only nodes the outputs depend on
// are emitted. Nodes of unknown type are dropped with a warning and links to
// them fall back to the consumer's slot default.
func Compile(ctx context.Context, network *domain.NodeNetwork, catalog Catalog, opts ...Option) (*ProtoNetwork, error) {
	if network == nil {
		return nil, fmt.Errorf("flatten: %w", domain.ErrNoActiveNetwork)
	}
	root := &ProtoNetwork{}
	c := &compiler{
		ctx:     ctx,
		catalog: catalog,
		logger:  logging.NewNop(),
		sink:    root,
		root:    root,
		dropped: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}

	boundary := make([]ProtoInput, len(c.inputs))
	for i, v := range c.inputs {
		boundary[i] = constant(v)
	}
	l, err := c.lowering(network, nil, boundary)
	if err != nil {
		return nil, err
	}
	for i := range network.Outputs {
		out, err := l.networkOutput(i)
		if err != nil {
			return nil, err
		}
		root.Outputs = append(root.Outputs, out)
	}
	return root, nil
}

func (c *compiler) emit(node ProtoNode) ProtoID {
	node.ID = c.next
	c.next++
	c.sink.Nodes = append(c.sink.Nodes, node)
	return node.ID
}

func (c *compiler) drop(path []domain.NodeID, typeName string) {
	key := PathKey(path)
	if c.dropped[key] {
		return
	}
	c.dropped[key] = true
	c.root.Dropped = append(c.root.Dropped, path)
	c.logger.Warn("dropping node with unknown type", "path", key, "type", typeName)
}

type slot struct {
	node  domain.NodeID
	input int
}

// lowering flattens one instance of a network: the root, or one call site of
// a nested network.
type lowering struct {
	c        *compiler
	network  *domain.NodeNetwork
	path     []domain.NodeID
	boundary []ProtoInput
	slots    map[slot]int
	resolved map[domain.NodeID][]ProtoInput
}

func (c *compiler) lowering(network *domain.NodeNetwork, path []domain.NodeID, boundary []ProtoInput) (*lowering, error) {
	if len(path) > maxNesting {
		return nil, domain.NewGraphError("flatten", path[len(path)-1], fmt.Sprintf("nesting exceeds %d levels", maxNesting), domain.ErrCyclicNetwork)
	}
	if _, err := network.TopologicalOrder(); err != nil {
		var at domain.NodeID
		if len(path) > 0 {
			at = path[len(path)-1]
		}
		return nil, domain.NewGraphError("flatten", at, "network contains a cycle", err)
	}
	return &lowering{
		c:        c,
		network:  network,
		path:     path,
		boundary: boundary,
		slots:    boundarySlots(network),
		resolved: make(map[domain.NodeID][]ProtoInput),
	}, nil
}

// boundarySlots numbers the boundary inputs of the network's input nodes in
// declaration order. Call-site inputs are matched to them by that number.
func boundarySlots(network *domain.NodeNetwork) map[slot]int {
	slots := make(map[slot]int)
	for _, id := range network.Inputs {
		node, ok := network.Nodes[id]
		if !ok {
			continue
		}
		for i, input := range node.Inputs {
			if _, ok := input.(domain.Boundary); !ok {
				continue
			}
			if _, seen := slots[slot{id, i}]; !seen {
				slots[slot{id, i}] = len(slots)
			}
		}
	}
	return slots
}

func (l *lowering) nodePath(id domain.NodeID) []domain.NodeID {
	return append(slices.Clone(l.path), id)
}

func (l *lowering) networkOutput(index int) (ProtoInput, error) {
	out := l.network.Outputs[index]
	outs, err := l.outputs(out.Node)
	if err != nil {
		return nil, err
	}
	if out.Index < 0 || out.Index >= len(outs) {
		return constant(domain.None{}), nil
	}
	return outs[out.Index], nil
}

// outputs lowers node id once and returns an expression per output. A nil
// result means the node is missing or was dropped.
func (l *lowering) outputs(id domain.NodeID) ([]ProtoInput, error) {
	if outs, ok := l.resolved[id]; ok {
		return outs, nil
	}
	node, ok := l.network.Nodes[id]
	if !ok {
		return nil, nil
	}
	if err := l.c.ctx.Err(); err != nil {
		return nil, err
	}
	outs, err := l.lower(id, node, nil)
	if err != nil {
		return nil, err
	}
	l.resolved[id] = outs
	return outs, nil
}

// lower emits the proto nodes of one document node. A non-nil argument
// replaces input 0; lambda bodies use it to bind the call argument.
func (l *lowering) lower(id domain.NodeID, node *domain.DocumentNode, argument ProtoInput) ([]ProtoInput, error) {
	if l.network.IsDisabled(id) {
		// Disabled nodes pass their first input through.
		if argument != nil {
			return []ProtoInput{argument}, nil
		}
		if len(node.Inputs) == 0 {
			return []ProtoInput{constant(domain.None{})}, nil
		}
		in, err := l.input(id, node, 0, node.Inputs[0])
		if err != nil {
			return nil, err
		}
		return []ProtoInput{in}, nil
	}

	switch impl := node.Implementation.(type) {
	case domain.Nested:
		return l.lowerNested(id, node, impl.Network, argument)
	case domain.Primitive:
		t, err := l.c.catalog.Resolve(impl.Type)
		if err != nil {
			l.c.drop(l.nodePath(id), impl.Type)
			return nil, nil
		}
		if t.IsComposite() {
			return l.lowerNested(id, node, t.Network(), argument)
		}
		return l.lowerPrimitive(id, node, t, argument)
	default:
		l.c.drop(l.nodePath(id), "")
		return nil, nil
	}
}

func (l *lowering) lowerPrimitive(id domain.NodeID, node *domain.DocumentNode, t registry.NodeType, argument ProtoInput) ([]ProtoInput, error) {
	inputs := make([]ProtoInput, len(t.Inputs))
	for i, s := range t.Inputs {
		if i == 0 && argument != nil {
			inputs[i] = argument
			continue
		}
		input := s.Default
		if i < len(node.Inputs) {
			input = node.Inputs[i]
		}
		resolved, err := l.input(id, node, i, input)
		if err != nil {
			return nil, err
		}
		inputs[i] = resolved
	}

	pid := l.c.emit(ProtoNode{
		Path:      l.nodePath(id),
		Type:      t.Name,
		Operation: t.Operation,
		Inputs:    inputs,
	})
	outs := make([]ProtoInput, len(t.Outputs))
	for k := range outs {
		outs[k] = Ref{Node: pid, Output: k}
	}
	return outs, nil
}

// lowerNested flattens a fresh instance of sub for this call site, so two
// call sites of the same definition never share proto nodes.
func (l *lowering) lowerNested(id domain.NodeID, node *domain.DocumentNode, sub *domain.NodeNetwork, argument ProtoInput) ([]ProtoInput, error) {
	if sub == nil {
		return []ProtoInput{constant(domain.None{})}, nil
	}

	slots := boundarySlots(sub)
	callSite := make([]ProtoInput, len(slots))
	for k := range callSite {
		if k == 0 && argument != nil {
			callSite[k] = argument
			continue
		}
		var input domain.NodeInput
		if k < len(node.Inputs) {
			input = node.Inputs[k]
		} else if def, ok := l.c.catalog.DefaultInput(node, k); ok {
			input = def
		}
		resolved, err := l.input(id, node, k, input)
		if err != nil {
			return nil, err
		}
		callSite[k] = resolved
	}

	child, err := l.c.lowering(sub, l.nodePath(id), callSite)
	if err != nil {
		return nil, err
	}
	outs := make([]ProtoInput, len(sub.Outputs))
	for k := range outs {
		if outs[k], err = child.networkOutput(k); err != nil {
			return nil, err
		}
	}
	return outs, nil
}

// input resolves input i of node. Literals embed by value, links resolve to
// the target's output expression, boundaries to the call-site expression.
func (l *lowering) input(id domain.NodeID, node *domain.DocumentNode, i int, input domain.NodeInput) (ProtoInput, error) {
	switch in := input.(type) {
	case domain.Literal:
		return constant(in.Value), nil
	case domain.Boundary:
		return l.boundaryInput(id, i), nil
	case domain.Link:
		if in.Lambda {
			return l.lambda(id, node, i, in)
		}
		outs, err := l.outputs(in.Target)
		if err != nil {
			return nil, err
		}
		if in.OutputIndex >= 0 && in.OutputIndex < len(outs) {
			return outs[in.OutputIndex], nil
		}
		return l.fallback(id, node, i), nil
	default:
		return constant(domain.None{}), nil
	}
}

func (l *lowering) boundaryInput(id domain.NodeID, i int) ProtoInput {
	if k, ok := l.slots[slot{id, i}]; ok && k < len(l.boundary) {
		return l.boundary[k]
	}
	return constant(domain.None{})
}

// fallback is the slot default used when a link cannot be resolved.
func (l *lowering) fallback(id domain.NodeID, node *domain.DocumentNode, i int) ProtoInput {
	def, ok := l.c.catalog.DefaultInput(node, i)
	if !ok {
		return constant(domain.None{})
	}
	switch d := def.(type) {
	case domain.Literal:
		return constant(d.Value)
	case domain.Boundary:
		return l.boundaryInput(id, i)
	default:
		return constant(domain.None{})
	}
}

// lambda compiles the target of a lambda link into a deferred body. The call
// argument is bound to the target's first input; its other inputs resolve by
// value in the enclosing network and are shared across invocations.
func (l *lowering) lambda(id domain.NodeID, node *domain.DocumentNode, i int, link domain.Link) (ProtoInput, error) {
	target, ok := l.network.Nodes[link.Target]
	if !ok {
		return l.fallback(id, node, i), nil
	}
	// Emit shared upstream nodes into the enclosing network before switching
	// the sink, so nothing outside the body refers into it.
	if err := l.prime(target); err != nil {
		return nil, err
	}

	body := &ProtoNetwork{}
	outer := l.c.sink
	l.c.sink = body
	outs, err := l.lower(link.Target, target, Argument{})
	l.c.sink = outer
	if err != nil {
		return nil, err
	}
	if link.OutputIndex < 0 || link.OutputIndex >= len(outs) {
		return l.fallback(id, node, i), nil
	}
	body.Outputs = []ProtoInput{outs[link.OutputIndex]}
	return Lambda{Body: body}, nil
}

// prime lowers, in the current sink, every node the lambda target reads by
// value. Input 0 is skipped because the call argument replaces it.
func (l *lowering) prime(node *domain.DocumentNode) error {
	for i, input := range node.Inputs {
		if i == 0 {
			continue
		}
		link, ok := input.(domain.Link)
		if !ok {
			continue
		}
		if link.Lambda {
			if target, ok := l.network.Nodes[link.Target]; ok {
				if err := l.prime(target); err != nil {
					return err
				}
			}
			continue
		}
		if _, err := l.outputs(link.Target); err != nil {
			return err
		}
	}
	return nil
}

func constant(v domain.TaggedValue) Const {
	if v == nil {
		v = domain.None{}
	}
	return Const{Value: v}
}
