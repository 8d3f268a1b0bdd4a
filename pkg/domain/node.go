package domain

// NodeID identifies a node within one network level. Nested networks and distinct
// call sites may reuse numerically equal ids for different instances.
type NodeID uint64

// NodeInput is one input slot of a DocumentNode.
// Implementations: Literal, Link, Boundary.
type NodeInput interface {
	// IsExposed reports whether the input is visible and connectable in the graph UI.
	IsExposed() bool
	isNodeInput()
}

// Literal is a fixed value. Hiding or showing it never discards Value.
type Literal struct {
	Value   TaggedValue
	Exposed bool
}

// Link reads output OutputIndex of node Target in the same network.
// A lambda link is substituted by reference and re-evaluated per invocation.
type Link struct {
	Target      NodeID
	OutputIndex int
	Lambda      bool
}

// Boundary is fed by the enclosing network's call site. Only valid inside nested networks.
type Boundary struct{}

func (l Literal) IsExposed() bool { return l.Exposed }
func (Link) IsExposed() bool      { return true }
func (Boundary) IsExposed() bool  { return true }

func (Literal) isNodeInput()  {}
func (Link) isNodeInput()     {}
func (Boundary) isNodeInput() {}

// Value is a shorthand for a Literal.
func Value(v TaggedValue, exposed bool) Literal {
	return Literal{Value: v, Exposed: exposed}
}

// LinkTo is a shorthand for a non-lambda Link.
func LinkTo(target NodeID, outputIndex int) Link {
	return Link{Target: target, OutputIndex: outputIndex}
}

// Implementation describes how a DocumentNode computes its outputs.
// Implementations: Primitive, Nested.
type Implementation interface {
	isImplementation()
}

// Primitive refers to a registered node type by name.
type Primitive struct {
	Type string
}

// Nested holds a whole sub-network evaluated as one unit.
type Nested struct {
	Network *NodeNetwork
}

func (Primitive) isImplementation() {}
func (Nested) isImplementation()    {}

// NodeOutput addresses one output slot of a node.
type NodeOutput struct {
	Node  NodeID `json:"node"`
	Index int    `json:"index"`
}

// DocumentNode is one placed node.
type DocumentNode struct {
	Name           string
	Inputs         []NodeInput
	Implementation Implementation
	// Position is only used for layout.
	Position IVec2
}

// TypeName is the catalog key of the node: the primitive type name,
// or the display name for nested networks.
func (n *DocumentNode) TypeName() string {
	if p, ok := n.Implementation.(Primitive); ok {
		return p.Type
	}
	return n.Name
}

// Network returns the nested network, or nil for primitives.
func (n *DocumentNode) Network() *NodeNetwork {
	if nested, ok := n.Implementation.(Nested); ok {
		return nested.Network
	}
	return nil
}

// Clone returns a deep copy. Tagged values are shared since they are never mutated in place.
func (n *DocumentNode) Clone() *DocumentNode {
	c := *n
	c.Inputs = append([]NodeInput(nil), n.Inputs...)
	if nested, ok := n.Implementation.(Nested); ok && nested.Network != nil {
		c.Implementation = Nested{Network: nested.Network.Clone()}
	}
	return &c
}

// DefaultInputFunc returns the registered default for input index of node.
type DefaultInputFunc func(node *DocumentNode, index int) (NodeInput, bool)

// MapIDs clones the node and rewrites every Link through idMap. Links whose target
// is not in idMap fall back to the slot default; if no default is known the input
// becomes an exposed None literal.
func (n *DocumentNode) MapIDs(defaults DefaultInputFunc, idMap map[NodeID]NodeID) *DocumentNode {
	c := n.Clone()
	for i, input := range c.Inputs {
		link, ok := input.(Link)
		if !ok {
			continue
		}
		if mapped, ok := idMap[link.Target]; ok {
			link.Target = mapped
			c.Inputs[i] = link
			continue
		}
		if def, ok := defaults(n, i); ok {
			c.Inputs[i] = def
		} else {
			c.Inputs[i] = Value(None{}, true)
		}
	}
	return c
}

// LinkedTargets returns the targets of every Link input, in input order.
func (n *DocumentNode) LinkedTargets() []NodeID {
	var ids []NodeID
	for _, input := range n.Inputs {
		if link, ok := input.(Link); ok {
			ids = append(ids, link.Target)
		}
	}
	return ids
}

// ExposedIndex maps a position among exposed inputs to the real input index.
func (n *DocumentNode) ExposedIndex(position int) (int, bool) {
	if position < 0 {
		return 0, false
	}
	seen := 0
	for i, input := range n.Inputs {
		if !input.IsExposed() {
			continue
		}
		if seen == position {
			return i, true
		}
		seen++
	}
	return 0, false
}
