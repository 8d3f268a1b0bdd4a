package domain

import (
	"fmt"
	"slices"
)

// NodeNetwork is the graph of nodes, links and boundary declarations at one nesting level.
type NodeNetwork struct {
	Nodes map[NodeID]*DocumentNode `json:"nodes"`
	// Inputs marks the nodes fed by the enclosing network.
	Inputs []NodeID `json:"inputs"`
	// Outputs lists the network results; index 0 is the primary output.
	Outputs []NodeOutput `json:"outputs"`
	// PreviousOutputs is the preview stash. Nil when not previewing.
	PreviousOutputs []NodeOutput `json:"previous_outputs,omitempty"`
	Disabled        []NodeID     `json:"disabled,omitempty"`

	// Generation increases on every mutation. Evaluations stamped with an
	// older generation are stale.
	Generation uint64 `json:"-"`
}

// NewNetwork returns an empty network.
func NewNetwork() *NodeNetwork {
	return &NodeNetwork{Nodes: make(map[NodeID]*DocumentNode)}
}

// Touch marks the network as modified.
func (n *NodeNetwork) Touch() {
	n.Generation++
}

// Node looks up a node by id.
func (n *NodeNetwork) Node(id NodeID) (*DocumentNode, bool) {
	node, ok := n.Nodes[id]
	return node, ok
}

// NestedNetwork follows path from n, descending through each node's nested implementation.
func (n *NodeNetwork) NestedNetwork(path []NodeID) (*NodeNetwork, error) {
	network := n
	for depth, id := range path {
		node, ok := network.Nodes[id]
		if !ok {
			return nil, fmt.Errorf("%w: segment %d (node %d) does not exist", ErrNoActiveNetwork, depth, id)
		}
		nested := node.Network()
		if nested == nil {
			return nil, fmt.Errorf("%w: segment %d (node %d) has no nested network", ErrNoActiveNetwork, depth, id)
		}
		network = nested
	}
	return network, nil
}

// IsInput reports whether id is a boundary input node.
func (n *NodeNetwork) IsInput(id NodeID) bool {
	return slices.Contains(n.Inputs, id)
}

// OutputsContain reports whether id is a current output node.
func (n *NodeNetwork) OutputsContain(id NodeID) bool {
	return containsOutput(n.Outputs, id)
}

// OriginalOutputs returns the outputs as they were before any preview.
func (n *NodeNetwork) OriginalOutputs() []NodeOutput {
	if n.PreviousOutputs != nil {
		return n.PreviousOutputs
	}
	return n.Outputs
}

// OriginalOutputsContain reports whether id is an output ignoring any preview.
func (n *NodeNetwork) OriginalOutputsContain(id NodeID) bool {
	return containsOutput(n.OriginalOutputs(), id)
}

// PreviousOutputsContain reports whether id is in the preview stash.
// The second result is false when nothing is stashed.
func (n *NodeNetwork) PreviousOutputsContain(id NodeID) (bool, bool) {
	if n.PreviousOutputs == nil {
		return false, false
	}
	return containsOutput(n.PreviousOutputs, id), true
}

// IsBoundary reports whether id is an input node or an output node (current or stashed).
// Boundary nodes can never be deleted or disabled.
func (n *NodeNetwork) IsBoundary(id NodeID) bool {
	return n.IsInput(id) || n.OutputsContain(id) || n.OriginalOutputsContain(id)
}

// IsDisabled reports whether id is in the disabled set.
func (n *NodeNetwork) IsDisabled(id NodeID) bool {
	return slices.Contains(n.Disabled, id)
}

// SortedIDs returns every node id in ascending order.
func (n *NodeNetwork) SortedIDs() []NodeID {
	ids := make([]NodeID, 0, len(n.Nodes))
	for id := range n.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// OutwardsLinks maps every node to the nodes consuming one of its outputs.
func (n *NodeNetwork) OutwardsLinks() map[NodeID][]NodeID {
	links := make(map[NodeID][]NodeID)
	for _, id := range n.SortedIDs() {
		for _, target := range n.Nodes[id].LinkedTargets() {
			if !slices.Contains(links[target], id) {
				links[target] = append(links[target], id)
			}
		}
	}
	return links
}

// ConnectedToOutput reports whether id feeds, directly or transitively, any output.
func (n *NodeNetwork) ConnectedToOutput(id NodeID) bool {
	visited := make(map[NodeID]bool)
	stack := make([]NodeID, 0, len(n.Outputs))
	for _, out := range n.Outputs {
		stack = append(stack, out.Node)
	}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == id {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		if node, ok := n.Nodes[current]; ok {
			stack = append(stack, node.LinkedTargets()...)
		}
	}
	return false
}

// TopologicalOrder returns node ids so that every link target precedes its consumer.
// Links to missing nodes are ignored. Returns ErrCyclicNetwork on a cycle.
func (n *NodeNetwork) TopologicalOrder() ([]NodeID, error) {
	inDegree := make(map[NodeID]int, len(n.Nodes))
	dependents := make(map[NodeID][]NodeID, len(n.Nodes))
	ids := n.SortedIDs()
	for _, id := range ids {
		inDegree[id] += 0
		for _, target := range n.Nodes[id].LinkedTargets() {
			if _, ok := n.Nodes[target]; !ok {
				continue
			}
			inDegree[id]++
			dependents[target] = append(dependents[target], id)
		}
	}

	queue := make([]NodeID, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]NodeID, 0, len(ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, dependent := range dependents[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(ids) {
		return nil, ErrCyclicNetwork
	}
	return order, nil
}

// IsAcyclic reports whether the link graph has no cycle.
func (n *NodeNetwork) IsAcyclic() bool {
	_, err := n.TopologicalOrder()
	return err == nil
}

// Clone returns a deep copy of the network, including nested networks.
func (n *NodeNetwork) Clone() *NodeNetwork {
	c := &NodeNetwork{
		Nodes:      make(map[NodeID]*DocumentNode, len(n.Nodes)),
		Inputs:     slices.Clone(n.Inputs),
		Outputs:    slices.Clone(n.Outputs),
		Disabled:   slices.Clone(n.Disabled),
		Generation: n.Generation,
	}
	if n.PreviousOutputs != nil {
		c.PreviousOutputs = append([]NodeOutput{}, n.PreviousOutputs...)
	}
	for id, node := range n.Nodes {
		c.Nodes[id] = node.Clone()
	}
	return c
}

func containsOutput(outputs []NodeOutput, id NodeID) bool {
	for _, out := range outputs {
		if out.Node == id {
			return true
		}
	}
	return false
}
