package compiler

import (
	"strconv"
	"strings"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/registry"
)

// ProtoID identifies a proto node within one compiled network.
type ProtoID uint64

// ProtoInput is a fully resolved operation input.
type ProtoInput interface {
	isProtoInput()
}

// Const embeds a literal value.
type Const struct {
	Value domain.TaggedValue
}

// Ref reads output Output of proto node Node.
type Ref struct {
	Node   ProtoID
	Output int
}

// Argument is the value a lambda body is invoked with.
type Argument struct{}

// Lambda is a deferred sub-graph. The consumer receives it as a domain.Func
// and the body is evaluated again on every call.
type Lambda struct {
	Body *ProtoNetwork
}

func (Const) isProtoInput()    {}
func (Ref) isProtoInput()      {}
func (Argument) isProtoInput() {}
func (Lambda) isProtoInput()   {}

// ProtoNode is one primitive operation of the flat graph.
type ProtoNode struct {
	ID ProtoID
	// Path is the document path of the originating node: the ids of the
	// enclosing nested nodes followed by the node's own id.
	Path      []domain.NodeID
	Type      string
	Operation registry.Operation
	Inputs    []ProtoInput
}

// ProtoNetwork is a flattened network. Nodes are in dependency order: every
// Ref points at an earlier node of the same network or of an enclosing one.
type ProtoNetwork struct {
	Nodes []ProtoNode
	// Outputs resolve the network outputs, in order.
	Outputs []ProtoInput
	// Dropped lists the paths of nodes left out because their type is unknown.
	Dropped [][]domain.NodeID
}

// Output is the primary output, or a None constant when the network has none.
func (p *ProtoNetwork) Output() ProtoInput {
	if len(p.Outputs) == 0 {
		return Const{Value: domain.None{}}
	}
	return p.Outputs[0]
}

// Node finds a proto node by id.
func (p *ProtoNetwork) Node(id ProtoID) (ProtoNode, bool) {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return ProtoNode{}, false
}

// PathKey renders a document path as "1/2/3".
func PathKey(path []domain.NodeID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, "/")
}
