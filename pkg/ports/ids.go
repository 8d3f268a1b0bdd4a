package ports

import "github.com/aretw0/nodegraph/pkg/domain"

// IDGenerator supplies node ids for newly created nodes.
// Implementations must never return the same id twice.
type IDGenerator interface {
	NextID() domain.NodeID
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() domain.NodeID

// NextID calls f.
func (f IDGeneratorFunc) NextID() domain.NodeID {
	return f()
}
