package validator

import (
	"testing"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func primitive(typeName string, inputs ...domain.NodeInput) *domain.DocumentNode {
	return &domain.DocumentNode{Name: typeName, Implementation: domain.Primitive{Type: typeName}, Inputs: inputs}
}

func valid() *domain.NodeNetwork {
	n := domain.NewNetwork()
	n.Nodes[1] = primitive(registry.TypeInput, domain.Boundary{})
	n.Nodes[2] = primitive(registry.TypeExposure, domain.LinkTo(1, 0), domain.Value(domain.Number(1), false))
	n.Nodes[3] = primitive(registry.TypeOutput, domain.LinkTo(2, 0))
	n.Inputs = []domain.NodeID{1}
	n.Outputs = []domain.NodeOutput{{Node: 3}}
	return n
}

func TestValidate_Valid(t *testing.T) {
	r := Validate(valid(), registry.Builtin())
	assert.NoError(t, r.Err())
	assert.Empty(t, r.Warnings)
}

func TestValidate_BrokenLinks(t *testing.T) {
	n := valid()
	n.Nodes[2].Inputs[0] = domain.LinkTo(9, 0)
	n.Nodes[3].Inputs[0] = domain.LinkTo(2, 4)

	r := Validate(n, registry.Builtin())
	require.Error(t, r.Err())
	assert.Contains(t, r.Err().Error(), "found 2 errors")
	assert.Contains(t, r.Errors, "node 2 input 0 links to missing node 9")
	assert.Contains(t, r.Errors, "node 3 input 0 links to missing output 4 of node 2")
}

func TestValidate_Boundaries(t *testing.T) {
	n := valid()
	n.Inputs = append(n.Inputs, 7)
	n.Outputs = append(n.Outputs, domain.NodeOutput{Node: 8})
	n.Disabled = []domain.NodeID{3}

	r := Validate(n, registry.Builtin())
	assert.Contains(t, r.Errors, "input node 7 does not exist")
	assert.Contains(t, r.Errors, "output node 8 does not exist")
	assert.Contains(t, r.Errors, "boundary node 3 cannot be disabled")
}

func TestValidate_Cycle(t *testing.T) {
	n := valid()
	n.Nodes[2].Inputs[0] = domain.LinkTo(3, 0)

	r := Validate(n, registry.Builtin())
	assert.Contains(t, r.Errors, "network contains a cycle")
}

func TestValidate_WarningsAndNesting(t *testing.T) {
	inner := valid()
	inner.Nodes[4] = primitive("Teleport")

	n := valid()
	n.Nodes[5] = &domain.DocumentNode{Name: "Group", Implementation: domain.Nested{Network: inner}}
	n.Nodes[2].Inputs[0] = domain.LinkTo(5, 0)

	r := Validate(n, registry.Builtin())
	assert.NoError(t, r.Err())
	assert.Contains(t, r.Warnings, `in 5: node 4 has unknown type "Teleport" and will be dropped`)
	assert.Contains(t, r.Warnings, "in 5: node 4 does not reach any output")
	assert.NotContains(t, r.Warnings, "node 1 does not reach any output", "input nodes are not reported")
}
