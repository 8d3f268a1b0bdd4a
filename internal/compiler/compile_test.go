package compiler

import (
	"context"
	"testing"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(t *testing.T, r *registry.Registry, typeName string, inputs ...domain.NodeInput) *domain.DocumentNode {
	t.Helper()
	n, err := r.NewNode(typeName, domain.IVec2{})
	require.NoError(t, err)
	for i, in := range inputs {
		if in != nil {
			n.Inputs[i] = in
		}
	}
	return n
}

func num(v float64) domain.Literal {
	return domain.Value(domain.Number(v), true)
}

// requireOrdered checks that every Ref points at an earlier node.
func requireOrdered(t *testing.T, p *ProtoNetwork, outer map[ProtoID]bool) {
	t.Helper()
	seen := make(map[ProtoID]bool, len(outer)+len(p.Nodes))
	for id := range outer {
		seen[id] = true
	}
	check := func(in ProtoInput) {
		switch v := in.(type) {
		case Ref:
			require.True(t, seen[v.Node], "ref to %d before it is defined", v.Node)
		case Lambda:
			requireOrdered(t, v.Body, seen)
		}
	}
	for _, n := range p.Nodes {
		for _, in := range n.Inputs {
			check(in)
		}
		seen[n.ID] = true
	}
	for _, out := range p.Outputs {
		check(out)
	}
}

func TestCompile_Chain(t *testing.T) {
	r := registry.Builtin()
	n := domain.NewNetwork()
	n.Nodes[1] = node(t, r, registry.TypeNumber, domain.Value(domain.Number(3), false))
	n.Nodes[2] = node(t, r, "Add", domain.LinkTo(1, 0), num(4))
	n.Nodes[3] = node(t, r, registry.TypeOutput, domain.LinkTo(2, 0))
	n.Nodes[9] = node(t, r, "Grayscale") // not connected to the output
	n.Outputs = []domain.NodeOutput{{Node: 3}}

	p, err := Compile(context.Background(), n, r)
	require.NoError(t, err)

	require.Len(t, p.Nodes, 3)
	assert.Equal(t, []string{registry.TypeNumber, "Add", registry.TypeOutput},
		[]string{p.Nodes[0].Type, p.Nodes[1].Type, p.Nodes[2].Type})
	assert.Equal(t, []domain.NodeID{2}, p.Nodes[1].Path)
	assert.Equal(t, []ProtoInput{Ref{Node: p.Nodes[0].ID}, Const{Value: domain.Number(4)}}, p.Nodes[1].Inputs)
	assert.Equal(t, Ref{Node: p.Nodes[2].ID}, p.Output())
	requireOrdered(t, p, nil)
}

func TestCompile_UnknownTypeDropped(t *testing.T) {
	r := registry.Builtin()
	n := domain.NewNetwork()
	n.Nodes[1] = &domain.DocumentNode{Name: "Teleport", Implementation: domain.Primitive{Type: "Teleport"}}
	n.Nodes[2] = node(t, r, "Multiply", domain.LinkTo(1, 0), domain.LinkTo(1, 0))
	n.Outputs = []domain.NodeOutput{{Node: 2}}

	p, err := Compile(context.Background(), n, r)
	require.NoError(t, err)

	require.Len(t, p.Nodes, 1)
	assert.Equal(t, []ProtoInput{Const{Value: domain.Number(0)}, Const{Value: domain.Number(1)}}, p.Nodes[0].Inputs,
		"links to a dropped node use each slot's own default")
	assert.Equal(t, [][]domain.NodeID{{1}}, p.Dropped)
}

func TestCompile_DisabledPassesThrough(t *testing.T) {
	r := registry.Builtin()
	n := domain.NewNetwork()
	n.Nodes[1] = node(t, r, registry.TypeInput)
	n.Nodes[2] = node(t, r, registry.TypeExposure, domain.LinkTo(1, 0))
	n.Nodes[3] = node(t, r, registry.TypeOutput, domain.LinkTo(2, 0))
	n.Inputs = []domain.NodeID{1}
	n.Outputs = []domain.NodeOutput{{Node: 3}}
	n.Disabled = []domain.NodeID{2}

	p, err := Compile(context.Background(), n, r, WithInputs(domain.Number(7)))
	require.NoError(t, err)

	require.Len(t, p.Nodes, 2)
	assert.Equal(t, registry.TypeInput, p.Nodes[0].Type)
	assert.Equal(t, []ProtoInput{Const{Value: domain.Number(7)}}, p.Nodes[0].Inputs)
	assert.Equal(t, []ProtoInput{Ref{Node: p.Nodes[0].ID}}, p.Nodes[1].Inputs)
}

func TestCompile_RootBoundaryWithoutInputsIsNone(t *testing.T) {
	r := registry.Builtin()
	n := domain.NewNetwork()
	n.Nodes[1] = node(t, r, registry.TypeInput)
	n.Inputs = []domain.NodeID{1}
	n.Outputs = []domain.NodeOutput{{Node: 1}}

	p, err := Compile(context.Background(), n, r)
	require.NoError(t, err)
	require.Len(t, p.Nodes, 1)
	assert.Equal(t, []ProtoInput{Const{Value: domain.None{}}}, p.Nodes[0].Inputs)
}

func TestCompile_NestedCallSitesAreIndependent(t *testing.T) {
	r := registry.Builtin()
	n := domain.NewNetwork()
	n.Nodes[1] = node(t, r, registry.TypeImage)
	n.Nodes[10] = node(t, r, registry.TypeInvertExposure, domain.LinkTo(1, 0), num(1.5))
	n.Nodes[11] = node(t, r, registry.TypeInvertExposure, domain.LinkTo(1, 0), num(-1))
	n.Outputs = []domain.NodeOutput{{Node: 10}, {Node: 11}}

	p, err := Compile(context.Background(), n, r)
	require.NoError(t, err)
	requireOrdered(t, p, nil)

	// One shared Image plus Input, Exposure and Invert per call site.
	require.Len(t, p.Nodes, 7)
	require.Len(t, p.Outputs, 2)
	assert.NotEqual(t, p.Outputs[0], p.Outputs[1])

	byCallSite := map[domain.NodeID][]ProtoNode{}
	for _, pn := range p.Nodes {
		if len(pn.Path) == 2 {
			byCallSite[pn.Path[0]] = append(byCallSite[pn.Path[0]], pn)
		}
	}
	require.Len(t, byCallSite[10], 3)
	require.Len(t, byCallSite[11], 3)
	ids := map[ProtoID]bool{}
	for _, pn := range append(byCallSite[10], byCallSite[11]...) {
		assert.False(t, ids[pn.ID], "proto node %d shared between call sites", pn.ID)
		ids[pn.ID] = true
	}

	exposure := func(site domain.NodeID) ProtoNode {
		for _, pn := range byCallSite[site] {
			if pn.Type == registry.TypeExposure {
				return pn
			}
		}
		t.Fatalf("no exposure node for call site %d", site)
		return ProtoNode{}
	}
	assert.Equal(t, Const{Value: domain.Number(1.5)}, exposure(10).Inputs[1])
	assert.Equal(t, Const{Value: domain.Number(-1)}, exposure(11).Inputs[1])
	assert.Equal(t, []domain.NodeID{10, 1}, exposure(10).Path)
}

func TestCompile_Cycle(t *testing.T) {
	r := registry.Builtin()
	n := domain.NewNetwork()
	n.Nodes[1] = node(t, r, "Add", domain.LinkTo(2, 0))
	n.Nodes[2] = node(t, r, "Add", domain.LinkTo(1, 0))
	n.Outputs = []domain.NodeOutput{{Node: 2}}

	_, err := Compile(context.Background(), n, r)
	assert.ErrorIs(t, err, domain.ErrCyclicNetwork)
}

func TestCompile_CycleInsideNestedNetwork(t *testing.T) {
	r := registry.Builtin()
	inner := domain.NewNetwork()
	inner.Nodes[1] = node(t, r, registry.TypeIdentity, domain.LinkTo(2, 0))
	inner.Nodes[2] = node(t, r, registry.TypeIdentity, domain.LinkTo(1, 0))
	inner.Outputs = []domain.NodeOutput{{Node: 1}}

	n := domain.NewNetwork()
	n.Nodes[5] = &domain.DocumentNode{Name: "Loop", Implementation: domain.Nested{Network: inner}}
	n.Outputs = []domain.NodeOutput{{Node: 5}}

	_, err := Compile(context.Background(), n, r)
	assert.ErrorIs(t, err, domain.ErrCyclicNetwork)
}

func TestCompile_Lambda(t *testing.T) {
	r := registry.Builtin()
	n := domain.NewNetwork()
	n.Nodes[1] = node(t, r, registry.TypeNumber, domain.Value(domain.Number(10), false))
	n.Nodes[2] = node(t, r, "Add", num(0), domain.LinkTo(1, 0))
	n.Nodes[3] = node(t, r, "Apply", domain.Link{Target: 2, Lambda: true}, num(5))
	n.Outputs = []domain.NodeOutput{{Node: 3}}

	p, err := Compile(context.Background(), n, r)
	require.NoError(t, err)
	requireOrdered(t, p, nil)

	// Number is shared by value; Add only lives inside the lambda body.
	require.Len(t, p.Nodes, 2)
	assert.Equal(t, registry.TypeNumber, p.Nodes[0].Type)
	apply := p.Nodes[1]
	assert.Equal(t, "Apply", apply.Type)

	lambda, ok := apply.Inputs[0].(Lambda)
	require.True(t, ok)
	require.Len(t, lambda.Body.Nodes, 1)
	add := lambda.Body.Nodes[0]
	assert.Equal(t, []ProtoInput{Argument{}, Ref{Node: p.Nodes[0].ID}}, add.Inputs)
	assert.Equal(t, Ref{Node: add.ID}, lambda.Body.Output())
}

func TestCompile_LambdaToDisabledNodeIsIdentity(t *testing.T) {
	r := registry.Builtin()
	n := domain.NewNetwork()
	n.Nodes[1] = node(t, r, registry.TypeInvert)
	n.Nodes[2] = node(t, r, "Apply", domain.Link{Target: 1, Lambda: true}, num(5))
	n.Outputs = []domain.NodeOutput{{Node: 2}}
	n.Disabled = []domain.NodeID{1}

	p, err := Compile(context.Background(), n, r)
	require.NoError(t, err)
	require.Len(t, p.Nodes, 1)
	lambda, ok := p.Nodes[0].Inputs[0].(Lambda)
	require.True(t, ok)
	assert.Empty(t, lambda.Body.Nodes)
	assert.Equal(t, Argument{}, lambda.Body.Output())
}

func TestCompile_CancelledContext(t *testing.T) {
	r := registry.Builtin()
	n := domain.NewNetwork()
	n.Nodes[1] = node(t, r, registry.TypeNumber)
	n.Outputs = []domain.NodeOutput{{Node: 1}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compile(ctx, n, r)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPathKey(t *testing.T) {
	assert.Equal(t, "", PathKey(nil))
	assert.Equal(t, "4/12/7", PathKey([]domain.NodeID{4, 12, 7}))
}
