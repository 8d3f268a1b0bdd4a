package file

import (
	"context"
	"testing"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/ports"
	"github.com/aretw0/nodegraph/pkg/ports/tests"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Contract(t *testing.T) {
	tests.DocumentLoaderContractTest(t, New("testdata", WithCatalog(registry.Builtin())), map[string]int{
		"brighten": 4,
		"grouped":  2,
	})
}

func TestLoader_YAML(t *testing.T) {
	n, err := New("testdata").LoadDocument(context.Background(), "brighten")
	require.NoError(t, err)

	assert.Equal(t, []domain.NodeOutput{{Node: 3}}, n.Outputs)
	assert.Equal(t, domain.IVec2{X: 8}, n.Nodes[2].Position)
	assert.Equal(t, "Add", n.Nodes[2].Name)
	assert.Equal(t, []domain.NodeInput{
		domain.LinkTo(1, 0),
		domain.Value(domain.Number(4), true),
	}, n.Nodes[2].Inputs)
	assert.Equal(t, domain.Value(domain.Color{R: 1, G: 0.5, A: 1}, false), n.Nodes[4].Inputs[2])
}

func TestLoader_JSONNested(t *testing.T) {
	n, err := New("testdata", WithCatalog(registry.Builtin())).LoadDocument(context.Background(), "grouped")
	require.NoError(t, err)

	group := n.Nodes[2]
	assert.Equal(t, "Double", group.Name)
	nested := group.Network()
	require.NotNil(t, nested)
	assert.Equal(t, []domain.NodeID{1}, nested.Inputs)
	assert.Equal(t, domain.Boundary{}, nested.Nodes[1].Inputs[0])
	assert.Equal(t, domain.Value(domain.Number(2), false), nested.Nodes[2].Inputs[1])
}

func TestLoader_FillsCatalogDefaults(t *testing.T) {
	l := New("", WithCatalog(registry.Builtin()))
	n, err := l.Parse([]byte("outputs: [{node: 1}]\nnodes:\n  - {id: 1, type: Number}\n"), "yaml")
	require.NoError(t, err)
	require.Len(t, n.Nodes[1].Inputs, 1)
	assert.Equal(t, domain.Number(0), n.Nodes[1].Inputs[0].(domain.Literal).Value)
}

func TestLoader_ListDocuments(t *testing.T) {
	names, err := New("testdata").ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"brighten", "grouped"}, names)

	_, err = New("testdata").LoadDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrDocumentNotFound)
}

func TestParse_Inputs(t *testing.T) {
	doc := `
nodes:
  - id: 1
    type: Apply
    inputs:
      - {link: 2, output: 1, lambda: true}
      - {kind: u32, value: "7"}
      - {kind: dvec2, value: {x: 1, y: 2}}
      - true
      - hello
      - null
`
	n, err := New("").Parse([]byte(doc), "yaml")
	require.NoError(t, err)
	assert.Equal(t, []domain.NodeInput{
		domain.Link{Target: 2, OutputIndex: 1, Lambda: true},
		domain.Value(domain.Uint(7), false),
		domain.Value(domain.Vec2{X: 1, Y: 2}, false),
		domain.Value(domain.Bool(true), false),
		domain.Value(domain.String("hello"), false),
		domain.Value(domain.None{}, false),
	}, n.Nodes[1].Inputs)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", "nodes: [unclosed"},
		{"unknown field", "nodes:\n  - {id: 1, type: Number, colour: red}\n"},
		{"missing type", "nodes:\n  - {id: 1}\n"},
		{"type and network", "nodes:\n  - {id: 1, type: Number, network: {}}\n"},
		{"map without kind", "nodes:\n  - {id: 1, type: Number, inputs: [{value: {x: 1}}]}\n"},
		{"function literal", "nodes:\n  - {id: 1, type: Number, inputs: [{kind: function}]}\n"},
		{"bad color", "nodes:\n  - {id: 1, type: Number, inputs: [{kind: color, value: {hue: 3}}]}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("").Parse([]byte(tt.doc), "yaml")
			assert.ErrorIs(t, err, domain.ErrInvalidPayload)
		})
	}

	_, err := New("").Parse([]byte("nodes:\n  - {id: 1, type: Number}\n  - {id: 1, type: Number}\n"), "yaml")
	assert.ErrorIs(t, err, domain.ErrNodeExists)
}

func TestParse_ValidatesWithCatalog(t *testing.T) {
	doc := "outputs: [{node: 1}]\nnodes:\n  - {id: 1, type: Add, inputs: [{link: 9}, 1]}\n"
	_, err := New("", WithCatalog(registry.Builtin())).Parse([]byte(doc), "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "links to missing node 9")

	_, err = New("").Parse([]byte(doc), "yaml")
	assert.NoError(t, err, "without a catalog documents are only decoded")
}
