package tui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/aretw0/nodegraph/internal/runtime"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkMarkdown(t *testing.T) {
	r := registry.Builtin()
	number, err := r.NewNode(registry.TypeNumber, domain.IVec2{})
	require.NoError(t, err)
	number.Inputs[0] = domain.Value(domain.Number(3), false)
	add, err := r.NewNode("Add", domain.IVec2{})
	require.NoError(t, err)
	add.Inputs[0] = domain.LinkTo(1, 0)
	nested, err := r.NewNode(registry.TypeInvertExposure, domain.IVec2{})
	require.NoError(t, err)

	n := domain.NewNetwork()
	n.Nodes[1] = number
	n.Nodes[2] = add
	n.Nodes[3] = nested
	n.Outputs = []domain.NodeOutput{{Node: 2}}
	n.Disabled = []domain.NodeID{3}

	md := NetworkMarkdown("doc", n, r)
	assert.Contains(t, md, "# doc\n")
	assert.Contains(t, md, "| 1 | Number | Number |")
	assert.Contains(t, md, "#1:0")
	assert.Contains(t, md, "(exposed)")
	assert.Contains(t, md, "| output |")
	assert.Contains(t, md, "| disabled |")
	assert.Contains(t, md, "# doc / "+nested.Name+" (3)")

	assert.Contains(t, NetworkMarkdown("empty", domain.NewNetwork(), nil), "_empty network_")
}

func TestResultMarkdown(t *testing.T) {
	res := &runtime.Result{
		Output:  domain.Number(7),
		Outputs: []domain.TaggedValue{domain.Number(7), domain.String("a|b")},
		Intermediates: map[string]runtime.Intermediate{
			"1": {Path: []domain.NodeID{1}, Value: domain.String("a|b")},
		},
	}
	md := ResultMarkdown(res)
	assert.Contains(t, md, "**Output:** `7`")
	assert.Contains(t, md, "1. `a|b`")
	assert.Contains(t, md, "| 1 | string | a\\|b |")
	assert.NotContains(t, md, "## Failures")
}

func TestResultMarkdown_ListsFailures(t *testing.T) {
	res := &runtime.Result{
		Output: domain.None{},
		Failures: []*runtime.EvaluationError{
			{Path: []domain.NodeID{4, 2}, Type: "Exposure", Err: errors.New("expected image_frame, got f64")},
		},
	}
	md := ResultMarkdown(res)
	assert.Contains(t, md, "## Failures")
	assert.Contains(t, md, "- `4/2` (Exposure): expected image_frame, got f64")
}

func TestRenderer(t *testing.T) {
	render, err := NewRenderer(glamour.WithStandardStyle("notty"))
	require.NoError(t, err)
	out, err := render("# Result\n\nhello graph")
	require.NoError(t, err)
	assert.Contains(t, out, "hello graph")
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "|___/")
	assert.Contains(t, buf.String(), "v1.2.3")
}

func TestStyled(t *testing.T) {
	assert.Equal(t, "raster", Styled(termenv.Ascii, domain.DataTypeRaster, "raster"))
	assert.Equal(t, DataTypeColor(domain.DataTypeGeneral), DataTypeColor("unknown"))
	assert.NotEqual(t, "x", Styled(termenv.TrueColor, domain.DataTypeColor, "x"))
}
